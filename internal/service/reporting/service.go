// Package reporting computes the dashboard aggregates: latest-day snapshot,
// month-to-date accumulation, buyer leaderboards, internal-channel breakdown
// and the period/comparison views. All figures are recomputed from the store
// on every call; nothing is cached.
package reporting

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/durvalm/aram-reports/internal/domain/models"
	"github.com/durvalm/aram-reports/internal/repository/store"
)

const (
	salesQuery   = "SELECT * FROM rds_vendas"
	currentQuery = "SELECT * FROM chart_compradores_duplo"
	legacyQuery  = "SELECT * FROM chart_compradores"

	// Leaderboard sizes: the overview shows a short list, the period views a
	// longer one.
	SummaryTopN = 5
	PeriodTopN  = 10
)

// Internal sales channels: the hotel's own booking engine, walk-in/direct
// bookings and the in-house events operation. Matching is case-insensitive
// substring against the patterns, plus exact names.
var (
	internalChannelPatterns = []string{"MOTOR DE RESERVAS", "PARTICULAR", "EVENTOS IMIRA PLAZA"}
	internalChannelExact    = []string{"PARTICULAR"}
)

// Service exposes the read-only report shapes consumed by the dashboards.
// Store failures never propagate: each report degrades to an empty result
// with the cause logged, so the presentation layer renders a "no data" state
// instead of crashing.
type Service struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(st store.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: st, logger: logger, now: time.Now}
}

// LatestDay returns the sales row for the most recent calendar date, or nil
// when the table is empty. Duplicate rows for the max date resolve to the
// first one in result order.
func (s *Service) LatestDay(ctx context.Context) *models.DailySales {
	sales, err := s.loadSales(ctx)
	if err != nil {
		s.logger.Error("latest day unavailable", zap.Error(err))
		return nil
	}
	if len(sales) == 0 {
		s.logger.Debug("latest day: no sales rows")
		return nil
	}

	best := sales[0]
	for _, row := range sales[1:] {
		if row.Date.After(best.Date) {
			best = row
		}
	}
	return &best
}

// MonthToDate accumulates revenue, record count and mean occupancy for the
// current calendar month up to today. A month with no rows yields the zero
// value, which is an expected condition and not a failure.
func (s *Service) MonthToDate(ctx context.Context) models.MonthToDate {
	sales, err := s.loadSales(ctx)
	if err != nil {
		s.logger.Error("month-to-date unavailable", zap.Error(err))
		return models.MonthToDate{}
	}

	window := s.monthToDateWindow()
	var out models.MonthToDate
	var occupancy float64
	for _, row := range sales {
		if !window.Contains(row.Date) {
			continue
		}
		out.Revenue += row.Revenue
		occupancy += row.Occupancy
		out.Records++
	}
	if out.Records == 0 {
		s.logger.Debug("month-to-date: no rows in current month")
		return out
	}
	out.OccupancyAvg = occupancy / float64(out.Records)
	return out
}

// TopBuyers ranks buyers/channels by summed reservation volume, descending,
// truncated to limit. A nil period means the month-to-date window, which is
// what the overview shows. Ties keep first-seen grouping order.
func (s *Service) TopBuyers(ctx context.Context, period *models.Period, limit int) []models.BuyerTotal {
	reservations, _, err := s.loadReservations(ctx)
	if err != nil {
		s.logger.Error("buyer ranking unavailable", zap.Error(err))
		return nil
	}

	window := s.resolveWindow(period)
	totals := groupByBuyer(reservations, &window)
	if len(totals) > limit {
		totals = totals[:limit]
	}
	return totals
}

// BuyerLeaderboard ranks buyers over the full history, for the chart page.
func (s *Service) BuyerLeaderboard(ctx context.Context, limit int) []models.BuyerTotal {
	reservations, _, err := s.loadReservations(ctx)
	if err != nil {
		s.logger.Error("buyer leaderboard unavailable", zap.Error(err))
		return nil
	}

	totals := groupByBuyer(reservations, nil)
	if len(totals) > limit {
		totals = totals[:limit]
	}
	return totals
}

// InternalChannels filters the reservation rows down to the hotel's own
// channels. On the current schema lines are grouped by (channel, reference
// day); the legacy schema only supports grouping by channel.
func (s *Service) InternalChannels(ctx context.Context, period *models.Period) models.InternalBreakdown {
	reservations, legacy, err := s.loadReservations(ctx)
	if err != nil {
		s.logger.Error("internal channel breakdown unavailable", zap.Error(err))
		return models.InternalBreakdown{}
	}

	window := s.resolveWindow(period)

	type lineKey struct {
		channel string
		refDay  string
	}
	index := make(map[lineKey]int)
	out := models.InternalBreakdown{Legacy: legacy}

	for _, r := range reservations {
		if !window.Contains(r.Date) || !isInternalChannel(r.Buyer) {
			continue
		}

		key := lineKey{channel: r.Buyer}
		if !legacy {
			key.refDay = r.ReferenceDay
		}
		i, ok := index[key]
		if !ok {
			i = len(out.Lines)
			index[key] = i
			out.Lines = append(out.Lines, models.InternalLine{Channel: r.Buyer, ReferenceDay: key.refDay})
		}
		out.Lines[i].Total += r.Total
		out.Lines[i].DayCount += r.DayCount
		out.Total += r.Total
	}

	sort.SliceStable(out.Lines, func(i, j int) bool {
		return out.Lines[i].Total > out.Lines[j].Total
	})
	return out
}

// loadSales fetches and parses the whole sales table. Rows with unparseable
// dates are skipped with a debug log rather than failing the report.
func (s *Service) loadSales(ctx context.Context) ([]models.DailySales, error) {
	rows, err := s.store.Query(ctx, salesQuery)
	if err != nil {
		return nil, err
	}

	out := make([]models.DailySales, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse(models.DateLayout, row.Str("data"))
		if err != nil {
			s.logger.Debug("skip sales row with invalid date", zap.String("value", row.Str("data")), zap.Error(err))
			continue
		}
		out = append(out, models.DailySales{
			Date:         date,
			Revenue:      row.Float("valor_total"),
			EventRevenue: row.Float("valor_eventos"),
			Guests:       row.Int("pax_hoje"),
			Occupancy:    row.Float("ocupacao_hoje"),
			AvgRoomRate:  row.Float("diaria_media_uh"),
		})
	}
	return out, nil
}

// loadReservations prefers the current buyer table and transparently falls
// back to the legacy one when the new table is absent or still empty. The
// returned flag reports which schema generation served the rows.
func (s *Service) loadReservations(ctx context.Context) ([]models.Reservation, bool, error) {
	rows, err := s.store.Query(ctx, currentQuery)
	if err != nil || len(rows) == 0 {
		if err != nil {
			s.logger.Debug("current buyer table unavailable, trying legacy", zap.Error(err))
		}
		legacyRows, lerr := s.store.Query(ctx, legacyQuery)
		if lerr != nil {
			return nil, false, lerr
		}
		return s.parseLegacyReservations(legacyRows), true, nil
	}

	out := make([]models.Reservation, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse(models.DateLayout, row.Str("data"))
		if err != nil {
			s.logger.Debug("skip buyer row with invalid date", zap.String("value", row.Str("data")), zap.Error(err))
			continue
		}
		out = append(out, models.Reservation{
			Date:         date,
			Buyer:        row.Str("comprador"),
			Total:        row.Float("total_reservas"),
			DayCount:     row.Float("reservas_dia"),
			ReferenceDay: row.Str("dia_referencia"),
		})
	}
	return out, false, nil
}

func (s *Service) parseLegacyReservations(rows store.Table) []models.Reservation {
	out := make([]models.Reservation, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse(models.DateLayout, row.Str("data"))
		if err != nil {
			s.logger.Debug("skip legacy buyer row with invalid date", zap.String("value", row.Str("data")), zap.Error(err))
			continue
		}
		out = append(out, models.Reservation{
			Date:   date,
			Buyer:  row.Str("comprador"),
			Total:  row.Float("valor"),
			Legacy: true,
		})
	}
	return out
}

// monthToDateWindow spans the first day of the current month through today.
func (s *Service) monthToDateWindow() models.Period {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return models.Period{Start: first, End: today}
}

func (s *Service) resolveWindow(period *models.Period) models.Period {
	if period != nil {
		return *period
	}
	return s.monthToDateWindow()
}

// groupByBuyer sums reservation volume per buyer inside the window (nil
// means no date filter), keeping first-seen order for ties, and returns the
// groups sorted descending.
func groupByBuyer(reservations []models.Reservation, window *models.Period) []models.BuyerTotal {
	index := make(map[string]int)
	var totals []models.BuyerTotal

	for _, r := range reservations {
		if window != nil && !window.Contains(r.Date) {
			continue
		}
		i, ok := index[r.Buyer]
		if !ok {
			i = len(totals)
			index[r.Buyer] = i
			totals = append(totals, models.BuyerTotal{Buyer: r.Buyer})
		}
		totals[i].Total += r.Total
		totals[i].Count++
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total > totals[j].Total
	})
	return totals
}

func isInternalChannel(name string) bool {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for _, exact := range internalChannelExact {
		if upper == exact {
			return true
		}
	}
	for _, pattern := range internalChannelPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}
