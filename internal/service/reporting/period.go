package reporting

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/durvalm/aram-reports/internal/domain/models"
)

// PeriodSales filters the sales table to an inclusive date range and returns
// the aggregate figures plus the matching rows ordered by date.
func (s *Service) PeriodSales(ctx context.Context, period models.Period) (models.PeriodSales, []models.DailySales) {
	sales, err := s.loadSales(ctx)
	if err != nil {
		s.logger.Error("period sales unavailable", zap.Error(err))
		return models.PeriodSales{}, nil
	}

	var summary models.PeriodSales
	var occupancy, roomRate float64
	var rows []models.DailySales
	for _, row := range sales {
		if !period.Contains(row.Date) {
			continue
		}
		summary.Revenue += row.Revenue
		summary.Guests += row.Guests
		occupancy += row.Occupancy
		roomRate += row.AvgRoomRate
		summary.Records++
		rows = append(rows, row)
	}
	if summary.Records == 0 {
		s.logger.Debug("period sales: no rows in range",
			zap.Time("start", period.Start), zap.Time("end", period.End))
		return summary, nil
	}

	summary.OccupancyAvg = occupancy / float64(summary.Records)
	summary.AvgRoomRateAvg = roomRate / float64(summary.Records)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return summary, rows
}

// PeriodBuyers summarises the reservation rows in the range and returns the
// top-10 buyer leaderboard for it.
func (s *Service) PeriodBuyers(ctx context.Context, period models.Period) (models.PeriodBuyers, []models.BuyerTotal) {
	reservations, _, err := s.loadReservations(ctx)
	if err != nil {
		s.logger.Error("period buyers unavailable", zap.Error(err))
		return models.PeriodBuyers{}, nil
	}

	var summary models.PeriodBuyers
	seen := make(map[string]bool)
	for _, r := range reservations {
		if !period.Contains(r.Date) {
			continue
		}
		summary.Total += r.Total
		summary.Records++
		if !seen[r.Buyer] {
			seen[r.Buyer] = true
			summary.UniqueBuyers++
		}
	}
	if summary.Records == 0 {
		s.logger.Debug("period buyers: no rows in range",
			zap.Time("start", period.Start), zap.Time("end", period.End))
		return summary, nil
	}
	summary.AveragePerRow = summary.Total / float64(summary.Records)

	top := groupByBuyer(reservations, &period)
	if len(top) > PeriodTopN {
		top = top[:PeriodTopN]
	}
	return summary, top
}

// Comparison outer-joins daily sales and reservation volume on date. Dates
// present on only one side stay in the series with the other side zero-filled
// and flagged, and the flagged dates are listed per side so charts can show a
// missing-data notice instead of interpolating across the gap. A period of
// nil means the full history.
func (s *Service) Comparison(ctx context.Context, period *models.Period) models.MergedSeries {
	sales, salesErr := s.loadSales(ctx)
	if salesErr != nil {
		s.logger.Error("comparison: sales side unavailable", zap.Error(salesErr))
	}
	reservations, _, buyersErr := s.loadReservations(ctx)
	if buyersErr != nil {
		s.logger.Error("comparison: buyer side unavailable", zap.Error(buyersErr))
	}

	type side struct {
		revenue      float64
		guests       int
		reservations float64
		hasSales     bool
		hasBuyers    bool
	}
	merged := make(map[time.Time]*side)

	at := func(date time.Time) *side {
		if cell, ok := merged[date]; ok {
			return cell
		}
		cell := &side{}
		merged[date] = cell
		return cell
	}

	for _, row := range sales {
		if period != nil && !period.Contains(row.Date) {
			continue
		}
		cell := at(row.Date)
		cell.revenue += row.Revenue
		cell.guests += row.Guests
		cell.hasSales = true
	}
	for _, r := range reservations {
		if period != nil && !period.Contains(r.Date) {
			continue
		}
		cell := at(r.Date)
		cell.reservations += r.Total
		cell.hasBuyers = true
	}

	dates := make([]time.Time, 0, len(merged))
	for date := range merged {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	var out models.MergedSeries
	for _, date := range dates {
		cell := merged[date]
		point := models.MergedPoint{
			Date:          date,
			Revenue:       cell.revenue,
			Guests:        cell.guests,
			Reservations:  cell.reservations,
			MissingSales:  !cell.hasSales,
			MissingBuyers: !cell.hasBuyers,
		}
		if point.MissingSales {
			out.MissingSalesDates = append(out.MissingSalesDates, date.Format(models.DateLayout))
		}
		if point.MissingBuyers {
			out.MissingBuyerDates = append(out.MissingBuyerDates, date.Format(models.DateLayout))
		}
		out.Points = append(out.Points, point)
	}
	return out
}

// SalesSeries returns the full sales history ordered by date, for the chart
// page.
func (s *Service) SalesSeries(ctx context.Context) []models.DailySales {
	sales, err := s.loadSales(ctx)
	if err != nil {
		s.logger.Error("sales series unavailable", zap.Error(err))
		return nil
	}
	sort.SliceStable(sales, func(i, j int) bool { return sales[i].Date.Before(sales[j].Date) })
	return sales
}

// ReservationsByDate sums reservation volume per date, ordered by date.
func (s *Service) ReservationsByDate(ctx context.Context) []models.DateTotal {
	reservations, _, err := s.loadReservations(ctx)
	if err != nil {
		s.logger.Error("reservations by date unavailable", zap.Error(err))
		return nil
	}

	index := make(map[time.Time]int)
	var out []models.DateTotal
	for _, r := range reservations {
		i, ok := index[r.Date]
		if !ok {
			i = len(out)
			index[r.Date] = i
			out = append(out, models.DateTotal{Date: r.Date})
		}
		out[i].Total += r.Total
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
