package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/durvalm/aram-reports/internal/domain/models"
	"github.com/durvalm/aram-reports/internal/service/reporting"
	"github.com/durvalm/aram-reports/pkg/format"
)

// DashboardHandler serves the report pages. It only shapes and formats what
// the reporting service computed; empty results render as explicit "no data"
// payloads with HTTP 200.
type DashboardHandler struct {
	svc    *reporting.Service
	logger *zap.Logger
}

// NewDashboardHandler constructs the HTTP handler adapter.
func NewDashboardHandler(svc *reporting.Service, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{svc: svc, logger: logger}
}

// Overview is the front page: latest-day snapshot, month-to-date figures,
// top buyers and the internal-channel breakdown.
func (h *DashboardHandler) Overview(c *gin.Context) {
	ctx := c.Request.Context()

	latest := h.svc.LatestDay(ctx)
	mtd := h.svc.MonthToDate(ctx)
	topBuyers := h.svc.TopBuyers(ctx, nil, reporting.SummaryTopN)
	internal := h.svc.InternalChannels(ctx, nil)

	resp := gin.H{
		"latest_day":        formatLatestDay(latest),
		"month_to_date":     formatMonthToDate(mtd),
		"top_buyers":        formatBuyerTotals(topBuyers),
		"internal_channels": formatInternalBreakdown(internal, mtd),
	}
	c.JSON(http.StatusOK, resp)
}

// Period answers the period-query page for an inclusive date range given as
// start/end query parameters in DD/MM/YYYY.
func (h *DashboardHandler) Period(c *gin.Context) {
	period, err := models.ParsePeriod(c.Query("start"), c.Query("end"))
	if err != nil {
		h.logger.Warn("invalid period parameters",
			zap.String("start", c.Query("start")),
			zap.String("end", c.Query("end")),
			zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end must be DD/MM/YYYY dates"})
		return
	}
	if period.End.Before(period.Start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must not precede start"})
		return
	}

	ctx := c.Request.Context()
	salesSummary, salesRows := h.svc.PeriodSales(ctx, period)
	buyersSummary, topBuyers := h.svc.PeriodBuyers(ctx, period)
	comparison := h.svc.Comparison(ctx, &period)

	c.JSON(http.StatusOK, gin.H{
		"start":        format.Date(period.Start),
		"end":          format.Date(period.End),
		"sales":        formatPeriodSales(salesSummary),
		"sales_detail": formatSalesRows(salesRows),
		"buyers":       formatPeriodBuyers(buyersSummary),
		"top_buyers":   formatBuyerTotals(topBuyers),
		"comparison":   comparisonPayload(comparison),
	})
}

// Charts returns the raw numeric series the chart page plots, dates already
// in the locale layout.
func (h *DashboardHandler) Charts(c *gin.Context) {
	ctx := c.Request.Context()

	sales := h.svc.SalesSeries(ctx)
	leaderboard := h.svc.BuyerLeaderboard(ctx, reporting.PeriodTopN)
	byDate := h.svc.ReservationsByDate(ctx)
	comparison := h.svc.Comparison(ctx, nil)

	salesSeries := make([]gin.H, 0, len(sales))
	for _, row := range sales {
		salesSeries = append(salesSeries, gin.H{
			"date":          format.Date(row.Date),
			"revenue":       row.Revenue,
			"guests":        row.Guests,
			"occupancy":     row.Occupancy,
			"avg_room_rate": row.AvgRoomRate,
		})
	}

	reservationSeries := make([]gin.H, 0, len(byDate))
	for _, point := range byDate {
		reservationSeries = append(reservationSeries, gin.H{
			"date":  format.Date(point.Date),
			"total": point.Total,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"sales_series":         salesSeries,
		"buyer_leaderboard":    leaderboardPayload(leaderboard),
		"buyer_shares":         sharePayload(leaderboard, reporting.SummaryTopN),
		"reservations_by_date": reservationSeries,
		"comparison":           comparisonPayload(comparison),
	})
}

func formatLatestDay(latest *models.DailySales) gin.H {
	if latest == nil {
		return nil
	}
	return gin.H{
		"date":          format.Date(latest.Date),
		"revenue":       format.Currency(latest.Revenue),
		"event_revenue": format.Currency(latest.EventRevenue),
		"total_revenue": format.Currency(latest.TotalRevenue()),
		"guests":        format.Number(float64(latest.Guests)),
		"occupancy":     format.Percent(latest.Occupancy),
		"avg_room_rate": format.Currency(latest.AvgRoomRate),
	}
}

func formatMonthToDate(mtd models.MonthToDate) gin.H {
	if mtd.Records == 0 {
		return nil
	}
	return gin.H{
		"revenue":       format.Currency(mtd.Revenue),
		"records":       format.Number(float64(mtd.Records)),
		"occupancy_avg": format.Percent(mtd.OccupancyAvg),
	}
}

func formatBuyerTotals(totals []models.BuyerTotal) []gin.H {
	out := make([]gin.H, 0, len(totals))
	for _, t := range totals {
		out = append(out, gin.H{
			"buyer": t.Buyer,
			"total": format.Number(t.Total),
			"count": t.Count,
		})
	}
	return out
}

func formatInternalBreakdown(b models.InternalBreakdown, mtd models.MonthToDate) gin.H {
	if len(b.Lines) == 0 {
		return nil
	}

	lines := make([]gin.H, 0, len(b.Lines))
	for _, line := range b.Lines {
		entry := gin.H{"channel": line.Channel}
		if b.Legacy {
			entry["revenue"] = format.Currency(line.Total)
		} else {
			entry["total_reservations"] = format.Number(line.Total)
			entry["day_reservations"] = format.Number(line.DayCount)
			entry["reference_day"] = format.NormalizeDate(line.ReferenceDay)
		}
		lines = append(lines, entry)
	}

	out := gin.H{"lines": lines, "legacy": b.Legacy}
	if b.Legacy {
		out["total"] = format.Currency(b.Total)
		// The legacy figure is revenue, so it can be related to the month's
		// takings.
		if mtd.Revenue > 0 {
			out["share_of_month"] = format.Percent(b.Total / mtd.Revenue * 100)
		}
	} else {
		out["total"] = format.Number(b.Total)
	}
	return out
}

func formatPeriodSales(summary models.PeriodSales) gin.H {
	if summary.Records == 0 {
		return nil
	}
	return gin.H{
		"revenue":           format.Currency(summary.Revenue),
		"guests":            format.Number(float64(summary.Guests)),
		"occupancy_avg":     format.Percent(summary.OccupancyAvg),
		"avg_room_rate_avg": format.Currency(summary.AvgRoomRateAvg),
		"records":           summary.Records,
	}
}

func formatSalesRows(rows []models.DailySales) []gin.H {
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"date":          format.Date(row.Date),
			"revenue":       format.Currency(row.Revenue),
			"event_revenue": format.Currency(row.EventRevenue),
			"guests":        format.Number(float64(row.Guests)),
			"occupancy":     format.Percent(row.Occupancy),
			"avg_room_rate": format.Currency(row.AvgRoomRate),
		})
	}
	return out
}

func formatPeriodBuyers(summary models.PeriodBuyers) gin.H {
	if summary.Records == 0 {
		return nil
	}
	return gin.H{
		"unique_buyers":   format.Number(float64(summary.UniqueBuyers)),
		"total":           format.Number(summary.Total),
		"average_per_row": format.Number(summary.AveragePerRow),
	}
}

func leaderboardPayload(totals []models.BuyerTotal) []gin.H {
	out := make([]gin.H, 0, len(totals))
	for _, t := range totals {
		out = append(out, gin.H{"buyer": t.Buyer, "total": t.Total})
	}
	return out
}

// sharePayload derives the share of each of the first n buyers relative to
// their combined volume, for the pie chart.
func sharePayload(totals []models.BuyerTotal, n int) []gin.H {
	if len(totals) > n {
		totals = totals[:n]
	}
	var sum float64
	for _, t := range totals {
		sum += t.Total
	}
	out := make([]gin.H, 0, len(totals))
	for _, t := range totals {
		entry := gin.H{"buyer": t.Buyer, "total": t.Total}
		if sum > 0 {
			entry["share"] = format.Percent(t.Total / sum * 100)
		}
		out = append(out, entry)
	}
	return out
}

func comparisonPayload(series models.MergedSeries) gin.H {
	points := make([]gin.H, 0, len(series.Points))
	for _, p := range series.Points {
		points = append(points, gin.H{
			"date":           format.Date(p.Date),
			"revenue":        p.Revenue,
			"guests":         p.Guests,
			"reservations":   p.Reservations,
			"missing_sales":  p.MissingSales,
			"missing_buyers": p.MissingBuyers,
		})
	}
	return gin.H{
		"points":              points,
		"missing_sales_dates": series.MissingSalesDates,
		"missing_buyer_dates": series.MissingBuyerDates,
	}
}
