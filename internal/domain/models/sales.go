package models

import "time"

// DateLayout is the locale layout used by every date column in the report
// tables (DD/MM/YYYY). Values are stored as TEXT in that layout and parsed
// into time.Time before any comparison.
const DateLayout = "02/01/2006"

// DailySales is one row of the rds_vendas table: the extracted daily
// operations figures for a single calendar date.
type DailySales struct {
	Date         time.Time `json:"date"`
	Revenue      float64   `json:"revenue"`
	EventRevenue float64   `json:"event_revenue"`
	Guests       int       `json:"guests"`
	Occupancy    float64   `json:"occupancy"`
	AvgRoomRate  float64   `json:"avg_room_rate"`
}

// TotalRevenue is room revenue plus event revenue for the day.
func (d DailySales) TotalRevenue() float64 {
	return d.Revenue + d.EventRevenue
}

// MonthToDate accumulates the current calendar month up to today.
type MonthToDate struct {
	Revenue      float64 `json:"revenue"`
	Records      int     `json:"records"`
	OccupancyAvg float64 `json:"occupancy_avg"`
}

// PeriodSales summarises the sales rows inside an inclusive date range.
type PeriodSales struct {
	Revenue        float64 `json:"revenue"`
	Guests         int     `json:"guests"`
	OccupancyAvg   float64 `json:"occupancy_avg"`
	AvgRoomRateAvg float64 `json:"avg_room_rate_avg"`
	Records        int     `json:"records"`
}

// Period is a user-selected inclusive date range. It is derived per request
// and never persisted.
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range, bounds included.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// ParsePeriod builds a Period from two locale-formatted date strings.
func ParsePeriod(start, end string) (Period, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return Period{}, err
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return Period{}, err
	}
	return Period{Start: s, End: e}, nil
}
