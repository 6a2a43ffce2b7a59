package models

import "time"

// Reservation is one buyer/channel reservation row, normalized across the two
// schema generations. Legacy rows (chart_compradores) only carry a volume
// figure; current rows (chart_compradores_duplo) also carry the count for a
// specific reference day. Callers never branch on the source table: the
// Legacy flag is informational only.
type Reservation struct {
	Date         time.Time `json:"date"`
	Buyer        string    `json:"buyer"`
	Total        float64   `json:"total"`
	DayCount     float64   `json:"day_count"`
	ReferenceDay string    `json:"reference_day"`
	Legacy       bool      `json:"-"`
}

// BuyerTotal is one line of a ranked buyer/channel leaderboard.
type BuyerTotal struct {
	Buyer string  `json:"buyer"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// PeriodBuyers summarises reservation rows inside an inclusive date range.
type PeriodBuyers struct {
	UniqueBuyers  int     `json:"unique_buyers"`
	Total         float64 `json:"total"`
	AveragePerRow float64 `json:"average_per_row"`
	Records       int     `json:"records"`
}

// InternalLine is one internal sales channel line, grouped by channel and,
// when the current schema is available, by reference day.
type InternalLine struct {
	Channel      string  `json:"channel"`
	Total        float64 `json:"total"`
	DayCount     float64 `json:"day_count,omitempty"`
	ReferenceDay string  `json:"reference_day,omitempty"`
}

// InternalBreakdown groups the hotel's own sales channels.
type InternalBreakdown struct {
	Lines  []InternalLine `json:"lines"`
	Total  float64        `json:"total"`
	Legacy bool           `json:"legacy"`
}

// DateTotal is a (date, total) pair for per-date chart series.
type DateTotal struct {
	Date  time.Time `json:"date"`
	Total float64   `json:"total"`
}
