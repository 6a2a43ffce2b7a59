package models

import "time"

// MergedPoint is one date of the cross-dataset comparison. A side that had no
// row for the date is zero-filled and flagged missing, so charts can break the
// line instead of interpolating across the gap.
type MergedPoint struct {
	Date          time.Time `json:"date"`
	Revenue       float64   `json:"revenue"`
	Guests        int       `json:"guests"`
	Reservations  float64   `json:"reservations"`
	MissingSales  bool      `json:"missing_sales"`
	MissingBuyers bool      `json:"missing_buyers"`
}

// MergedSeries is the outer join of daily sales and buyer reservations on
// date, ordered by calendar date, with the zero-filled dates of each side
// surfaced for the caller.
type MergedSeries struct {
	Points            []MergedPoint `json:"points"`
	MissingSalesDates []string      `json:"missing_sales_dates"`
	MissingBuyerDates []string      `json:"missing_buyer_dates"`
}
