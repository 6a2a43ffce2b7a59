package format

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "R$ 0,00"},
		{5, "R$ 5,00"},
		{1234.5, "R$ 1.234,50"},
		{1234567.89, "R$ 1.234.567,89"},
		{0.995, "R$ 1,00"},
		{-987.6, "-R$ 987,60"},
		{math.NaN(), "N/A"},
		{math.Inf(1), "N/A"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Currency(tc.in), "Currency(%v)", tc.in)
	}
}

func TestNumber(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.000"},
		{1234567, "1.234.567"},
		{1234.9, "1.234"},
		{-45678, "-45.678"},
		{math.NaN(), "N/A"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Number(tc.in), "Number(%v)", tc.in)
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "87,5%", Percent(87.5))
	assert.Equal(t, "0,0%", Percent(0))
	assert.Equal(t, "100,0%", Percent(100))
	assert.Equal(t, "12,3%", Percent(12.34))
	assert.Equal(t, "N/A", Percent(math.Inf(-1)))
}

func TestDate(t *testing.T) {
	assert.Equal(t, "N/A", Date(time.Time{}))
	assert.Equal(t, "09/08/2025", Date(time.Date(2025, 8, 9, 15, 4, 5, 0, time.UTC)))
}

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "N/A"},
		{"  ", "N/A"},
		{"09/08/2025", "09/08/2025"},
		{"2025-08-09", "09/08/2025"},
		{"amanhã", "amanhã"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeDate(tc.in), "NormalizeDate(%q)", tc.in)
	}
}
