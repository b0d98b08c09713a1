package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// TypeRevenue is the aggregate for one bill type.
type TypeRevenue struct {
	BillType    string          `json:"bill_type"`
	Count       int             `json:"count"`
	Total       decimal.Decimal `json:"total"`
	Collected   decimal.Decimal `json:"collected"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// StatusCount is the number of bills in one payment status.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// DayRevenue is the aggregate for one calendar day.
type DayRevenue struct {
	Day       time.Time       `json:"day"`
	Count     int             `json:"count"`
	Total     decimal.Decimal `json:"total"`
	Collected decimal.Decimal `json:"collected"`
}

// Summary is the revenue roll-up for a date range. All monetary fields are
// zero, not null, when the range holds no bills.
type Summary struct {
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	BillCount   int             `json:"bill_count"`
	Total       decimal.Decimal `json:"total"`
	Collected   decimal.Decimal `json:"collected"`
	Outstanding decimal.Decimal `json:"outstanding"`
	ByType      []TypeRevenue   `json:"by_type"`
	ByStatus    []StatusCount   `json:"by_status"`
	ByDay       []DayRevenue    `json:"by_day"`
}

// emptySummary returns a zero-valued summary so an empty range still
// serializes with numeric zeros and empty slices.
func emptySummary(from, to time.Time) *Summary {
	return &Summary{
		From: from, To: to,
		Total: decimal.Zero, Collected: decimal.Zero, Outstanding: decimal.Zero,
		ByType: []TypeRevenue{}, ByStatus: []StatusCount{}, ByDay: []DayRevenue{},
	}
}
