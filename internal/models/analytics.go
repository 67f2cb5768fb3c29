package models

import "github.com/shopspring/decimal"

// AnalyticsSummary is the aggregate shown on the dashboard cards.
type AnalyticsSummary struct {
	TotalParts   int             `json:"total_parts"`
	TotalValue   decimal.Decimal `json:"total_value"`
	LowStock     int             `json:"low_stock"`
	Backorders   int             `json:"backorders"`
	TurnoverRate decimal.Decimal `json:"turnover_rate"`
	AccuracyRate decimal.Decimal `json:"accuracy_rate"`
}

var (
	// UnitValue is the flat per-part valuation used until parts carry prices.
	UnitValue           = decimal.NewFromInt(1000)
	defaultTurnoverRate = decimal.RequireFromString("4.2")
	defaultAccuracyRate = decimal.RequireFromString("98.5")
)

// Summarize computes the analytics summary locally, using the same rules as
// the backend: an item counts as low stock once it reaches its minimum.
func Summarize(inventory []InventoryItem, orders []Order) AnalyticsSummary {
	var s AnalyticsSummary
	for _, item := range inventory {
		s.TotalParts += item.InStock
		if item.InStock <= item.MinRequired {
			s.LowStock++
		}
	}
	s.TotalValue = decimal.NewFromInt(int64(s.TotalParts)).Mul(UnitValue)
	s.Backorders = CountBackorders(orders)
	if s.TotalParts > 0 {
		s.TurnoverRate = defaultTurnoverRate
		s.AccuracyRate = defaultAccuracyRate
	}
	return s
}

// UploadResult is the backend's answer to a file upload.
type UploadResult struct {
	Success bool   `json:"success"`
	Count   int    `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}
