package models

import "github.com/shopspring/decimal"

// TradeScenario is the input to the profit calculator. It is never persisted
// on its own; derived metrics are always recomputed from these fields.
type TradeScenario struct {
	Program      string          `json:"program"`
	Investment   decimal.Decimal `json:"investment"`
	BasePoints   int64           `json:"base_points"`
	BonusPercent decimal.Decimal `json:"bonus_percent"`
	SalePrice    decimal.Decimal `json:"sale_price"`
}

// Metrics are the values derived from a TradeScenario.
// CPM is zero when TotalPoints is zero and ROI is zero when Investment is zero.
type Metrics struct {
	TotalPoints decimal.Decimal `json:"total_points"`
	CPM         decimal.Decimal `json:"cpm"`
	Revenue     decimal.Decimal `json:"revenue"`
	Profit      decimal.Decimal `json:"profit"`
	ROI         decimal.Decimal `json:"roi"`
}

// Simulation pairs a scenario with its computed metrics.
type Simulation struct {
	Scenario           TradeScenario `json:"scenario"`
	Metrics            Metrics       `json:"metrics"`
	SuggestedSalePrice float64       `json:"suggested_sale_price"`
}

// Decimal amounts are encoded as JSON numbers rather than strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}
