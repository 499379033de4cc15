package models

import "time"

// Operation is a saved simulation. Rows are append-only: they are created by
// an explicit save and only ever removed, never updated.
type Operation struct {
	ID         int64     `json:"id"`
	RecordedAt time.Time `json:"recorded_at"`
	User       string    `json:"user"`
	Program    string    `json:"program"`
	Investment float64   `json:"investment"`
	Points     int64     `json:"points"`
	SalePrice  float64   `json:"sale_price"`
	Profit     float64   `json:"profit"`
	ROI        float64   `json:"roi"`
}

// PortfolioSummary aggregates a user's operations. It is computed on demand
// from the rows and never stored.
type PortfolioSummary struct {
	User            string  `json:"user"`
	Operations      int     `json:"operations"`
	TotalInvestment float64 `json:"total_investment"`
	TotalPoints     int64   `json:"total_points"`
	TotalProfit     float64 `json:"total_profit"`
	AverageROI      float64 `json:"average_roi"`
}
