// Package calculator derives profit metrics from a trade scenario.
// All functions are pure.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/milhas/internal/models"
)

// DefaultSalePrice is suggested when no market quote exists for a program.
var DefaultSalePrice = decimal.NewFromFloat(20.00)

var (
	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1000)
)

// Compute derives total points, cost per thousand, revenue, profit and ROI
// (as a percentage). CPM is zero when there are no points and ROI is zero
// when nothing was invested.
func Compute(s models.TradeScenario) models.Metrics {
	base := decimal.NewFromInt(s.BasePoints)
	totalPoints := base.Mul(decimal.NewFromInt(1).Add(s.BonusPercent.Div(hundred)))
	thousands := totalPoints.Div(thousand)

	revenue := thousands.Mul(s.SalePrice)
	profit := revenue.Sub(s.Investment)

	cpm := decimal.Zero
	if totalPoints.IsPositive() {
		cpm = s.Investment.Div(thousands)
	}

	roi := decimal.Zero
	if s.Investment.IsPositive() {
		roi = profit.Div(s.Investment).Mul(hundred)
	}

	return models.Metrics{
		TotalPoints: totalPoints,
		CPM:         cpm,
		Revenue:     revenue,
		Profit:      profit,
		ROI:         roi,
	}
}

// SuggestSalePrice returns the market quote for the program, or
// DefaultSalePrice when none is known.
func SuggestSalePrice(quotes models.Quotes, program string) decimal.Decimal {
	if p, ok := quotes.Price(program); ok && p > 0 {
		return decimal.NewFromFloat(p)
	}
	return DefaultSalePrice
}
