package models

// AdvisoryRequest is everything the advisory service sees about a trade.
type AdvisoryRequest struct {
	Scenario  TradeScenario     `json:"scenario"`
	Metrics   Metrics           `json:"metrics"`
	Market    Quotes            `json:"market"`
	Portfolio *PortfolioSummary `json:"portfolio,omitempty"`
}

// AdvisoryResponse carries the generated narrative. Text is opaque display
// content and must not be parsed.
type AdvisoryResponse struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}
