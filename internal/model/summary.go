package model

import "time"

// PortfolioSummary is the current-state valuation of all active holdings,
// expressed in the base currency.
type PortfolioSummary struct {
	TotalValue        float64        `json:"totalValue"`
	TotalCost         float64        `json:"totalCost"`
	UnrealizedGain    float64        `json:"unrealizedGain"`
	UnrealizedGainPct float64        `json:"unrealizedGainPct"`
	TodayChange       float64        `json:"todayChange"`
	TodayChangePct    float64        `json:"todayChangePct"`
	HoldingsCount     int            `json:"holdingsCount"`
	Countries         map[string]int `json:"countries"`
	BaseCurrency      string         `json:"baseCurrency"`
	LastUpdated       time.Time      `json:"lastUpdated"`
}

// TopHolding is one entry in the allocation report's largest-positions list.
type TopHolding struct {
	Symbol       string  `json:"symbol"`
	CompanyName  string  `json:"companyName,omitempty"`
	Currency     string  `json:"currency"`
	Quantity     float64 `json:"quantity"`
	CurrentPrice float64 `json:"currentPrice"`
	MarketValue  float64 `json:"marketValue"`
	Percentage   float64 `json:"percentage"`
}

// Allocation breaks the portfolio's market value down by country and
// exchange (as percentages of total value) and lists the largest positions.
type Allocation struct {
	ByCountry   map[string]float64 `json:"byCountry"`
	ByExchange  map[string]float64 `json:"byExchange"`
	TopHoldings []TopHolding       `json:"topHoldings"`
	TotalValue  float64            `json:"totalValue"`
}
