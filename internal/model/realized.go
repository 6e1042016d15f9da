package model

import "time"

// RealizedSale is the outcome of matching one SELL transaction against the
// FIFO lot queue. Amounts are in the holding's trading currency; the report
// aggregates convert them to the base currency.
//
// UnmatchedQuantity is non-zero when the sale consumed more shares than the
// open lots could supply (typically missing historical BUY records). The cost
// basis then covers only the matched portion.
type RealizedSale struct {
	TransactionID     string    `json:"transactionId"`
	HoldingID         string    `json:"holdingId"`
	Symbol            string    `json:"symbol"`
	Date              time.Time `json:"date"`
	Quantity          float64   `json:"quantity"`
	Proceeds          float64   `json:"proceeds"`
	CostBasis         float64   `json:"costBasis"`
	AvgCostPerShare   float64   `json:"avgCostPerShare"`
	RealizedGain      float64   `json:"realizedGain"`
	UnmatchedQuantity float64   `json:"unmatchedQuantity,omitempty"`
	Currency          string    `json:"currency"`
}

// HoldingRealizedGains aggregates realized results for one holding, in base
// currency.
type HoldingRealizedGains struct {
	HoldingID    string         `json:"holdingId"`
	Symbol       string         `json:"symbol"`
	RealizedGain float64        `json:"realizedGain"`
	Proceeds     float64        `json:"proceeds"`
	CostBasis    float64        `json:"costBasis"`
	Sales        []RealizedSale `json:"sales"`
}

// YearRealizedGains aggregates realized results for one calendar year, in
// base currency.
type YearRealizedGains struct {
	Year         int     `json:"year"`
	RealizedGain float64 `json:"realizedGain"`
	Proceeds     float64 `json:"proceeds"`
	CostBasis    float64 `json:"costBasis"`
	SaleCount    int     `json:"saleCount"`
}

// RealizedGainsReport is the full FIFO realized gain/loss report across all
// holdings, active and inactive. ByHolding is sorted by gain magnitude
// descending, ByYear by year ascending.
type RealizedGainsReport struct {
	BaseCurrency      string                 `json:"baseCurrency"`
	TotalRealizedGain float64                `json:"totalRealizedGain"`
	TotalProceeds     float64                `json:"totalProceeds"`
	TotalCostBasis    float64                `json:"totalCostBasis"`
	SaleCount         int                    `json:"saleCount"`
	ByHolding         []HoldingRealizedGains `json:"byHolding"`
	ByYear            []YearRealizedGains    `json:"byYear"`
}
