package model

import "time"

// PortfolioSnapshot is one persisted valuation record for a single calendar
// date. The snapshot date is unique; repeated snapshot creation for the same
// day overwrites the existing row instead of inserting a duplicate, which is
// what keeps history and trend queries consistent.
type PortfolioSnapshot struct {
	ID                string             `json:"id"`
	Date              time.Time          `json:"date"`
	TotalValue        float64            `json:"totalValue"`
	TotalCost         float64            `json:"totalCost"`
	UnrealizedGain    float64            `json:"unrealizedGain"`
	UnrealizedGainPct float64            `json:"unrealizedGainPct"`
	HoldingsCount     int                `json:"holdingsCount"`
	ValueByCountry    map[string]float64 `json:"valueByCountry,omitempty"`
	CreatedAt         time.Time          `json:"createdAt,omitempty"`
	UpdatedAt         time.Time          `json:"updatedAt,omitempty"`
}
