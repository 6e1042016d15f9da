package model

import "time"

// Holding represents a current position in a single instrument.
// Quantity and AvgPurchasePrice are maintained incrementally as transactions
// are recorded; a holding is deactivated, never deleted, when its quantity
// reaches zero so that its transaction history stays queryable.
type Holding struct {
	ID               string    `json:"id"`
	Symbol           string    `json:"symbol"`
	CompanyName      string    `json:"companyName,omitempty"`
	Exchange         string    `json:"exchange"`
	Country          string    `json:"country"`
	Quantity         float64   `json:"quantity"`
	AvgPurchasePrice float64   `json:"avgPurchasePrice"`
	Currency         string    `json:"currency"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt,omitempty"`
	UpdatedAt        time.Time `json:"updatedAt,omitempty"`
}

// HoldingMetadata carries the static per-symbol attributes needed to value a
// position: its trading currency and listing country.
type HoldingMetadata struct {
	Currency string
	Country  string
	Exchange string
}
