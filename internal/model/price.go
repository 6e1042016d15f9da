package model

import "time"

// PriceHistory represents one observed daily close for an instrument.
// Rows are unique per (symbol, exchange, date) and append-only.
type PriceHistory struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Exchange  string    `json:"exchange"`
	Date      time.Time `json:"date"`
	Open      float64   `json:"open,omitempty"`
	High      float64   `json:"high,omitempty"`
	Low       float64   `json:"low,omitempty"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// ExchangeRate represents a currency conversion rate for a specific date.
// Rows are unique per (from, to, date).
type ExchangeRate struct {
	ID           string    `json:"id"`
	FromCurrency string    `json:"fromCurrency"`
	ToCurrency   string    `json:"toCurrency"`
	Rate         float64   `json:"rate"`
	Date         time.Time `json:"date"`
}
