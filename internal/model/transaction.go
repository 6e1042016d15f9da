package model

import "time"

// Transaction types.
const (
	TransactionBuy  = "BUY"
	TransactionSell = "SELL"
)

// Transaction represents an immutable economic event against a holding.
// Seq is the insertion order assigned by the store; it breaks ties between
// transactions recorded on the same date when replaying history.
type Transaction struct {
	ID            string    `json:"id"`
	HoldingID     string    `json:"holdingId"`
	Symbol        string    `json:"symbol"`
	Type          string    `json:"type"`
	Quantity      float64   `json:"quantity"`
	PricePerShare float64   `json:"pricePerShare"`
	Fees          float64   `json:"fees"`
	Date          time.Time `json:"date"`
	Seq           int64     `json:"-"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
}
