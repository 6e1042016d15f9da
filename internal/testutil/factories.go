package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/arniesaha/portfolio-tracker/internal/model"
)

// MakeID generates a new UUID string for test entities.
func MakeID() string {
	return uuid.New().String()
}

// HoldingBuilder provides a fluent interface for creating test holdings.
//
// Example usage:
//
//	// Simple creation with defaults
//	holding := testutil.NewHolding().Build(t, db)
//
//	// Customized holding
//	holding := testutil.NewHolding().
//	    WithSymbol("ZRE").
//	    WithExchange("TSX").
//	    WithCurrency("CAD").
//	    Build(t, db)
type HoldingBuilder struct {
	ID               string
	Symbol           string
	CompanyName      string
	Exchange         string
	Country          string
	Quantity         float64
	AvgPurchasePrice float64
	Currency         string
	IsActive         bool
}

// NewHolding creates a HoldingBuilder with sensible defaults.
func NewHolding() *HoldingBuilder {
	return &HoldingBuilder{
		ID:          MakeID(),
		Symbol:      "NVDA",
		CompanyName: "NVIDIA Corporation",
		Exchange:    "NASDAQ",
		Country:     "United States",
		Currency:    "USD",
		IsActive:    true,
	}
}

// WithID sets a custom ID.
func (b *HoldingBuilder) WithID(id string) *HoldingBuilder {
	b.ID = id
	return b
}

// WithSymbol sets a custom symbol.
func (b *HoldingBuilder) WithSymbol(symbol string) *HoldingBuilder {
	b.Symbol = symbol
	return b
}

// WithCompanyName sets a custom company name.
func (b *HoldingBuilder) WithCompanyName(name string) *HoldingBuilder {
	b.CompanyName = name
	return b
}

// WithExchange sets a custom exchange.
func (b *HoldingBuilder) WithExchange(exchange string) *HoldingBuilder {
	b.Exchange = exchange
	return b
}

// WithCountry sets a custom country.
func (b *HoldingBuilder) WithCountry(country string) *HoldingBuilder {
	b.Country = country
	return b
}

// WithPosition sets the running quantity and average purchase price.
func (b *HoldingBuilder) WithPosition(quantity, avgPrice float64) *HoldingBuilder {
	b.Quantity = quantity
	b.AvgPurchasePrice = avgPrice
	return b
}

// WithCurrency sets a custom trading currency.
func (b *HoldingBuilder) WithCurrency(currency string) *HoldingBuilder {
	b.Currency = currency
	return b
}

// Inactive marks the holding as closed out.
func (b *HoldingBuilder) Inactive() *HoldingBuilder {
	b.IsActive = false
	return b
}

// Build creates the holding in the database and returns it.
func (b *HoldingBuilder) Build(t *testing.T, db *sql.DB) model.Holding {
	t.Helper()

	query := `
		INSERT INTO holding (id, symbol, company_name, exchange, country, quantity, avg_purchase_price, currency, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Symbol, b.CompanyName, b.Exchange, b.Country,
		b.Quantity, b.AvgPurchasePrice, b.Currency, b.IsActive)
	if err != nil {
		t.Fatalf("Failed to create test holding: %v", err)
	}

	return model.Holding{
		ID:               b.ID,
		Symbol:           b.Symbol,
		CompanyName:      b.CompanyName,
		Exchange:         b.Exchange,
		Country:          b.Country,
		Quantity:         b.Quantity,
		AvgPurchasePrice: b.AvgPurchasePrice,
		Currency:         b.Currency,
		IsActive:         b.IsActive,
	}
}

// TransactionBuilder provides a fluent interface for creating test transactions.
//
// Example usage:
//
//	testutil.NewTransaction(holding.ID, "NVDA").
//	    Buy(10, 100).
//	    WithFees(5).
//	    OnDate("2024-01-02").
//	    Build(t, db)
type TransactionBuilder struct {
	ID            string
	HoldingID     string
	Symbol        string
	Type          string
	Quantity      float64
	PricePerShare float64
	Fees          float64
	Date          string
}

// NewTransaction creates a TransactionBuilder with sensible defaults.
func NewTransaction(holdingID, symbol string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:            MakeID(),
		HoldingID:     holdingID,
		Symbol:        symbol,
		Type:          model.TransactionBuy,
		Quantity:      10,
		PricePerShare: 100,
		Date:          "2024-01-02",
	}
}

// WithID sets a custom ID.
func (b *TransactionBuilder) WithID(id string) *TransactionBuilder {
	b.ID = id
	return b
}

// Buy makes the transaction a purchase of the given quantity and price.
func (b *TransactionBuilder) Buy(quantity, price float64) *TransactionBuilder {
	b.Type = model.TransactionBuy
	b.Quantity = quantity
	b.PricePerShare = price
	return b
}

// Sell makes the transaction a sale of the given quantity and price.
func (b *TransactionBuilder) Sell(quantity, price float64) *TransactionBuilder {
	b.Type = model.TransactionSell
	b.Quantity = quantity
	b.PricePerShare = price
	return b
}

// WithFees sets the transaction fee.
func (b *TransactionBuilder) WithFees(fees float64) *TransactionBuilder {
	b.Fees = fees
	return b
}

// OnDate sets the transaction date (YYYY-MM-DD).
func (b *TransactionBuilder) OnDate(date string) *TransactionBuilder {
	b.Date = date
	return b
}

// Build creates the transaction in the database and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	query := `
		INSERT INTO "transaction" (id, holding_id, symbol, type, quantity, price_per_share, fees, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.Exec(query, b.ID, b.HoldingID, b.Symbol, b.Type,
		b.Quantity, b.PricePerShare, b.Fees, b.Date)
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}
	seq, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read test transaction rowid: %v", err)
	}

	date, err := time.Parse("2006-01-02", b.Date)
	if err != nil {
		t.Fatalf("Invalid test transaction date %q: %v", b.Date, err)
	}

	return model.Transaction{
		ID:            b.ID,
		HoldingID:     b.HoldingID,
		Symbol:        b.Symbol,
		Type:          b.Type,
		Quantity:      b.Quantity,
		PricePerShare: b.PricePerShare,
		Fees:          b.Fees,
		Date:          date,
		Seq:           seq,
	}
}

// CreatePrice inserts a daily close into the price history table.
func CreatePrice(t *testing.T, db *sql.DB, symbol, exchange, date string, close float64) {
	t.Helper()

	query := `
		INSERT INTO price_history (id, symbol, exchange, date, close)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := db.Exec(query, MakeID(), symbol, exchange, date, close); err != nil {
		t.Fatalf("Failed to create test price: %v", err)
	}
}

// CreateRate inserts an exchange rate row.
func CreateRate(t *testing.T, db *sql.DB, from, to, date string, rate float64) {
	t.Helper()

	query := `
		INSERT INTO exchange_rate (id, from_currency, to_currency, rate, date)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := db.Exec(query, MakeID(), from, to, rate, date); err != nil {
		t.Fatalf("Failed to create test rate: %v", err)
	}
}
