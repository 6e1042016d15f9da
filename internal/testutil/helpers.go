package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/arniesaha/portfolio-tracker/internal/config"
	"github.com/arniesaha/portfolio-tracker/internal/repository"
	"github.com/arniesaha/portfolio-tracker/internal/service"
)

// TestPortfolioConfig is the portfolio configuration used by service
// constructors in tests: CAD reporting with the fixed backfill USD rate.
func TestPortfolioConfig() config.PortfolioConfig {
	return config.PortfolioConfig{
		BaseCurrency:    "CAD",
		BackfillUSDRate: 1.38,
	}
}

// NewTestPriceService wires a PriceService against the test database and
// the given mock market client, with a fresh 15-minute cache.
func NewTestPriceService(t *testing.T, db *sql.DB, client service.MarketDataClient) *service.PriceService {
	t.Helper()

	return service.NewPriceService(
		repository.NewPriceRepository(db),
		repository.NewHoldingRepository(db),
		client,
		service.NewPriceCache(15*time.Minute),
		zerolog.Nop(),
	)
}

// NewTestCurrencyService wires a CurrencyService against the test database.
func NewTestCurrencyService(t *testing.T, db *sql.DB) *service.CurrencyService {
	t.Helper()

	return service.NewCurrencyService(repository.NewRateRepository(db), zerolog.Nop())
}

// NewTestRealizedGainService wires a RealizedGainService reporting in CAD.
func NewTestRealizedGainService(t *testing.T, db *sql.DB) *service.RealizedGainService {
	t.Helper()

	return service.NewRealizedGainService(
		repository.NewTransactionRepository(db),
		repository.NewHoldingRepository(db),
		NewTestCurrencyService(t, db),
		"CAD",
		zerolog.Nop(),
	)
}

// NewTestSnapshotService wires a SnapshotService against the test database
// and the given mock market client.
func NewTestSnapshotService(t *testing.T, db *sql.DB, client service.MarketDataClient) *service.SnapshotService {
	t.Helper()

	return service.NewSnapshotService(
		repository.NewSnapshotRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewHoldingRepository(db),
		repository.NewPriceRepository(db),
		NewTestPriceService(t, db, client),
		NewTestCurrencyService(t, db),
		TestPortfolioConfig(),
		zerolog.Nop(),
	)
}

// NewTestHoldingService wires a HoldingService against the test database.
func NewTestHoldingService(t *testing.T, db *sql.DB) *service.HoldingService {
	t.Helper()

	return service.NewHoldingService(repository.NewHoldingRepository(db), zerolog.Nop())
}

// NewTestSystemService wires a SystemService against the test database.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// NewTestTransactionService wires a TransactionService against the test database.
func NewTestTransactionService(t *testing.T, db *sql.DB) *service.TransactionService {
	t.Helper()

	return service.NewTransactionService(
		repository.NewTransactionRepository(db),
		repository.NewHoldingRepository(db),
		zerolog.Nop(),
	)
}

// NewTestPortfolioService wires a PortfolioService reporting in CAD
// against the test database and the given mock market client.
func NewTestPortfolioService(t *testing.T, db *sql.DB, client service.MarketDataClient) *service.PortfolioService {
	t.Helper()

	return service.NewPortfolioService(
		repository.NewHoldingRepository(db),
		NewTestPriceService(t, db, client),
		NewTestCurrencyService(t, db),
		NewTestSnapshotService(t, db, client),
		"CAD",
		zerolog.Nop(),
	)
}

// Date parses a YYYY-MM-DD string into a UTC time, failing the test on
// malformed input.
func Date(t *testing.T, s string) time.Time {
	t.Helper()

	date, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("Invalid test date %q: %v", s, err)
	}
	return date
}
