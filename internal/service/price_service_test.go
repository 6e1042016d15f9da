package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/arniesaha/portfolio-tracker/internal/apperrors"
	"github.com/arniesaha/portfolio-tracker/internal/repository"
	"github.com/arniesaha/portfolio-tracker/internal/service"
	"github.com/arniesaha/portfolio-tracker/internal/testutil"
)

// TestPriceService_GetCurrentPrice tests current price resolution.
//
// WHY: Every valuation path goes through the quote lookup. The cache must
// shield the provider from repeated calls, and provider outages must
// degrade to the last known quote instead of failing the caller.
func TestPriceService_GetCurrentPrice(t *testing.T) {
	t.Run("fetches latest close from provider", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		mock := testutil.NewMockMarketClient()
		svc := testutil.NewTestPriceService(t, db, mock)

		// Execute
		price, err := svc.GetCurrentPrice("NVDA", "NASDAQ")

		// Assert
		if err != nil {
			t.Fatalf("GetCurrentPrice() returned unexpected error: %v", err)
		}
		// Default mock data: 5 days, last close 102.25.
		if !floatEquals(price, 102.25) {
			t.Errorf("Expected price 102.25, got %v", price)
		}
		if mock.QueryCount != 1 {
			t.Errorf("Expected 1 provider query, got %d", mock.QueryCount)
		}
	})

	t.Run("serves repeated lookups from cache", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		mock := testutil.NewMockMarketClient()
		svc := testutil.NewTestPriceService(t, db, mock)

		// Execute
		if _, err := svc.GetCurrentPrice("NVDA", "NASDAQ"); err != nil {
			t.Fatalf("first GetCurrentPrice() failed: %v", err)
		}
		if _, err := svc.GetCurrentPrice("NVDA", "NASDAQ"); err != nil {
			t.Fatalf("second GetCurrentPrice() failed: %v", err)
		}

		// Assert
		if mock.QueryCount != 1 {
			t.Errorf("Expected cached second lookup, got %d provider queries", mock.QueryCount)
		}
	})

	t.Run("falls back to stale cache when provider fails", func(t *testing.T) {
		// Setup: zero TTL makes every cached entry immediately stale.
		db := testutil.SetupTestDB(t)
		mock := testutil.NewMockMarketClient()
		svc := service.NewPriceService(
			repository.NewPriceRepository(db),
			repository.NewHoldingRepository(db),
			mock,
			service.NewPriceCache(0),
			zerolog.Nop(),
		)

		if _, err := svc.GetCurrentPrice("NVDA", "NASDAQ"); err != nil {
			t.Fatalf("priming GetCurrentPrice() failed: %v", err)
		}
		mock.WithError(errors.New("rate limited"))

		// Execute
		price, err := svc.GetCurrentPrice("NVDA", "NASDAQ")

		// Assert
		if err != nil {
			t.Fatalf("Expected stale cache fallback, got error: %v", err)
		}
		if !floatEquals(price, 102.25) {
			t.Errorf("Expected stale cached price 102.25, got %v", price)
		}
	})

	t.Run("returns ErrPriceNotAvailable when nothing is known", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		mock := testutil.NewMockMarketClient().WithError(errors.New("unreachable"))
		svc := testutil.NewTestPriceService(t, db, mock)

		// Execute
		_, err := svc.GetCurrentPrice("NVDA", "NASDAQ")

		// Assert
		if !errors.Is(err, apperrors.ErrPriceNotAvailable) {
			t.Errorf("Expected ErrPriceNotAvailable, got %v", err)
		}
	})
}

// TestPriceService_GetPriceForDate tests historical price resolution.
//
// WHY: Snapshot accuracy depends on per-date closes. Persisted history
// must win over the provider, non-trading days must resolve to the prior
// close within the staleness bound, and only genuinely missing dates may
// reach the provider.
func TestPriceService_GetPriceForDate(t *testing.T) {
	t.Run("exact persisted close wins without provider calls", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		mock := testutil.NewMockMarketClient()
		svc := testutil.NewTestPriceService(t, db, mock)

		testutil.CreatePrice(t, db, "NVDA", "NASDAQ", "2024-03-15", 111.11)

		// Execute
		price, err := svc.GetPriceForDate("NVDA", "NASDAQ", testutil.Date(t, "2024-03-15"))

		// Assert
		if err != nil {
			t.Fatalf("GetPriceForDate() returned unexpected error: %v", err)
		}
		if !floatEquals(price, 111.11) {
			t.Errorf("Expected price 111.11, got %v", price)
		}
		if mock.QueryCount != 0 {
			t.Errorf("Expected no provider queries, got %d", mock.QueryCount)
		}
	})

	t.Run("weekend resolves to the prior trading day", func(t *testing.T) {
		// Setup: 2024-03-16 is a Saturday, Friday's close is persisted.
		db := testutil.SetupTestDB(t)
		mock := testutil.NewMockMarketClient()
		svc := testutil.NewTestPriceService(t, db, mock)

		testutil.CreatePrice(t, db, "NVDA", "NASDAQ", "2024-03-15", 111.11)

		// Execute
		price, err := svc.GetPriceForDate("NVDA", "NASDAQ", testutil.Date(t, "2024-03-16"))

		// Assert
		if err != nil {
			t.Fatalf("GetPriceForDate() returned unexpected error: %v", err)
		}
		if !floatEquals(price, 111.11) {
			t.Errorf("Expected Friday close 111.11, got %v", price)
		}
		if mock.QueryCount != 0 {
			t.Errorf("Expected no provider queries, got %d", mock.QueryCount)
		}
	})

	t.Run("close older than five days goes to the provider", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		mock := testutil.NewMockMarketClient().WithResponse(
			testutil.CreateMockChartResponseForDates("NVDA", []time.Time{testutil.Date(t, "2024-03-14")}),
		)
		svc := testutil.NewTestPriceService(t, db, mock)

		testutil.CreatePrice(t, db, "NVDA", "NASDAQ", "2024-03-01", 90)

		// Execute
		price, err := svc.GetPriceForDate("NVDA", "NASDAQ", testutil.Date(t, "2024-03-15"))

		// Assert
		if err != nil {
			t.Fatalf("GetPriceForDate() returned unexpected error: %v", err)
		}
		if !floatEquals(price, 100.25) {
			t.Errorf("Expected provider close 100.25, got %v", price)
		}
		if mock.QueryCount != 1 {
			t.Errorf("Expected 1 provider query, got %d", mock.QueryCount)
		}
	})

	t.Run("provider failure surfaces ErrPriceNotAvailable", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		mock := testutil.NewMockMarketClient().WithError(errors.New("unreachable"))
		svc := testutil.NewTestPriceService(t, db, mock)

		// Execute
		_, err := svc.GetPriceForDate("NVDA", "NASDAQ", testutil.Date(t, "2024-03-15"))

		// Assert
		if !errors.Is(err, apperrors.ErrPriceNotAvailable) {
			t.Errorf("Expected ErrPriceNotAvailable, got %v", err)
		}
	})
}

// TestPriceService_BackfillHistoricalPrices tests the bulk price fetch.
//
// WHY: Snapshot backfills depend on a populated price table. The fetch
// must persist each close exactly once so re-runs stay idempotent, and a
// single failing symbol must not sink the batch.
func TestPriceService_BackfillHistoricalPrices(t *testing.T) {
	t.Run("persists provider closes once", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		mock := testutil.NewMockMarketClient().WithResponse(
			testutil.CreateMockChartResponseForDates("NVDA", []time.Time{
				testutil.Date(t, "2024-03-11"),
				testutil.Date(t, "2024-03-12"),
				testutil.Date(t, "2024-03-13"),
			}),
		)
		svc := testutil.NewTestPriceService(t, db, mock)
		testutil.NewHolding().WithSymbol("NVDA").Build(t, db)

		// Execute
		inserted, err := svc.BackfillHistoricalPrices(context.Background(),
			testutil.Date(t, "2024-03-11"), testutil.Date(t, "2024-03-13"))

		// Assert
		if err != nil {
			t.Fatalf("BackfillHistoricalPrices() returned unexpected error: %v", err)
		}
		if inserted != 3 {
			t.Errorf("Expected 3 inserted rows, got %d", inserted)
		}

		// Re-running inserts nothing new.
		inserted, err = svc.BackfillHistoricalPrices(context.Background(),
			testutil.Date(t, "2024-03-11"), testutil.Date(t, "2024-03-13"))
		if err != nil {
			t.Fatalf("second BackfillHistoricalPrices() failed: %v", err)
		}
		if inserted != 0 {
			t.Errorf("Expected idempotent re-run, got %d inserted rows", inserted)
		}
	})

	t.Run("failing provider skips the symbol without error", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		mock := testutil.NewMockMarketClient().WithError(errors.New("unreachable"))
		svc := testutil.NewTestPriceService(t, db, mock)
		testutil.NewHolding().WithSymbol("NVDA").Build(t, db)

		// Execute
		inserted, err := svc.BackfillHistoricalPrices(context.Background(),
			testutil.Date(t, "2024-03-11"), testutil.Date(t, "2024-03-13"))

		// Assert
		if err != nil {
			t.Fatalf("Expected skip, got error: %v", err)
		}
		if inserted != 0 {
			t.Errorf("Expected 0 inserted rows, got %d", inserted)
		}
	})

	t.Run("rejects inverted ranges", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPriceService(t, db, testutil.NewMockMarketClient())

		// Execute
		_, err := svc.BackfillHistoricalPrices(context.Background(),
			testutil.Date(t, "2024-03-13"), testutil.Date(t, "2024-03-11"))

		// Assert
		if !errors.Is(err, apperrors.ErrInvalidDateRange) {
			t.Errorf("Expected ErrInvalidDateRange, got %v", err)
		}
	})
}
