package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arniesaha/portfolio-tracker/internal/apperrors"
	"github.com/arniesaha/portfolio-tracker/internal/repository"
	"github.com/arniesaha/portfolio-tracker/internal/testutil"
)

// TestSnapshotService_CreateSnapshot tests single-date snapshot creation.
//
// WHY: Snapshots are the source of history charts and day-over-day change.
// The valuation must come from the reconstructed state and the date's
// price, empty days must not produce zero-value noise rows, and the
// unique date key must make re-runs overwrite instead of duplicate.
func TestSnapshotService_CreateSnapshot(t *testing.T) {
	t.Run("values reconstructed positions at the date's close", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSnapshotService(t, db, testutil.NewMockMarketClient())

		holding := testutil.NewHolding().WithSymbol("XEQT").WithExchange("TSX").WithCurrency("CAD").WithCountry("Canada").Build(t, db)
		testutil.NewTransaction(holding.ID, "XEQT").Buy(10, 100).OnDate("2024-01-02").Build(t, db)
		testutil.CreatePrice(t, db, "XEQT", "TSX", "2024-02-01", 150)

		// Execute
		snapshot, err := svc.CreateSnapshot(context.Background(), testutil.Date(t, "2024-02-01"))

		// Assert
		if err != nil {
			t.Fatalf("CreateSnapshot() returned unexpected error: %v", err)
		}
		if snapshot == nil {
			t.Fatal("Expected a snapshot, got nil")
		}
		if !floatEquals(snapshot.TotalValue, 1500) {
			t.Errorf("Expected total value 1500, got %v", snapshot.TotalValue)
		}
		if !floatEquals(snapshot.TotalCost, 1000) {
			t.Errorf("Expected total cost 1000, got %v", snapshot.TotalCost)
		}
		if !floatEquals(snapshot.UnrealizedGainPct, 50) {
			t.Errorf("Expected gain pct 50, got %v", snapshot.UnrealizedGainPct)
		}
		if snapshot.HoldingsCount != 1 {
			t.Errorf("Expected 1 holding, got %d", snapshot.HoldingsCount)
		}
		if !floatEquals(snapshot.ValueByCountry["Canada"], 1500) {
			t.Errorf("Expected Canada value 1500, got %v", snapshot.ValueByCountry["Canada"])
		}
	})

	t.Run("foreign holdings convert at the date's rate", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSnapshotService(t, db, testutil.NewMockMarketClient())

		holding := testutil.NewHolding().WithSymbol("NVDA").WithCurrency("USD").Build(t, db)
		testutil.NewTransaction(holding.ID, "NVDA").Buy(10, 100).OnDate("2024-01-02").Build(t, db)
		testutil.CreatePrice(t, db, "NVDA", "NASDAQ", "2024-02-01", 150)
		testutil.CreateRate(t, db, "USD", "CAD", "2024-02-01", 1.35)

		// Execute
		snapshot, err := svc.CreateSnapshot(context.Background(), testutil.Date(t, "2024-02-01"))

		// Assert
		if err != nil {
			t.Fatalf("CreateSnapshot() returned unexpected error: %v", err)
		}
		if !floatEquals(snapshot.TotalValue, 1500*1.35) {
			t.Errorf("Expected total value 2025, got %v", snapshot.TotalValue)
		}
	})

	t.Run("empty portfolio yields no snapshot", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSnapshotService(t, db, testutil.NewMockMarketClient())

		// Execute
		snapshot, err := svc.CreateSnapshot(context.Background(), testutil.Date(t, "2024-02-01"))

		// Assert
		if err != nil {
			t.Fatalf("CreateSnapshot() returned unexpected error: %v", err)
		}
		if snapshot != nil {
			t.Errorf("Expected nil snapshot for empty portfolio, got %+v", snapshot)
		}
	})

	t.Run("re-running a date overwrites instead of duplicating", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSnapshotService(t, db, testutil.NewMockMarketClient())
		snapshotRepo := repository.NewSnapshotRepository(db)

		holding := testutil.NewHolding().WithSymbol("XEQT").WithExchange("TSX").WithCurrency("CAD").Build(t, db)
		testutil.NewTransaction(holding.ID, "XEQT").Buy(10, 100).OnDate("2024-01-02").Build(t, db)
		testutil.CreatePrice(t, db, "XEQT", "TSX", "2024-02-01", 150)

		// Execute
		if _, err := svc.CreateSnapshot(context.Background(), testutil.Date(t, "2024-02-01")); err != nil {
			t.Fatalf("first CreateSnapshot() failed: %v", err)
		}

		// The position doubles, then the same date is snapshotted again.
		testutil.NewTransaction(holding.ID, "XEQT").Buy(10, 100).OnDate("2024-01-20").Build(t, db)
		if _, err := svc.CreateSnapshot(context.Background(), testutil.Date(t, "2024-02-01")); err != nil {
			t.Fatalf("second CreateSnapshot() failed: %v", err)
		}

		// Assert
		count, err := snapshotRepo.Count(testutil.Date(t, "2024-01-01"), testutil.Date(t, "2024-12-31"))
		if err != nil {
			t.Fatalf("Count() failed: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected 1 snapshot row, got %d", count)
		}

		stored, err := snapshotRepo.GetByDate(testutil.Date(t, "2024-02-01"))
		if err != nil {
			t.Fatalf("GetByDate() failed: %v", err)
		}
		if !floatEquals(stored.TotalValue, 3000) {
			t.Errorf("Expected overwritten value 3000, got %v", stored.TotalValue)
		}
	})
}

// TestSnapshotService_BackfillSnapshots tests bulk historical snapshots.
//
// WHY: Rebuilding months of history is the recovery path after importing
// transactions. It must skip weekends, reach back over non-trading days
// for prices, apply the fixed USD rate, and stay idempotent.
func TestSnapshotService_BackfillSnapshots(t *testing.T) {
	weekdays := func(t *testing.T) []time.Time {
		t.Helper()
		// Monday 2024-03-04 through Friday 2024-03-08.
		return []time.Time{
			testutil.Date(t, "2024-03-04"),
			testutil.Date(t, "2024-03-05"),
			testutil.Date(t, "2024-03-06"),
			testutil.Date(t, "2024-03-07"),
			testutil.Date(t, "2024-03-08"),
		}
	}

	t.Run("writes one snapshot per weekday", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		mock := testutil.NewMockMarketClient().WithResponse(
			testutil.CreateMockChartResponseForDates("XEQT", weekdays(t)),
		)
		svc := testutil.NewTestSnapshotService(t, db, mock)
		snapshotRepo := repository.NewSnapshotRepository(db)

		holding := testutil.NewHolding().WithSymbol("XEQT").WithExchange("TSX").WithCurrency("CAD").Build(t, db)
		testutil.NewTransaction(holding.ID, "XEQT").Buy(10, 100).OnDate("2024-03-04").Build(t, db)

		// Execute: Monday through Sunday.
		written, err := svc.BackfillSnapshots(context.Background(),
			testutil.Date(t, "2024-03-04"), testutil.Date(t, "2024-03-10"))

		// Assert
		if err != nil {
			t.Fatalf("BackfillSnapshots() returned unexpected error: %v", err)
		}
		if written != 5 {
			t.Errorf("Expected 5 snapshots, got %d", written)
		}

		// Monday's close from the provider pass is 100.25.
		monday, err := snapshotRepo.GetByDate(testutil.Date(t, "2024-03-04"))
		if err != nil {
			t.Fatalf("GetByDate() failed: %v", err)
		}
		if !floatEquals(monday.TotalValue, 1002.5) {
			t.Errorf("Expected Monday value 1002.5, got %v", monday.TotalValue)
		}

		// Weekend dates were skipped.
		if _, err := snapshotRepo.GetByDate(testutil.Date(t, "2024-03-09")); err == nil {
			t.Error("Expected no snapshot on Saturday")
		}
	})

	t.Run("re-running the range keeps one row per date", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		mock := testutil.NewMockMarketClient().WithResponse(
			testutil.CreateMockChartResponseForDates("XEQT", weekdays(t)),
		)
		svc := testutil.NewTestSnapshotService(t, db, mock)
		snapshotRepo := repository.NewSnapshotRepository(db)

		holding := testutil.NewHolding().WithSymbol("XEQT").WithExchange("TSX").WithCurrency("CAD").Build(t, db)
		testutil.NewTransaction(holding.ID, "XEQT").Buy(10, 100).OnDate("2024-03-04").Build(t, db)

		// Execute
		for i := 0; i < 2; i++ {
			if _, err := svc.BackfillSnapshots(context.Background(),
				testutil.Date(t, "2024-03-04"), testutil.Date(t, "2024-03-10")); err != nil {
				t.Fatalf("BackfillSnapshots() run %d failed: %v", i+1, err)
			}
		}

		// Assert
		count, err := snapshotRepo.Count(testutil.Date(t, "2024-03-01"), testutil.Date(t, "2024-03-31"))
		if err != nil {
			t.Fatalf("Count() failed: %v", err)
		}
		if count != 5 {
			t.Errorf("Expected 5 snapshot rows after re-run, got %d", count)
		}
	})

	t.Run("USD positions use the fixed backfill rate", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		mock := testutil.NewMockMarketClient().WithResponse(
			testutil.CreateMockChartResponseForDates("NVDA", weekdays(t)),
		)
		svc := testutil.NewTestSnapshotService(t, db, mock)
		snapshotRepo := repository.NewSnapshotRepository(db)

		holding := testutil.NewHolding().WithSymbol("NVDA").WithCurrency("USD").Build(t, db)
		testutil.NewTransaction(holding.ID, "NVDA").Buy(10, 100).OnDate("2024-03-04").Build(t, db)

		// Execute
		if _, err := svc.BackfillSnapshots(context.Background(),
			testutil.Date(t, "2024-03-04"), testutil.Date(t, "2024-03-04")); err != nil {
			t.Fatalf("BackfillSnapshots() failed: %v", err)
		}

		// Assert
		monday, err := snapshotRepo.GetByDate(testutil.Date(t, "2024-03-04"))
		if err != nil {
			t.Fatalf("GetByDate() failed: %v", err)
		}
		if !floatEquals(monday.TotalValue, 1002.5*1.38) {
			t.Errorf("Expected USD value at fixed rate %v, got %v", 1002.5*1.38, monday.TotalValue)
		}
	})

	t.Run("no transactions writes nothing", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSnapshotService(t, db, testutil.NewMockMarketClient())

		// Execute
		written, err := svc.BackfillSnapshots(context.Background(),
			testutil.Date(t, "2024-03-04"), testutil.Date(t, "2024-03-10"))

		// Assert
		if err != nil {
			t.Fatalf("BackfillSnapshots() returned unexpected error: %v", err)
		}
		if written != 0 {
			t.Errorf("Expected 0 snapshots, got %d", written)
		}
	})

	t.Run("zero start defaults to the first transaction", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		mock := testutil.NewMockMarketClient().WithResponse(
			testutil.CreateMockChartResponseForDates("XEQT", weekdays(t)),
		)
		svc := testutil.NewTestSnapshotService(t, db, mock)
		snapshotRepo := repository.NewSnapshotRepository(db)

		holding := testutil.NewHolding().WithSymbol("XEQT").WithExchange("TSX").WithCurrency("CAD").Build(t, db)
		// First transaction on Wednesday; Monday and Tuesday must not
		// produce snapshots.
		testutil.NewTransaction(holding.ID, "XEQT").Buy(10, 100).OnDate("2024-03-06").Build(t, db)

		// Execute
		written, err := svc.BackfillSnapshots(context.Background(),
			time.Time{}, testutil.Date(t, "2024-03-08"))

		// Assert
		if err != nil {
			t.Fatalf("BackfillSnapshots() returned unexpected error: %v", err)
		}
		if written != 3 {
			t.Errorf("Expected 3 snapshots (Wednesday through Friday), got %d", written)
		}
		if _, err := snapshotRepo.GetByDate(testutil.Date(t, "2024-03-04")); !errors.Is(err, apperrors.ErrSnapshotNotFound) {
			t.Errorf("Expected no snapshot before the first transaction, got %v", err)
		}
	})
}

// TestSnapshotService_ChangeFromPrevious tests day-over-day change.
//
// WHY: The summary's "today change" compares against the latest snapshot
// strictly before the reference date; comparing against the same-day
// snapshot would always read zero.
func TestSnapshotService_ChangeFromPrevious(t *testing.T) {
	t.Run("compares against latest earlier snapshot", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		mock := testutil.NewMockMarketClient().WithResponse(
			testutil.CreateMockChartResponseForDates("XEQT", []time.Time{testutil.Date(t, "2024-03-04")}),
		)
		svc := testutil.NewTestSnapshotService(t, db, mock)

		holding := testutil.NewHolding().WithSymbol("XEQT").WithExchange("TSX").WithCurrency("CAD").Build(t, db)
		testutil.NewTransaction(holding.ID, "XEQT").Buy(10, 100).OnDate("2024-03-04").Build(t, db)
		testutil.CreatePrice(t, db, "XEQT", "TSX", "2024-03-04", 100)
		if _, err := svc.CreateSnapshot(context.Background(), testutil.Date(t, "2024-03-04")); err != nil {
			t.Fatalf("CreateSnapshot() failed: %v", err)
		}

		// Execute
		change, pct := svc.ChangeFromPrevious(1100, testutil.Date(t, "2024-03-05"))

		// Assert
		if !floatEquals(change, 100) {
			t.Errorf("Expected change 100, got %v", change)
		}
		if !floatEquals(pct, 10) {
			t.Errorf("Expected change pct 10, got %v", pct)
		}
	})

	t.Run("no earlier snapshot reads zero", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSnapshotService(t, db, testutil.NewMockMarketClient())

		// Execute
		change, pct := svc.ChangeFromPrevious(1100, testutil.Date(t, "2024-03-05"))

		// Assert
		if change != 0 || pct != 0 {
			t.Errorf("Expected zero change, got %v / %v", change, pct)
		}
	})
}
