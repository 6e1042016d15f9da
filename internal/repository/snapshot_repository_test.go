package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arniesaha/portfolio-tracker/internal/apperrors"
	"github.com/arniesaha/portfolio-tracker/internal/model"
	"github.com/arniesaha/portfolio-tracker/internal/repository"
	"github.com/arniesaha/portfolio-tracker/internal/testutil"
)

func snapshotOn(date time.Time, totalValue float64) *model.PortfolioSnapshot {
	return &model.PortfolioSnapshot{
		ID:             testutil.MakeID(),
		Date:           date,
		TotalValue:     totalValue,
		TotalCost:      totalValue * 0.8,
		UnrealizedGain: totalValue * 0.2,
		HoldingsCount:  2,
		ValueByCountry: map[string]float64{"Canada": totalValue},
	}
}

// TestSnapshotRepository_Upsert tests the unique-date write path.
//
// WHY: Snapshot idempotence rests entirely on the date-keyed upsert. A
// second write for the same date must update the existing row in place,
// keeping its original ID, or trend queries double-count.
func TestSnapshotRepository_Upsert(t *testing.T) {
	t.Run("same date updates in place keeping the original ID", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewSnapshotRepository(db)
		date := testutil.Date(t, "2024-03-04")

		first := snapshotOn(date, 1000)
		if err := repo.Upsert(context.Background(), first); err != nil {
			t.Fatalf("first Upsert() failed: %v", err)
		}

		// Execute
		second := snapshotOn(date, 2000)
		if err := repo.Upsert(context.Background(), second); err != nil {
			t.Fatalf("second Upsert() failed: %v", err)
		}

		// Assert
		stored, err := repo.GetByDate(date)
		if err != nil {
			t.Fatalf("GetByDate() failed: %v", err)
		}
		if stored.ID != first.ID {
			t.Errorf("Expected original row ID %s kept, got %s", first.ID, stored.ID)
		}
		if stored.TotalValue != 2000 {
			t.Errorf("Expected updated value 2000, got %v", stored.TotalValue)
		}

		count, err := repo.Count(date.AddDate(0, 0, -1), date.AddDate(0, 0, 1))
		if err != nil {
			t.Fatalf("Count() failed: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected 1 row, got %d", count)
		}
	})

	t.Run("round-trips the country value map", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewSnapshotRepository(db)
		date := testutil.Date(t, "2024-03-04")

		// Execute
		if err := repo.Upsert(context.Background(), snapshotOn(date, 1500)); err != nil {
			t.Fatalf("Upsert() failed: %v", err)
		}

		// Assert
		stored, err := repo.GetByDate(date)
		if err != nil {
			t.Fatalf("GetByDate() failed: %v", err)
		}
		if stored.ValueByCountry["Canada"] != 1500 {
			t.Errorf("Expected Canada value 1500, got %v", stored.ValueByCountry["Canada"])
		}
	})
}

// TestSnapshotRepository_Queries tests the read paths.
//
// WHY: GetLatestBefore must be strictly earlier than the reference date
// or day-over-day change compares a snapshot against itself.
func TestSnapshotRepository_Queries(t *testing.T) {
	t.Run("GetLatestBefore excludes the reference date", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewSnapshotRepository(db)

		for _, d := range []string{"2024-03-04", "2024-03-05", "2024-03-06"} {
			if err := repo.Upsert(context.Background(), snapshotOn(testutil.Date(t, d), 1000)); err != nil {
				t.Fatalf("Upsert() failed: %v", err)
			}
		}

		// Execute
		prev, err := repo.GetLatestBefore(testutil.Date(t, "2024-03-06"))

		// Assert
		if err != nil {
			t.Fatalf("GetLatestBefore() failed: %v", err)
		}
		if !prev.Date.Equal(testutil.Date(t, "2024-03-05")) {
			t.Errorf("Expected 2024-03-05, got %s", prev.Date.Format("2006-01-02"))
		}
	})

	t.Run("missing date returns ErrSnapshotNotFound", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewSnapshotRepository(db)

		// Execute
		_, err := repo.GetByDate(testutil.Date(t, "2024-03-04"))

		// Assert
		if !errors.Is(err, apperrors.ErrSnapshotNotFound) {
			t.Errorf("Expected ErrSnapshotNotFound, got %v", err)
		}
	})

	t.Run("GetRange returns snapshots oldest first", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewSnapshotRepository(db)

		for _, d := range []string{"2024-03-06", "2024-03-04", "2024-03-05"} {
			if err := repo.Upsert(context.Background(), snapshotOn(testutil.Date(t, d), 1000)); err != nil {
				t.Fatalf("Upsert() failed: %v", err)
			}
		}

		// Execute
		snapshots, err := repo.GetRange(testutil.Date(t, "2024-03-01"), testutil.Date(t, "2024-03-31"))

		// Assert
		if err != nil {
			t.Fatalf("GetRange() failed: %v", err)
		}
		if len(snapshots) != 3 {
			t.Fatalf("Expected 3 snapshots, got %d", len(snapshots))
		}
		if !snapshots[0].Date.Equal(testutil.Date(t, "2024-03-04")) {
			t.Errorf("Expected oldest first, got %s", snapshots[0].Date.Format("2006-01-02"))
		}
	})
}
