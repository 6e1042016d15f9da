package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/arniesaha/portfolio-tracker/internal/apperrors"
	"github.com/arniesaha/portfolio-tracker/internal/model"
)

// SnapshotRepository provides data access methods for the portfolio_snapshot
// table. The snapshot_date unique constraint backs the upsert semantics:
// writing a snapshot for an existing date overwrites that row, so concurrent
// writers for the same date converge instead of duplicating.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the provided database connection.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Upsert inserts the snapshot or, when a row for its date already exists,
// overwrites that row's fields in place.
func (r *SnapshotRepository) Upsert(ctx context.Context, s *model.PortfolioSnapshot) error {
	countryJSON, err := json.Marshal(s.ValueByCountry)
	if err != nil {
		return fmt.Errorf("failed to marshal value_by_country: %w", err)
	}

	query := `
		INSERT INTO portfolio_snapshot
			(id, snapshot_date, total_value, total_cost, unrealized_gain,
			 unrealized_gain_pct, holdings_count, value_by_country)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (snapshot_date) DO UPDATE SET
			total_value = excluded.total_value,
			total_cost = excluded.total_cost,
			unrealized_gain = excluded.unrealized_gain,
			unrealized_gain_pct = excluded.unrealized_gain_pct,
			holdings_count = excluded.holdings_count,
			value_by_country = excluded.value_by_country,
			updated_at = datetime('now')
	`
	_, err = r.db.ExecContext(ctx, query,
		s.ID, DateString(s.Date), s.TotalValue, s.TotalCost,
		s.UnrealizedGain, s.UnrealizedGainPct, s.HoldingsCount, string(countryJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert portfolio_snapshot: %w", err)
	}

	return nil
}

const snapshotColumns = `id, snapshot_date, total_value, total_cost,
	unrealized_gain, unrealized_gain_pct, holdings_count, value_by_country`

// GetByDate retrieves the snapshot for an exact date.
// Returns apperrors.ErrSnapshotNotFound when none exists.
func (r *SnapshotRepository) GetByDate(date time.Time) (model.PortfolioSnapshot, error) {
	row := r.db.QueryRow(`
		SELECT `+snapshotColumns+` FROM portfolio_snapshot
		WHERE snapshot_date = ?
	`, DateString(date))

	return scanSnapshot(row)
}

// GetLatestBefore retrieves the most recent snapshot strictly before the
// given date. Returns apperrors.ErrSnapshotNotFound when none exists.
func (r *SnapshotRepository) GetLatestBefore(date time.Time) (model.PortfolioSnapshot, error) {
	row := r.db.QueryRow(`
		SELECT `+snapshotColumns+` FROM portfolio_snapshot
		WHERE snapshot_date < ?
		ORDER BY snapshot_date DESC
		LIMIT 1
	`, DateString(date))

	return scanSnapshot(row)
}

// GetRange retrieves all snapshots within the date range, ordered by date
// ascending.
func (r *SnapshotRepository) GetRange(startDate, endDate time.Time) ([]model.PortfolioSnapshot, error) {
	rows, err := r.db.Query(`
		SELECT `+snapshotColumns+` FROM portfolio_snapshot
		WHERE snapshot_date >= ? AND snapshot_date <= ?
		ORDER BY snapshot_date ASC
	`, DateString(startDate), DateString(endDate))
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio_snapshot: %w", err)
	}
	defer rows.Close()

	snapshots := []model.PortfolioSnapshot{}
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio_snapshot: %w", err)
	}

	return snapshots, nil
}

// Count returns the number of snapshot rows for the date range.
func (r *SnapshotRepository) Count(startDate, endDate time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM portfolio_snapshot
		WHERE snapshot_date >= ? AND snapshot_date <= ?
	`, DateString(startDate), DateString(endDate)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count portfolio_snapshot rows: %w", err)
	}
	return count, nil
}

func scanSnapshot(s scanner) (model.PortfolioSnapshot, error) {
	var snap model.PortfolioSnapshot
	var dateStr string
	var countryJSON sql.NullString

	err := s.Scan(
		&snap.ID,
		&dateStr,
		&snap.TotalValue,
		&snap.TotalCost,
		&snap.UnrealizedGain,
		&snap.UnrealizedGainPct,
		&snap.HoldingsCount,
		&countryJSON,
	)
	if err == sql.ErrNoRows {
		return model.PortfolioSnapshot{}, apperrors.ErrSnapshotNotFound
	}
	if err != nil {
		return model.PortfolioSnapshot{}, fmt.Errorf("failed to scan portfolio_snapshot results: %w", err)
	}

	snap.Date, err = ParseTime(dateStr)
	if err != nil {
		return model.PortfolioSnapshot{}, fmt.Errorf("failed to parse snapshot_date: %w", err)
	}

	if countryJSON.Valid && countryJSON.String != "" {
		if err := json.Unmarshal([]byte(countryJSON.String), &snap.ValueByCountry); err != nil {
			return model.PortfolioSnapshot{}, fmt.Errorf("failed to unmarshal value_by_country: %w", err)
		}
	}

	return snap, nil
}
