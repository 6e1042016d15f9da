package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/arniesaha/portfolio-tracker/internal/apperrors"
	"github.com/arniesaha/portfolio-tracker/internal/model"
)

// PriceRepository provides data access methods for the price_history table,
// the persisted append-only cache of observed daily closes.
type PriceRepository struct {
	db *sql.DB
}

// NewPriceRepository creates a new PriceRepository with the provided database connection.
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// GetClose retrieves the persisted close for an exact (symbol, exchange, date).
// Returns apperrors.ErrPriceNotAvailable when no row exists.
func (r *PriceRepository) GetClose(symbol, exchange string, date time.Time) (float64, error) {
	var close float64
	err := r.db.QueryRow(`
		SELECT close FROM price_history
		WHERE symbol = ? AND exchange = ? AND date = ?
	`, symbol, exchange, DateString(date)).Scan(&close)

	if err == sql.ErrNoRows {
		return 0, apperrors.ErrPriceNotAvailable
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query price_history: %w", err)
	}

	return close, nil
}

// GetClosestCloseOnOrBefore retrieves the persisted close with the latest
// date on or before the target date, along with that date. Returns
// apperrors.ErrPriceNotAvailable when no such row exists; the caller decides
// how far back is acceptable.
func (r *PriceRepository) GetClosestCloseOnOrBefore(symbol, exchange string, date time.Time) (float64, time.Time, error) {
	var close float64
	var dateStr string
	err := r.db.QueryRow(`
		SELECT close, date FROM price_history
		WHERE symbol = ? AND exchange = ? AND date <= ?
		ORDER BY date DESC
		LIMIT 1
	`, symbol, exchange, DateString(date)).Scan(&close, &dateStr)

	if err == sql.ErrNoRows {
		return 0, time.Time{}, apperrors.ErrPriceNotAvailable
	}
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to query price_history: %w", err)
	}

	priceDate, err := ParseTime(dateStr)
	if err != nil {
		return 0, time.Time{}, err
	}

	return close, priceDate, nil
}

// GetCloseSeries retrieves all persisted closes for a (symbol, exchange)
// within the date range, keyed by date string. This is the bulk price table
// the snapshot backfill driver walks.
func (r *PriceRepository) GetCloseSeries(symbol, exchange string, startDate, endDate time.Time) (map[string]float64, error) {
	rows, err := r.db.Query(`
		SELECT date, close FROM price_history
		WHERE symbol = ? AND exchange = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, symbol, exchange, DateString(startDate), DateString(endDate))
	if err != nil {
		return nil, fmt.Errorf("failed to query price_history: %w", err)
	}
	defer rows.Close()

	series := make(map[string]float64)
	for rows.Next() {
		var dateStr string
		var close float64
		if err := rows.Scan(&dateStr, &close); err != nil {
			return nil, fmt.Errorf("failed to scan price_history results: %w", err)
		}
		series[dateStr] = close
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price_history: %w", err)
	}

	return series, nil
}

// GetHistory retrieves full persisted price rows for a (symbol, exchange)
// within the date range, ordered by date ascending.
func (r *PriceRepository) GetHistory(symbol, exchange string, startDate, endDate time.Time) ([]model.PriceHistory, error) {
	rows, err := r.db.Query(`
		SELECT id, symbol, exchange, date, open, high, low, close, volume
		FROM price_history
		WHERE symbol = ? AND exchange = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, symbol, exchange, DateString(startDate), DateString(endDate))
	if err != nil {
		return nil, fmt.Errorf("failed to query price_history: %w", err)
	}
	defer rows.Close()

	history := []model.PriceHistory{}
	for rows.Next() {
		var p model.PriceHistory
		var dateStr string
		var open, high, low sql.NullFloat64
		var volume sql.NullInt64

		err := rows.Scan(&p.ID, &p.Symbol, &p.Exchange, &dateStr, &open, &high, &low, &p.Close, &volume)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price_history results: %w", err)
		}

		p.Date, err = ParseTime(dateStr)
		if err != nil {
			return nil, err
		}
		p.Open = open.Float64
		p.High = high.Float64
		p.Low = low.Float64
		p.Volume = volume.Int64

		history = append(history, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price_history: %w", err)
	}

	return history, nil
}

// InsertIfAbsent appends a price row unless one already exists for its
// (symbol, exchange, date). Returns true when a row was inserted. The unique
// constraint makes concurrent backfills safe: the loser of a race simply
// inserts nothing.
func (r *PriceRepository) InsertIfAbsent(ctx context.Context, p model.PriceHistory) (bool, error) {
	query := `
		INSERT INTO price_history (id, symbol, exchange, date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol, exchange, date) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.Symbol, p.Exchange, DateString(p.Date),
		p.Open, p.High, p.Low, p.Close, p.Volume,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert price_history row: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}
