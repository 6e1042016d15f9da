package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/arniesaha/portfolio-tracker/internal/apperrors"
	"github.com/arniesaha/portfolio-tracker/internal/model"
)

// RateRepository provides data access methods for the exchange_rate table.
type RateRepository struct {
	db *sql.DB
}

// NewRateRepository creates a new RateRepository with the provided database connection.
func NewRateRepository(db *sql.DB) *RateRepository {
	return &RateRepository{db: db}
}

// GetRate retrieves the persisted rate for an exact (from, to, date).
// Returns apperrors.ErrExchangeRateNotFound when no row exists.
func (r *RateRepository) GetRate(from, to string, date time.Time) (float64, error) {
	var rate float64
	err := r.db.QueryRow(`
		SELECT rate FROM exchange_rate
		WHERE from_currency = ? AND to_currency = ? AND date = ?
	`, from, to, DateString(date)).Scan(&rate)

	if err == sql.ErrNoRows {
		return 0, apperrors.ErrExchangeRateNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query exchange_rate: %w", err)
	}

	return rate, nil
}

// GetNearestRate retrieves the persisted rate whose date is closest to the
// target date, preferring the exact date, then the most recent date before
// it, then the earliest date after. Returns apperrors.ErrExchangeRateNotFound
// when no rate exists for the pair at all.
func (r *RateRepository) GetNearestRate(from, to string, date time.Time) (float64, error) {
	if rate, err := r.GetRate(from, to, date); err == nil {
		return rate, nil
	}

	var rate float64
	err := r.db.QueryRow(`
		SELECT rate FROM exchange_rate
		WHERE from_currency = ? AND to_currency = ? AND date < ?
		ORDER BY date DESC
		LIMIT 1
	`, from, to, DateString(date)).Scan(&rate)
	if err == nil {
		return rate, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to query exchange_rate: %w", err)
	}

	err = r.db.QueryRow(`
		SELECT rate FROM exchange_rate
		WHERE from_currency = ? AND to_currency = ? AND date > ?
		ORDER BY date ASC
		LIMIT 1
	`, from, to, DateString(date)).Scan(&rate)
	if err == sql.ErrNoRows {
		return 0, apperrors.ErrExchangeRateNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query exchange_rate: %w", err)
	}

	return rate, nil
}

// InsertIfAbsent stores a rate unless one already exists for its
// (from, to, date). Returns true when a row was inserted.
func (r *RateRepository) InsertIfAbsent(ctx context.Context, rate model.ExchangeRate) (bool, error) {
	query := `
		INSERT INTO exchange_rate (id, from_currency, to_currency, rate, date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (from_currency, to_currency, date) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query,
		rate.ID, rate.FromCurrency, rate.ToCurrency, rate.Rate, DateString(rate.Date),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert exchange_rate row: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}
