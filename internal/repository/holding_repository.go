package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arniesaha/portfolio-tracker/internal/apperrors"
	"github.com/arniesaha/portfolio-tracker/internal/model"
)

// HoldingRepository provides data access methods for the holding table.
type HoldingRepository struct {
	db *sql.DB
}

// NewHoldingRepository creates a new HoldingRepository with the provided database connection.
func NewHoldingRepository(db *sql.DB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

const holdingColumns = `id, symbol, company_name, exchange, country, quantity,
	avg_purchase_price, currency, is_active, created_at, updated_at`

// GetHoldings retrieves holdings, optionally restricted to active positions.
// Results are ordered by symbol.
func (r *HoldingRepository) GetHoldings(activeOnly bool) ([]model.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holding`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY symbol ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding table: %w", err)
	}
	defer rows.Close()

	holdings := []model.Holding{}
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding table: %w", err)
	}

	return holdings, nil
}

// GetHolding retrieves a single holding by ID.
// Returns apperrors.ErrHoldingNotFound if no row exists.
func (r *HoldingRepository) GetHolding(id string) (model.Holding, error) {
	row := r.db.QueryRow(`SELECT `+holdingColumns+` FROM holding WHERE id = ?`, id)

	h, err := scanHolding(row)
	if err == sql.ErrNoRows {
		return model.Holding{}, apperrors.ErrHoldingNotFound
	}
	if err != nil {
		return model.Holding{}, err
	}
	return h, nil
}

// GetMetadata returns the static currency/country/exchange attributes for
// every holding, keyed by symbol. Used by the snapshot builder, which values
// reconstructed positions by symbol rather than holding ID.
func (r *HoldingRepository) GetMetadata() (map[string]model.HoldingMetadata, error) {
	rows, err := r.db.Query(`SELECT symbol, currency, country, exchange FROM holding`)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding metadata: %w", err)
	}
	defer rows.Close()

	metadata := make(map[string]model.HoldingMetadata)
	for rows.Next() {
		var symbol string
		var m model.HoldingMetadata
		if err := rows.Scan(&symbol, &m.Currency, &m.Country, &m.Exchange); err != nil {
			return nil, fmt.Errorf("failed to scan holding metadata: %w", err)
		}
		metadata[symbol] = m
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding metadata: %w", err)
	}

	return metadata, nil
}

// InsertHolding creates a new holding row.
func (r *HoldingRepository) InsertHolding(ctx context.Context, h *model.Holding) error {
	query := `
		INSERT INTO holding (id, symbol, company_name, exchange, country, quantity,
			avg_purchase_price, currency, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		h.ID, h.Symbol, h.CompanyName, h.Exchange, h.Country,
		h.Quantity, h.AvgPurchasePrice, h.Currency, h.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to insert holding: %w", err)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanHolding(s scanner) (model.Holding, error) {
	var h model.Holding
	var companyName sql.NullString
	var createdAtStr, updatedAtStr string

	err := s.Scan(
		&h.ID,
		&h.Symbol,
		&companyName,
		&h.Exchange,
		&h.Country,
		&h.Quantity,
		&h.AvgPurchasePrice,
		&h.Currency,
		&h.IsActive,
		&createdAtStr,
		&updatedAtStr,
	)
	if err == sql.ErrNoRows {
		return model.Holding{}, err
	}
	if err != nil {
		return model.Holding{}, fmt.Errorf("failed to scan holding table results: %w", err)
	}

	if companyName.Valid {
		h.CompanyName = companyName.String
	}

	h.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Holding{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	h.UpdatedAt, err = ParseTime(updatedAtStr)
	if err != nil {
		return model.Holding{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return h, nil
}
