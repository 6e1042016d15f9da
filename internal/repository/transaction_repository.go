package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/arniesaha/portfolio-tracker/internal/apperrors"
	"github.com/arniesaha/portfolio-tracker/internal/model"
)

// TransactionRepository provides data access methods for the transaction table.
//
// The rowid of each row doubles as the insertion-order sequence number
// (model.Transaction.Seq): it breaks ties between transactions recorded on
// the same date when replaying history.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `rowid, id, holding_id, symbol, type, quantity,
	price_per_share, fees, date, created_at`

// GetAllByHolding retrieves every transaction grouped by holding ID, each
// group ordered by (date, insertion order) ascending. This is the input shape
// the realized-gain engine consumes.
func (r *TransactionRepository) GetAllByHolding() (map[string][]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM "transaction"
		ORDER BY date ASC, rowid ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	byHolding := make(map[string][]model.Transaction)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		byHolding[t.HoldingID] = append(byHolding[t.HoldingID], t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return byHolding, nil
}

// GetAllOrdered retrieves every transaction ordered by (date, insertion
// order) ascending, the input shape for portfolio state reconstruction.
func (r *TransactionRepository) GetAllOrdered() ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM "transaction"
		ORDER BY date ASC, rowid ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

// GetByHolding retrieves all transactions for one holding ordered by
// (date, insertion order) ascending.
func (r *TransactionRepository) GetByHolding(holdingID string) ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM "transaction"
		WHERE holding_id = ?
		ORDER BY date ASC, rowid ASC
	`

	rows, err := r.db.Query(query, holdingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

// GetOldestTransactionDate finds the date of the earliest transaction.
// Returns time.Time{} (zero value) if no transactions exist.
func (r *TransactionRepository) GetOldestTransactionDate() time.Time {
	var oldestDateStr sql.NullString

	err := r.db.QueryRow(`SELECT MIN(date) FROM "transaction"`).Scan(&oldestDateStr)
	if err != nil || !oldestDateStr.Valid {
		return time.Time{}
	}

	oldestDate, err := ParseTime(oldestDateStr.String)
	if err != nil {
		return time.Time{}
	}

	return oldestDate
}

// InsertWithHoldingUpdate records a transaction and applies the resulting
// holding position in a single database transaction, so the transaction log
// and the holding's incremental aggregates never diverge.
func (r *TransactionRepository) InsertWithHoldingUpdate(ctx context.Context, t *model.Transaction, h model.Holding) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertQuery := `
		INSERT INTO "transaction" (id, holding_id, symbol, type, quantity, price_per_share, fees, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := tx.ExecContext(ctx, insertQuery,
		t.ID, t.HoldingID, t.Symbol, t.Type, t.Quantity, t.PricePerShare, t.Fees,
		DateString(t.Date),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	if seq, err := res.LastInsertId(); err == nil {
		t.Seq = seq
	}

	updateQuery := `
		UPDATE holding
		SET quantity = ?, avg_purchase_price = ?, is_active = ?, updated_at = datetime('now')
		WHERE id = ?
	`
	if _, err := tx.ExecContext(ctx, updateQuery, h.Quantity, h.AvgPurchasePrice, h.IsActive, h.ID); err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteTransaction removes a transaction by ID. Holding aggregates are not
// recomputed; deletion is an explicit user action on the raw log.
// Returns apperrors.ErrTransactionNotFound if no row was deleted.
func (r *TransactionRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM "transaction" WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrTransactionNotFound
	}

	return nil
}

func scanTransaction(rows *sql.Rows) (model.Transaction, error) {
	var t model.Transaction
	var dateStr, createdAtStr string

	err := rows.Scan(
		&t.Seq,
		&t.ID,
		&t.HoldingID,
		&t.Symbol,
		&t.Type,
		&t.Quantity,
		&t.PricePerShare,
		&t.Fees,
		&dateStr,
		&createdAtStr,
	)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction table results: %w", err)
	}

	t.Date, err = ParseTime(dateStr)
	if err != nil || t.Date.IsZero() {
		return model.Transaction{}, fmt.Errorf("failed to parse date: %w", err)
	}

	t.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return t, nil
}
