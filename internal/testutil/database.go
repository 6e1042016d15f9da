package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE holding (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			symbol VARCHAR(20) NOT NULL,
			company_name VARCHAR(200),
			exchange VARCHAR(20) NOT NULL,
			country VARCHAR(2) NOT NULL,
			quantity REAL NOT NULL DEFAULT 0,
			avg_purchase_price REAL NOT NULL DEFAULT 0,
			currency VARCHAR(3) NOT NULL DEFAULT 'CAD',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE "transaction" (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			holding_id VARCHAR(36) NOT NULL REFERENCES holding(id),
			symbol VARCHAR(20) NOT NULL,
			type VARCHAR(10) NOT NULL,
			quantity REAL NOT NULL,
			price_per_share REAL NOT NULL,
			fees REAL NOT NULL DEFAULT 0,
			date TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE price_history (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			symbol VARCHAR(20) NOT NULL,
			exchange VARCHAR(20) NOT NULL,
			date TEXT NOT NULL,
			open REAL,
			high REAL,
			low REAL,
			close REAL NOT NULL,
			volume INTEGER,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			UNIQUE (symbol, exchange, date)
		);

		CREATE TABLE exchange_rate (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			from_currency VARCHAR(3) NOT NULL,
			to_currency VARCHAR(3) NOT NULL,
			rate REAL NOT NULL,
			date TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			UNIQUE (from_currency, to_currency, date)
		);

		CREATE TABLE portfolio_snapshot (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			snapshot_date TEXT NOT NULL UNIQUE,
			total_value REAL NOT NULL,
			total_cost REAL NOT NULL,
			unrealized_gain REAL NOT NULL,
			unrealized_gain_pct REAL NOT NULL,
			holdings_count INTEGER NOT NULL,
			value_by_country TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);
	`
	_, err := db.Exec(schema)
	return err
}
