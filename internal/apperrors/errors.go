package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrHoldingNotFound indicates that a holding with the given ID does not exist.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrSnapshotNotFound indicates that no snapshot exists for the requested date.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// Unavailable-data errors. These are the "missing" markers of the price and
// rate resolution paths: callers skip the affected symbol or substitute a
// fallback, they never abort a batch computation on them.
var (
	// ErrPriceNotAvailable indicates that no price could be resolved for a
	// symbol/date from the cache, persisted history, or the live provider.
	ErrPriceNotAvailable = errors.New("price not available")

	// ErrExchangeRateNotFound indicates no persisted rate exists for a
	// currency pair on or near the requested date.
	ErrExchangeRateNotFound = errors.New("exchange rate for currency/date not found")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrInsufficientShares indicates that a sell transaction cannot be completed
	// because the holding does not carry enough shares.
	ErrInsufficientShares = errors.New("insufficient shares for sale")

	// ErrSymbolMismatch indicates that a transaction's symbol does not match
	// the holding it is recorded against.
	ErrSymbolMismatch = errors.New("transaction symbol does not match holding")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")
)
