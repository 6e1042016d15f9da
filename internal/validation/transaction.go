package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/arniesaha/portfolio-tracker/internal/api/request"
)

// ValidTransactionType contains the allowed transaction type values.
var ValidTransactionType = map[string]bool{
	"BUY": true, "SELL": true,
}

// ValidateCreateTransaction validates a transaction creation request.
// Checks all required fields and validates their formats and constraints.
//
// Required fields:
//   - holdingId: Must be a valid UUID
//   - date: Must be in YYYY-MM-DD format
//   - type: Must be BUY or SELL
//   - quantity: Must be positive
//   - pricePerShare: Must be positive
//   - fees: Must not be negative
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	if err := ValidateUUID(req.HoldingID); err != nil {
		return err
	}

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		errors["date"] = err.Error()
	}

	if strings.TrimSpace(req.Type) == "" {
		errors["type"] = "type is required"
	} else if !ValidTransactionType[req.Type] {
		errors["type"] = fmt.Sprintf("invalid type: %s", req.Type)
	}

	if req.Quantity <= 0.0 {
		errors["quantity"] = "quantity must be positive"
	}

	if req.PricePerShare <= 0.0 {
		errors["pricePerShare"] = "pricePerShare must be positive"
	}

	if req.Fees < 0.0 {
		errors["fees"] = "fees must not be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateBackfillRange validates a backfill request's date range.
// Both dates are required, must be in YYYY-MM-DD format, and the start
// must not be after the end.
func ValidateBackfillRange(req request.BackfillRequest) (start, end time.Time, err error) {
	errors := make(map[string]string)

	start, serr := time.Parse("2006-01-02", req.StartDate)
	if serr != nil {
		errors["startDate"] = serr.Error()
	}
	end, eerr := time.Parse("2006-01-02", req.EndDate)
	if eerr != nil {
		errors["endDate"] = eerr.Error()
	}
	if len(errors) == 0 && start.After(end) {
		errors["startDate"] = ErrInvalidDateRange.Error()
	}

	if len(errors) > 0 {
		return time.Time{}, time.Time{}, &Error{Fields: errors}
	}
	return start, end, nil
}
