package validation

import (
	"strings"

	"github.com/arniesaha/portfolio-tracker/internal/api/request"
)

// ValidateCreateHolding validates a holding creation request.
// Symbol and currency are required; exchange, country and company name
// are optional metadata.
func ValidateCreateHolding(req request.CreateHoldingRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}
	if strings.TrimSpace(req.Currency) == "" {
		errors["currency"] = "currency is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
