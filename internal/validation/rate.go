package validation

import (
	"strings"
	"time"

	"github.com/arniesaha/portfolio-tracker/internal/api/request"
)

// ValidateCreateRate validates an exchange-rate creation request.
// Both currencies and a positive rate are required; the date must be in
// YYYY-MM-DD format and the currencies must differ.
func ValidateCreateRate(req request.CreateRateRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.FromCurrency) == "" {
		errors["fromCurrency"] = "fromCurrency is required"
	}
	if strings.TrimSpace(req.ToCurrency) == "" {
		errors["toCurrency"] = "toCurrency is required"
	}
	if len(errors) == 0 && req.FromCurrency == req.ToCurrency {
		errors["toCurrency"] = "currencies must differ"
	}

	if req.Rate <= 0.0 {
		errors["rate"] = "rate must be positive"
	}

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		errors["date"] = err.Error()
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
