package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/arniesaha/portfolio-tracker/internal/api/request"
	"github.com/arniesaha/portfolio-tracker/internal/api/response"
	"github.com/arniesaha/portfolio-tracker/internal/apperrors"
	"github.com/arniesaha/portfolio-tracker/internal/service"
	"github.com/arniesaha/portfolio-tracker/internal/validation"
)

// RateHandler handles HTTP requests for exchange-rate endpoints.
type RateHandler struct {
	currencyService *service.CurrencyService
}

// NewRateHandler creates a new RateHandler with the provided service dependency.
func NewRateHandler(currencyService *service.CurrencyService) *RateHandler {
	return &RateHandler{
		currencyService: currencyService,
	}
}

// RateResponse is the payload of a rate lookup.
type RateResponse struct {
	FromCurrency string  `json:"fromCurrency"`
	ToCurrency   string  `json:"toCurrency"`
	Date         string  `json:"date"`
	Rate         float64 `json:"rate"`
}

// GetRate handles GET requests to resolve a conversion rate for a date.
// Without a date parameter today's rate is resolved; the lookup falls back
// to the nearest persisted rate on or before the date.
//
// Endpoint: GET /api/rates?from=USD&to=CAD&date=YYYY-MM-DD
// Response: 200 OK with RateResponse
// Error: 400 Bad Request if a currency is missing or the date is malformed
// Error: 404 Not Found if no rate is persisted for the pair
func (h *RateHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		response.RespondError(w, http.StatusBadRequest, "invalid rate query", "from and to currencies are required")
		return
	}

	date := time.Now().UTC()
	if v := r.URL.Query().Get("date"); v != "" {
		var err error
		if date, err = time.Parse("2006-01-02", v); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid date", err.Error())
			return
		}
	}

	rate, err := h.currencyService.Rate(from, to, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrExchangeRateNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrExchangeRateNotFound.Error(), from+"/"+to)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to resolve rate", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, RateResponse{
		FromCurrency: from,
		ToCurrency:   to,
		Date:         date.Format("2006-01-02"),
		Rate:         rate,
	})
}

// CreateRate handles POST requests to record a dated exchange rate.
//
// Endpoint: POST /api/rates
// Request Body: CreateRateRequest (fromCurrency, toCurrency, rate, date)
// Response: 201 Created with ExchangeRate
// Error: 400 Bad Request if validation fails
// Error: 409 Conflict if a rate already exists for the pair and date
// Error: 500 Internal Server Error if persistence fails
func (h *RateHandler) CreateRate(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateRateRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateRate(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	rate, err := h.currencyService.SaveRate(r.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEntry) {
			response.RespondError(w, http.StatusConflict, apperrors.ErrDuplicateEntry.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to record rate", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, rate)
}
