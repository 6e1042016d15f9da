package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arniesaha/portfolio-tracker/internal/api/request"
	"github.com/arniesaha/portfolio-tracker/internal/api/response"
	"github.com/arniesaha/portfolio-tracker/internal/apperrors"
	"github.com/arniesaha/portfolio-tracker/internal/service"
	"github.com/arniesaha/portfolio-tracker/internal/validation"
)

// PriceHandler handles HTTP requests for price endpoints.
type PriceHandler struct {
	priceService *service.PriceService
}

// NewPriceHandler creates a new PriceHandler with the provided service dependency.
func NewPriceHandler(priceService *service.PriceService) *PriceHandler {
	return &PriceHandler{
		priceService: priceService,
	}
}

// CurrentPriceResponse is the payload of a current-price lookup.
type CurrentPriceResponse struct {
	Symbol   string  `json:"symbol"`
	Exchange string  `json:"exchange,omitempty"`
	Price    float64 `json:"price"`
}

// CurrentPrice handles GET requests for the latest price of a symbol.
// The exchange query parameter selects the listing; it is empty for US
// exchanges.
//
// Endpoint: GET /api/prices/{symbol}?exchange=TSX
// Response: 200 OK with CurrentPriceResponse
// Error: 404 Not Found if no price can be resolved
func (h *PriceHandler) CurrentPrice(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	exchange := r.URL.Query().Get("exchange")

	price, err := h.priceService.GetCurrentPrice(symbol, exchange)
	if err != nil {
		if errors.Is(err, apperrors.ErrPriceNotAvailable) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrPriceNotAvailable.Error(), symbol)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to resolve price", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, CurrentPriceResponse{
		Symbol:   symbol,
		Exchange: exchange,
		Price:    price,
	})
}

// PriceHistory handles GET requests for the persisted daily prices of a
// symbol. Without start/end query parameters the last 90 days are
// returned.
//
// Endpoint: GET /api/prices/{symbol}/history?exchange=TSX&start=YYYY-MM-DD&end=YYYY-MM-DD
// Response: 200 OK with array of PriceHistory
// Error: 400 Bad Request if a date parameter is malformed or the range is inverted
// Error: 500 Internal Server Error if retrieval fails
func (h *PriceHandler) PriceHistory(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	exchange := r.URL.Query().Get("exchange")

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -90)

	var err error
	if v := r.URL.Query().Get("start"); v != "" {
		if start, err = time.Parse("2006-01-02", v); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid start date", err.Error())
			return
		}
	}
	if v := r.URL.Query().Get("end"); v != "" {
		if end, err = time.Parse("2006-01-02", v); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid end date", err.Error())
			return
		}
	}

	history, err := h.priceService.GetHistory(symbol, exchange, start, end)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidDateRange) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDateRange.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve price history", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, history)
}

// Backfill handles POST requests to fetch and persist historical daily
// prices for all holdings over a date range.
//
// Endpoint: POST /api/prices/backfill
// Request Body: BackfillRequest (startDate, endDate)
// Response: 200 OK with {"inserted": N}
// Error: 400 Bad Request if the range is malformed or inverted
// Error: 500 Internal Server Error if the backfill fails
func (h *PriceHandler) Backfill(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.BackfillRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	start, end, err := validation.ValidateBackfillRange(req)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	inserted, err := h.priceService.BackfillHistoricalPrices(r.Context(), start, end)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to backfill prices", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]int{"inserted": inserted})
}
