package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arniesaha/portfolio-tracker/internal/api/request"
	"github.com/arniesaha/portfolio-tracker/internal/api/response"
	"github.com/arniesaha/portfolio-tracker/internal/apperrors"
	"github.com/arniesaha/portfolio-tracker/internal/service"
	"github.com/arniesaha/portfolio-tracker/internal/validation"
)

// HoldingHandler handles HTTP requests for holding endpoints.
type HoldingHandler struct {
	holdingService *service.HoldingService
}

// NewHoldingHandler creates a new HoldingHandler with the provided service dependency.
func NewHoldingHandler(holdingService *service.HoldingService) *HoldingHandler {
	return &HoldingHandler{
		holdingService: holdingService,
	}
}

// Holdings handles GET requests to list holdings. Passing ?active=true
// restricts the result to active positions.
//
// Endpoint: GET /api/holdings
// Response: 200 OK with array of Holding
// Error: 500 Internal Server Error if retrieval fails
func (h *HoldingHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	holdings, err := h.holdingService.GetHoldings(activeOnly)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve holdings", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, holdings)
}

// GetHolding handles GET requests to retrieve a single holding by ID.
//
// Endpoint: GET /api/holdings/{uuid}
// Response: 200 OK with Holding
// Error: 400 Bad Request if the ID is not a valid UUID
// Error: 404 Not Found if the holding does not exist
func (h *HoldingHandler) GetHolding(w http.ResponseWriter, r *http.Request) {
	holdingID := chi.URLParam(r, "uuid")
	if err := validation.ValidateUUID(holdingID); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid holding ID", err.Error())
		return
	}

	holding, err := h.holdingService.GetHolding(holdingID)
	if err != nil {
		if errors.Is(err, apperrors.ErrHoldingNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrHoldingNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve holding", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, holding)
}

// CreateHolding handles POST requests to register a new holding.
//
// Endpoint: POST /api/holdings
// Request Body: CreateHoldingRequest (symbol, companyName, exchange, country, currency)
// Response: 201 Created with Holding
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if creation fails
func (h *HoldingHandler) CreateHolding(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateHoldingRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateHolding(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	holding, err := h.holdingService.CreateHolding(r.Context(), req)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to create holding", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, holding)
}
