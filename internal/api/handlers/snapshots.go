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

// SnapshotHandler handles HTTP requests for snapshot endpoints.
type SnapshotHandler struct {
	snapshotService *service.SnapshotService
}

// NewSnapshotHandler creates a new SnapshotHandler with the provided service dependency.
func NewSnapshotHandler(snapshotService *service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{
		snapshotService: snapshotService,
	}
}

// Snapshots handles GET requests to list snapshots over a date range.
// Without start/end query parameters the last 90 days are returned.
//
// Endpoint: GET /api/snapshots?start=YYYY-MM-DD&end=YYYY-MM-DD
// Response: 200 OK with array of PortfolioSnapshot
// Error: 400 Bad Request if a date parameter is malformed or the range is inverted
// Error: 500 Internal Server Error if retrieval fails
func (h *SnapshotHandler) Snapshots(w http.ResponseWriter, r *http.Request) {
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

	snapshots, err := h.snapshotService.GetSnapshots(start, end)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidDateRange) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDateRange.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve snapshots", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, snapshots)
}

// CreateSnapshot handles POST requests to build and store today's
// snapshot. Re-running on the same day overwrites the stored values.
//
// Endpoint: POST /api/snapshots
// Response: 201 Created with PortfolioSnapshot, or 204 No Content when the portfolio is empty
// Error: 500 Internal Server Error if snapshot creation fails
func (h *SnapshotHandler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.snapshotService.CreateSnapshot(r.Context(), time.Now().UTC())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to create snapshot", err.Error())
		return
	}
	if snapshot == nil {
		response.RespondJSON(w, http.StatusNoContent, nil)
		return
	}

	response.RespondJSON(w, http.StatusCreated, snapshot)
}

// Backfill handles POST requests to recreate snapshots over a historical
// date range. Omitting startDate backfills from the first recorded
// transaction.
//
// Endpoint: POST /api/snapshots/backfill
// Request Body: BackfillRequest (startDate optional, endDate)
// Response: 200 OK with {"written": N}
// Error: 400 Bad Request if the range is malformed or inverted
// Error: 500 Internal Server Error if the backfill fails
func (h *SnapshotHandler) Backfill(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.BackfillRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	start, end, err := validation.ValidateSnapshotBackfillRange(req)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	written, err := h.snapshotService.BackfillSnapshots(r.Context(), start, end)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to backfill snapshots", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]int{"written": written})
}
