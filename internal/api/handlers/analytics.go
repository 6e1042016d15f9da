package handlers

import (
	"net/http"

	"github.com/arniesaha/portfolio-tracker/internal/api/response"
	"github.com/arniesaha/portfolio-tracker/internal/service"
)

// AnalyticsHandler handles HTTP requests for portfolio-wide reports:
// current valuation summary, FIFO realized gains and allocation.
type AnalyticsHandler struct {
	portfolioService    *service.PortfolioService
	realizedGainService *service.RealizedGainService
}

// NewAnalyticsHandler creates a new AnalyticsHandler with the provided service dependencies.
func NewAnalyticsHandler(
	portfolioService *service.PortfolioService,
	realizedGainService *service.RealizedGainService,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		portfolioService:    portfolioService,
		realizedGainService: realizedGainService,
	}
}

// Summary handles GET requests for the current portfolio valuation.
//
// Endpoint: GET /api/analytics/summary
// Response: 200 OK with PortfolioSummary
// Error: 500 Internal Server Error if computation fails
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, _ *http.Request) {
	summary, err := h.portfolioService.GetPortfolioSummary()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to compute summary", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// RealizedGains handles GET requests for the FIFO realized gain/loss report.
//
// Endpoint: GET /api/analytics/realized-gains
// Response: 200 OK with RealizedGainsReport
// Error: 500 Internal Server Error if computation fails
func (h *AnalyticsHandler) RealizedGains(w http.ResponseWriter, _ *http.Request) {
	report, err := h.realizedGainService.ComputeRealizedGains()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to compute realized gains", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}

// Allocation handles GET requests for the portfolio allocation breakdown.
//
// Endpoint: GET /api/analytics/allocation
// Response: 200 OK with Allocation
// Error: 500 Internal Server Error if computation fails
func (h *AnalyticsHandler) Allocation(w http.ResponseWriter, _ *http.Request) {
	allocation, err := h.portfolioService.GetAllocation()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to compute allocation", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, allocation)
}
