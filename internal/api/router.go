package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/arniesaha/portfolio-tracker/internal/api/handlers"
	custommiddleware "github.com/arniesaha/portfolio-tracker/internal/api/middleware"
	"github.com/arniesaha/portfolio-tracker/internal/config"
	"github.com/arniesaha/portfolio-tracker/internal/service"
)

// Services bundles the service dependencies of the router.
type Services struct {
	System       *service.SystemService
	Portfolio    *service.PortfolioService
	RealizedGain *service.RealizedGainService
	Holding      *service.HoldingService
	Transaction  *service.TransactionService
	Snapshot     *service.SnapshotService
	Price        *service.PriceService
	Currency     *service.CurrencyService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.RequestLogger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
		})

		r.Route("/analytics", func(r chi.Router) {
			analyticsHandler := handlers.NewAnalyticsHandler(svc.Portfolio, svc.RealizedGain)
			r.Get("/summary", analyticsHandler.Summary)
			r.Get("/realized-gains", analyticsHandler.RealizedGains)
			r.Get("/allocation", analyticsHandler.Allocation)
		})

		r.Route("/holdings", func(r chi.Router) {
			holdingHandler := handlers.NewHoldingHandler(svc.Holding)
			r.Get("/", holdingHandler.Holdings)
			r.Get("/{uuid}", holdingHandler.GetHolding)
			r.With(custommiddleware.APIKeyMiddleware).Post("/", holdingHandler.CreateHolding)
		})

		r.Route("/transactions", func(r chi.Router) {
			transactionHandler := handlers.NewTransactionHandler(svc.Transaction)
			r.Get("/", transactionHandler.AllTransactions)
			r.Get("/holding/{uuid}", transactionHandler.TransactionsPerHolding)
			r.With(custommiddleware.APIKeyMiddleware).Post("/", transactionHandler.CreateTransaction)
			r.With(custommiddleware.APIKeyMiddleware).Delete("/{uuid}", transactionHandler.DeleteTransaction)
		})

		r.Route("/snapshots", func(r chi.Router) {
			snapshotHandler := handlers.NewSnapshotHandler(svc.Snapshot)
			r.Get("/", snapshotHandler.Snapshots)
			r.With(custommiddleware.APIKeyMiddleware).Post("/", snapshotHandler.CreateSnapshot)
			r.With(custommiddleware.APIKeyMiddleware).Post("/backfill", snapshotHandler.Backfill)
		})

		r.Route("/rates", func(r chi.Router) {
			rateHandler := handlers.NewRateHandler(svc.Currency)
			r.Get("/", rateHandler.GetRate)
			r.With(custommiddleware.APIKeyMiddleware).Post("/", rateHandler.CreateRate)
		})

		r.Route("/prices", func(r chi.Router) {
			priceHandler := handlers.NewPriceHandler(svc.Price)
			r.Get("/{symbol}", priceHandler.CurrentPrice)
			r.Get("/{symbol}/history", priceHandler.PriceHistory)
			r.With(custommiddleware.APIKeyMiddleware).Post("/backfill", priceHandler.Backfill)
		})
	})

	return r
}
