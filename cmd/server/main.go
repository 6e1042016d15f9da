package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arniesaha/portfolio-tracker/internal/api"
	"github.com/arniesaha/portfolio-tracker/internal/config"
	"github.com/arniesaha/portfolio-tracker/internal/database"
	"github.com/arniesaha/portfolio-tracker/internal/logger"
	"github.com/arniesaha/portfolio-tracker/internal/repository"
	"github.com/arniesaha/portfolio-tracker/internal/scheduler"
	"github.com/arniesaha/portfolio-tracker/internal/service"
	"github.com/arniesaha/portfolio-tracker/internal/yahoo"
)

// quoteCacheTTL is how long a fetched quote stays fresh before the next
// summary or snapshot goes back to the provider.
const quoteCacheTTL = 15 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg := logger.New(cfg.Logging.Level, cfg.Logging.Pretty)

	// Open database connection and apply pending migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logg.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logg.Fatal().Err(err).Msg("failed to migrate database")
	}
	logg.Info().Str("path", cfg.Database.Path).Msg("connected to database")

	// Create repositories
	holdingRepo := repository.NewHoldingRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	priceRepo := repository.NewPriceRepository(db)
	rateRepo := repository.NewRateRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	// Create services
	financeClient := yahoo.NewFinanceClient(logg)
	priceCache := service.NewPriceCache(quoteCacheTTL)

	systemService := service.NewSystemService(db)
	priceService := service.NewPriceService(priceRepo, holdingRepo, financeClient, priceCache, logg)
	currencyService := service.NewCurrencyService(rateRepo, logg)
	snapshotService := service.NewSnapshotService(
		snapshotRepo,
		transactionRepo,
		holdingRepo,
		priceRepo,
		priceService,
		currencyService,
		cfg.Portfolio,
		logg,
	)
	realizedGainService := service.NewRealizedGainService(
		transactionRepo,
		holdingRepo,
		currencyService,
		cfg.Portfolio.BaseCurrency,
		logg,
	)
	portfolioService := service.NewPortfolioService(
		holdingRepo,
		priceService,
		currencyService,
		snapshotService,
		cfg.Portfolio.BaseCurrency,
		logg,
	)
	holdingService := service.NewHoldingService(holdingRepo, logg)
	transactionService := service.NewTransactionService(transactionRepo, holdingRepo, logg)

	// Create router
	router := api.NewRouter(api.Services{
		System:       systemService,
		Portfolio:    portfolioService,
		RealizedGain: realizedGainService,
		Holding:      holdingService,
		Transaction:  transactionService,
		Snapshot:     snapshotService,
		Price:        priceService,
		Currency:     currencyService,
	}, cfg, logg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logg.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(snapshotService, priceService, cfg.Scheduler.CronSpec, logg)
		if err != nil {
			logg.Fatal().Err(err).Msg("failed to create scheduler")
		}
		sched.Start()
		g.Go(func() error {
			<-ctx.Done()
			sched.Stop()
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		logg.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logg.Fatal().Err(err).Msg("server exited with error")
	}
	logg.Info().Msg("server exited")
}
