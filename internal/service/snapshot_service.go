package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arniesaha/portfolio-tracker/internal/apperrors"
	"github.com/arniesaha/portfolio-tracker/internal/config"
	"github.com/arniesaha/portfolio-tracker/internal/model"
	"github.com/arniesaha/portfolio-tracker/internal/repository"
)

// backfillLookbackDays is how many days behind a snapshot date the bulk
// backfill will reach for the most recent persisted close.
const backfillLookbackDays = 7

// SnapshotService builds and persists dated portfolio valuation records.
// Snapshots are keyed by calendar date; re-running a snapshot for a date
// replaces the stored values rather than duplicating the row.
type SnapshotService struct {
	snapshotRepo    *repository.SnapshotRepository
	transactionRepo *repository.TransactionRepository
	holdingRepo     *repository.HoldingRepository
	priceRepo       *repository.PriceRepository
	priceService    *PriceService
	currencyService *CurrencyService
	cfg             config.PortfolioConfig
	log             zerolog.Logger
}

// NewSnapshotService creates a new SnapshotService with the provided dependencies.
func NewSnapshotService(
	snapshotRepo *repository.SnapshotRepository,
	transactionRepo *repository.TransactionRepository,
	holdingRepo *repository.HoldingRepository,
	priceRepo *repository.PriceRepository,
	priceService *PriceService,
	currencyService *CurrencyService,
	cfg config.PortfolioConfig,
	log zerolog.Logger,
) *SnapshotService {
	return &SnapshotService{
		snapshotRepo:    snapshotRepo,
		transactionRepo: transactionRepo,
		holdingRepo:     holdingRepo,
		priceRepo:       priceRepo,
		priceService:    priceService,
		currencyService: currencyService,
		cfg:             cfg,
		log:             log,
	}
}

// CreateSnapshot reconstructs the portfolio as of the given date, values
// it in the base currency and upserts the snapshot row for that date.
// Returns nil without error when the portfolio was empty or worthless on
// that date; an all-zero snapshot would pollute trend queries.
func (s *SnapshotService) CreateSnapshot(ctx context.Context, asOf time.Time) (*model.PortfolioSnapshot, error) {
	transactions, err := s.transactionRepo.GetAllOrdered()
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	state := PortfolioStateAt(transactions, asOf)
	if len(state) == 0 {
		return nil, nil
	}

	meta, err := s.holdingRepo.GetMetadata()
	if err != nil {
		return nil, fmt.Errorf("failed to load holding metadata: %w", err)
	}

	var totalValue, totalCost float64
	byCountry := make(map[string]float64)
	for symbol, pos := range state {
		m := metadataFor(meta, symbol)

		price, err := s.priceService.GetPriceForDate(symbol, m.Exchange, asOf)
		if err != nil {
			s.log.Warn().Str("symbol", symbol).Time("date", asOf).Msg("no price for snapshot, skipping position")
			continue
		}

		rate := 1.0
		if m.Currency != s.cfg.BaseCurrency {
			if r, err := s.currencyService.Rate(m.Currency, s.cfg.BaseCurrency, asOf); err == nil {
				rate = r
			}
		}

		totalValue += pos.Quantity * price * rate
		totalCost += pos.CostBasis * rate
		byCountry[m.Country] += pos.Quantity * price * rate
	}

	if totalValue == 0 {
		return nil, nil
	}

	snapshot := s.buildSnapshot(asOf, totalValue, totalCost, len(state), byCountry)
	if err := s.snapshotRepo.Upsert(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}

	s.log.Info().
		Time("date", asOf).
		Float64("totalValue", totalValue).
		Int("holdings", len(state)).
		Msg("snapshot created")
	return snapshot, nil
}

// BackfillSnapshots recreates one snapshot per weekday over a date range.
// A zero start date means "from the first recorded transaction". Prices
// come from a single bulk provider pass persisted up front, then a pure
// table lookup per day with up to backfillLookbackDays of reach-back for
// non-trading days. USD positions convert at the fixed configured backfill
// rate; per-day historical rates are not fetched in bulk. Returns the
// number of snapshots written.
func (s *SnapshotService) BackfillSnapshots(ctx context.Context, startDate, endDate time.Time) (int, error) {
	if startDate.IsZero() {
		startDate = s.transactionRepo.GetOldestTransactionDate()
		if startDate.IsZero() {
			return 0, nil
		}
	}
	if startDate.After(endDate) {
		return 0, apperrors.ErrInvalidDateRange
	}

	if _, err := s.priceService.BackfillHistoricalPrices(ctx, startDate, endDate); err != nil {
		s.log.Warn().Err(err).Msg("price backfill failed, using persisted prices only")
	}

	transactions, err := s.transactionRepo.GetAllOrdered()
	if err != nil {
		return 0, fmt.Errorf("failed to load transactions: %w", err)
	}
	if len(transactions) == 0 {
		return 0, nil
	}

	meta, err := s.holdingRepo.GetMetadata()
	if err != nil {
		return 0, fmt.Errorf("failed to load holding metadata: %w", err)
	}

	closes, err := s.loadCloseSeries(transactions, meta, startDate, endDate)
	if err != nil {
		return 0, err
	}

	written := 0
	for date := startDate.UTC().Truncate(24 * time.Hour); !date.After(endDate); date = date.AddDate(0, 0, 1) {
		if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			continue
		}

		state := PortfolioStateAt(transactions, date)
		if len(state) == 0 {
			continue
		}

		var totalValue, totalCost float64
		byCountry := make(map[string]float64)
		for symbol, pos := range state {
			price, ok := lookbackClose(closes[symbol], date)
			if !ok {
				continue
			}

			m := metadataFor(meta, symbol)
			rate := s.backfillRate(m.Currency)
			totalValue += pos.Quantity * price * rate
			totalCost += pos.CostBasis * rate
			byCountry[m.Country] += pos.Quantity * price * rate
		}
		if totalValue == 0 {
			continue
		}

		snapshot := s.buildSnapshot(date, totalValue, totalCost, len(state), byCountry)
		if err := s.snapshotRepo.Upsert(ctx, snapshot); err != nil {
			return written, fmt.Errorf("failed to store snapshot for %s: %w", repository.DateString(date), err)
		}
		written++
	}

	s.log.Info().
		Int("written", written).
		Time("start", startDate).
		Time("end", endDate).
		Msg("snapshot backfill complete")
	return written, nil
}

func (s *SnapshotService) buildSnapshot(date time.Time, totalValue, totalCost float64, holdingsCount int, byCountry map[string]float64) *model.PortfolioSnapshot {
	gain := totalValue - totalCost
	pct := 0.0
	if totalCost > 0 {
		pct = gain / totalCost * 100
	}
	return &model.PortfolioSnapshot{
		ID:                uuid.New().String(),
		Date:              date.UTC().Truncate(24 * time.Hour),
		TotalValue:        totalValue,
		TotalCost:         totalCost,
		UnrealizedGain:    gain,
		UnrealizedGainPct: pct,
		HoldingsCount:     holdingsCount,
		ValueByCountry:    byCountry,
	}
}

// loadCloseSeries loads the persisted close table for every symbol in the
// transaction history, reaching backfillLookbackDays before the range
// start so the first days can still resolve a price.
func (s *SnapshotService) loadCloseSeries(
	transactions []model.Transaction,
	meta map[string]model.HoldingMetadata,
	startDate, endDate time.Time,
) (map[string]map[string]float64, error) {
	closes := make(map[string]map[string]float64)
	for _, t := range transactions {
		if _, ok := closes[t.Symbol]; ok {
			continue
		}
		m := metadataFor(meta, t.Symbol)
		series, err := s.priceRepo.GetCloseSeries(t.Symbol, m.Exchange, startDate.AddDate(0, 0, -backfillLookbackDays), endDate)
		if err != nil {
			return nil, fmt.Errorf("failed to load closes for %s: %w", t.Symbol, err)
		}
		closes[t.Symbol] = series
	}
	return closes, nil
}

// lookbackClose finds the close for a date, walking back day by day up to
// backfillLookbackDays to cover weekends and holidays.
func lookbackClose(series map[string]float64, date time.Time) (float64, bool) {
	for i := 0; i <= backfillLookbackDays; i++ {
		if close, ok := series[repository.DateString(date.AddDate(0, 0, -i))]; ok {
			return close, true
		}
	}
	return 0, false
}

// backfillRate is the deliberately coarse currency handling of the bulk
// path: USD converts at the fixed configured rate, the base currency at
// 1, anything else flows through unconverted.
func (s *SnapshotService) backfillRate(currency string) float64 {
	switch {
	case currency == s.cfg.BaseCurrency:
		return 1
	case currency == "USD" && s.cfg.BackfillUSDRate > 0:
		return s.cfg.BackfillUSDRate
	default:
		return 1
	}
}

// ChangeFromPrevious returns the absolute and percentage change of the
// given value against the most recent snapshot strictly before asOf.
// Both are zero when no earlier snapshot exists.
func (s *SnapshotService) ChangeFromPrevious(totalValue float64, asOf time.Time) (change, pct float64) {
	prev, err := s.snapshotRepo.GetLatestBefore(asOf)
	if err != nil {
		if !errors.Is(err, apperrors.ErrSnapshotNotFound) {
			s.log.Warn().Err(err).Msg("failed to load previous snapshot")
		}
		return 0, 0
	}
	change = totalValue - prev.TotalValue
	if prev.TotalValue > 0 {
		pct = change / prev.TotalValue * 100
	}
	return change, pct
}

// GetSnapshots returns the persisted snapshots within a date range,
// oldest first.
func (s *SnapshotService) GetSnapshots(startDate, endDate time.Time) ([]model.PortfolioSnapshot, error) {
	if startDate.After(endDate) {
		return nil, apperrors.ErrInvalidDateRange
	}
	return s.snapshotRepo.GetRange(startDate, endDate)
}

// metadataFor returns the holding metadata for a symbol, defaulting to a
// US-listed USD instrument when the symbol has no holding row.
func metadataFor(meta map[string]model.HoldingMetadata, symbol string) model.HoldingMetadata {
	if m, ok := meta[symbol]; ok {
		return m
	}
	return model.HoldingMetadata{Currency: "USD", Country: "United States"}
}
