package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arniesaha/portfolio-tracker/internal/apperrors"
	"github.com/arniesaha/portfolio-tracker/internal/model"
	"github.com/arniesaha/portfolio-tracker/internal/repository"
	"github.com/arniesaha/portfolio-tracker/internal/yahoo"
)

// maxHistoryStaleness bounds how far back a persisted close may be used
// as a stand-in for a requested historical date before we go back to the
// provider.
const maxHistoryStaleness = 5 * 24 * time.Hour

// fetchWindowBack is how many days before a requested historical date the
// provider query starts, so that weekends and market holidays still yield
// a usable close.
const fetchWindowBack = 7

// MarketDataClient is the subset of the Yahoo Finance client the price
// service depends on. Tests substitute a canned implementation.
type MarketDataClient interface {
	QueryFiveDaySymbol(symbol string) (yahoo.Response, error)
	QuerySymbolByDateRange(symbol string, startDate, endDate time.Time) (yahoo.Response, error)
	ParseChart(yahooResult yahoo.Response) (yahoo.PriceChart, error)
}

// PriceService resolves current and historical share prices, backed by a
// short-lived quote cache, the persisted price history and the market
// data provider, in that order.
type PriceService struct {
	priceRepo   *repository.PriceRepository
	holdingRepo *repository.HoldingRepository
	client      MarketDataClient
	cache       *PriceCache
	log         zerolog.Logger
}

// NewPriceService creates a new PriceService with the provided dependencies.
func NewPriceService(
	priceRepo *repository.PriceRepository,
	holdingRepo *repository.HoldingRepository,
	client MarketDataClient,
	cache *PriceCache,
	log zerolog.Logger,
) *PriceService {
	return &PriceService{
		priceRepo:   priceRepo,
		holdingRepo: holdingRepo,
		client:      client,
		cache:       cache,
		log:         log,
	}
}

// GetCurrentPrice returns the latest known price for a symbol. A fresh
// cache entry short-circuits the provider entirely; when the provider is
// unreachable the last cached quote is served regardless of age. Returns
// apperrors.ErrPriceNotAvailable only when neither source has anything.
func (s *PriceService) GetCurrentPrice(symbol, exchange string) (float64, error) {
	key := symbol + ":" + exchange

	if price, fresh, ok := s.cache.Get(key); ok && fresh {
		return price, nil
	}

	if price, ok := s.fetchLatestClose(symbol, exchange); ok {
		s.cache.Set(key, price)
		return price, nil
	}

	if price, _, ok := s.cache.Get(key); ok {
		s.log.Warn().Str("symbol", symbol).Msg("provider unavailable, serving stale cached price")
		return price, nil
	}

	s.log.Warn().Str("symbol", symbol).Msg("no price available from provider or cache")
	return 0, apperrors.ErrPriceNotAvailable
}

func (s *PriceService) fetchLatestClose(symbol, exchange string) (float64, bool) {
	resp, err := s.client.QueryFiveDaySymbol(yahoo.Ticker(symbol, exchange))
	if err != nil {
		s.log.Debug().Err(err).Str("symbol", symbol).Msg("five day quote query failed")
		return 0, false
	}

	chart, err := s.client.ParseChart(resp)
	if err != nil {
		s.log.Debug().Err(err).Str("symbol", symbol).Msg("failed to parse quote response")
		return 0, false
	}

	for i := len(chart.Indicators) - 1; i >= 0; i-- {
		if chart.Indicators[i].PriceClose > 0 {
			return chart.Indicators[i].PriceClose, true
		}
	}
	return 0, false
}

// GetBulkPrices fetches current prices for all given holdings, keyed by
// symbol. Symbols whose price cannot be resolved are absent from the
// result rather than failing the whole batch.
func (s *PriceService) GetBulkPrices(holdings []model.Holding) map[string]float64 {
	prices := make(map[string]float64, len(holdings))
	for _, h := range holdings {
		price, err := s.GetCurrentPrice(h.Symbol, h.Exchange)
		if err != nil {
			s.log.Warn().Str("symbol", h.Symbol).Msg("skipping holding without price")
			continue
		}
		prices[h.Symbol] = price
	}
	return prices
}

// GetPriceForDate resolves the price of a symbol on a specific date.
// Today or future dates delegate to GetCurrentPrice. Historical dates
// are served from persisted history where possible: an exact close, then
// the closest earlier close within maxHistoryStaleness. Only when the
// persisted history has no usable close does the provider get queried,
// over a window reaching fetchWindowBack days before the target so that
// non-trading days still resolve.
func (s *PriceService) GetPriceForDate(symbol, exchange string, date time.Time) (float64, error) {
	day := date.UTC().Truncate(24 * time.Hour)
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if !day.Before(today) {
		return s.GetCurrentPrice(symbol, exchange)
	}

	if close, err := s.priceRepo.GetClose(symbol, exchange, day); err == nil {
		return close, nil
	}

	if close, priceDate, err := s.priceRepo.GetClosestCloseOnOrBefore(symbol, exchange, day); err == nil {
		if day.Sub(priceDate) <= maxHistoryStaleness {
			return close, nil
		}
	}

	resp, err := s.client.QuerySymbolByDateRange(
		yahoo.Ticker(symbol, exchange),
		day.AddDate(0, 0, -fetchWindowBack),
		day.AddDate(0, 0, 1),
	)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Time("date", day).Msg("historical price query failed")
		return 0, apperrors.ErrPriceNotAvailable
	}

	chart, err := s.client.ParseChart(resp)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("failed to parse historical price response")
		return 0, apperrors.ErrPriceNotAvailable
	}

	if indicator, ok := chart.GetIndicatorForDate(day); ok {
		return indicator.PriceClose, nil
	}
	if indicator, ok := chart.GetClosestIndicatorBefore(day); ok {
		return indicator.PriceClose, nil
	}

	return 0, apperrors.ErrPriceNotAvailable
}

// GetHistory returns the persisted daily price rows for a symbol over a
// date range, oldest first.
func (s *PriceService) GetHistory(symbol, exchange string, startDate, endDate time.Time) ([]model.PriceHistory, error) {
	if startDate.After(endDate) {
		return nil, apperrors.ErrInvalidDateRange
	}
	return s.priceRepo.GetHistory(symbol, exchange, startDate, endDate)
}

// BackfillHistoricalPrices fetches and persists daily closes for every
// holding, inactive ones included, over the given date range. Rows
// already present are left untouched. Symbols the provider cannot serve
// are skipped with a warning; the returned count is the number of newly
// inserted rows.
func (s *PriceService) BackfillHistoricalPrices(ctx context.Context, startDate, endDate time.Time) (int, error) {
	if startDate.After(endDate) {
		return 0, apperrors.ErrInvalidDateRange
	}

	holdings, err := s.holdingRepo.GetHoldings(false)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, h := range holdings {
		resp, err := s.client.QuerySymbolByDateRange(
			yahoo.Ticker(h.Symbol, h.Exchange),
			startDate.AddDate(0, 0, -fetchWindowBack),
			endDate.AddDate(0, 0, 1),
		)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", h.Symbol).Msg("backfill query failed, skipping symbol")
			continue
		}

		chart, err := s.client.ParseChart(resp)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", h.Symbol).Msg("backfill parse failed, skipping symbol")
			continue
		}

		for _, indicator := range chart.Indicators {
			if indicator.PriceClose <= 0 {
				continue
			}
			ok, err := s.priceRepo.InsertIfAbsent(ctx, model.PriceHistory{
				ID:       uuid.New().String(),
				Symbol:   h.Symbol,
				Exchange: h.Exchange,
				Date:     indicator.Date,
				Open:     indicator.PriceOpen,
				High:     indicator.PriceHigh,
				Low:      indicator.PriceLow,
				Close:    indicator.PriceClose,
				Volume:   indicator.Volume,
			})
			if err != nil {
				return inserted, err
			}
			if ok {
				inserted++
			}
		}
	}

	s.log.Info().
		Int("inserted", inserted).
		Time("start", startDate).
		Time("end", endDate).
		Msg("historical price backfill complete")
	return inserted, nil
}
