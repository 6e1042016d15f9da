package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/arniesaha/portfolio-tracker/internal/model"
	"github.com/arniesaha/portfolio-tracker/internal/repository"
)

// topHoldingsLimit caps the largest-positions list in the allocation report.
const topHoldingsLimit = 10

// PortfolioService produces current-state valuation reports across all
// active holdings, normalized into the base currency.
type PortfolioService struct {
	holdingRepo     *repository.HoldingRepository
	priceService    *PriceService
	currencyService *CurrencyService
	snapshotService *SnapshotService
	baseCurrency    string
	log             zerolog.Logger
}

// NewPortfolioService creates a new PortfolioService with the provided dependencies.
func NewPortfolioService(
	holdingRepo *repository.HoldingRepository,
	priceService *PriceService,
	currencyService *CurrencyService,
	snapshotService *SnapshotService,
	baseCurrency string,
	log zerolog.Logger,
) *PortfolioService {
	return &PortfolioService{
		holdingRepo:     holdingRepo,
		priceService:    priceService,
		currencyService: currencyService,
		snapshotService: snapshotService,
		baseCurrency:    baseCurrency,
		log:             log,
	}
}

// GetPortfolioSummary values every active holding at its current price
// and aggregates totals, unrealized gain and day-over-day change in the
// base currency. Holdings without a resolvable price still count toward
// the holdings tally but contribute nothing to the totals. An empty
// portfolio yields a zero-valued summary, not an error.
func (s *PortfolioService) GetPortfolioSummary() (model.PortfolioSummary, error) {
	summary := model.PortfolioSummary{
		Countries:    make(map[string]int),
		BaseCurrency: s.baseCurrency,
		LastUpdated:  time.Now().UTC(),
	}

	holdings, err := s.holdingRepo.GetHoldings(true)
	if err != nil {
		return model.PortfolioSummary{}, fmt.Errorf("failed to load holdings: %w", err)
	}
	if len(holdings) == 0 {
		return summary, nil
	}

	now := time.Now().UTC()
	prices := s.priceService.GetBulkPrices(holdings)
	for _, h := range holdings {
		summary.HoldingsCount++
		summary.Countries[h.Country]++

		price, ok := prices[h.Symbol]
		if !ok {
			continue
		}

		rate := 1.0
		if h.Currency != s.baseCurrency {
			if r, err := s.currencyService.Rate(h.Currency, s.baseCurrency, now); err == nil {
				rate = r
			}
		}
		summary.TotalValue += h.Quantity * price * rate
		summary.TotalCost += h.Quantity * h.AvgPurchasePrice * rate
	}

	summary.UnrealizedGain = summary.TotalValue - summary.TotalCost
	if summary.TotalCost > 0 {
		summary.UnrealizedGainPct = summary.UnrealizedGain / summary.TotalCost * 100
	}
	summary.TodayChange, summary.TodayChangePct = s.snapshotService.ChangeFromPrevious(summary.TotalValue, now)

	return summary, nil
}

// GetAllocation breaks the current market value down by country and by
// exchange, as percentages of the total, and lists the largest positions.
func (s *PortfolioService) GetAllocation() (model.Allocation, error) {
	holdings, err := s.holdingRepo.GetHoldings(true)
	if err != nil {
		return model.Allocation{}, fmt.Errorf("failed to load holdings: %w", err)
	}

	allocation := model.Allocation{
		ByCountry:  make(map[string]float64),
		ByExchange: make(map[string]float64),
	}
	if len(holdings) == 0 {
		return allocation, nil
	}

	now := time.Now().UTC()
	prices := s.priceService.GetBulkPrices(holdings)

	byCountry := make(map[string]float64)
	byExchange := make(map[string]float64)
	var top []model.TopHolding
	for _, h := range holdings {
		price, ok := prices[h.Symbol]
		if !ok {
			continue
		}

		rate := 1.0
		if h.Currency != s.baseCurrency {
			if r, err := s.currencyService.Rate(h.Currency, s.baseCurrency, now); err == nil {
				rate = r
			}
		}

		value := h.Quantity * price * rate
		allocation.TotalValue += value
		byCountry[h.Country] += value
		byExchange[h.Exchange] += value
		top = append(top, model.TopHolding{
			Symbol:       h.Symbol,
			CompanyName:  h.CompanyName,
			Currency:     h.Currency,
			Quantity:     h.Quantity,
			CurrentPrice: price,
			MarketValue:  value,
		})
	}
	if allocation.TotalValue == 0 {
		return allocation, nil
	}

	for country, value := range byCountry {
		allocation.ByCountry[country] = value / allocation.TotalValue * 100
	}
	for exchange, value := range byExchange {
		allocation.ByExchange[exchange] = value / allocation.TotalValue * 100
	}

	sort.Slice(top, func(i, j int) bool {
		return top[i].MarketValue > top[j].MarketValue
	})
	if len(top) > topHoldingsLimit {
		top = top[:topHoldingsLimit]
	}
	for i := range top {
		top[i].Percentage = top[i].MarketValue / allocation.TotalValue * 100
	}
	allocation.TopHoldings = top

	return allocation, nil
}
