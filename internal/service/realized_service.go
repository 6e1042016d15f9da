package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/arniesaha/portfolio-tracker/internal/model"
	"github.com/arniesaha/portfolio-tracker/internal/repository"
)

// RealizedGainService computes the FIFO realized gain/loss report across
// all holdings.
type RealizedGainService struct {
	transactionRepo *repository.TransactionRepository
	holdingRepo     *repository.HoldingRepository
	currencyService *CurrencyService
	baseCurrency    string
	log             zerolog.Logger
}

// NewRealizedGainService creates a new RealizedGainService with the provided dependencies.
func NewRealizedGainService(
	transactionRepo *repository.TransactionRepository,
	holdingRepo *repository.HoldingRepository,
	currencyService *CurrencyService,
	baseCurrency string,
	log zerolog.Logger,
) *RealizedGainService {
	return &RealizedGainService{
		transactionRepo: transactionRepo,
		holdingRepo:     holdingRepo,
		currencyService: currencyService,
		baseCurrency:    baseCurrency,
		log:             log,
	}
}

// ComputeRealizedGains matches every SELL against purchase lots
// oldest-first, per holding, and aggregates the results by holding and by
// calendar year in the base currency. Inactive holdings are included;
// fully closed positions are where most realized gains live. Per-sale
// amounts are converted at the rate in effect on the sale date; when no
// rate exists the amount flows through unconverted.
func (s *RealizedGainService) ComputeRealizedGains() (model.RealizedGainsReport, error) {
	byHolding, err := s.transactionRepo.GetAllByHolding()
	if err != nil {
		return model.RealizedGainsReport{}, fmt.Errorf("failed to load transactions: %w", err)
	}

	holdings, err := s.holdingRepo.GetHoldings(false)
	if err != nil {
		return model.RealizedGainsReport{}, fmt.Errorf("failed to load holdings: %w", err)
	}
	currencies := make(map[string]string, len(holdings))
	for _, h := range holdings {
		currencies[h.ID] = h.Currency
	}

	report := model.RealizedGainsReport{BaseCurrency: s.baseCurrency}
	years := make(map[int]*model.YearRealizedGains)

	for holdingID, transactions := range byHolding {
		sales := fifoRealizedSales(transactions)
		if len(sales) == 0 {
			continue
		}

		currency := currencies[holdingID]
		hg := model.HoldingRealizedGains{
			HoldingID: holdingID,
			Symbol:    sales[0].Symbol,
		}
		for i := range sales {
			sales[i].Currency = currency
			if sales[i].UnmatchedQuantity > 0 {
				s.log.Warn().
					Str("symbol", sales[i].Symbol).
					Float64("unmatched", sales[i].UnmatchedQuantity).
					Time("date", sales[i].Date).
					Msg("sale exceeds open lots, gain covers matched portion only")
			}

			rate := 1.0
			if currency != "" && currency != s.baseCurrency {
				if r, err := s.currencyService.Rate(currency, s.baseCurrency, sales[i].Date); err == nil {
					rate = r
				}
			}
			proceeds := sales[i].Proceeds * rate
			costBasis := sales[i].CostBasis * rate
			gain := sales[i].RealizedGain * rate

			hg.Proceeds += proceeds
			hg.CostBasis += costBasis
			hg.RealizedGain += gain

			year := sales[i].Date.Year()
			yg, ok := years[year]
			if !ok {
				yg = &model.YearRealizedGains{Year: year}
				years[year] = yg
			}
			yg.Proceeds += proceeds
			yg.CostBasis += costBasis
			yg.RealizedGain += gain
			yg.SaleCount++

			report.TotalProceeds += proceeds
			report.TotalCostBasis += costBasis
			report.TotalRealizedGain += gain
			report.SaleCount++
		}
		hg.Sales = sales
		report.ByHolding = append(report.ByHolding, hg)
	}

	sort.Slice(report.ByHolding, func(i, j int) bool {
		return math.Abs(report.ByHolding[i].RealizedGain) > math.Abs(report.ByHolding[j].RealizedGain)
	})

	report.ByYear = make([]model.YearRealizedGains, 0, len(years))
	for _, yg := range years {
		report.ByYear = append(report.ByYear, *yg)
	}
	sort.Slice(report.ByYear, func(i, j int) bool {
		return report.ByYear[i].Year < report.ByYear[j].Year
	})

	return report, nil
}
