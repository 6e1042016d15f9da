package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arniesaha/portfolio-tracker/internal/api/request"
	"github.com/arniesaha/portfolio-tracker/internal/apperrors"
	"github.com/arniesaha/portfolio-tracker/internal/model"
	"github.com/arniesaha/portfolio-tracker/internal/repository"
)

// CurrencyService converts amounts between currencies using persisted
// exchange rates.
type CurrencyService struct {
	rateRepo *repository.RateRepository
	log      zerolog.Logger
}

// NewCurrencyService creates a new CurrencyService with the provided repository dependency.
func NewCurrencyService(rateRepo *repository.RateRepository, log zerolog.Logger) *CurrencyService {
	return &CurrencyService{
		rateRepo: rateRepo,
		log:      log,
	}
}

// Rate returns the conversion rate from one currency to another as of the
// given date. Identical currencies always convert at 1.0 without touching
// the rate store. When no rate exists for the exact date the nearest
// persisted rate is used, preferring the most recent one before the date.
// Returns apperrors.ErrExchangeRateNotFound when no rate exists at all.
func (s *CurrencyService) Rate(from, to string, date time.Time) (float64, error) {
	if from == to {
		return 1, nil
	}

	rate, err := s.rateRepo.GetNearestRate(from, to, date)
	if err != nil {
		s.log.Debug().
			Str("from", from).
			Str("to", to).
			Time("date", date).
			Msg("no exchange rate available")
		return 0, err
	}
	return rate, nil
}

// SaveRate persists a dated exchange rate. Rows are unique per
// (from, to, date); recording the same pair and date twice returns
// apperrors.ErrDuplicateEntry instead of overwriting the existing rate.
func (s *CurrencyService) SaveRate(ctx context.Context, req request.CreateRateRequest) (model.ExchangeRate, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return model.ExchangeRate{}, fmt.Errorf("invalid rate date: %w", err)
	}

	rate := model.ExchangeRate{
		ID:           uuid.New().String(),
		FromCurrency: req.FromCurrency,
		ToCurrency:   req.ToCurrency,
		Rate:         req.Rate,
		Date:         date,
	}

	inserted, err := s.rateRepo.InsertIfAbsent(ctx, rate)
	if err != nil {
		return model.ExchangeRate{}, err
	}
	if !inserted {
		return model.ExchangeRate{}, apperrors.ErrDuplicateEntry
	}

	s.log.Info().
		Str("from", rate.FromCurrency).
		Str("to", rate.ToCurrency).
		Float64("rate", rate.Rate).
		Time("date", date).
		Msg("exchange rate recorded")
	return rate, nil
}

// Convert converts an amount between currencies as of the given date.
// When no rate is available the amount is returned unconverted, so that
// aggregations degrade to mixed-currency totals instead of failing.
func (s *CurrencyService) Convert(amount float64, from, to string, date time.Time) float64 {
	rate, err := s.Rate(from, to, date)
	if err != nil {
		return amount
	}
	return amount * rate
}
