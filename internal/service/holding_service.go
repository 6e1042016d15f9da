package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arniesaha/portfolio-tracker/internal/api/request"
	"github.com/arniesaha/portfolio-tracker/internal/model"
	"github.com/arniesaha/portfolio-tracker/internal/repository"
)

// HoldingService handles holding lifecycle operations.
type HoldingService struct {
	holdingRepo *repository.HoldingRepository
	log         zerolog.Logger
}

// NewHoldingService creates a new HoldingService with the provided repository dependency.
func NewHoldingService(holdingRepo *repository.HoldingRepository, log zerolog.Logger) *HoldingService {
	return &HoldingService{
		holdingRepo: holdingRepo,
		log:         log,
	}
}

// GetHoldings returns all holdings, optionally restricted to active ones.
func (s *HoldingService) GetHoldings(activeOnly bool) ([]model.Holding, error) {
	return s.holdingRepo.GetHoldings(activeOnly)
}

// GetHolding returns a single holding by ID.
func (s *HoldingService) GetHolding(id string) (model.Holding, error) {
	return s.holdingRepo.GetHolding(id)
}

// CreateHolding registers a new instrument position. The holding starts
// empty and inactive; quantity and average cost are built up by recorded
// transactions.
func (s *HoldingService) CreateHolding(ctx context.Context, req request.CreateHoldingRequest) (*model.Holding, error) {
	holding := &model.Holding{
		ID:          uuid.New().String(),
		Symbol:      req.Symbol,
		CompanyName: req.CompanyName,
		Exchange:    req.Exchange,
		Country:     req.Country,
		Currency:    req.Currency,
		IsActive:    false,
		CreatedAt:   time.Now(),
	}

	if err := s.holdingRepo.InsertHolding(ctx, holding); err != nil {
		return nil, fmt.Errorf("failed to create holding: %w", err)
	}

	s.log.Info().Str("symbol", holding.Symbol).Str("id", holding.ID).Msg("holding created")
	return holding, nil
}
