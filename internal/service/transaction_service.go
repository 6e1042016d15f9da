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

// TransactionService handles transaction recording and retrieval.
// Recording a transaction also moves the owning holding's running
// quantity and average cost, atomically with the insert.
type TransactionService struct {
	transactionRepo *repository.TransactionRepository
	holdingRepo     *repository.HoldingRepository
	log             zerolog.Logger
}

// NewTransactionService creates a new TransactionService with the provided repository dependencies.
func NewTransactionService(
	transactionRepo *repository.TransactionRepository,
	holdingRepo *repository.HoldingRepository,
	log zerolog.Logger,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		holdingRepo:     holdingRepo,
		log:             log,
	}
}

// ApplyTransaction computes the holding state after recording one
// transaction. Buys fold the full outlay including fees into the average
// purchase price; sells reduce quantity at the unchanged average and
// deactivate the holding when it empties. The input holding is not
// modified.
//
// Returns apperrors.ErrSymbolMismatch when the transaction names a
// different instrument and apperrors.ErrInsufficientShares when a sell
// exceeds the held quantity.
func ApplyTransaction(h model.Holding, t model.Transaction) (model.Holding, error) {
	if t.Symbol != h.Symbol {
		return h, apperrors.ErrSymbolMismatch
	}

	switch t.Type {
	case model.TransactionBuy:
		totalCost := h.Quantity*h.AvgPurchasePrice + t.Quantity*t.PricePerShare + t.Fees
		h.Quantity += t.Quantity
		h.AvgPurchasePrice = totalCost / h.Quantity
		h.IsActive = true

	case model.TransactionSell:
		if t.Quantity > h.Quantity+quantityTolerance {
			return h, apperrors.ErrInsufficientShares
		}
		h.Quantity -= t.Quantity
		if h.Quantity <= quantityTolerance {
			h.Quantity = 0
			h.AvgPurchasePrice = 0
			h.IsActive = false
		}

	default:
		return h, fmt.Errorf("unknown transaction type: %s", t.Type)
	}

	return h, nil
}

// CreateTransaction records a transaction against its holding. The
// transaction row and the holding's updated quantity, average cost and
// active flag are written in one database transaction.
func (s *TransactionService) CreateTransaction(ctx context.Context, req request.CreateTransactionRequest) (*model.Transaction, error) {
	holding, err := s.holdingRepo.GetHolding(req.HoldingID)
	if err != nil {
		return nil, err
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, err
	}

	symbol := req.Symbol
	if symbol == "" {
		symbol = holding.Symbol
	}

	transaction := &model.Transaction{
		ID:            uuid.New().String(),
		HoldingID:     req.HoldingID,
		Symbol:        symbol,
		Type:          req.Type,
		Quantity:      req.Quantity,
		PricePerShare: req.PricePerShare,
		Fees:          req.Fees,
		Date:          date,
		CreatedAt:     time.Now(),
	}

	updated, err := ApplyTransaction(holding, *transaction)
	if err != nil {
		return nil, err
	}

	if err := s.transactionRepo.InsertWithHoldingUpdate(ctx, transaction, updated); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.log.Info().
		Str("symbol", transaction.Symbol).
		Str("type", transaction.Type).
		Float64("quantity", transaction.Quantity).
		Msg("transaction recorded")
	return transaction, nil
}

// GetTransactions retrieves transactions for one holding, or all
// transactions in chronological order when holdingID is empty.
func (s *TransactionService) GetTransactions(holdingID string) ([]model.Transaction, error) {
	if holdingID == "" {
		return s.transactionRepo.GetAllOrdered()
	}
	return s.transactionRepo.GetByHolding(holdingID)
}

// DeleteTransaction removes a transaction by ID. The holding's running
// state is not rewound; callers rebuild derived values from history.
func (s *TransactionService) DeleteTransaction(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.ErrEmptyID
	}
	return s.transactionRepo.DeleteTransaction(ctx, id)
}
