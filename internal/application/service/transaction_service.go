package service

import (
	"context"
	"fmt"
	"time"

	"github.com/damon-houk/expense-tracker/internal/domain/entity"
	"github.com/damon-houk/expense-tracker/internal/domain/repository"
	domainservice "github.com/damon-houk/expense-tracker/internal/domain/service"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/middleware"
	"github.com/google/uuid"
)

// CreateTransactionInput holds the client supplied fields of a new transaction.
// Amount is a pointer so that a missing amount can be told apart from zero.
type CreateTransactionInput struct {
	Title    string
	Amount   *float64
	Category string
	Date     time.Time
	Notes    string
}

// ListQuery holds the optional list parameters
type ListQuery struct {
	Page     int
	Limit    int
	Search   string
	Category string
}

// TransactionPage is one page of an owner's transactions
type TransactionPage struct {
	Transactions []*entity.Transaction `json:"transactions"`
	Total        int                   `json:"total"`
	Page         int                   `json:"page"`
	Pages        int                   `json:"pages"`
}

// TransactionService handles business logic for transactions
type TransactionService struct {
	repo      repository.TransactionRepository
	publisher domainservice.EventPublisher
	logger    logger.Logger
	now       func() time.Time
}

// NewTransactionService creates a new transaction service
func NewTransactionService(repo repository.TransactionRepository, publisher domainservice.EventPublisher, log logger.Logger) *TransactionService {
	if publisher == nil {
		publisher = domainservice.NoopPublisher{}
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &TransactionService{
		repo:      repo,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

// CreateTransaction creates and stores a new transaction for owner
func (s *TransactionService) CreateTransaction(ctx context.Context, owner string, input CreateTransactionInput) (*entity.Transaction, error) {
	if input.Amount == nil {
		return nil, fmt.Errorf("%w: amount is required", entity.ErrValidation)
	}

	now := s.now().UTC()
	tx := &entity.Transaction{
		ID:        uuid.New().String(),
		Owner:     owner,
		Title:     input.Title,
		Amount:    *input.Amount,
		Category:  input.Category,
		Date:      input.Date,
		Notes:     input.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.Store(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info("Transaction created", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"id":         tx.ID,
		"owner_id":   owner,
	})

	s.publish(ctx, domainservice.TransactionCreated, tx)

	return tx, nil
}

// ListTransactions returns one page of owner's transactions matching query, newest first
func (s *TransactionService) ListTransactions(ctx context.Context, owner string, query ListQuery) (*TransactionPage, error) {
	page := NewPageRequest(query.Page, query.Limit)
	filter := repository.NewFilter(owner, query.Search, query.Category)

	s.logger.Debug("Listing transactions", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"owner_id":   owner,
		"page":       page.Page,
		"limit":      page.Limit,
		"search":     filter.Search,
		"category":   filter.Category,
	})

	txs, err := s.repo.Find(ctx, filter, page.Skip(), page.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	if txs == nil {
		txs = []*entity.Transaction{}
	}

	return &TransactionPage{
		Transactions: txs,
		Total:        total,
		Page:         page.Page,
		Pages:        TotalPages(total, page.Limit),
	}, nil
}

// GetTransaction retrieves a transaction by ID.
// The record's owner is not compared with the caller.
func (s *TransactionService) GetTransaction(ctx context.Context, id string) (*entity.Transaction, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateTransaction merges patch over the stored transaction
func (s *TransactionService) UpdateTransaction(ctx context.Context, id string, patch entity.TransactionPatch) (*entity.Transaction, error) {
	tx, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := patch.Validate(); err != nil {
		return nil, err
	}

	patch.ApplyTo(tx)
	tx.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info("Transaction updated", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"id":         tx.ID,
	})

	s.publish(ctx, domainservice.TransactionUpdated, tx)

	return tx, nil
}

// DeleteTransaction removes a transaction by ID
func (s *TransactionService) DeleteTransaction(ctx context.Context, id string) error {
	tx, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Transaction deleted", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"id":         id,
	})

	s.publish(ctx, domainservice.TransactionDeleted, tx)

	return nil
}

// publish announces a change; failures are logged and never surface to the caller
func (s *TransactionService) publish(ctx context.Context, eventType domainservice.EventType, tx *entity.Transaction) {
	event := domainservice.TransactionEvent{
		Type:          eventType,
		TransactionID: tx.ID,
		Owner:         tx.Owner,
		OccurredAt:    s.now().UTC(),
	}
	if eventType != domainservice.TransactionDeleted {
		event.Transaction = tx
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish transaction event", map[string]interface{}{
			"request_id": middleware.GetRequestID(ctx),
			"id":         tx.ID,
			"event":      string(eventType),
			"error":      err.Error(),
		})
	}
}
