package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/damon-houk/expense-tracker/internal/domain/entity"
	"github.com/damon-houk/expense-tracker/internal/domain/repository"
	domainservice "github.com/damon-houk/expense-tracker/internal/domain/service"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/expense-tracker/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService() (*TransactionService, *mocks.MockTransactionRepository, *mocks.MockEventPublisher) {
	repo := new(mocks.MockTransactionRepository)
	publisher := new(mocks.MockEventPublisher)
	log := logger.NewJSONLogger(new(bytes.Buffer), logger.DebugLevel)
	return NewTransactionService(repo, publisher, log), repo, publisher
}

func amountPtr(v float64) *float64 { return &v }

func storedTransaction() *entity.Transaction {
	return &entity.Transaction{
		ID:        "tx-1",
		Owner:     "user-1",
		Title:     "Groceries",
		Amount:    42.5,
		Category:  "Food",
		Date:      time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Notes:     "weekly shop",
		CreatedAt: time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
	}
}

func TestCreateTransaction(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)

	t.Run("Valid transaction", func(t *testing.T) {
		service, repo, publisher := newTestService()

		repo.On("Store", ctx, mock.MatchedBy(func(tx *entity.Transaction) bool {
			return tx.Owner == "user-1" && tx.Title == "Lunch" && tx.Amount == 12.5 &&
				tx.Category == "Food" && tx.Date.Equal(date) && tx.ID != ""
		})).Return("generated", nil).Once()
		publisher.On("Publish", ctx, mock.MatchedBy(func(e domainservice.TransactionEvent) bool {
			return e.Type == domainservice.TransactionCreated && e.Owner == "user-1"
		})).Return(nil).Once()

		tx, err := service.CreateTransaction(ctx, "user-1", CreateTransactionInput{
			Title:    "Lunch",
			Amount:   amountPtr(12.5),
			Category: "Food",
			Date:     date,
		})

		require.NoError(t, err)
		assert.Equal(t, "user-1", tx.Owner)
		assert.NotEmpty(t, tx.ID)
		assert.False(t, tx.CreatedAt.IsZero())
		assert.Equal(t, tx.CreatedAt, tx.UpdatedAt)
		repo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("Zero and negative amounts are accepted", func(t *testing.T) {
		service, repo, publisher := newTestService()
		repo.On("Store", ctx, mock.Anything).Return("id", nil).Twice()
		publisher.On("Publish", ctx, mock.Anything).Return(nil).Twice()

		_, err := service.CreateTransaction(ctx, "user-1", CreateTransactionInput{
			Title: "Refund", Amount: amountPtr(-20), Category: "Shopping", Date: date,
		})
		assert.NoError(t, err)

		_, err = service.CreateTransaction(ctx, "user-1", CreateTransactionInput{
			Title: "Free sample", Amount: amountPtr(0), Category: "Food", Date: date,
		})
		assert.NoError(t, err)
	})

	t.Run("Missing amount", func(t *testing.T) {
		service, repo, _ := newTestService()

		tx, err := service.CreateTransaction(ctx, "user-1", CreateTransactionInput{
			Title: "Lunch", Category: "Food", Date: date,
		})

		assert.Nil(t, tx)
		assert.True(t, errors.Is(err, entity.ErrValidation))
		assert.Contains(t, err.Error(), "amount is required")
		repo.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
	})

	t.Run("Missing title", func(t *testing.T) {
		service, _, _ := newTestService()

		_, err := service.CreateTransaction(ctx, "user-1", CreateTransactionInput{
			Amount: amountPtr(1), Category: "Food", Date: date,
		})

		assert.True(t, errors.Is(err, entity.ErrValidation))
	})

	t.Run("Missing date", func(t *testing.T) {
		service, _, _ := newTestService()

		_, err := service.CreateTransaction(ctx, "user-1", CreateTransactionInput{
			Title: "Lunch", Amount: amountPtr(1), Category: "Food",
		})

		assert.True(t, errors.Is(err, entity.ErrValidation))
	})

	t.Run("Repository error", func(t *testing.T) {
		service, repo, publisher := newTestService()
		repo.On("Store", ctx, mock.Anything).Return("", errors.New("repository error")).Once()

		tx, err := service.CreateTransaction(ctx, "user-1", CreateTransactionInput{
			Title: "Lunch", Amount: amountPtr(1), Category: "Food", Date: date,
		})

		assert.Nil(t, tx)
		assert.Equal(t, "repository error", err.Error())
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("Publish failure does not fail the request", func(t *testing.T) {
		service, repo, publisher := newTestService()
		repo.On("Store", ctx, mock.Anything).Return("id", nil).Once()
		publisher.On("Publish", ctx, mock.Anything).Return(errors.New("broker down")).Once()

		tx, err := service.CreateTransaction(ctx, "user-1", CreateTransactionInput{
			Title: "Lunch", Amount: amountPtr(1), Category: "Food", Date: date,
		})

		assert.NoError(t, err)
		assert.NotNil(t, tx)
	})
}

func TestListTransactions(t *testing.T) {
	ctx := context.Background()

	t.Run("Defaults and page count", func(t *testing.T) {
		service, repo, _ := newTestService()
		filter := repository.NewFilter("user-1", "", "")
		txs := []*entity.Transaction{storedTransaction()}

		repo.On("Find", ctx, filter, 0, 5).Return(txs, nil).Once()
		repo.On("Count", ctx, filter).Return(12, nil).Once()

		page, err := service.ListTransactions(ctx, "user-1", ListQuery{})

		require.NoError(t, err)
		assert.Equal(t, txs, page.Transactions)
		assert.Equal(t, 12, page.Total)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 3, page.Pages)
		repo.AssertExpectations(t)
	})

	t.Run("Filters and skip are forwarded", func(t *testing.T) {
		service, repo, _ := newTestService()
		filter := repository.Filter{Owner: "user-1", Search: "foo", Category: "Food"}

		repo.On("Find", ctx, filter, 20, 10).Return([]*entity.Transaction{}, nil).Once()
		repo.On("Count", ctx, filter).Return(0, nil).Once()

		page, err := service.ListTransactions(ctx, "user-1", ListQuery{
			Page: 3, Limit: 10, Search: " foo ", Category: "Food",
		})

		require.NoError(t, err)
		assert.Equal(t, 3, page.Page)
		assert.Equal(t, 0, page.Pages)
		assert.NotNil(t, page.Transactions)
		repo.AssertExpectations(t)
	})

	t.Run("Repository error", func(t *testing.T) {
		service, repo, _ := newTestService()
		repo.On("Find", ctx, mock.Anything, 0, 5).Return(nil, errors.New("disk error")).Once()

		page, err := service.ListTransactions(ctx, "user-1", ListQuery{})

		assert.Nil(t, page)
		assert.Contains(t, err.Error(), "disk error")
	})
}

func TestGetTransaction(t *testing.T) {
	ctx := context.Background()
	service, repo, _ := newTestService()

	repo.On("FindByID", ctx, "tx-1").Return(storedTransaction(), nil).Once()
	repo.On("FindByID", ctx, "missing").Return(nil, repository.ErrNotFound).Once()

	tx, err := service.GetTransaction(ctx, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", tx.Title)

	tx, err = service.GetTransaction(ctx, "missing")
	assert.Nil(t, tx)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestUpdateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("Partial update keeps other fields", func(t *testing.T) {
		service, repo, publisher := newTestService()
		original := storedTransaction()

		repo.On("FindByID", ctx, "tx-1").Return(storedTransaction(), nil).Once()
		repo.On("Update", ctx, mock.MatchedBy(func(tx *entity.Transaction) bool {
			return tx.Notes == "x" && tx.Title == original.Title && tx.Amount == original.Amount &&
				tx.Category == original.Category && tx.Date.Equal(original.Date) && tx.Owner == original.Owner
		})).Return(nil).Once()
		publisher.On("Publish", ctx, mock.MatchedBy(func(e domainservice.TransactionEvent) bool {
			return e.Type == domainservice.TransactionUpdated && e.TransactionID == "tx-1"
		})).Return(nil).Once()

		notes := "x"
		tx, err := service.UpdateTransaction(ctx, "tx-1", entity.TransactionPatch{Notes: &notes})

		require.NoError(t, err)
		assert.Equal(t, "x", tx.Notes)
		assert.Equal(t, original.CreatedAt, tx.CreatedAt)
		assert.True(t, tx.UpdatedAt.After(original.UpdatedAt))
		repo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("Empty patch only touches updatedAt", func(t *testing.T) {
		service, repo, publisher := newTestService()
		original := storedTransaction()

		repo.On("FindByID", ctx, "tx-1").Return(storedTransaction(), nil).Once()
		repo.On("Update", ctx, mock.MatchedBy(func(tx *entity.Transaction) bool {
			return tx.Title == original.Title && tx.Amount == original.Amount && tx.Notes == original.Notes
		})).Return(nil).Once()
		publisher.On("Publish", ctx, mock.Anything).Return(nil).Once()

		tx, err := service.UpdateTransaction(ctx, "tx-1", entity.TransactionPatch{})

		require.NoError(t, err)
		assert.True(t, tx.UpdatedAt.After(original.UpdatedAt))
		repo.AssertExpectations(t)
	})

	t.Run("Not found", func(t *testing.T) {
		service, repo, _ := newTestService()
		repo.On("FindByID", ctx, "missing").Return(nil, repository.ErrNotFound).Once()

		notes := "x"
		tx, err := service.UpdateTransaction(ctx, "missing", entity.TransactionPatch{Notes: &notes})

		assert.Nil(t, tx)
		assert.True(t, errors.Is(err, repository.ErrNotFound))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Invalid patch", func(t *testing.T) {
		service, repo, _ := newTestService()
		repo.On("FindByID", ctx, "tx-1").Return(storedTransaction(), nil).Once()

		blank := ""
		_, err := service.UpdateTransaction(ctx, "tx-1", entity.TransactionPatch{Category: &blank})

		assert.True(t, errors.Is(err, entity.ErrValidation))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestDeleteTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("Existing transaction", func(t *testing.T) {
		service, repo, publisher := newTestService()
		repo.On("FindByID", ctx, "tx-1").Return(storedTransaction(), nil).Once()
		repo.On("Delete", ctx, "tx-1").Return(nil).Once()
		publisher.On("Publish", ctx, mock.MatchedBy(func(e domainservice.TransactionEvent) bool {
			return e.Type == domainservice.TransactionDeleted && e.Transaction == nil
		})).Return(nil).Once()

		assert.NoError(t, service.DeleteTransaction(ctx, "tx-1"))
		repo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("Not found", func(t *testing.T) {
		service, repo, _ := newTestService()
		repo.On("FindByID", ctx, "missing").Return(nil, repository.ErrNotFound).Once()

		err := service.DeleteTransaction(ctx, "missing")

		assert.True(t, errors.Is(err, repository.ErrNotFound))
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestGetSummary(t *testing.T) {
	t.Run("Aggregates", func(t *testing.T) {
		service, repo, _ := newTestService()
		recent := []*entity.Transaction{storedTransaction()}

		repo.On("SumAmount", mock.Anything, "user-1").Return(170.0, nil).Once()
		repo.On("SumByCategory", mock.Anything, "user-1").Return([]entity.CategoryTotal{
			{Category: "Travel", Total: 20},
			{Category: "Food", Total: 150},
		}, nil).Once()
		repo.On("Find", mock.Anything, repository.OwnerFilter("user-1"), 0, RecentTransactionsLimit).Return(recent, nil).Once()

		summary, err := service.GetSummary(context.Background(), "user-1")

		require.NoError(t, err)
		assert.Equal(t, 170.0, summary.TotalExpense)
		assert.Equal(t, []entity.CategoryTotal{
			{Category: "Food", Total: 150},
			{Category: "Travel", Total: 20},
		}, summary.CategoryBreakdown)
		assert.Equal(t, recent, summary.RecentTransactions)
		repo.AssertExpectations(t)
	})

	t.Run("Owner without records", func(t *testing.T) {
		service, repo, _ := newTestService()

		repo.On("SumAmount", mock.Anything, "empty").Return(0.0, nil).Once()
		repo.On("SumByCategory", mock.Anything, "empty").Return(nil, nil).Once()
		repo.On("Find", mock.Anything, repository.OwnerFilter("empty"), 0, RecentTransactionsLimit).Return(nil, nil).Once()

		summary, err := service.GetSummary(context.Background(), "empty")

		require.NoError(t, err)
		assert.Equal(t, 0.0, summary.TotalExpense)
		assert.NotNil(t, summary.CategoryBreakdown)
		assert.Empty(t, summary.CategoryBreakdown)
		assert.NotNil(t, summary.RecentTransactions)
	})

	t.Run("Store failure fails the summary", func(t *testing.T) {
		service, repo, _ := newTestService()

		repo.On("SumAmount", mock.Anything, "user-1").Return(0.0, errors.New("store down")).Once()
		repo.On("SumByCategory", mock.Anything, "user-1").Return([]entity.CategoryTotal{}, nil).Maybe()
		repo.On("Find", mock.Anything, mock.Anything, 0, RecentTransactionsLimit).Return([]*entity.Transaction{}, nil).Maybe()

		summary, err := service.GetSummary(context.Background(), "user-1")

		assert.Nil(t, summary)
		assert.Contains(t, err.Error(), "store down")
	})
}
