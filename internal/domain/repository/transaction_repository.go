// Package repository internal/domain/repository/transaction_repository.go
package repository

import (
	"context"
	"errors"

	"github.com/damon-houk/expense-tracker/internal/domain/entity"
)

// ErrNotFound is returned when no transaction matches the requested id
var ErrNotFound = errors.New("transaction not found")

// TransactionRepository defines the interface for transaction storage
type TransactionRepository interface {
	// Store saves a new transaction and returns its ID
	Store(ctx context.Context, transaction *entity.Transaction) (string, error)

	// Update replaces a stored transaction
	Update(ctx context.Context, transaction *entity.Transaction) error

	// Delete removes a transaction by its ID
	Delete(ctx context.Context, id string) error

	// FindByID retrieves a transaction by its unique identifier
	FindByID(ctx context.Context, id string) (*entity.Transaction, error)

	// Find returns the transactions matching filter, newest date first
	Find(ctx context.Context, filter Filter, skip, limit int) ([]*entity.Transaction, error)

	// Count returns the number of transactions matching filter
	Count(ctx context.Context, filter Filter) (int, error)

	// SumAmount sums the amount of every transaction of owner
	SumAmount(ctx context.Context, owner string) (float64, error)

	// SumByCategory sums the amount of owner's transactions per category
	SumByCategory(ctx context.Context, owner string) ([]entity.CategoryTotal, error)
}
