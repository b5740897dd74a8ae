package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/damon-houk/expense-tracker/internal/domain/entity"
	"github.com/damon-houk/expense-tracker/internal/domain/repository"
	"github.com/dgraph-io/badger/v3"
)

const (
	transactionPrefix = "tx:"
	ownerIndexPrefix  = "owner:"
)

func transactionKey(id string) []byte {
	return []byte(transactionPrefix + id)
}

func ownerIndexKey(owner, id string) []byte {
	return []byte(ownerIndexPrefix + owner + ":" + id)
}

func ownerIndexPrefixKey(owner string) []byte {
	return []byte(ownerIndexPrefix + owner + ":")
}

// BadgerTransactionRepository implements the transaction repository interface using BadgerDB.
// Each transaction is a JSON document under tx:<id>, indexed by owner:<owner>:<id>.
type BadgerTransactionRepository struct {
	db *badger.DB
}

// NewBadgerTransactionRepository creates a new BadgerDB transaction repository
func NewBadgerTransactionRepository(db *badger.DB) *BadgerTransactionRepository {
	return &BadgerTransactionRepository{db: db}
}

// Store saves a transaction and returns its ID
func (r *BadgerTransactionRepository) Store(ctx context.Context, tx *entity.Transaction) (string, error) {
	data, err := json.Marshal(tx)
	if err != nil {
		return "", fmt.Errorf("failed to marshal transaction: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(transactionKey(tx.ID), data); err != nil {
			return err
		}
		return txn.Set(ownerIndexKey(tx.Owner, tx.ID), nil)
	})
	if err != nil {
		return "", fmt.Errorf("failed to store transaction: %w", err)
	}

	return tx.ID, nil
}

// Update replaces a stored transaction. The owner of a record never changes,
// so the owner index is left as is.
func (r *BadgerTransactionRepository) Update(ctx context.Context, tx *entity.Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(transactionKey(tx.ID)); err != nil {
			return err
		}
		return txn.Set(transactionKey(tx.ID), data)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", repository.ErrNotFound, tx.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	return nil
}

// Delete removes a transaction and its owner index entry
func (r *BadgerTransactionRepository) Delete(ctx context.Context, id string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		tx, err := getTransaction(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(ownerIndexKey(tx.Owner, id)); err != nil {
			return err
		}
		return txn.Delete(transactionKey(id))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	return nil
}

// FindByID retrieves a transaction by its unique identifier
func (r *BadgerTransactionRepository) FindByID(ctx context.Context, id string) (*entity.Transaction, error) {
	var tx *entity.Transaction

	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		tx, err = getTransaction(txn, id)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to retrieve transaction: %w", err)
	}

	return tx, nil
}

// Find returns the transactions matching filter, newest date first
func (r *BadgerTransactionRepository) Find(ctx context.Context, filter repository.Filter, skip, limit int) ([]*entity.Transaction, error) {
	matched, err := r.scanOwner(ctx, filter)
	if err != nil {
		return nil, err
	}

	repository.SortByDateDesc(matched)
	return repository.Window(matched, skip, limit), nil
}

// Count returns the number of transactions matching filter
func (r *BadgerTransactionRepository) Count(ctx context.Context, filter repository.Filter) (int, error) {
	matched, err := r.scanOwner(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

// SumAmount sums the amount of every transaction of owner
func (r *BadgerTransactionRepository) SumAmount(ctx context.Context, owner string) (float64, error) {
	txs, err := r.scanOwner(ctx, repository.OwnerFilter(owner))
	if err != nil {
		return 0, err
	}

	var total float64
	for _, tx := range txs {
		total += tx.Amount
	}
	return total, nil
}

// SumByCategory sums the amount of owner's transactions per distinct category
func (r *BadgerTransactionRepository) SumByCategory(ctx context.Context, owner string) ([]entity.CategoryTotal, error) {
	txs, err := r.scanOwner(ctx, repository.OwnerFilter(owner))
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	totals := []entity.CategoryTotal{}
	for _, tx := range txs {
		i, ok := index[tx.Category]
		if !ok {
			i = len(totals)
			index[tx.Category] = i
			totals = append(totals, entity.CategoryTotal{Category: tx.Category})
		}
		totals[i].Total += tx.Amount
	}

	return totals, nil
}

// scanOwner walks the owner index and returns the documents accepted by filter
func (r *BadgerTransactionRepository) scanOwner(ctx context.Context, filter repository.Filter) ([]*entity.Transaction, error) {
	matched := []*entity.Transaction{}
	prefix := ownerIndexPrefixKey(filter.Owner)

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			id := string(it.Item().Key()[len(prefix):])
			tx, err := getTransaction(txn, id)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			if filter.Matches(tx) {
				matched = append(matched, tx)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan transactions: %w", err)
	}

	return matched, nil
}

func getTransaction(txn *badger.Txn, id string) (*entity.Transaction, error) {
	item, err := txn.Get(transactionKey(id))
	if err != nil {
		return nil, err
	}

	var tx entity.Transaction
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &tx)
	}); err != nil {
		return nil, err
	}

	return &tx, nil
}
