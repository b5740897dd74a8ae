package repository

import (
	"sort"
	"strings"

	"github.com/damon-houk/expense-tracker/internal/domain/entity"
)

// Filter is the store-level predicate used to select an owner's transactions.
// Search and Category are already trimmed; an empty value disables the condition.
type Filter struct {
	Owner    string
	Search   string
	Category string
}

// NewFilter builds a filter from the optional search text and category
func NewFilter(owner, search, category string) Filter {
	return Filter{
		Owner:    owner,
		Search:   strings.TrimSpace(search),
		Category: strings.TrimSpace(category),
	}
}

// OwnerFilter selects every transaction of owner
func OwnerFilter(owner string) Filter {
	return Filter{Owner: owner}
}

// Fold is the case folding used for search and category comparisons
func Fold(s string) string {
	return strings.ToLower(s)
}

// Matches evaluates the filter against a transaction
func (f Filter) Matches(tx *entity.Transaction) bool {
	if tx.Owner != f.Owner {
		return false
	}

	if f.Search != "" {
		needle := Fold(f.Search)
		if !strings.Contains(Fold(tx.Title), needle) &&
			!strings.Contains(Fold(tx.Category), needle) {
			return false
		}
	}

	if f.Category != "" && Fold(tx.Category) != Fold(f.Category) {
		return false
	}

	return true
}

// SortByDateDesc orders transactions newest date first, breaking ties by creation time
func SortByDateDesc(txs []*entity.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.After(txs[j].Date)
		}
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
}

// Window returns the [skip, skip+limit) slice of txs, clamped to its bounds.
// A limit <= 0 returns everything after skip.
func Window(txs []*entity.Transaction, skip, limit int) []*entity.Transaction {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(txs) {
		return []*entity.Transaction{}
	}

	end := len(txs)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}

	return txs[skip:end]
}
