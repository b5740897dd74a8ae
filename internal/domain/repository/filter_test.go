package repository

import (
	"testing"
	"time"

	"github.com/damon-houk/expense-tracker/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func tx(owner, title, category string) *entity.Transaction {
	return &entity.Transaction{Owner: owner, Title: title, Category: category}
}

func TestFilterMatches(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		tx     *entity.Transaction
		want   bool
	}{
		{"owner only", NewFilter("alice", "", ""), tx("alice", "Lunch", "Food"), true},
		{"other owner", NewFilter("alice", "", ""), tx("bob", "Lunch", "Food"), false},
		{"blank search ignored", NewFilter("alice", "   ", ""), tx("alice", "Lunch", "Food"), true},
		{"search in title", NewFilter("alice", "lun", ""), tx("alice", "Lunch", "Food"), true},
		{"search in category", NewFilter("alice", "foo", ""), tx("alice", "Lunch", "Food"), true},
		{"search case insensitive", NewFilter("alice", "LUNCH", ""), tx("alice", "lunch at work", "Food"), true},
		{"search miss", NewFilter("alice", "taxi", ""), tx("alice", "Lunch", "Food"), false},
		{"search is literal", NewFilter("alice", "L.nch", ""), tx("alice", "Lunch", "Food"), false},
		{"category exact", NewFilter("alice", "", "Food"), tx("alice", "Lunch", "Food"), true},
		{"category case insensitive", NewFilter("alice", "", "food"), tx("alice", "Lunch", "FOOD"), true},
		{"category is not substring", NewFilter("alice", "", "Food"), tx("alice", "Pizza", "Food Delivery"), false},
		{"category non-ASCII case insensitive", NewFilter("alice", "", "épicerie"), tx("alice", "Marché", "ÉPICERIE"), true},
		{"search non-ASCII case insensitive", NewFilter("alice", "MARCHÉ", ""), tx("alice", "Marché", "Food"), true},
		{"category trimmed", NewFilter("alice", "", " Food "), tx("alice", "Lunch", "Food"), true},
		{"search and category both apply", NewFilter("alice", "pizza", "Food"), tx("alice", "Pizza", "Food"), true},
		{"search and category one fails", NewFilter("alice", "pizza", "Food"), tx("alice", "Pizza", "Food Delivery"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tt.tx))
		})
	}
}

func TestSortByDateDesc(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

	a := &entity.Transaction{ID: "a", Date: day(1)}
	b := &entity.Transaction{ID: "b", Date: day(3)}
	c := &entity.Transaction{ID: "c", Date: day(2), CreatedAt: day(1)}
	d := &entity.Transaction{ID: "d", Date: day(2), CreatedAt: day(5)}

	txs := []*entity.Transaction{a, b, c, d}
	SortByDateDesc(txs)

	ids := make([]string, len(txs))
	for i, tx := range txs {
		ids[i] = tx.ID
	}
	assert.Equal(t, []string{"b", "d", "c", "a"}, ids)
}

func TestWindow(t *testing.T) {
	txs := make([]*entity.Transaction, 12)
	for i := range txs {
		txs[i] = &entity.Transaction{}
	}

	assert.Len(t, Window(txs, 0, 5), 5)
	assert.Len(t, Window(txs, 10, 5), 2)
	assert.Len(t, Window(txs, 15, 5), 0)
	assert.Len(t, Window(txs, 5, 0), 7)
	assert.NotNil(t, Window(nil, 0, 5))
}
