package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/damon-houk/expense-tracker/internal/domain/entity"
	"github.com/damon-houk/expense-tracker/internal/domain/repository"
	"golang.org/x/sync/errgroup"
)

// RecentTransactionsLimit is the number of transactions shown on the dashboard
const RecentTransactionsLimit = 5

// GetSummary computes the dashboard aggregate for owner from the full record set
func (s *TransactionService) GetSummary(ctx context.Context, owner string) (*entity.Summary, error) {
	var (
		total     float64
		breakdown []entity.CategoryTotal
		recent    []*entity.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sum, err := s.repo.SumAmount(gctx, owner)
		if err != nil {
			return fmt.Errorf("failed to sum amounts: %w", err)
		}
		total = sum
		return nil
	})

	g.Go(func() error {
		totals, err := s.repo.SumByCategory(gctx, owner)
		if err != nil {
			return fmt.Errorf("failed to sum categories: %w", err)
		}
		breakdown = totals
		return nil
	})

	g.Go(func() error {
		txs, err := s.repo.Find(gctx, repository.OwnerFilter(owner), 0, RecentTransactionsLimit)
		if err != nil {
			return fmt.Errorf("failed to load recent transactions: %w", err)
		}
		recent = txs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if breakdown == nil {
		breakdown = []entity.CategoryTotal{}
	}
	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].Category < breakdown[j].Category
	})

	if recent == nil {
		recent = []*entity.Transaction{}
	}

	return &entity.Summary{
		TotalExpense:       total,
		CategoryBreakdown:  breakdown,
		RecentTransactions: recent,
	}, nil
}
