package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/damon-houk/expense-tracker/internal/domain/entity"
	"github.com/damon-houk/expense-tracker/internal/domain/repository"

	sqlitedriver "modernc.org/sqlite"
)

// sqliteTimeLayout is fixed width so that text ordering equals time ordering
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const transactionColumns = "id, owner, title, amount, category, date, notes, created_at, updated_at"

// foldFunc lowercases text with Unicode rules; SQLite's own lower() folds ASCII only
const foldFunc = "unicode_lower"

func init() {
	sqlitedriver.MustRegisterDeterministicScalarFunction(foldFunc, 1, foldText)
}

func foldText(_ *sqlitedriver.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return repository.Fold(v), nil
	case []byte:
		return repository.Fold(string(v)), nil
	default:
		return nil, fmt.Errorf("%s: unsupported argument type %T", foldFunc, v)
	}
}

// SQLiteTransactionRepository implements the transaction repository interface using SQLite
type SQLiteTransactionRepository struct {
	db *sql.DB
}

// NewSQLiteTransactionRepository opens the database at dbPath and migrates it
func NewSQLiteTransactionRepository(dbPath string) (*SQLiteTransactionRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteTransactionRepository{db: db}, nil
}

// Close releases the database handle
func (r *SQLiteTransactionRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Store saves a transaction and returns its ID
func (r *SQLiteTransactionRepository) Store(ctx context.Context, tx *entity.Transaction) (string, error) {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO transactions ("+transactionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		tx.ID, tx.Owner, tx.Title, tx.Amount, tx.Category,
		formatTime(tx.Date), tx.Notes, formatTime(tx.CreatedAt), formatTime(tx.UpdatedAt),
	)
	if err != nil {
		return "", fmt.Errorf("failed to store transaction: %w", err)
	}

	return tx.ID, nil
}

// Update replaces the mutable columns of a stored transaction
func (r *SQLiteTransactionRepository) Update(ctx context.Context, tx *entity.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET title = ?, amount = ?, category = ?, date = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		tx.Title, tx.Amount, tx.Category, formatTime(tx.Date), tx.Notes, formatTime(tx.UpdatedAt), tx.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	return expectOneRow(res, tx.ID)
}

// Delete removes a transaction by its ID
func (r *SQLiteTransactionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	return expectOneRow(res, id)
}

// FindByID retrieves a transaction by its unique identifier
func (r *SQLiteTransactionRepository) FindByID(ctx context.Context, id string) (*entity.Transaction, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)

	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve transaction: %w", err)
	}

	return tx, nil
}

// Find returns the transactions matching filter, newest date first
func (r *SQLiteTransactionRepository) Find(ctx context.Context, filter repository.Filter, skip, limit int) ([]*entity.Transaction, error) {
	where, args := whereClause(filter)

	if limit <= 0 {
		limit = -1
	}
	if skip < 0 {
		skip = 0
	}
	args = append(args, limit, skip)

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE "+where+
			" ORDER BY date DESC, created_at DESC LIMIT ? OFFSET ?",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	txs := []*entity.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txs, nil
}

// Count returns the number of transactions matching filter
func (r *SQLiteTransactionRepository) Count(ctx context.Context, filter repository.Filter) (int, error) {
	where, args := whereClause(filter)

	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions WHERE "+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return count, nil
}

// SumAmount sums the amount of every transaction of owner
func (r *SQLiteTransactionRepository) SumAmount(ctx context.Context, owner string) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE owner = ?", owner,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum amounts: %w", err)
	}

	return total, nil
}

// SumByCategory sums the amount of owner's transactions per distinct category
func (r *SQLiteTransactionRepository) SumByCategory(ctx context.Context, owner string) ([]entity.CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT category, SUM(amount) FROM transactions WHERE owner = ? GROUP BY category", owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sum categories: %w", err)
	}
	defer rows.Close()

	totals := []entity.CategoryTotal{}
	for rows.Next() {
		var ct entity.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		totals = append(totals, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category totals: %w", err)
	}

	return totals, nil
}

// whereClause translates a filter into SQL with positional arguments.
// Text is folded the same way as Filter.Matches so both stores agree.
func whereClause(filter repository.Filter) (string, []interface{}) {
	conditions := []string{"owner = ?"}
	args := []interface{}{filter.Owner}

	if filter.Search != "" {
		needle := repository.Fold(filter.Search)
		conditions = append(conditions,
			"(instr("+foldFunc+"(title), ?) > 0 OR instr("+foldFunc+"(category), ?) > 0)")
		args = append(args, needle, needle)
	}

	if filter.Category != "" {
		conditions = append(conditions, foldFunc+"(category) = ?")
		args = append(args, repository.Fold(filter.Category))
	}

	return strings.Join(conditions, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*entity.Transaction, error) {
	var (
		tx                        entity.Transaction
		date, createdAt, updatedAt string
	)

	err := row.Scan(&tx.ID, &tx.Owner, &tx.Title, &tx.Amount, &tx.Category, &date, &tx.Notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if tx.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if tx.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if tx.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &tx, nil
}

func expectOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored time %q: %w", s, err)
	}
	return t, nil
}
