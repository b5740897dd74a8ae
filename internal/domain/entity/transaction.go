package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrValidation is returned when a transaction or patch fails validation
var ErrValidation = errors.New("validation failed")

// Transaction represents a single expense record owned by one user
type Transaction struct {
	ID        string    `json:"_id"`
	Owner     string    `json:"user"`
	Title     string    `json:"title"`
	Amount    float64   `json:"amount"`
	Category  string    `json:"category"`
	Date      time.Time `json:"date"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate ensures the transaction carries every required field
func (t *Transaction) Validate() error {
	if t.Owner == "" {
		return fmt.Errorf("%w: owner is required", ErrValidation)
	}

	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}

	if strings.TrimSpace(t.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrValidation)
	}

	if t.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}

	return nil
}

// TransactionPatch carries the fields of a partial update.
// A nil field was not supplied and leaves the stored value untouched.
type TransactionPatch struct {
	Title    *string
	Amount   *float64
	Category *string
	Date     *time.Time
	Notes    *string
}

// Validate rejects supplied values that would break a required field
func (p *TransactionPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title must not be blank", ErrValidation)
	}

	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return fmt.Errorf("%w: category must not be blank", ErrValidation)
	}

	if p.Date != nil && p.Date.IsZero() {
		return fmt.Errorf("%w: date must not be empty", ErrValidation)
	}

	return nil
}

// ApplyTo overwrites the supplied fields on tx
func (p *TransactionPatch) ApplyTo(tx *Transaction) {
	if p.Title != nil {
		tx.Title = *p.Title
	}
	if p.Amount != nil {
		tx.Amount = *p.Amount
	}
	if p.Category != nil {
		tx.Category = *p.Category
	}
	if p.Date != nil {
		tx.Date = *p.Date
	}
	if p.Notes != nil {
		tx.Notes = *p.Notes
	}
}
