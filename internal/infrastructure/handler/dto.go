package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/damon-houk/expense-tracker/internal/application/service"
	"github.com/damon-houk/expense-tracker/internal/domain/entity"
)

// CreateTransactionRequest represents the request body for creating a transaction.
// Any owner supplied by the client is ignored.
type CreateTransactionRequest struct {
	Title    string       `json:"title"`
	Amount   *amountValue `json:"amount"`
	Category string       `json:"category"`
	Date     string       `json:"date"`
	Notes    string       `json:"notes"`
}

// UpdateTransactionRequest represents the request body for a partial update
type UpdateTransactionRequest struct {
	Title    *string       `json:"title"`
	Amount   *amountValue  `json:"amount"`
	Category *string       `json:"category"`
	Date     *string       `json:"date"`
	Notes    nullableNotes `json:"notes"`
}

// amountValue accepts a JSON number or a numeric string, the way HTML number
// inputs submit it. A JSON null leaves the owning pointer nil.
type amountValue float64

func (a *amountValue) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: amount must be a number", entity.ErrValidation)
	}
	*a = amountValue(f)
	return nil
}

func (a *amountValue) float() *float64 {
	if a == nil {
		return nil
	}
	f := float64(*a)
	return &f
}

// nullableNotes tells an absent notes field apart from an explicit null,
// which clears the stored notes.
type nullableNotes struct {
	Set   bool
	Value string
}

func (n *nullableNotes) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = ""
		return nil
	}
	return json.Unmarshal(data, &n.Value)
}

// TransactionListResponse represents the response for the list endpoint
type TransactionListResponse = service.TransactionPage

// SummaryResponse represents the response for the summary endpoint
type SummaryResponse = entity.Summary

// MessageResponse carries a plain message
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Message     string `json:"message"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

var dateLayouts = []string{"2006-01-02", time.RFC3339Nano}

// parseDate accepts a calendar date (YYYY-MM-DD) or an RFC 3339 timestamp
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD or RFC 3339", entity.ErrValidation)
}

func (r CreateTransactionRequest) toInput() (service.CreateTransactionInput, error) {
	input := service.CreateTransactionInput{
		Title:    r.Title,
		Amount:   r.Amount.float(),
		Category: r.Category,
		Notes:    r.Notes,
	}

	if strings.TrimSpace(r.Date) == "" {
		return input, fmt.Errorf("%w: date is required", entity.ErrValidation)
	}

	date, err := parseDate(r.Date)
	if err != nil {
		return input, err
	}
	input.Date = date

	return input, nil
}

func (r UpdateTransactionRequest) toPatch() (entity.TransactionPatch, error) {
	patch := entity.TransactionPatch{
		Title:    r.Title,
		Amount:   r.Amount.float(),
		Category: r.Category,
	}

	if r.Notes.Set {
		notes := r.Notes.Value
		patch.Notes = &notes
	}

	if r.Date != nil {
		date, err := parseDate(*r.Date)
		if err != nil {
			return patch, err
		}
		patch.Date = &date
	}

	return patch, nil
}
