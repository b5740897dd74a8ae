package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/damon-houk/expense-tracker/internal/application/service"
	"github.com/damon-houk/expense-tracker/internal/domain/entity"
	"github.com/damon-houk/expense-tracker/internal/domain/repository"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

const notFoundMessage = "Transaction not found"

// TransactionHandler handles HTTP requests for transactions
type TransactionHandler struct {
	service *service.TransactionService
	logger  logger.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(service *service.TransactionService, log logger.Logger) *TransactionHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &TransactionHandler{
		service: service,
		logger:  log,
	}
}

// CreateTransaction handles the creation of a new transaction
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, entity.ErrValidation) {
			h.handleError(w, r, err, "")
			return
		}
		h.logger.Warn("Invalid request body", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid request body",
			"The request body could not be parsed as valid JSON", http.StatusBadRequest, requestID)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.handleError(w, r, err, "")
		return
	}

	tx, err := h.service.CreateTransaction(r.Context(), owner, input)
	if err != nil {
		h.handleError(w, r, err, "")
		return
	}

	writeJSON(w, http.StatusCreated, tx)
}

// ListTransactions handles listing the caller's transactions
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, err := h.service.ListTransactions(r.Context(), owner, service.ListQuery{
		Page:     queryInt(q.Get("page")),
		Limit:    queryInt(q.Get("limit")),
		Search:   q.Get("search"),
		Category: q.Get("category"),
	})
	if err != nil {
		h.handleError(w, r, err, "")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// GetSummary handles the dashboard summary of the caller's transactions
func (h *TransactionHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	summary, err := h.service.GetSummary(r.Context(), owner)
	if err != nil {
		h.handleError(w, r, err, "")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// GetTransaction handles retrieving a transaction by ID
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	tx, err := h.service.GetTransaction(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err, id)
		return
	}

	writeJSON(w, http.StatusOK, tx)
}

// UpdateTransaction handles a partial update of a transaction
func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := mux.Vars(r)["id"]

	var req UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, entity.ErrValidation) {
			h.handleError(w, r, err, id)
			return
		}
		h.logger.Warn("Invalid request body", map[string]interface{}{
			"request_id": requestID,
			"id":         id,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid request body",
			"The request body could not be parsed as valid JSON", http.StatusBadRequest, requestID)
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		h.handleError(w, r, err, id)
		return
	}

	tx, err := h.service.UpdateTransaction(r.Context(), id, patch)
	if err != nil {
		h.handleError(w, r, err, id)
		return
	}

	writeJSON(w, http.StatusOK, tx)
}

// DeleteTransaction handles removing a transaction
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.service.DeleteTransaction(r.Context(), id); err != nil {
		h.handleError(w, r, err, id)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Transaction deleted"})
}

// RegisterRoutes registers the transaction handler routes.
// The summary route must precede the {id} routes.
func (h *TransactionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/transactions", h.CreateTransaction).Methods("POST")
	router.HandleFunc("/transactions", h.ListTransactions).Methods("GET")
	router.HandleFunc("/transactions/summary", h.GetSummary).Methods("GET")
	router.HandleFunc("/transactions/{id}", h.GetTransaction).Methods("GET")
	router.HandleFunc("/transactions/{id}", h.UpdateTransaction).Methods("PUT")
	router.HandleFunc("/transactions/{id}", h.DeleteTransaction).Methods("DELETE")

	h.logger.Info("Transaction routes registered", map[string]interface{}{
		"routes": []string{
			"POST /transactions",
			"GET /transactions",
			"GET /transactions/summary",
			"GET /transactions/{id}",
			"PUT /transactions/{id}",
			"DELETE /transactions/{id}",
		},
	})
}

// requireOwner reads the authenticated owner; the auth middleware normally guarantees one
func (h *TransactionHandler) requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner, ok := middleware.GetOwnerID(r.Context())
	if !ok {
		requestID := middleware.GetRequestID(r.Context())
		h.logger.Warn("Missing owner in request context", map[string]interface{}{
			"request_id": requestID,
			"path":       r.URL.Path,
		})
		sendErrorResponse(w, h.logger, "Not authorized", "", http.StatusUnauthorized, requestID)
		return "", false
	}
	return owner, true
}

// handleError maps service errors onto HTTP responses
func (h *TransactionHandler) handleError(w http.ResponseWriter, r *http.Request, err error, id string) {
	requestID := middleware.GetRequestID(r.Context())
	fields := map[string]interface{}{
		"request_id": requestID,
		"method":     r.Method,
		"path":       r.URL.Path,
		"error":      err.Error(),
	}
	if id != "" {
		fields["id"] = id
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		h.logger.Warn("Transaction not found", fields)
		sendErrorResponse(w, h.logger, notFoundMessage,
			"The requested transaction could not be found", http.StatusNotFound, requestID)
	case errors.Is(err, entity.ErrValidation):
		h.logger.Warn("Transaction validation failed", fields)
		sendErrorResponse(w, h.logger, err.Error(), "", http.StatusBadRequest, requestID)
	default:
		h.logger.Error("Unexpected error in transaction handler", fields)
		sendErrorResponse(w, h.logger, "Internal server error",
			"An unexpected error occurred. Please try again later.", http.StatusInternalServerError, requestID)
	}
}

// queryInt parses a numeric query value; anything unparsable becomes 0 (use the default)
func queryInt(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// sendErrorResponse sends a standardized error response
func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message, description string, statusCode int, requestID string) {
	resp := ErrorResponse{
		Message:     message,
		Status:      statusCode,
		Description: description,
		RequestID:   requestID,
	}

	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"message":     message,
	})

	writeJSON(w, statusCode, resp)
}
