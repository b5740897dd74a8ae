package handler

import (
	"fmt"
	"net/http"

	"github.com/damon-houk/expense-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/middleware"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// APIPrefix is the path every authenticated route lives under
const APIPrefix = "/api"

// RouterConfig holds what NewRouter needs besides the handlers
type RouterConfig struct {
	JWTSecret   []byte
	CORSOrigins []string
	Logger      logger.Logger
}

// NewRouter builds the full HTTP handler: request ids, logging, auth on /api,
// CORS and panic recovery
func NewRouter(txHandler *TransactionHandler, cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware, middleware.LoggingMiddleware(log))

	RegisterHealthRoute(router)

	api := router.PathPrefix(APIPrefix).Subrouter()
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret, log))
	txHandler.RegisterRoutes(api)

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Request-ID"}),
		handlers.ExposedHeaders([]string{"X-Request-ID"}),
	)

	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{log: log}),
		handlers.PrintRecoveryStack(false),
	)

	return recovery(cors(router))
}

// recoveryLogger adapts Logger to the gorilla/handlers recovery logger
type recoveryLogger struct {
	log logger.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.log.Error("Recovered from panic", map[string]interface{}{
		"panic": fmt.Sprint(v...),
	})
}
