package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/damon-houk/expense-tracker/internal/infrastructure/logger"
	"github.com/golang-jwt/jwt/v4"
)

var (
	errMissingToken = errors.New("authorization header required")
	errInvalidToken = errors.New("invalid token")
)

// AuthMiddleware verifies the bearer token and stores its subject as the owner ID
func AuthMiddleware(secret []byte, log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			ownerID, err := ownerFromRequest(r, secret)
			if err != nil {
				log.Warn("Rejected unauthenticated request", map[string]interface{}{
					"request_id": requestID,
					"path":       r.URL.Path,
					"error":      err.Error(),
				})

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"message":    "Not authorized",
					"status":     http.StatusUnauthorized,
					"request_id": requestID,
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithOwnerID(r.Context(), ownerID)))
		})
	}
}

func ownerFromRequest(r *http.Request, secret []byte) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingToken
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if tokenString == "" || tokenString == header {
		return "", errMissingToken
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", errInvalidToken
	}

	if claims.Subject == "" {
		return "", errInvalidToken
	}

	return claims.Subject, nil
}

// WithOwnerID returns a copy of ctx carrying the authenticated owner ID
func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}

// GetOwnerID retrieves the authenticated owner ID from context
func GetOwnerID(ctx context.Context) (string, bool) {
	ownerID, ok := ctx.Value(ownerIDKey).(string)
	if !ok || ownerID == "" {
		return "", false
	}
	return ownerID, true
}
