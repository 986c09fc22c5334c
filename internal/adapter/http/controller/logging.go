package controller

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/api-sage/mini-bank-ledger/internal/logger"
)

func logRequest(r *http.Request, payload any) {
	logger.Info("http request", logger.Fields{
		"method":  r.Method,
		"path":    r.URL.Path,
		"query":   r.URL.RawQuery,
		"payload": logger.SanitizePayload(payload),
	})
}

func logResponse(r *http.Request, status int, payload any, start time.Time) {
	logger.Info("http response", logger.Fields{
		"method":     r.Method,
		"path":       r.URL.Path,
		"status":     status,
		"durationMs": time.Since(start).Milliseconds(),
		"response":   logger.SanitizePayload(payload),
	})
}

func logError(r *http.Request, err error, extra logger.Fields) {
	fields := logger.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"query":  r.URL.RawQuery,
	}
	for k, v := range extra {
		fields[k] = v
	}
	logger.Error("http handler error", err, fields)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// statusForMessage maps service response messages onto HTTP statuses the
// way the services phrase them.
func statusForMessage(message string) int {
	switch message {
	case "validation failed":
		return http.StatusBadRequest
	case "forbidden":
		return http.StatusForbidden
	case "Account not found", "Source account not found", "Destination account not found":
		return http.StatusNotFound
	case "Insufficient balance", "OTP rejected", "No pending operation":
		return http.StatusUnprocessableEntity
	case "Failed to deliver OTP":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
