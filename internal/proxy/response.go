package proxy

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrorEnvelope is the body shape of every error response this system
// produces itself, as opposed to bodies relayed from the proxied target.
type ErrorEnvelope struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the user-visible failure description
type ErrorDetail struct {
	Message   string `json:"message"`
	Status    int    `json:"status"`
	Timestamp string `json:"timestamp"`
}

// writeError writes the error envelope with permissive CORS headers so that
// browser callers can read the failure instead of getting an opaque CORS
// violation on top of it.
func writeError(w http.ResponseWriter, logger *zap.Logger, message string, status int) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", allowedMethods)
	h.Set("Access-Control-Allow-Headers", defaultAllowedHeaders)
	h.Set("Access-Control-Max-Age", corsMaxAge)

	w.WriteHeader(status)

	envelope := ErrorEnvelope{
		Error: ErrorDetail{
			Message:   message,
			Status:    status,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		logger.Error("failed to encode error response", zap.Error(err))
	}
}

// writeJSON writes v as a JSON response body with status 200
func writeJSON(w http.ResponseWriter, logger *zap.Logger, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}
