package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/pkg/logging"
)

// RequestLogger emits a structured log line per HTTP request. Webhook bodies
// are never logged here; the transcript archive carries message content.
func RequestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = uuid.NewString()
			}
			next.ServeHTTP(w, r)
			logger.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", reqID,
				"remote_ip", r.RemoteAddr,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
