package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/harshraj001/cors-ninja/internal/ratelimit"
)

// AccessLog emits one structured log entry per handled request
type AccessLog struct {
	logger *zap.Logger
}

// accessLogResponseWrapper wraps http.ResponseWriter to capture response details
type accessLogResponseWrapper struct {
	http.ResponseWriter
	statusCode   int
	responseSize int64
	wroteHeader  bool
}

func (rw *accessLogResponseWrapper) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *accessLogResponseWrapper) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.responseSize += int64(n)
	return n, err
}

// NewAccessLog creates a new access logging middleware
func NewAccessLog(logger *zap.Logger) *AccessLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessLog{logger: logger}
}

// Handler returns the HTTP middleware handler
func (a *AccessLog) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := &accessLogResponseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapper, r)

			a.logger.Info("request completed",
				zap.String("client_ip", ratelimit.ClientIP(r)),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapper.statusCode),
				zap.Int64("latency_ms", time.Since(start).Milliseconds()),
				zap.Int64("response_size", wrapper.responseSize),
				zap.String("user_agent", r.UserAgent()),
			)
		})
	}
}
