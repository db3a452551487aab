package proxy

import (
	"net/http"
	"strings"
	"time"

	"github.com/harshraj001/cors-ninja/internal/config"
)

// Version is reported in the service info response and in the
// X-CORS-Ninja-Version diagnostic header.
const Version = "1.0.0"

const (
	allowedMethods        = "GET, POST, PUT, DELETE, OPTIONS, PATCH"
	defaultAllowedHeaders = "Content-Type, Authorization, X-Requested-With"
	corsMaxAge            = "86400"
)

// skippedHeaderPrefixes are lowercase prefixes of header names that must not
// be forwarded to the target: the inbound Host, platform-injected metadata,
// and hop-by-hop connection headers.
var skippedHeaderPrefixes = []string{"host", "cf-", "cdn-loop", "connection", "expect"}

// ForwardHeaders returns a copy of the inbound headers suitable for
// forwarding to the target. Headers whose lowercased name starts with one of
// skippedHeaderPrefixes are excluded; multi-valued headers are preserved as
// multiple entries. The input is not modified.
func ForwardHeaders(in http.Header) http.Header {
	out := make(http.Header, len(in))

	for name, values := range in {
		if skipHeader(name) {
			continue
		}
		for _, value := range values {
			out.Add(name, value)
		}
	}

	return out
}

func skipHeader(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range skippedHeaderPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// SetCORSHeaders writes the outbound CORS header set into h.
//
// The Allow-Origin value echoes the request origin when the allow-list
// contains "*" or that exact origin; otherwise it falls back to the first
// configured origin, or the empty string for an empty allow-list. A
// "Vary: Origin" entry is appended rather than overwritten so shared caches
// never serve one origin's CORS headers to another.
func SetCORSHeaders(h http.Header, origin, requestedHeaders string, sec *config.SecurityConfig) {
	effectiveOrigin := origin
	if effectiveOrigin == "" {
		effectiveOrigin = "*"
	}

	if containsOrigin(sec.AllowedOrigins, "*") || containsOrigin(sec.AllowedOrigins, effectiveOrigin) {
		h.Set("Access-Control-Allow-Origin", effectiveOrigin)
	} else if len(sec.AllowedOrigins) > 0 {
		h.Set("Access-Control-Allow-Origin", sec.AllowedOrigins[0])
	} else {
		h.Set("Access-Control-Allow-Origin", "")
	}

	h.Set("Access-Control-Allow-Methods", allowedMethods)
	if requestedHeaders != "" {
		h.Set("Access-Control-Allow-Headers", requestedHeaders)
	} else {
		h.Set("Access-Control-Allow-Headers", defaultAllowedHeaders)
	}
	h.Set("Access-Control-Max-Age", corsMaxAge)
	h.Set("Access-Control-Allow-Credentials", "true")

	h.Add("Vary", "Origin")

	h.Set("X-CORS-Ninja-Version", Version)
	h.Set("X-CORS-Ninja-Date", time.Now().UTC().Format(time.RFC3339))
}

func containsOrigin(origins []string, origin string) bool {
	for _, o := range origins {
		if o == origin {
			return true
		}
	}
	return false
}
