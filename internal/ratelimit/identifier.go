package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// FallbackClientIP is used as the rate-limit key when the client IP cannot
// be determined from the request.
const FallbackClientIP = "0.0.0.0"

// ClientIP extracts the client IP address from the request. It prefers the
// headers an edge platform or upstream proxy sets, then falls back to the
// connection's remote address, then to FallbackClientIP.
func ClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		if ip := strings.TrimSpace(ips[0]); ip != "" {
			return ip
		}
	}

	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	if r.RemoteAddr != "" {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return r.RemoteAddr
		}
		return ip
	}

	return FallbackClientIP
}
