package proxy

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/harshraj001/cors-ninja/internal/config"
	"github.com/harshraj001/cors-ninja/internal/middleware"
	"github.com/harshraj001/cors-ninja/internal/ratelimit"
	"github.com/harshraj001/cors-ninja/internal/security"
	"github.com/harshraj001/cors-ninja/pkg/store"
)

// Router dispatches inbound requests to the service-info, config, health,
// preflight and proxy flows. Branches are evaluated in a fixed precedence
// order; the first match wins.
type Router struct {
	config         *config.Config
	limiter        *ratelimit.SlidingWindowLimiter
	forwarder      Forwarder
	kv             store.KVStore
	metrics        *middleware.Metrics
	metricsHandler http.Handler
	logger         *zap.Logger
}

// RouterOptions carries the collaborators a Router needs
type RouterOptions struct {
	Config    *config.Config
	Limiter   *ratelimit.SlidingWindowLimiter
	Forwarder Forwarder
	Store     store.KVStore
	Metrics   *middleware.Metrics
	Logger    *zap.Logger
}

// NewRouter creates a new request router
func NewRouter(opts RouterOptions) *Router {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Router{
		config:    opts.Config,
		limiter:   opts.Limiter,
		forwarder: opts.Forwarder,
		kv:        opts.Store,
		metrics:   opts.Metrics,
		logger:    logger,
	}
	if opts.Metrics != nil {
		r.metricsHandler = opts.Metrics.HTTPHandler()
	}
	return r
}

// ServeHTTP implements http.Handler
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/" || r.URL.Path == "":
		rt.handleServiceInfo(w, r)
	case r.URL.Path == "/config":
		rt.handleConfig(w, r)
	case r.Method == http.MethodOptions:
		rt.handlePreflight(w, r)
	case r.URL.Path == "/healthz":
		rt.handleHealth(w, r)
	case r.URL.Path == "/metrics" && rt.config.Monitoring.Enabled && rt.metricsHandler != nil:
		rt.metricsHandler.ServeHTTP(w, r)
	case r.URL.Path == "/proxy":
		rt.handleProxy(w, r)
	default:
		writeError(w, rt.logger, "Not Found. Valid endpoints are /, /proxy, and /config", http.StatusNotFound)
	}
}

// handleServiceInfo serves the static service description
func (rt *Router) handleServiceInfo(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Cache-Control", "public, max-age=3600")

	writeJSON(w, rt.logger, map[string]interface{}{
		"name":          "CORS Ninja Proxy",
		"version":       Version,
		"documentation": "https://github.com/harshraj001/Cors-Ninja",
		"endpoints": map[string]string{
			"/":                   "Service information",
			"/proxy?url=<target>": "Proxy the specified URL with CORS headers",
			"/config":             "View current configuration",
			"/healthz":            "Service health",
			"/metrics":            "Prometheus metrics (when monitoring is enabled)",
		},
	})
}

// handleConfig serves the active configuration
func (rt *Router) handleConfig(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Cache-Control", "no-store")

	writeJSON(w, rt.logger, map[string]interface{}{
		"config":  rt.config,
		"message": "Current CORS Ninja configuration",
	})
}

// handleHealth serves the health status of the service and its store
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	var storeHealth interface{}
	if rt.kv != nil {
		storeHealth = rt.kv.Health(r.Context())
	} else {
		storeHealth = map[string]string{"status": "unavailable"}
	}

	writeJSON(w, rt.logger, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"store":     storeHealth,
		"rate_limit": map[string]interface{}{
			"enabled":             rt.config.RateLimit.Enabled,
			"requests_per_minute": rt.config.RateLimit.RequestsPerMinute,
		},
	})
}

// handlePreflight answers OPTIONS requests with CORS headers and an empty
// body. Preflights skip proxying, validation and rate limiting entirely.
func (rt *Router) handlePreflight(w http.ResponseWriter, r *http.Request) {
	SetCORSHeaders(w.Header(),
		r.Header.Get("Origin"),
		r.Header.Get("Access-Control-Request-Headers"),
		&rt.config.Security)
	w.WriteHeader(http.StatusOK)
}

// handleProxy runs the validation → rate limit → forward → response chain
func (rt *Router) handleProxy(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	targetURL := r.URL.Query().Get("url")
	if targetURL == "" {
		writeError(w, rt.logger, "Missing target URL. Please provide a url parameter.", http.StatusBadRequest)
		return
	}

	if rt.config.Security.EnabledURLValidation &&
		!security.ValidTargetURL(targetURL, rt.config.Security.BlockedDomains) {
		writeError(w, rt.logger, "Invalid or blocked target URL.", http.StatusForbidden)
		return
	}

	// An absent Origin or a wildcard allow-list both skip this check; only
	// an explicit allow-list rejects explicit origins outside it.
	origin := r.Header.Get("Origin")
	if origin != "" && len(rt.config.Security.AllowedOrigins) > 0 &&
		!security.OriginAllowed("*", rt.config.Security.AllowedOrigins) &&
		!security.OriginAllowed(origin, rt.config.Security.AllowedOrigins) {
		writeError(w, rt.logger, "Origin not allowed.", http.StatusForbidden)
		return
	}

	if rt.config.RateLimit.Enabled && rt.limiter != nil {
		clientIP := ratelimit.ClientIP(r)
		decision := rt.limiter.Allow(r.Context(), clientIP)
		if decision.FailedOpen && rt.metrics != nil {
			rt.metrics.FailOpens.Inc()
		}
		if !decision.Allowed {
			if rt.metrics != nil {
				rt.metrics.RateLimitRejections.Inc()
			}
			rt.logger.Debug("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.Int("limit", decision.Limit))
			writeError(w, rt.logger, "Rate limit exceeded. Try again later.", http.StatusTooManyRequests)
			return
		}
	}

	var body io.Reader
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		body = r.Body
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, targetURL, body)
	if err != nil {
		writeError(w, rt.logger,
			fmt.Sprintf("Failed to proxy request: %v", err), http.StatusInternalServerError)
		return
	}
	req.Header = ForwardHeaders(r.Header)

	resp, err := rt.forwarder.Forward(req)
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.UpstreamErrors.Inc()
		}
		rt.logger.Warn("forward request failed",
			zap.String("target", targetURL),
			zap.Error(err))
		writeError(w, rt.logger,
			fmt.Sprintf("Failed to proxy request: %v", err), http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	h := w.Header()
	copyHeader(h, resp.Header)

	SetCORSHeaders(h, origin, r.Header.Get("Access-Control-Request-Headers"), &rt.config.Security)

	if rt.config.Cache.Enabled {
		h.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", rt.config.Cache.MaxAgeSeconds))
	} else {
		h.Set("Cache-Control", "no-store, no-cache")
	}

	if rt.config.Monitoring.Enabled {
		h.Set("X-CORS-Ninja-Processing-Time",
			fmt.Sprintf("%dms", time.Since(start).Milliseconds()))
	}

	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		rt.logger.Warn("failed to relay response body",
			zap.String("target", targetURL),
			zap.Error(err))
	}
}

// copyHeader copies headers from source to destination
func copyHeader(dst, src http.Header) {
	for k, vv := range src {
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}
