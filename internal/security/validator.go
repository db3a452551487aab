// Package security contains the pure validation functions that gate the
// proxy flow: destination domain blocking and origin allow-listing.
package security

import (
	"net/url"
	"strings"
)

// ValidTargetURL reports whether raw parses as an absolute URL whose hostname
// is not covered by the blocked-domain list. An entry blocks both the exact
// hostname and any subdomain of it. There is no scheme or port restriction.
func ValidTargetURL(raw string, blockedDomains []string) bool {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return false
	}

	hostname := strings.ToLower(parsed.Hostname())
	for _, domain := range blockedDomains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain == "" {
			continue
		}
		if hostname == domain || strings.HasSuffix(hostname, "."+domain) {
			return false
		}
	}

	return true
}

// OriginAllowed reports whether origin is a member of the allow-list.
// An absent origin is never allowed; the entry "*" allows every origin.
// Matching is exact, with no wildcard subdomains and no scheme normalization.
func OriginAllowed(origin string, allowedOrigins []string) bool {
	if origin == "" {
		return false
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			return true
		}
	}
	for _, allowed := range allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}
