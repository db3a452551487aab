package proxy

import (
	"net"
	"net/http"
	"time"
)

// Forwarder issues the prepared request to the target. It is an injected
// capability so tests can substitute a fake without a live upstream.
type Forwarder interface {
	Forward(req *http.Request) (*http.Response, error)
}

// HTTPForwarder implements Forwarder using an http.Client that follows
// redirects transparently. No overall request timeout is imposed here; a
// deployment inherits whatever the transport or host enforces.
type HTTPForwarder struct {
	client *http.Client
}

// NewHTTPForwarder creates a forwarder with a tuned transport
func NewHTTPForwarder() *HTTPForwarder {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &HTTPForwarder{
		client: &http.Client{Transport: transport},
	}
}

// Forward sends the request to its target and returns the raw response
func (f *HTTPForwarder) Forward(req *http.Request) (*http.Response, error) {
	return f.client.Do(req)
}

// Close releases idle connections held by the underlying transport
func (f *HTTPForwarder) Close() {
	if transport, ok := f.client.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
