package provider

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds every outbound provider call.
const DefaultTimeout = 10 * time.Second

// NewHTTPClient returns the client shared by all adapters. Every request gets
// the same timeout, and requests without an Accept header ask for JSON so that
// token endpoints answering form-encoded by default (GitHub) reply in JSON.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: acceptJSON{next: http.DefaultTransport},
	}
}

type acceptJSON struct {
	next http.RoundTripper
}

func (t acceptJSON) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Accept", "application/json")
	}
	return t.next.RoundTrip(req)
}
