// Package httpclient provides an HTTP client factory with consistent
// timeout and observability behavior for preview execution.
//
// The factory composes transport layers to provide:
//   - Request logging with sanitized URLs (sensitive params redacted)
//   - User-Agent header injection
//   - W3C trace context propagation
//   - TLS 1.2+ with secure defaults
//   - Connection pooling for performance
//
// Requests are never retried: a preview reflects exactly one external
// call, and the caller owns any deadline beyond the client timeout.
//
// Example usage:
//
//	cfg := httpclient.DefaultConfig()
//	cfg.UserAgent = "my-service/1.0"
//	client, err := httpclient.New(cfg)
//	if err != nil {
//	    return err
//	}
//
//	resp, err := client.Get("https://api.example.com/resource")
package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// New creates a new HTTP client with the given configuration.
// Returns an error if the configuration is invalid.
func New(cfg Config) (*http.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseTransport := &http.Transport{
		// TLS configuration: 1.2 minimum, 1.3 preferred
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			MaxVersion:         tls.VersionTLS13,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},

		// Connection pooling settings
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,

		// Timeouts
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	client := &http.Client{
		Transport: newLoggingTransport(baseTransport, cfg.UserAgent),
		Timeout:   cfg.Timeout,
	}

	if !cfg.FollowRedirects {
		// Return the 3xx response itself rather than chasing it.
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return client, nil
}
