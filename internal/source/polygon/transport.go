package polygon

import (
	"net/http"
	"time"
)

// baseTransportConfig returns the shared HTTP transport configuration used by Polygon clients.
func baseTransportConfig() *http.Transport {
	return &http.Transport{
		ResponseHeaderTimeout: 2 * time.Minute,
		TLSHandshakeTimeout:   10 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConnsPerHost:   4,
	}
}

// newHTTPClient creates an HTTP client configured for Polygon requests.
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: baseTransportConfig(),
		Timeout:   5 * time.Minute,
	}
}
