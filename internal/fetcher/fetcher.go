// Package fetcher is the abstract transport collaborator spec.md treats as
// external: "an abstract fetcher returning bytes + status". Callers depend
// only on the Fetcher interface; HTTPFetcher is the concrete net/http-backed
// implementation used outside of tests.
package fetcher

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Response is the minimal shape the rest of the pipeline needs from an HTTP
// round trip.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// Fetcher performs a single GET, optionally with extra headers (e.g. a
// Range header for space-probing).
type Fetcher interface {
	Get(ctx context.Context, rawURL string, headers map[string]string) (*Response, error)
}

// HTTPFetcher is the default Fetcher backed by net/http, sized and timed
// out the way the teacher's validator/downloader clients are.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher with connection pooling comparable to
// the teacher's HLS validator client.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
	}
}

func (f *HTTPFetcher) Get(ctx context.Context, rawURL string, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: resp.Body}, nil
}

// IsConnectivityError reports whether err represents a transport-level
// failure (DNS/connection refused/offline) as opposed to an HTTP status
// the server returned. Used to distinguish NO_NETWORK from
// INPUT_UNREACHABLE per spec.md §4.1.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return IsConnectivityError(urlErr.Err)
	}
	return false
}
