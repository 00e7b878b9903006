package acquire

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/revealboard/revealboard/dashboard/internal/config"
)

// maxBodySize bounds a single poll response.
const maxBodySize = 1 << 20

// buildHTTPClient constructs an http.Client for the source's TLS settings.
// A zero timeout leaves the client without an overall deadline, which the
// long-lived stream connection needs; the handshake is still bounded by
// ResponseHeaderTimeout.
func buildHTTPClient(src config.Source, timeout time.Duration) *http.Client {
	tlsCfg := &tls.Config{
		InsecureSkipVerify: src.TLS.InsecureSkipVerify, //nolint:gosec // user-configured
	}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			TLSClientConfig:       tlsCfg,
			ResponseHeaderTimeout: src.HandshakeTimeout,
		},
		Timeout: timeout,
	}
}

// newRequest builds a GET that bypasses every cache between us and the
// backend.
func newRequest(ctx context.Context, url, accept string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")
	return req, nil
}

// get performs one uncached GET and returns the body of a 2xx response.
func get(ctx context.Context, client *http.Client, url, accept string) ([]byte, error) {
	req, err := newRequest(ctx, url, accept)
	if err != nil {
		return nil, &FetchError{Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck
		return nil, &FetchError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, &FetchError{Err: fmt.Errorf("read body: %w", err)}
	}
	if len(body) > maxBodySize {
		return nil, &ParseError{Err: fmt.Errorf("body exceeds %d bytes", maxBodySize)}
	}
	return body, nil
}
