package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/edtke/archivecheck/internal/common"
)

// HTTPFetcher fetches documents over plain HTTP(S).
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher constructs a fetcher with the given request timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch performs a GET of url. 404 and 410 map to common.ErrNotFound; any
// other non-2xx status is an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return "", fmt.Errorf("fetch %s: %w", url, common.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body of %s: %w", url, err)
	}
	return string(body), nil
}
