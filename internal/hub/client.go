package hub

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Searcher is implemented by each provider client.
type Searcher interface {
	Provider() Provider
	Search(ctx context.Context, query string, page int, perPage int) (Page, error)
}

// Fetcher routes outbound requests through a shared response cache. A nil
// Fetcher means the client talks to the upstream directly.
type Fetcher interface {
	CachedFetch(req *http.Request, client *http.Client, ttl int64) (*http.Response, error)
}

const defaultTimeout = 15 * time.Second

func clampPerPage(perPage, ceiling int) int {
	if perPage > ceiling {
		return ceiling
	}
	if perPage < 1 {
		return 1
	}
	return perPage
}

// statusError classifies a non-2xx upstream status. 429 is throttling, 401
// and 403 are credential problems, everything else is a generic provider
// failure.
func statusError(p Provider, code int) error {
	switch {
	case code == http.StatusTooManyRequests:
		return &RateLimitError{Provider: p}
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return &ConfigurationError{Provider: p, Message: "API key invalid or missing"}
	case code < 200 || code >= 300:
		return &ProviderError{Provider: p, Err: fmt.Errorf("unexpected status %d", code)}
	}
	return nil
}
