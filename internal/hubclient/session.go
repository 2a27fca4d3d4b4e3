// Package hubclient drives incremental image searches against a running
// images-hub server: fresh searches replace the result set, load-more merges
// new pages into the accumulated per-provider lists deduplicated by record ID.
package hubclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/williamjxj/images-hub/internal/hub"
)

// Session is the single logical owner of one search view: the active query,
// provider selection and the accumulated results. All methods are safe for
// concurrent use; the in-flight guard makes an overlapping LoadMore a no-op
// instead of a duplicate request.
type Session struct {
	http     *http.Client
	baseURL  string
	username string
	password string
	perPage  int

	mu          sync.Mutex
	query       string
	providers   []hub.Provider
	results     *hub.SearchResponse
	loading     bool
	lastErr     error
	currentPage int
}

type Option func(*Session)

func WithBasicAuth(user, pass string) Option {
	return func(s *Session) {
		s.username = user
		s.password = pass
	}
}

func WithPerPage(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.perPage = n
		}
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(s *Session) {
		s.http = c
	}
}

func NewSession(baseURL string, opts ...Option) *Session {
	s := &Session{
		http:      &http.Client{Timeout: 30 * time.Second},
		baseURL:   strings.TrimRight(baseURL, "/"),
		perPage:   hub.DefaultPerPage,
		providers: hub.Providers(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search starts a fresh query: page one is fetched and replaces any previous
// results wholesale. An optional provider list overrides the selection.
func (s *Session) Search(ctx context.Context, query string, providers ...hub.Provider) error {
	query = strings.TrimSpace(query)
	if query == "" {
		err := errors.New("query cannot be empty")
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	if len(providers) > 0 {
		s.providers = append([]hub.Provider(nil), providers...)
	}
	s.query = query
	selection := append([]hub.Provider(nil), s.providers...)
	s.loading = true
	s.lastErr = nil
	s.mu.Unlock()

	resp, err := s.fetch(ctx, query, selection, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		// Keep whatever was already on screen; the caller can Retry.
		s.lastErr = err
		return err
	}
	s.results = resp
	s.currentPage = 1
	return nil
}

// LoadMore fetches the next page and merges it into the accumulated results.
// It is a no-op while a load is in flight, before any search, or once every
// provider is exhausted.
func (s *Session) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.loading || s.query == "" || s.results == nil || !s.results.HasMore {
		s.mu.Unlock()
		return nil
	}
	query := s.query
	selection := append([]hub.Provider(nil), s.providers...)
	page := s.currentPage + 1
	s.loading = true
	s.lastErr = nil
	s.mu.Unlock()

	resp, err := s.fetch(ctx, query, selection, page)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = err
		return err
	}
	s.results = merge(s.results, resp)
	s.currentPage = page
	return nil
}

// Retry re-issues the active query at the last completed page, recovering
// from a failed load without losing accumulated results. Deduplication makes
// the merge idempotent when the page was already applied.
func (s *Session) Retry(ctx context.Context) error {
	s.mu.Lock()
	if s.loading || s.query == "" {
		s.mu.Unlock()
		return nil
	}
	query := s.query
	selection := append([]hub.Provider(nil), s.providers...)
	page := s.currentPage
	if page < 1 {
		page = 1
	}
	s.loading = true
	s.lastErr = nil
	s.mu.Unlock()

	resp, err := s.fetch(ctx, query, selection, page)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = err
		return err
	}
	if page == 1 || s.results == nil {
		s.results = resp
	} else {
		s.results = merge(s.results, resp)
	}
	s.currentPage = page
	return nil
}

// SetProviders updates the active selection. Already-fetched results are left
// untouched; the caller decides when to re-run Search.
func (s *Session) SetProviders(providers []hub.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers = append([]hub.Provider(nil), providers...)
}

// ClearResults drops the query and everything fetched so far.
func (s *Session) ClearResults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = ""
	s.results = nil
	s.currentPage = 1
	s.lastErr = nil
}

func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

func (s *Session) Providers() []hub.Provider {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]hub.Provider(nil), s.providers...)
}

// Results returns the current merged view, or nil before the first search.
func (s *Session) Results() *hub.SearchResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage
}

func (s *Session) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results != nil && s.results.HasMore
}

func (s *Session) fetch(ctx context.Context, query string, providers []hub.Provider, page int) (*hub.SearchResponse, error) {
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = string(p)
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("providers", strings.Join(names, ","))
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(s.perPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if s.username != "" {
		req.SetBasicAuth(s.username, s.password)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&body) == nil && body.Message != "" {
			return nil, fmt.Errorf("search failed: %s", body.Message)
		}
		return nil, fmt.Errorf("search failed: %s", resp.Status)
	}

	var out hub.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

// merge folds a freshly fetched page into the accumulated response. Per
// provider it appends only images whose ID is not already present and takes
// the new page's hasMore/currentPage as authoritative.
func merge(prev, next *hub.SearchResponse) *hub.SearchResponse {
	providers := make([]hub.ProviderResult, 0, len(prev.Providers))
	for _, pp := range prev.Providers {
		np, ok := findProvider(next, pp.Provider)
		if !ok {
			providers = append(providers, pp)
			continue
		}
		seen := make(map[string]bool, len(pp.Images))
		for _, img := range pp.Images {
			seen[img.ID] = true
		}
		images := append([]hub.ImageResult(nil), pp.Images...)
		for _, img := range np.Images {
			if !seen[img.ID] {
				seen[img.ID] = true
				images = append(images, img)
			}
		}
		errMsg := np.Error
		if errMsg == "" {
			errMsg = pp.Error
		}
		providers = append(providers, hub.ProviderResult{
			Provider:    pp.Provider,
			Images:      images,
			Total:       pp.Total,
			TotalPages:  pp.TotalPages,
			CurrentPage: np.CurrentPage,
			HasMore:     np.HasMore,
			Error:       errMsg,
		})
	}

	out := &hub.SearchResponse{
		Query:     next.Query,
		Providers: providers,
		Errors:    next.Errors,
	}
	for _, p := range providers {
		out.TotalResults += p.Total
		if p.HasMore {
			out.HasMore = true
		}
	}
	return out
}

func findProvider(resp *hub.SearchResponse, p hub.Provider) (hub.ProviderResult, bool) {
	for _, r := range resp.Providers {
		if r.Provider == p {
			return r, true
		}
	}
	return hub.ProviderResult{}, false
}
