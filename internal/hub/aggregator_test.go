package hub

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeSearcher scripts one provider's behaviour for aggregator tests.
type fakeSearcher struct {
	provider Provider
	page     Page
	err      error
	delay    time.Duration
	calls    int32
}

func (f *fakeSearcher) Provider() Provider { return f.provider }

func (f *fakeSearcher) Search(ctx context.Context, query string, page int, perPage int) (Page, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return Page{}, f.err
	}
	return f.page, nil
}

func fakeImage(p Provider, id string) ImageResult {
	return ImageResult{ID: id, Source: p, Author: "someone", Tags: []string{}}
}

func TestSearchImagesPartialFailure(t *testing.T) {
	unsplash := &fakeSearcher{
		provider: Unsplash,
		page:     Page{Images: []ImageResult{fakeImage(Unsplash, "u-1"), fakeImage(Unsplash, "u-2")}, Total: 40, TotalPages: 2},
	}
	pexels := &fakeSearcher{provider: Pexels, err: &RateLimitError{Provider: Pexels}}
	agg := NewAggregator(unsplash, pexels)

	resp, err := agg.SearchImages(context.Background(), "sunset", []Provider{Unsplash, Pexels}, 1, 20)
	assert.NoError(t, err)
	assert.Len(t, resp.Providers, 2)
	assert.Equal(t, 40, resp.TotalResults)
	assert.True(t, resp.HasMore)

	ok := resp.Providers[0]
	assert.Equal(t, Unsplash, ok.Provider)
	assert.Empty(t, ok.Error)
	assert.Len(t, ok.Images, 2)
	assert.Equal(t, 1, ok.CurrentPage)
	assert.True(t, ok.HasMore)

	failed := resp.Providers[1]
	assert.Equal(t, Pexels, failed.Provider)
	assert.Equal(t, "Pexels rate limit exceeded", failed.Error)
	assert.NotNil(t, failed.Images)
	assert.Empty(t, failed.Images)
	assert.False(t, failed.HasMore)
	assert.Equal(t, map[string]string{"pexels": "Pexels rate limit exceeded"}, resp.Errors)
}

func TestSearchImagesCanonicalOrder(t *testing.T) {
	// Pexels answers first, Unsplash last; output order must not change.
	unsplash := &fakeSearcher{provider: Unsplash, delay: 30 * time.Millisecond, page: Page{Images: []ImageResult{fakeImage(Unsplash, "u-1")}, Total: 1, TotalPages: 1}}
	pixabay := &fakeSearcher{provider: Pixabay, delay: 15 * time.Millisecond, page: Page{Images: []ImageResult{fakeImage(Pixabay, "pb-1")}, Total: 1, TotalPages: 1}}
	pexels := &fakeSearcher{provider: Pexels, page: Page{Images: []ImageResult{fakeImage(Pexels, "px-1")}, Total: 1, TotalPages: 1}}
	agg := NewAggregator(pexels, pixabay, unsplash)

	resp, err := agg.SearchImages(context.Background(), "cats", []Provider{Pexels, Unsplash, Pixabay}, 1, 20)
	assert.NoError(t, err)
	got := make([]Provider, 0, 3)
	for _, r := range resp.Providers {
		got = append(got, r.Provider)
	}
	assert.Equal(t, []Provider{Unsplash, Pixabay, Pexels}, got)
}

func TestSearchImagesSingleProvider(t *testing.T) {
	pixabay := &fakeSearcher{provider: Pixabay, page: Page{Images: []ImageResult{fakeImage(Pixabay, "pb-1")}, Total: 10, TotalPages: 1}}
	agg := NewAggregator(pixabay)

	resp, err := agg.SearchImages(context.Background(), "dogs", []Provider{Pixabay}, 1, 20)
	assert.NoError(t, err)
	assert.Len(t, resp.Providers, 1)
	assert.Equal(t, Pixabay, resp.Providers[0].Provider)
	assert.Equal(t, 10, resp.TotalResults)
	assert.False(t, resp.HasMore)
	assert.Empty(t, resp.Errors)
}

func TestSearchImagesAllProvidersFail(t *testing.T) {
	unsplash := &fakeSearcher{provider: Unsplash, err: &ConfigurationError{Provider: Unsplash, Message: "API key invalid or missing"}}
	pexels := &fakeSearcher{provider: Pexels, err: &ProviderError{Provider: Pexels, Err: errors.New("connection refused")}}
	agg := NewAggregator(unsplash, pexels)

	resp, err := agg.SearchImages(context.Background(), "sunset", []Provider{Unsplash, Pexels}, 1, 20)
	assert.NoError(t, err, "total provider failure is data, not an error")
	assert.Len(t, resp.Providers, 2)
	assert.Len(t, resp.Errors, 2)
	assert.Equal(t, 0, resp.TotalResults)
	assert.False(t, resp.HasMore)
	for _, r := range resp.Providers {
		assert.NotEmpty(t, r.Error)
		assert.Empty(t, r.Images)
	}
}

func TestSearchImagesValidation(t *testing.T) {
	unsplash := &fakeSearcher{provider: Unsplash, page: Page{}}
	agg := NewAggregator(unsplash)
	ctx := context.Background()

	var validationErr *ValidationError

	_, err := agg.SearchImages(ctx, "   ", []Provider{Unsplash}, 1, 20)
	assert.ErrorAs(t, err, &validationErr)

	_, err = agg.SearchImages(ctx, "cats", nil, 1, 20)
	assert.ErrorAs(t, err, &validationErr)

	_, err = agg.SearchImages(ctx, "cats", []Provider{Unsplash}, 0, 20)
	assert.ErrorAs(t, err, &validationErr)

	_, err = agg.SearchImages(ctx, "cats", []Provider{Unsplash}, 1, 0)
	assert.ErrorAs(t, err, &validationErr)

	_, err = agg.SearchImages(ctx, "cats", []Provider{Unsplash}, 1, MaxPerPage+1)
	assert.ErrorAs(t, err, &validationErr)

	assert.Equal(t, int32(0), atomic.LoadInt32(&unsplash.calls),
		"invalid input must never reach a provider")
}

func TestSearchImagesUnconfiguredProvider(t *testing.T) {
	unsplash := &fakeSearcher{provider: Unsplash, page: Page{Images: []ImageResult{fakeImage(Unsplash, "u-1")}, Total: 1, TotalPages: 1}}
	agg := NewAggregator(unsplash)

	resp, err := agg.SearchImages(context.Background(), "cats", []Provider{Unsplash, Pexels}, 1, 20)
	assert.NoError(t, err)
	assert.Len(t, resp.Providers, 2)
	assert.Equal(t, Pexels, resp.Providers[1].Provider)
	assert.Contains(t, resp.Providers[1].Error, "not configured")
}

func TestSearchImagesDuplicateSelection(t *testing.T) {
	unsplash := &fakeSearcher{provider: Unsplash, page: Page{Images: []ImageResult{fakeImage(Unsplash, "u-1")}, Total: 1, TotalPages: 1}}
	agg := NewAggregator(unsplash)

	resp, err := agg.SearchImages(context.Background(), "cats", []Provider{Unsplash, Unsplash}, 1, 20)
	assert.NoError(t, err)
	assert.Len(t, resp.Providers, 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&unsplash.calls))
}

func TestSearchImagesHasMoreAggregation(t *testing.T) {
	unsplash := &fakeSearcher{provider: Unsplash, page: Page{Images: []ImageResult{fakeImage(Unsplash, "u-1")}, Total: 1, TotalPages: 1}}
	pixabay := &fakeSearcher{provider: Pixabay, page: Page{Images: []ImageResult{fakeImage(Pixabay, "pb-1")}, Total: 50, TotalPages: 3}}
	agg := NewAggregator(unsplash, pixabay)

	resp, err := agg.SearchImages(context.Background(), "cats", []Provider{Unsplash, Pixabay}, 1, 20)
	assert.NoError(t, err)
	assert.False(t, resp.Providers[0].HasMore)
	assert.True(t, resp.Providers[1].HasMore)
	assert.True(t, resp.HasMore)
	assert.Equal(t, 51, resp.TotalResults)
}
