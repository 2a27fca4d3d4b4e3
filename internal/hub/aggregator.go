package hub

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 200
)

// Aggregator fans one query out to the selected provider clients and folds
// the outcomes into a single SearchResponse. Provider failures never abort
// the aggregate call; they are carried as data on the ProviderResult.
type Aggregator struct {
	clients map[Provider]Searcher
	log     *log.Logger
}

// NewAggregator builds the provider dispatch table from the given clients.
// Adding a provider means registering one more Searcher here.
func NewAggregator(clients ...Searcher) *Aggregator {
	table := make(map[Provider]Searcher, len(clients))
	for _, c := range clients {
		table[c.Provider()] = c
	}
	return &Aggregator{
		clients: table,
		log:     log.New(os.Stderr, "(hub) ", log.LstdFlags),
	}
}

// SearchImages queries the requested providers concurrently. It returns an
// error only for invalid input, before any provider is called; the response
// always carries one ProviderResult per requested provider, in canonical
// order, regardless of which upstream answered first or failed.
func (a *Aggregator) SearchImages(ctx context.Context, query string, providers []Provider, page int, perPage int) (*SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &ValidationError{Message: "query must not be empty"}
	}
	if page < 1 {
		return nil, &ValidationError{Message: "page must be a positive integer"}
	}
	if perPage < 1 || perPage > MaxPerPage {
		return nil, &ValidationError{Message: fmt.Sprintf("per_page must be between 1 and %d", MaxPerPage)}
	}
	selected := make([]Provider, 0, len(providers))
	seen := make(map[Provider]bool, len(providers))
	for _, p := range providers {
		if !seen[p] {
			seen[p] = true
			selected = append(selected, p)
		}
	}
	if len(selected) == 0 {
		return nil, &ValidationError{Message: "at least one provider must be selected"}
	}

	chRes := make(chan ProviderResult, len(selected))
	for _, p := range selected {
		p := p
		go func() {
			chRes <- a.searchOne(ctx, p, query, page, perPage)
		}()
	}
	byProvider := make(map[Provider]ProviderResult, len(selected))
	for range selected {
		res := <-chRes
		byProvider[res.Provider] = res
	}

	resp := &SearchResponse{
		Query:  query,
		Errors: map[string]string{},
	}
	for _, p := range providerOrder {
		res, ok := byProvider[p]
		if !ok {
			continue
		}
		resp.Providers = append(resp.Providers, res)
		resp.TotalResults += res.Total
		if res.HasMore {
			resp.HasMore = true
		}
		if res.Error != "" {
			resp.Errors[string(p)] = res.Error
		}
	}
	return resp, nil
}

func (a *Aggregator) searchOne(ctx context.Context, p Provider, query string, page int, perPage int) ProviderResult {
	client, ok := a.clients[p]
	if !ok {
		err := &ConfigurationError{Provider: p, Message: "provider not configured"}
		return failedResult(p, page, err.Error())
	}
	pg, err := client.Search(ctx, query, page, perPage)
	if err != nil {
		a.log.Printf("%s search failed: %v", p, err)
		return failedResult(p, page, err.Error())
	}
	images := pg.Images
	if images == nil {
		images = []ImageResult{}
	}
	return ProviderResult{
		Provider:    p,
		Images:      images,
		Total:       pg.Total,
		TotalPages:  pg.TotalPages,
		CurrentPage: page,
		HasMore:     page < pg.TotalPages,
	}
}

func failedResult(p Provider, page int, msg string) ProviderResult {
	return ProviderResult{
		Provider:    p,
		Images:      []ImageResult{},
		CurrentPage: page,
		Error:       msg,
	}
}
