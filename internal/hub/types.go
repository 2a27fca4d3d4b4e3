package hub

// Provider identifies one upstream image search API.
type Provider string

const (
	Unsplash Provider = "unsplash"
	Pixabay  Provider = "pixabay"
	Pexels   Provider = "pexels"
)

// providerOrder is the canonical output order. Response arrival order must
// never leak into SearchResponse.Providers.
var providerOrder = []Provider{Unsplash, Pixabay, Pexels}

// Providers returns every known provider in canonical order.
func Providers() []Provider {
	out := make([]Provider, len(providerOrder))
	copy(out, providerOrder)
	return out
}

// ParseProvider maps a query-parameter token to a Provider.
func ParseProvider(s string) (Provider, bool) {
	switch Provider(s) {
	case Unsplash, Pixabay, Pexels:
		return Provider(s), true
	}
	return "", false
}

// DisplayName is the capitalized name used in attribution strings.
func (p Provider) DisplayName() string {
	switch p {
	case Unsplash:
		return "Unsplash"
	case Pixabay:
		return "Pixabay"
	case Pexels:
		return "Pexels"
	}
	return string(p)
}

// ImageResult is the unified cross-provider record. IDs carry a per-provider
// prefix (u-, pb-, px-) so native IDs cannot collide across providers; the ID
// is the dedup key for incremental merges.
type ImageResult struct {
	ID          string   `json:"id"`
	Source      Provider `json:"source"`
	URLThumb    string   `json:"urlThumb"`
	URLRegular  string   `json:"urlRegular"`
	URLFull     string   `json:"urlFull"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Description *string  `json:"description"`
	Author      string   `json:"author"`
	AuthorURL   *string  `json:"authorUrl"`
	SourceURL   string   `json:"sourceUrl"`
	Tags        []string `json:"tags"`
	Attribution string   `json:"attribution"`
}

// ProviderResult is the outcome of one provider within one aggregate call.
// Error non-empty implies Images is empty and HasMore is false.
type ProviderResult struct {
	Provider    Provider      `json:"provider"`
	Images      []ImageResult `json:"images"`
	Total       int           `json:"total"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
	HasMore     bool          `json:"hasMore"`
	Error       string        `json:"error,omitempty"`
}

// SearchResponse is the aggregate result of one search call. Providers holds
// one entry per requested provider, in canonical order, failed ones included.
type SearchResponse struct {
	Query        string            `json:"query"`
	Providers    []ProviderResult  `json:"providers"`
	TotalResults int               `json:"totalResults"`
	HasMore      bool              `json:"hasMore"`
	Errors       map[string]string `json:"errors"`
}

// Page is what a provider client returns for one successful search call:
// the normalized records plus the provider-reported pagination counts.
type Page struct {
	Images     []ImageResult
	Total      int
	TotalPages int
}
