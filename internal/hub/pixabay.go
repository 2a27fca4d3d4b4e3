package hub

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type PixabayHit struct {
	ID            int    `json:"id"`
	WebFormatURL  string `json:"webformatURL"`
	LargeImageURL string `json:"largeImageURL"`
	FullHDURL     string `json:"fullHDURL"`
	ImageURL      string `json:"imageURL"`
	ImageWidth    int    `json:"imageWidth"`
	ImageHeight   int    `json:"imageHeight"`
	User          string `json:"user"`
	Tags          string `json:"tags"`
}

type PixabaySearchResult struct {
	Total     int          `json:"total"`
	TotalHits int          `json:"totalHits"`
	Hits      []PixabayHit `json:"hits"`
}

type PixabayApi struct {
	Http    http.Client
	cache   Fetcher
	apiKey  string
	baseUrl string
	log     *log.Logger
}

func NewPixabayApi(apiKey string, cache Fetcher, timeout time.Duration) (*PixabayApi, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &ConfigurationError{Provider: Pixabay, Message: "API key is required"}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &PixabayApi{
		Http:    http.Client{Timeout: timeout},
		cache:   cache,
		apiKey:  apiKey,
		baseUrl: "https://pixabay.com/api/",
		log:     log.New(os.Stderr, "(pixabay) ", log.LstdFlags),
	}, nil
}

func (api *PixabayApi) Provider() Provider { return Pixabay }

func (api *PixabayApi) TTL() int { return 86400 }

func (api *PixabayApi) PageSize() int { return 200 }

func (api *PixabayApi) fetch(req *http.Request) (*http.Response, error) {
	if api.cache != nil {
		return api.cache.CachedFetch(req, &api.Http, int64(api.TTL()))
	}
	return api.Http.Do(req)
}

func (api *PixabayApi) Search(ctx context.Context, query string, page int, perPage int) (Page, error) {
	perPage = clampPerPage(perPage, api.PageSize())
	qParam := url.Values{}
	qParam.Add("key", api.apiKey)
	qParam.Add("q", strings.TrimSpace(query))
	qParam.Add("page", strconv.Itoa(page))
	qParam.Add("per_page", strconv.Itoa(perPage))
	qParam.Add("image_type", "photo")
	getReq, err := http.NewRequestWithContext(ctx, http.MethodGet, api.baseUrl+"?"+qParam.Encode(), nil)
	if err != nil {
		return Page{}, &ProviderError{Provider: Pixabay, Err: err}
	}
	resp, err := api.fetch(getReq)
	if err != nil {
		return Page{}, &ProviderError{Provider: Pixabay, Err: err}
	}
	defer resp.Body.Close()
	if err := statusError(Pixabay, resp.StatusCode); err != nil {
		return Page{}, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page{}, &ProviderError{Provider: Pixabay, Err: err}
	}
	data := PixabaySearchResult{}
	if err := json.Unmarshal(body, &data); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			api.log.Println("Unexpected response shape:", err)
			return Page{Images: []ImageResult{}}, nil
		}
		return Page{}, &ProviderError{Provider: Pixabay, Err: err}
	}
	if data.Hits == nil {
		api.log.Println("Response missing hits array")
		return Page{Images: []ImageResult{}}, nil
	}

	images := make([]ImageResult, len(data.Hits))
	for i, el := range data.Hits {
		images[i] = NormalizePixabay(el)
	}
	// totalHits is what the API will actually page through; total includes
	// hits beyond the accessible window.
	totalPages := (data.TotalHits + perPage - 1) / perPage
	return Page{Images: images, Total: data.TotalHits, TotalPages: totalPages}, nil
}
