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

type PexelsPhoto struct {
	ID              int            `json:"id"`
	Width           int            `json:"width"`
	Height          int            `json:"height"`
	URL             string         `json:"url"`
	Alt             string         `json:"alt"`
	Photographer    string         `json:"photographer"`
	PhotographerURL string         `json:"photographer_url"`
	Src             PexelsPhotoSrc `json:"src"`
}

type PexelsPhotoSrc struct {
	Original string `json:"original"`
	Large2x  string `json:"large2x"`
	Large    string `json:"large"`
	Medium   string `json:"medium"`
	Small    string `json:"small"`
	Tiny     string `json:"tiny"`
}

type PexelsSearchResult struct {
	TotalResults int           `json:"total_results"`
	Page         int           `json:"page"`
	PerPage      int           `json:"per_page"`
	Photos       []PexelsPhoto `json:"photos"`
}

type PexelsApi struct {
	Http    http.Client
	cache   Fetcher
	apiKey  string
	baseUrl string
	log     *log.Logger
}

func NewPexelsApi(apiKey string, cache Fetcher, timeout time.Duration) (*PexelsApi, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &ConfigurationError{Provider: Pexels, Message: "API key is required"}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &PexelsApi{
		Http:    http.Client{Timeout: timeout},
		cache:   cache,
		apiKey:  apiKey,
		baseUrl: "https://api.pexels.com/v1/search",
		log:     log.New(os.Stderr, "(pexels) ", log.LstdFlags),
	}, nil
}

func (api *PexelsApi) Provider() Provider { return Pexels }

func (api *PexelsApi) TTL() int { return 86400 }

func (api *PexelsApi) PageSize() int { return 80 }

func (api *PexelsApi) fetch(req *http.Request) (*http.Response, error) {
	if api.cache != nil {
		return api.cache.CachedFetch(req, &api.Http, int64(api.TTL()))
	}
	return api.Http.Do(req)
}

func (api *PexelsApi) Search(ctx context.Context, query string, page int, perPage int) (Page, error) {
	perPage = clampPerPage(perPage, api.PageSize())
	qParam := url.Values{}
	qParam.Add("query", strings.TrimSpace(query))
	qParam.Add("page", strconv.Itoa(page))
	qParam.Add("per_page", strconv.Itoa(perPage))
	getReq, err := http.NewRequestWithContext(ctx, http.MethodGet, api.baseUrl+"?"+qParam.Encode(), nil)
	if err != nil {
		return Page{}, &ProviderError{Provider: Pexels, Err: err}
	}
	getReq.Header.Set("Authorization", api.apiKey)
	resp, err := api.fetch(getReq)
	if err != nil {
		return Page{}, &ProviderError{Provider: Pexels, Err: err}
	}
	defer resp.Body.Close()
	if err := statusError(Pexels, resp.StatusCode); err != nil {
		return Page{}, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page{}, &ProviderError{Provider: Pexels, Err: err}
	}
	data := PexelsSearchResult{}
	if err := json.Unmarshal(body, &data); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			api.log.Println("Unexpected response shape:", err)
			return Page{Images: []ImageResult{}}, nil
		}
		return Page{}, &ProviderError{Provider: Pexels, Err: err}
	}
	if data.Photos == nil {
		api.log.Println("Response missing photos array")
		return Page{Images: []ImageResult{}}, nil
	}

	images := make([]ImageResult, len(data.Photos))
	for i, el := range data.Photos {
		images[i] = NormalizePexels(el)
	}
	// Pexels reports no page count; derive it from its echoed page size.
	if data.PerPage <= 0 {
		data.PerPage = perPage
	}
	totalPages := (data.TotalResults + data.PerPage - 1) / data.PerPage
	return Page{Images: images, Total: data.TotalResults, TotalPages: totalPages}, nil
}
