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

type UnsplashPhoto struct {
	ID             string        `json:"id"`
	Width          int           `json:"width"`
	Height         int           `json:"height"`
	Description    string        `json:"description"`
	AltDescription string        `json:"alt_description"`
	Urls           UnsplashUrls  `json:"urls"`
	Links          UnsplashLinks `json:"links"`
	User           UnsplashUser  `json:"user"`
	Tags           []UnsplashTag `json:"tags"`
}

type UnsplashUrls struct {
	Thumb   string `json:"thumb"`
	Small   string `json:"small"`
	Regular string `json:"regular"`
	Full    string `json:"full"`
}

type UnsplashLinks struct {
	Html string `json:"html"`
}

type UnsplashUser struct {
	Name     string        `json:"name"`
	Username string        `json:"username"`
	Links    UnsplashLinks `json:"links"`
}

type UnsplashTag struct {
	Title string `json:"title"`
}

type UnsplashSearchResult struct {
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
	Results    []UnsplashPhoto `json:"results"`
}

type UnsplashApi struct {
	Http      http.Client
	cache     Fetcher
	accessKey string
	baseUrl   string
	log       *log.Logger
}

func NewUnsplashApi(accessKey string, cache Fetcher, timeout time.Duration) (*UnsplashApi, error) {
	if strings.TrimSpace(accessKey) == "" {
		return nil, &ConfigurationError{Provider: Unsplash, Message: "access key is required"}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &UnsplashApi{
		Http:      http.Client{Timeout: timeout},
		cache:     cache,
		accessKey: accessKey,
		baseUrl:   "https://api.unsplash.com/search/photos",
		log:       log.New(os.Stderr, "(unsplash) ", log.LstdFlags),
	}, nil
}

func (api *UnsplashApi) Provider() Provider { return Unsplash }

func (api *UnsplashApi) TTL() int { return 86400 }

func (api *UnsplashApi) PageSize() int { return 30 }

func (api *UnsplashApi) fetch(req *http.Request) (*http.Response, error) {
	if api.cache != nil {
		return api.cache.CachedFetch(req, &api.Http, int64(api.TTL()))
	}
	return api.Http.Do(req)
}

func (api *UnsplashApi) Search(ctx context.Context, query string, page int, perPage int) (Page, error) {
	qParam := url.Values{}
	qParam.Add("query", strings.TrimSpace(query))
	qParam.Add("page", strconv.Itoa(page))
	qParam.Add("per_page", strconv.Itoa(clampPerPage(perPage, api.PageSize())))
	qParam.Add("order_by", "popular")
	getReq, err := http.NewRequestWithContext(ctx, http.MethodGet, api.baseUrl+"?"+qParam.Encode(), nil)
	if err != nil {
		return Page{}, &ProviderError{Provider: Unsplash, Err: err}
	}
	getReq.Header.Set("Accept-Version", "v1")
	getReq.Header.Set("Authorization", "Client-ID "+api.accessKey)
	resp, err := api.fetch(getReq)
	if err != nil {
		return Page{}, &ProviderError{Provider: Unsplash, Err: err}
	}
	defer resp.Body.Close()
	if err := statusError(Unsplash, resp.StatusCode); err != nil {
		return Page{}, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page{}, &ProviderError{Provider: Unsplash, Err: err}
	}
	data := UnsplashSearchResult{}
	if err := json.Unmarshal(body, &data); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			// Schema drift, not an outage: report an empty page.
			api.log.Println("Unexpected response shape:", err)
			return Page{Images: []ImageResult{}}, nil
		}
		return Page{}, &ProviderError{Provider: Unsplash, Err: err}
	}
	if data.Results == nil {
		api.log.Println("Response missing results array")
		return Page{Images: []ImageResult{}}, nil
	}

	images := make([]ImageResult, len(data.Results))
	for i, el := range data.Results {
		images[i] = NormalizeUnsplash(el)
	}
	return Page{Images: images, Total: data.Total, TotalPages: data.TotalPages}, nil
}
