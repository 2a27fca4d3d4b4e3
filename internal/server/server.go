package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"

	"github.com/williamjxj/images-hub/internal/hub"
	"github.com/williamjxj/images-hub/internal/store"
)

// AuthFunc authenticates a request and returns the user id. A nil AuthFunc
// leaves the endpoint open.
type AuthFunc func(r *http.Request) (string, bool)

// BasicAuth verifies HTTP basic credentials against the user table.
func BasicAuth(st *store.Store) AuthFunc {
	return func(r *http.Request) (string, bool) {
		user, pass, ok := r.BasicAuth()
		if !ok || !st.TestUser(user, pass) {
			return "", false
		}
		return user, true
	}
}

type Server struct {
	agg    *hub.Aggregator
	auth   AuthFunc
	pretty bool
	log    *log.Logger
	mux    *http.ServeMux
}

func New(agg *hub.Aggregator, auth AuthFunc, pretty bool) *Server {
	s := &Server{
		agg:    agg,
		auth:   auth,
		pretty: pretty,
		log:    log.New(os.Stderr, "(server) ", log.LstdFlags),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "Not Found")
	})
	mux.HandleFunc("/search", s.handleSearch)
	s.mux = mux
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, kind string, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Error: kind, Message: msg})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	rid := uuid.NewString()[:8]

	if s.auth != nil {
		if _, ok := s.auth(r); !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
			return
		}
	}

	params := r.URL.Query()
	query := strings.TrimSpace(params.Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "Bad Request", "Query parameter 'q' is required")
		return
	}

	providersParam := params.Get("providers")
	var providers []hub.Provider
	if providersParam == "" {
		providers = hub.Providers()
	} else {
		// Unknown provider names are dropped, not rejected.
		for _, name := range strings.Split(providersParam, ",") {
			if p, ok := hub.ParseProvider(strings.ToLower(strings.TrimSpace(name))); ok {
				providers = append(providers, p)
			}
		}
	}
	if len(providers) == 0 {
		writeError(w, http.StatusBadRequest, "Bad Request", "At least one provider must be specified")
		return
	}

	page := 1
	if v := params.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Bad Request", "Page must be a positive integer")
			return
		}
		page = n
	}
	perPage := hub.DefaultPerPage
	if v := params.Get("per_page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > hub.MaxPerPage {
			writeError(w, http.StatusBadRequest, "Bad Request",
				fmt.Sprintf("per_page must be between 1 and %d", hub.MaxPerPage))
			return
		}
		perPage = n
	}

	results, err := s.agg.SearchImages(r.Context(), query, providers, page, perPage)
	if err != nil {
		var validationErr *hub.ValidationError
		if errors.As(err, &validationErr) {
			writeError(w, http.StatusBadRequest, "Bad Request", validationErr.Message)
			return
		}
		s.log.Printf("[%s] search failed: %v", rid, err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}
	s.log.Printf("[%s] %q providers=%d page=%d results=%d errors=%d",
		rid, query, len(results.Providers), page, results.TotalResults, len(results.Errors))

	w.Header().Set("Content-Type", "application/json")
	body := brotli.HTTPCompressor(w, r)
	defer body.Close()
	enc := json.NewEncoder(body)
	if s.pretty {
		enc.SetIndent("", "  ")
	}
	enc.Encode(results)
}
