package geolib

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	DefaultRequestTimeout = 30 * time.Second

	httpCacheMaxAge = 3600
)

// HandlerOpts is a set of components which are exposed via HTTP.
type HandlerOpts struct {
	Resolver       *Resolver
	Reputation     *ReputationScorer
	Leaks          *LeakVerifier
	POI            *POIClient
	DNS            DNSClient
	Logger         Logger
	RequestTimeout time.Duration
}

type httpHandler struct {
	resolver   *Resolver
	reputation *ReputationScorer
	leaks      *LeakVerifier
	poi        *POIClient
	dns        DNSClient
	logger     Logger
}

func (h httpHandler) encodeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	encoder := json.NewEncoder(w)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	encoder.SetEscapeHTML(false)
	encoder.Encode(data) // nolint: errcheck
}

func (h httpHandler) sendError(w http.ResponseWriter, err error, message string, statusCode int) {
	e := &httpError{
		message:    message,
		statusCode: statusCode,
		err:        err,
	}

	if e.StatusCode() >= http.StatusInternalServerError && err != nil {
		h.logger.InternalError(message, err)
	}

	h.encodeJSON(w, e.StatusCode(), e)
}

func (h httpHandler) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	h.sendError(w, nil, "Not found", http.StatusNotFound)
}

func (h httpHandler) handleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	h.sendError(w, nil, "This HTTP method is not allowed", http.StatusMethodNotAllowed)
}

func (h httpHandler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler { // nolint: errorlint
					panic(rvr)
				}

				h.sendError(w, fmt.Errorf("panic: %v", rvr), "Internal server error",
					http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, req)
	})
}

var corsOptions = cors.Options{
	AllowedOrigins:     []string{"*"},
	AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	AllowedHeaders:     []string{"Content-Type"},
	MaxAge:             httpCacheMaxAge,
	OptionsPassthrough: true,
}

// preflight answers every OPTIONS request with 204. Preflight headers
// are set by cors middleware; bare OPTIONS requests without Origin get
// the same set.
func preflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodOptions {
			next.ServeHTTP(w, req)

			return
		}

		headers := w.Header()

		if headers.Get("Access-Control-Allow-Origin") == "" {
			headers.Set("Access-Control-Allow-Origin", corsOptions.AllowedOrigins[0])
			headers.Set("Access-Control-Allow-Methods", strings.Join(corsOptions.AllowedMethods, ", "))
			headers.Set("Access-Control-Allow-Headers", strings.Join(corsOptions.AllowedHeaders, ", "))
			headers.Set("Access-Control-Max-Age", strconv.Itoa(corsOptions.MaxAge))
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

// NewHTTPHandler returns a router with all endpoints mounted. A caller
// can mount additional endpoints, like metrics.
func NewHTTPHandler(opts HandlerOpts) chi.Router {
	handler := httpHandler{
		resolver:   opts.Resolver,
		reputation: opts.Reputation,
		leaks:      opts.Leaks,
		poi:        opts.POI,
		dns:        opts.DNS,
		logger:     opts.Logger,
	}

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(handler.recoverer)
	router.Use(cors.Handler(corsOptions))
	router.Use(preflight)
	router.Use(middleware.Timeout(timeout))

	router.NotFound(handler.handleNotFound)
	router.MethodNotAllowed(handler.handleMethodNotAllowed)

	router.Get("/ip", handler.handleGetIP)
	router.Get("/ip/", handler.handleGetIP)
	router.Get("/ip/{ip}", handler.handleGetIP)
	router.Get("/reputation", handler.handleGetReputation)
	router.Get("/poi", handler.handleGetPOI)
	router.Get("/stats", handler.handleGetStats)
	router.Post("/verify-leak", handler.handlePostVerifyLeak)

	return router
}
