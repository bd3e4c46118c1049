package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
	"github.com/kailas-cloud/catalogsearch/internal/logger"
	cataloguc "github.com/kailas-cloud/catalogsearch/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/catalogsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/catalogsearch/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the catalog search HTTP API.
type Server struct {
	search        *searchuc.Service
	catalog       *cataloguc.Cache
	health        *healthuc.Service
	refreshLimit  *rate.Limiter
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. refreshLimit throttles manual catalog
// refreshes; nil disables throttling.
func NewServer(
	search *searchuc.Service,
	catalog *cataloguc.Cache,
	health *healthuc.Service,
	refreshLimit *rate.Limiter,
) *Server {
	s := &Server{
		search:       search,
		catalog:      catalog,
		health:       health,
		refreshLimit: refreshLimit,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrCatalogUnavailable, http.StatusServiceUnavailable, ErrorCodeCatalogUnavailable),
		sentinelHandler(domain.ErrCatalogFetch, http.StatusBadGateway, ErrorCodeCatalogFetchFailed),
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/search", s.Search)
	r.Get("/autocomplete", s.Autocomplete)
	r.Get("/highlight", s.Highlight)
	r.Post("/catalog/refresh", s.RefreshCatalog)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// RefreshCatalog handles POST /catalog/refresh.
func (s *Server) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	if s.refreshLimit != nil && !s.refreshLimit.Allow() {
		writeError(w, http.StatusTooManyRequests, ErrorCodeRateLimited, "catalog refresh rate limit exceeded")
		return
	}

	snap, err := s.catalog.ForceRefresh(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, RefreshResponse{Items: len(snap.Items), FetchedAt: snap.FetchedAt})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	// A degraded service can still search.
	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrCatalogUnavailable,
		domain.ErrCatalogFetch,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).Warn("request failed", zap.Error(err))

	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
