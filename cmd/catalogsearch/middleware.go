package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/catalogsearch/internal/logger"
	"github.com/kailas-cloud/catalogsearch/internal/metrics"
	chiTransport "github.com/kailas-cloud/catalogsearch/internal/transport/chi"
)

// newRouter assembles the middleware chain in front of the API routes.
// Recovery is outermost so panics anywhere below still get a JSON 500.
func newRouter(logger *zap.Logger, apiKeys []string, server *chiTransport.Server) chi.Router {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)
	return r
}

// jsonRecoverer turns a handler panic into a JSON 500 instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler { //nolint:errorlint // sentinel is compared by identity
					panic(rvr)
				}
				logger.Error("panic recovered",
					zap.Any("panic", rvr),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Stack("stacktrace"),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"code":    "internal_error",
					"message": "internal error",
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits one canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			}
			// Search terms are useful for relevance tuning; other endpoints carry nothing of interest.
			if q := r.URL.Query().Get("q"); q != "" {
				fields = append(fields, zap.String("q", q))
			}
			reqLogger.Info("http_request", fields...)
		})
	}
}
