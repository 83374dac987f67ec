package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.trai.ch/aqtcache/internal/core/ports"
)

// NewRouter builds the chi router.
//
// Routes:
//   - POST /_aqt/message - control message
//   - POST /_aqt/push - push payload
//   - POST /_aqt/sync - background sync tag
//   - POST /_aqt/notifications/{id}/click - notification click
//   - GET /_aqt/notifications - displayed notifications
//   - DELETE /_aqt/clients/{id} - page closed
//   - GET /_aqt/status - registration status
//   - GET /_aqt/metrics - Prometheus exposition
//   - /* - interception boundary
func NewRouter(cfg Config) http.Handler {
	cfg.applyDefaults()
	h := &handlers{cfg: cfg}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	// Absolute-form requests belong to other origins, whatever their path.
	r.Use(absoluteForm(http.HandlerFunc(h.intercept)))

	r.Route(ControlPrefix, func(r chi.Router) {
		r.Use(newRateLimiter(cfg.ControlRate, cfg.ControlBurst).Handler)
		r.Post("/message", h.message)
		r.Post("/push", h.push)
		r.Post("/sync", h.sync)
		r.Get("/notifications", h.notifications)
		r.Post("/notifications/{id}/click", h.click)
		r.Delete("/clients/{id}", h.forgetClient)
		r.Get("/status", h.status)
		if cfg.Metrics != nil {
			r.Method(http.MethodGet, "/metrics", cfg.Metrics)
		}
	})

	r.Handle("/*", http.HandlerFunc(h.intercept))
	return r
}

func absoluteForm(proxy http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.IsAbs() {
				proxy.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs every completed request. Control traffic is logged at
// debug level.
func requestLogger(logger ports.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logger == nil {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			msg := fmt.Sprintf("%s %s %d %dB %s", r.Method, r.URL.String(), ww.Status(),
				ww.BytesWritten(), time.Since(start).Round(time.Microsecond))
			if id := middleware.GetReqID(r.Context()); id != "" {
				msg += " request_id=" + id
			}
			if strings.HasPrefix(r.URL.Path, ControlPrefix) && !r.URL.IsAbs() {
				logger.Debug(msg)
				return
			}
			logger.Info(msg)
		})
	}
}
