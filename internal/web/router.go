package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"oc-ticketing/internal/logger"
)

func requestLogger(l *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			l.Debug("HTTP", fmt.Sprintf("%s %s - %d (%s)", r.Method, r.URL.Path, ww.Status(), time.Since(start)))
		})
	}
}

// NewRouter mounts the session API under /api/ui next to the health and
// metrics endpoints.
func NewRouter(sessions *Sessions, gatherer prometheus.Gatherer, l *logger.Logger) http.Handler {
	h := &Handler{Logger: l}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(l))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ok(w, "ok", map[string]int{"sessions": sessions.Len()})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/ui", func(r chi.Router) {
		r.Use(sessions.Middleware)

		r.Get("/state", h.State)
		r.Post("/navigate", h.Navigate)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/register", h.Register)
			r.Post("/logout", h.Logout)
		})

		r.Route("/purchase", func(r chi.Router) {
			r.Post("/match", h.SelectMatch)
			r.Post("/section", h.SelectSection)
			r.Post("/buy", h.Buy)
		})

		r.Route("/confirmation", func(r chi.Router) {
			r.Get("/", h.Confirmation)
			r.Get("/qr.png", h.QRCode)
			r.Get("/receipt", h.Receipt)
			r.Post("/receipt", h.SaveReceipt)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/reload", h.Reload)
			r.Get("/matches", h.ListMatches)
			r.Post("/matches", h.CreateMatch)
			r.Delete("/matches/{id}", h.DeleteMatch)
			r.Post("/matches/{id}/edit", h.BeginEdit)
			r.Post("/matches/{id}/simulate", h.Simulate)
			r.Get("/edit", h.Draft)
			r.Put("/edit", h.SaveEdit)
			r.Delete("/edit", h.CancelEdit)
			r.Get("/simulations", h.Simulations)
			r.Get("/stats", h.Stats)
			r.Get("/report", h.Report)
			r.Get("/teams", h.Teams)
		})
	})

	return r
}
