// Package router assembles the chi router: shared middleware, public
// routes, and the admin routes behind basic auth.
//
// Route table:
//
//	POST /api/subscribe               → subscribe an email (public)
//	GET  /api/subscribers             → list subscribers (admin)
//	GET  /api/subscribers/emails      → comma-joined email export (admin)
//	POST /api/newsletter/preview      → render newsletter HTML (admin)
//	GET  /api/tracks                  → track catalogue (public)
//	GET  /api/tracks/{slug}           → one track (public)
//	GET  /healthz                     → storage ping
//	GET  /metrics                     → Prometheus metrics
package router

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aanand-mishra/sixth-rift-api/internal/http/handlers/newsletter"
	"github.com/aanand-mishra/sixth-rift-api/internal/http/handlers/subscriber"
	"github.com/aanand-mishra/sixth-rift-api/internal/http/handlers/track"
	sitemw "github.com/aanand-mishra/sixth-rift-api/internal/http/middleware"
	"github.com/aanand-mishra/sixth-rift-api/internal/metrics"
	"github.com/aanand-mishra/sixth-rift-api/internal/storage"
	"github.com/aanand-mishra/sixth-rift-api/internal/utils/response"
)

const healthTimeout = 2 * time.Second

// Deps are the collaborators every route needs.
type Deps struct {
	Storage    storage.Storage
	Catalog    track.Catalog
	Newsletter newsletter.Renderer
	Metrics    *metrics.Metrics
	Logger     *slog.Logger

	AdminUsername string
	AdminPassword string

	// AllowedOrigins for CORS. Empty disables the CORS middleware.
	AllowedOrigins []string
}

// New builds the HTTP handler for the whole API.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(sitemw.AccessLog(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(d.Metrics.HTTPMiddleware)

	if len(d.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: d.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", health(d.Storage))
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/subscribe", subscriber.New(d.Storage, d.Metrics))

		r.Get("/tracks", track.GetList(d.Catalog))
		r.Get("/tracks/{slug}", track.GetBySlug(d.Catalog))

		r.Group(func(r chi.Router) {
			r.Use(sitemw.AdminAuth(d.AdminUsername, d.AdminPassword, d.Metrics.AdminAuthFailures.Inc))

			r.Get("/subscribers", subscriber.GetList(d.Storage, d.Metrics))
			r.Get("/subscribers/emails", subscriber.GetEmails(d.Storage, d.Metrics))
			r.Post("/newsletter/preview", newsletter.Preview(d.Newsletter))
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusNotFound,
			response.GeneralError(errors.New("not found")))
	})

	return r
}

func health(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusServiceUnavailable,
				response.GeneralError(errors.New("storage unavailable")))
			return
		}
		response.WriteJSON(w, http.StatusOK, response.Response{Status: response.StatusOK})
	}
}
