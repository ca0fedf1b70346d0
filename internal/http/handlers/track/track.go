// Package track serves the read-only music catalogue used by the site's
// music player and track detail pages.
package track

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aanand-mishra/sixth-rift-api/internal/types"
	"github.com/aanand-mishra/sixth-rift-api/internal/utils/response"
)

// Catalog is the lookup side of catalog.Catalog.
type Catalog interface {
	List() []types.Track
	Get(slug string) (types.Track, error)
}

// GetList handles GET /api/tracks.
func GetList(c Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, c.List())
	}
}

// GetBySlug handles GET /api/tracks/{slug}. Unknown slugs get 404.
func GetBySlug(c Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		t, err := c.Get(slug)
		if err != nil {
			response.WriteJSON(w, http.StatusNotFound,
				response.GeneralError(errors.New("track not found")))
			return
		}

		response.WriteJSON(w, http.StatusOK, t)
	}
}
