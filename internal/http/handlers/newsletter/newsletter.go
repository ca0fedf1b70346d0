// Package newsletter holds the admin handler that previews the newsletter
// email as rendered HTML.
package newsletter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/sixth-rift-api/internal/types"
	"github.com/aanand-mishra/sixth-rift-api/internal/utils/response"
)

var validate = validator.New()

// Renderer turns a subject and plain-text body into an HTML email.
type Renderer interface {
	Render(subject, content string) (string, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// Preview handles POST /api/newsletter/preview (admin only)
//
// Request body (JSON):
//
//	{ "subject": "New single out now", "content": "Hi all,\nCosmic Dreams…" }
//
// Success response (200 OK): the full HTML document, text/html.
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, or missing fields
//	500 Internal     — template rendering failed
//
// ─────────────────────────────────────────────────────────────────────────────
func Preview(renderer Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.NewsletterRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validate.Struct(req); err != nil {
			var validateErrs validator.ValidationErrors
			if errors.As(err, &validateErrs) {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		body, err := renderer.Render(req.Subject, req.Content)
		if err != nil {
			slog.Error("error rendering newsletter", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(errors.New("failed to render newsletter")))
			return
		}

		response.WriteHTML(w, http.StatusOK, body)
	}
}
