// Package subscriber contains the HTTP handlers for the newsletter
// Subscriber resource.
//
// HANDLER PATTERN — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────
// Each exported function receives its dependencies (storage, metrics)
// once at route registration and returns the http.HandlerFunc that runs
// on every request:
//
//	r.Post("/api/subscribe", subscriber.New(store, m))
package subscriber

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/sixth-rift-api/internal/metrics"
	"github.com/aanand-mishra/sixth-rift-api/internal/storage"
	"github.com/aanand-mishra/sixth-rift-api/internal/types"
	"github.com/aanand-mishra/sixth-rift-api/internal/utils/response"
)

// Visitor-facing messages.
const (
	MsgSubscribed        = "Thank you for subscribing!"
	MsgAlreadySubscribed = "You're already subscribed to our newsletter!"
	MsgInvalidEmail      = "Invalid email address"
)

// validate is safe for concurrent use and caches struct metadata.
var validate = validator.New()

// subscribeResponse is the 201 body of POST /api/subscribe.
type subscribeResponse struct {
	response.Response
	Subscriber types.SubscriberSummary `json:"subscriber"`
}

// EmailsResponse is the body of GET /api/subscribers/emails.
type EmailsResponse struct {
	Count  int    `json:"count"`
	Emails string `json:"emails"`
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/subscribe
// Creates a new newsletter subscriber from the JSON request body.
//
// Request body (JSON):
//
//	{ "email": "fan@example.com" }
//
// Success response (201 Created):
//
//	{ "status": "ok", "message": "Thank you for subscribing!",
//	  "subscriber": { "id": "…", "email": "fan@example.com" } }
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, or invalid email
//	409 Conflict     — email already subscribed
//	500 Internal     — storage error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.Storage, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SubscribeRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			m.SubscriptionsRejected.WithLabelValues("invalid").Inc()
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			m.SubscriptionsRejected.WithLabelValues("invalid").Inc()
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New(MsgInvalidEmail)))
			return
		}

		req.Email = types.NormalizeEmail(req.Email)

		if err := validate.Struct(req); err != nil {
			m.SubscriptionsRejected.WithLabelValues("invalid").Inc()
			var validateErrs validator.ValidationErrors
			if errors.As(err, &validateErrs) {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New(MsgInvalidEmail)))
			return
		}

		sub, err := store.CreateSubscriber(r.Context(), req.Email)
		if errors.Is(err, storage.ErrDuplicateEmail) {
			m.SubscriptionsRejected.WithLabelValues("duplicate").Inc()
			slog.Info("duplicate subscription attempt")
			response.WriteJSON(w, http.StatusConflict,
				response.GeneralError(errors.New(MsgAlreadySubscribed)))
			return
		}
		if err != nil {
			m.TechnicalErrors.WithLabelValues("create_subscriber").Inc()
			slog.Error("error creating subscriber", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(errors.New("failed to subscribe, please try again later")))
			return
		}

		m.SubscriptionsCreated.Inc()
		slog.Info("subscriber created", slog.String("id", sub.ID))

		response.WriteJSON(w, http.StatusCreated, subscribeResponse{
			Response:   response.OK(MsgSubscribed),
			Subscriber: sub.Summary(),
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/subscribers (admin only)
// Returns a JSON array of every subscriber, oldest first, unpaginated.
// Returns [] (not null) when there are none.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store storage.Storage, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subs, err := store.GetSubscribers(r.Context())
		if err != nil {
			m.TechnicalErrors.WithLabelValues("list_subscribers").Inc()
			slog.Error("error getting subscribers", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(errors.New("failed to retrieve subscribers")))
			return
		}

		response.WriteJSON(w, http.StatusOK, subs)
	}
}

// GetEmails handles GET /api/subscribers/emails (admin only): every
// address joined with ", ", ready to paste into a mail client's BCC field.
func GetEmails(store storage.Storage, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subs, err := store.GetSubscribers(r.Context())
		if err != nil {
			m.TechnicalErrors.WithLabelValues("list_subscribers").Inc()
			slog.Error("error getting subscriber emails", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(errors.New("failed to retrieve subscribers")))
			return
		}

		emails := make([]string, len(subs))
		for i, sub := range subs {
			emails[i] = sub.Email
		}

		response.WriteJSON(w, http.StatusOK, EmailsResponse{
			Count:  len(emails),
			Emails: strings.Join(emails, ", "),
		})
	}
}
