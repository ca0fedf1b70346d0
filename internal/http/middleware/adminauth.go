// Package middleware holds the HTTP middleware that is specific to this
// site: the admin credential check and the slog access log. Generic
// middleware (request IDs, panic recovery, CORS) comes from chi.
package middleware

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/sixth-rift-api/internal/utils/response"
)

// Realm is sent in the WWW-Authenticate challenge.
const Realm = "Admin Area"

var (
	errAuthRequired       = errors.New("authentication required")
	errInvalidCredentials = errors.New("invalid credentials")
)

// AdminAuth gates next behind HTTP Basic auth against one configured
// username/password pair. onFailure, if non-nil, is called on every
// rejected attempt (the metrics counter hooks in here).
//
// Both values are compared in constant time. A missing or malformed
// header and a wrong pair both produce 401 with a Basic challenge.
func AdminAuth(username, password string, onFailure func()) func(http.Handler) http.Handler {
	wantUser := []byte(username)
	wantPass := []byte(password)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok {
				reject(w, r, errAuthRequired, "", onFailure)
				return
			}

			userOK := subtle.ConstantTimeCompare([]byte(user), wantUser) == 1
			passOK := subtle.ConstantTimeCompare([]byte(pass), wantPass) == 1
			if !userOK || !passOK {
				reject(w, r, errInvalidCredentials, user, onFailure)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, reason error, user string, onFailure func()) {
	// Never log the password.
	slog.Warn("admin auth rejected",
		slog.String("path", r.URL.Path),
		slog.String("username", user),
		slog.String("reason", reason.Error()),
	)
	if onFailure != nil {
		onFailure()
	}

	w.Header().Set("WWW-Authenticate", `Basic realm="`+Realm+`"`)
	response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(reason))
}
