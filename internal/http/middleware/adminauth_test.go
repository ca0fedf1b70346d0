package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/sixth-rift-api/internal/utils/response"
)

func TestAdminAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	cases := []struct {
		name       string
		setAuth    func(r *http.Request)
		wantStatus int
		wantError  string
		wantFails  int
	}{
		{
			name:       "no header",
			setAuth:    func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
			wantError:  "authentication required",
			wantFails:  1,
		},
		{
			name:       "not basic",
			setAuth:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") },
			wantStatus: http.StatusUnauthorized,
			wantError:  "authentication required",
			wantFails:  1,
		},
		{
			name:       "wrong password",
			setAuth:    func(r *http.Request) { r.SetBasicAuth("band", "nope") },
			wantStatus: http.StatusUnauthorized,
			wantError:  "invalid credentials",
			wantFails:  1,
		},
		{
			name:       "wrong username",
			setAuth:    func(r *http.Request) { r.SetBasicAuth("fan", "s3cret") },
			wantStatus: http.StatusUnauthorized,
			wantError:  "invalid credentials",
			wantFails:  1,
		},
		{
			name:       "valid",
			setAuth:    func(r *http.Request) { r.SetBasicAuth("band", "s3cret") },
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fails := 0
			h := AdminAuth("band", "s3cret", func() { fails++ })(ok)

			req := httptest.NewRequest(http.MethodGet, "/api/subscribers", nil)
			tc.setAuth(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantFails, fails)

			if tc.wantError == "" {
				assert.Empty(t, rec.Header().Get("WWW-Authenticate"))
				return
			}

			assert.Equal(t, `Basic realm="Admin Area"`, rec.Header().Get("WWW-Authenticate"))

			var body response.Response
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, response.StatusError, body.Status)
			assert.Equal(t, tc.wantError, body.Error)
		})
	}
}

func TestAdminAuthNilHook(t *testing.T) {
	h := AdminAuth("band", "s3cret", nil)(http.NotFoundHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
