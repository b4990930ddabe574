package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csrsef/chatbot/internal/config"
	"github.com/csrsef/chatbot/internal/services/session"
)

type stubValidator struct {
	claims *session.SessionClaims
	err    error
}

func (s stubValidator) ValidateSession(r *http.Request) (*session.SessionClaims, error) {
	return s.claims, s.err
}

func TestRecover(t *testing.T) {
	handler := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestAccessLog(t *testing.T) {
	var seenID string
	handler := AccessLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestID(r)
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, seenID)
	assert.Equal(t, seenID, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDWithoutMiddleware(t *testing.T) {
	assert.Empty(t, RequestID(httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestRequireSession(t *testing.T) {
	claims := &session.SessionClaims{SessionID: "abc"}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c := GetSessionClaims(r); c != nil {
			w.Header().Set("X-Session", c.SessionID)
		}
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name        string
		validator   stubValidator
		enforce     bool
		wantStatus  int
		wantSession string
	}{
		{"enforced without session", stubValidator{}, true, http.StatusUnauthorized, ""},
		{"enforced with invalid cookie", stubValidator{err: errors.New("bad signature")}, true, http.StatusUnauthorized, ""},
		{"enforced with session", stubValidator{claims: claims}, true, http.StatusOK, "abc"},
		{"optional without session", stubValidator{}, false, http.StatusOK, ""},
		{"optional with session", stubValidator{claims: claims}, false, http.StatusOK, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RequireSession(tt.validator, tt.enforce)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantSession, rec.Header().Get("X-Session"))
			if tt.wantStatus == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
			}
		})
	}
}

func TestRequireSessionWithRealCookie(t *testing.T) {
	service := session.NewServiceWithStore(config.Config{SessionSecret: "s", SessionCookieName: "sid"}, session.NewMemoryStore())

	login := httptest.NewRecorder()
	require.NoError(t, service.CreateSession(context.Background(), login))

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.AddCookie(login.Result().Cookies()[0])

	rec := httptest.NewRecorder()
	RequireSession(service, true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotNil(t, GetSessionClaims(r))
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
