package chat

import (
	"errors"
	"net/http"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "validation",
			err:        &ValidationError{Message: MessageRequired},
			wantStatus: http.StatusBadRequest,
			wantBody:   "Message is required",
		},
		{
			name:       "configuration",
			err:        &ConfigurationError{Setting: "OPENAI_API_KEY"},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Internal Server Error",
		},
		{
			name:       "upstream status forwarded",
			err:        &UpstreamError{StatusCode: http.StatusUnauthorized, Body: `{"error":"bad key"}`},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `OpenAI API error: {"error":"bad key"}`,
		},
		{
			name:       "upstream without status",
			err:        &UpstreamError{Body: "odd"},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "OpenAI API error: odd",
		},
		{
			name:       "transport",
			err:        &TransportError{Err: errors.New("dial tcp: refused")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Internal Server Error",
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := HTTPStatus(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

type rawBodyError struct {
	status int
	body   string
	err    error
}

func (e *rawBodyError) Error() string { return e.err.Error() }
func (e *rawBodyError) Unwrap() error { return e.err }
func (e *rawBodyError) UpstreamBody() (int, string) { return e.status, e.body }

func TestClassifyUpstreamError(t *testing.T) {
	t.Run("raw body wins over decoded api error", func(t *testing.T) {
		body := `{"error":{"message":"bad","type":"invalid_request_error","param":null,"code":null,"extra":"x"}}`
		err := classifyUpstreamError(&rawBodyError{
			status: 400,
			body:   body,
			err:    &openai.APIError{HTTPStatusCode: 400, Message: "bad"},
		})

		var upstreamErr *UpstreamError
		assert.ErrorAs(t, err, &upstreamErr)
		assert.Equal(t, 400, upstreamErr.StatusCode)
		assert.Equal(t, body, upstreamErr.Body)
	})

	t.Run("api error", func(t *testing.T) {
		err := classifyUpstreamError(&openai.APIError{HTTPStatusCode: 429, Message: "slow down"})

		var upstreamErr *UpstreamError
		assert.ErrorAs(t, err, &upstreamErr)
		assert.Equal(t, 429, upstreamErr.StatusCode)
		assert.Contains(t, upstreamErr.Body, "slow down")
	})

	t.Run("request error with status", func(t *testing.T) {
		err := classifyUpstreamError(&openai.RequestError{HTTPStatusCode: 502, Body: []byte("bad gateway")})

		var upstreamErr *UpstreamError
		assert.ErrorAs(t, err, &upstreamErr)
		assert.Equal(t, 502, upstreamErr.StatusCode)
		assert.Equal(t, "bad gateway", upstreamErr.Body)
	})

	t.Run("anything else", func(t *testing.T) {
		cause := errors.New("eof")
		err := classifyUpstreamError(cause)

		var transportErr *TransportError
		assert.ErrorAs(t, err, &transportErr)
		assert.ErrorIs(t, err, cause)
	})
}
