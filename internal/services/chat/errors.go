package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

const MessageRequired = "Message is required"

// ValidationError means the request shape was wrong.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConfigurationError means a required setting is absent.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is not set", e.Setting)
}

// UpstreamError carries a non-success upstream status and its error body.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return "OpenAI API error: " + e.Body
}

// TransportError means the upstream could not be reached or understood.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("upstream request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// rawUpstreamError is implemented by completers that keep the failed
// response body exactly as the upstream sent it.
type rawUpstreamError interface {
	UpstreamBody() (status int, body string)
}

// classifyUpstreamError maps a completion error onto UpstreamError or
// TransportError. A raw upstream body is forwarded untouched; errors decoded
// by go-openai without one are re-serialised.
func classifyUpstreamError(err error) error {
	var raw rawUpstreamError
	if errors.As(err, &raw) {
		status, body := raw.UpstreamBody()
		return &UpstreamError{StatusCode: status, Body: body}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		body, marshalErr := json.Marshal(openai.ErrorResponse{Error: apiErr})
		if marshalErr != nil {
			body = []byte(apiErr.Message)
		}
		return &UpstreamError{StatusCode: apiErr.HTTPStatusCode, Body: string(body)}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &UpstreamError{StatusCode: reqErr.HTTPStatusCode, Body: string(reqErr.Body)}
	}

	return &TransportError{Err: err}
}

// HTTPStatus maps a relay error onto the status and envelope text returned
// to callers.
func HTTPStatus(err error) (int, string) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, validationErr.Message
	}

	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		status := upstreamErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusInternalServerError
		}
		return status, upstreamErr.Error()
	}

	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}
