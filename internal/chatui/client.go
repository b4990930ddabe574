package chatui

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"github.com/csrsef/chatbot/pkg/logger"
)

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the relay server. Cookies set by the auth route are kept
// and replayed on later calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Jar: jar},
	}, nil
}

// Relay posts message to the route for mode.
func (c *Client) Relay(ctx context.Context, mode Mode, message string) (string, error) {
	var out struct {
		Reply string `json:"reply"`
	}
	if _, err := c.post(ctx, mode.Path(), map[string]string{"message": message}, &out); err != nil {
		return "", err
	}
	return out.Reply, nil
}

// Authenticate posts password to the auth route. A 401 is a clean mismatch.
func (c *Client) Authenticate(ctx context.Context, password string) (bool, error) {
	var out struct {
		Authenticated bool `json:"authenticated"`
	}
	status, err := c.post(ctx, "/api/auth", map[string]string{"password": password}, &out)
	if status == http.StatusUnauthorized {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return out.Authenticated, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &envelope)
		logger.Debug(logger.UI, "POST %s returned %d", path, resp.StatusCode)
		return resp.StatusCode, &StatusError{StatusCode: resp.StatusCode, Message: envelope.Error}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s response: %w", path, err)
	}
	return resp.StatusCode, nil
}

// ClientSecretAuthenticator checks passwords locally against a secret that
// ships with the client. Anyone holding the client holds the secret.
type ClientSecretAuthenticator struct {
	secret []byte
}

func NewClientSecretAuthenticator(secret string) *ClientSecretAuthenticator {
	return &ClientSecretAuthenticator{secret: []byte(secret)}
}

func (a *ClientSecretAuthenticator) Authenticate(ctx context.Context, password string) (bool, error) {
	if len(a.secret) == 0 {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(password), a.secret) == 1, nil
}
