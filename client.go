package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

var _ AuthClient = &HTTPAuthClient{}

// HTTPAuthClient implements AuthClient over a JSON HTTP API. The session
// core treats it as an opaque request/response channel; only the error
// taxonomy leaks through, mapped from response status codes.
type HTTPAuthClient struct {
	baseURL string
	http    *http.Client
	logger  Logger
}

// NewHTTPAuthClient returns a client for the backend at baseURL.
func NewHTTPAuthClient(baseURL string) *HTTPAuthClient {
	return &HTTPAuthClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  defLogger{},
	}
}

func (c *HTTPAuthClient) WithLogger(logger Logger) *HTTPAuthClient {
	c.logger = logger
	return c
}

// WithHTTPClient overrides the underlying http.Client, e.g. to tune
// timeouts or inject a test transport.
func (c *HTTPAuthClient) WithHTTPClient(client *http.Client) *HTTPAuthClient {
	if client != nil {
		c.http = client
	}
	return c
}

func (c *HTTPAuthClient) Login(ctx context.Context, email, password string) (*Credentials, error) {
	var creds Credentials
	err := c.post(ctx, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &creds)
	if err != nil {
		return nil, err
	}
	return &creds, nil
}

func (c *HTTPAuthClient) Register(ctx context.Context, name, email, password string) (*Credentials, error) {
	var creds Credentials
	err := c.post(ctx, "/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &creds)
	if err != nil {
		return nil, err
	}
	return &creds, nil
}

func (c *HTTPAuthClient) ActivateAccount(ctx context.Context, token, key string) (*User, error) {
	var out struct {
		User *User `json:"user"`
	}
	err := c.post(ctx, "/auth/activate", token, map[string]string{
		"key": key,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *HTTPAuthClient) FetchProfile(ctx context.Context, token string) (*Account, error) {
	var account Account
	if err := c.get(ctx, "/auth/profile", token, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *HTTPAuthClient) post(ctx context.Context, path, token string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode request payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, token, out)
}

func (c *HTTPAuthClient) get(ctx context.Context, path, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build request")
	}

	return c.do(req, token, out)
}

func (c *HTTPAuthClient) do(req *http.Request, token string, out any) error {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("backend request failed", "url", req.URL.String(), "error", err)
		return goerrors.Wrap(err, goerrors.CategoryInternal, ErrUpstreamUnavailable.Message).
			WithTextCode(textCodeTransport).
			WithCode(goerrors.CodeInternal)
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to decode response payload")
		}
		return nil
	}

	return c.errorFromResponse(req, res, token)
}

// errorFromResponse maps backend failures onto the session error taxonomy.
// A 401 on an authorized call invalidates the token itself; a 401 on an
// anonymous call means rejected credentials.
func (c *HTTPAuthClient) errorFromResponse(req *http.Request, res *http.Response, token string) error {
	msg := remoteErrorMessage(res.Body)

	switch res.StatusCode {
	case http.StatusUnauthorized:
		if token != "" {
			return ErrTokenInvalid
		}
		return ErrInvalidCredentials
	case http.StatusConflict:
		return goerrors.New(msg, goerrors.CategoryConflict).
			WithCode(goerrors.CodeConflict)
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return goerrors.New(msg, goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	default:
		c.logger.Error("unexpected backend status", "url", req.URL.String(), "status", res.StatusCode)
		return goerrors.New(fmt.Sprintf("backend returned %d: %s", res.StatusCode, msg), goerrors.CategoryInternal).
			WithTextCode(textCodeTransport).
			WithCode(goerrors.CodeInternal)
	}
}

func remoteErrorMessage(body io.Reader) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return "request failed"
	}

	if payload.Error != "" {
		return payload.Error
	}
	if payload.Message != "" {
		return payload.Message
	}
	return "request failed"
}
