// Package client talks to the auth endpoints of the API and keeps the issued tokens in a TokenStore.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/schoolsaas/core/user"
)

type (
	LoginCredentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	RegisterData struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		Role      string `json:"role"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}

	AuthResponse struct {
		User         user.User `json:"user"`
		AccessToken  string    `json:"accessToken"`
		RefreshToken string    `json:"refreshToken"`
	}

	// envelope is the shape of every JSON response of the API.
	envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
)

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
	// Fields holds per-field messages of validation failures.
	Fields map[string]string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if len(e.Fields) > 0 {
		flds := make([]string, 0, len(e.Fields))
		for f, m := range e.Fields {
			flds = append(flds, f+": "+m)
		}
		msg += " (" + strings.Join(flds, ", ") + ")"
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, msg)
}

// Client is not safe for concurrent use.
type Client struct {
	baseURL string
	rest    *rest.Client
	store   TokenStore
}

// New returns a client of the API served at baseURL (prefix included, e.g. http://localhost:3000/api).
// A nil httpClient falls back to http.DefaultClient.
func New(baseURL string, store TokenStore, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		rest:    &rest.Client{HTTPClient: httpClient},
		store:   store,
	}
}

func (c *Client) do(ctx context.Context, method rest.Method, path string, body, out interface{}) error {
	req := rest.Request{
		Method:  method,
		BaseURL: c.baseURL + path,
		Headers: map[string]string{"Accept": "application/json"},
	}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		req.Body = b
		req.Headers["Content-Type"] = "application/json"
	}
	if token, ok := c.store.Get(KeyAccessToken); ok {
		req.Headers["Authorization"] = "Bearer " + token
	}

	res, err := c.rest.SendWithContext(ctx, req)
	if err != nil {
		return err
	}

	var env envelope
	decodeErr := json.Unmarshal([]byte(res.Body), &env)
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return newAPIError(res.StatusCode, env, decodeErr)
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if decodeErr != nil {
		return errors.Wrap(decodeErr, "decoding response")
	}
	if err = json.Unmarshal(env.Data, out); err != nil {
		return errors.Wrap(err, "decoding response data")
	}
	return nil
}

func newAPIError(code int, env envelope, decodeErr error) *APIError {
	apiErr := &APIError{StatusCode: code, Message: env.Message}
	if decodeErr != nil || len(env.Error) == 0 {
		return apiErr
	}
	var msg string
	if err := json.Unmarshal(env.Error, &msg); err == nil {
		apiErr.Message = msg
		return apiErr
	}
	_ = json.Unmarshal(env.Error, &apiErr.Fields)
	return apiErr
}

// Login persists both tokens before returning the server's answer.
func (c *Client) Login(ctx context.Context, creds LoginCredentials) (AuthResponse, error) {
	var res AuthResponse
	if err := c.do(ctx, rest.Post, "/auth/login", creds, &res); err != nil {
		return AuthResponse{}, err
	}
	if err := c.store.Set(KeyAccessToken, res.AccessToken); err != nil {
		return AuthResponse{}, errors.Wrap(err, "storing access token")
	}
	if err := c.store.Set(KeyRefreshToken, res.RefreshToken); err != nil {
		return AuthResponse{}, errors.Wrap(err, "storing refresh token")
	}
	return res, nil
}

// Register does not touch the stored tokens.
func (c *Client) Register(ctx context.Context, data RegisterData) (AuthResponse, error) {
	var res AuthResponse
	if err := c.do(ctx, rest.Post, "/auth/register", data, &res); err != nil {
		return AuthResponse{}, err
	}
	return res, nil
}

// Logout tells the server, then clears the stored tokens whatever the outcome.
// Only transport errors are returned.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, rest.Post, "/auth/logout", nil, nil)
	if delErr := c.store.Delete(KeyAccessToken, KeyRefreshToken); delErr != nil {
		return errors.Wrap(delErr, "clearing tokens")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return nil
	}
	return err
}

func (c *Client) CurrentUser(ctx context.Context) (user.User, error) {
	var usr user.User
	if err := c.do(ctx, rest.Get, "/auth/me", nil, &usr); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, rest.Post, "/auth/forgot-password", map[string]string{"email": email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	return c.do(ctx, rest.Post, "/auth/reset-password", map[string]string{"token": token, "password": password}, nil)
}
