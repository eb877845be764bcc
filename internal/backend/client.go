// Package backend is the typed HTTP client for the external business API.
// The gateway never interprets tokens itself; it forwards them as opaque
// bearer credentials and translates transport failures into the domain error
// taxonomy: 401 is unauthenticated, network errors / timeouts / 5xx are
// transient, and unexpected response shapes are malformed_response.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	dErrors "gestor/pkg/domain-errors"
)

const defaultTimeout = 8 * time.Second

// Client calls the external business API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Tests use this to point
// at an httptest server with a short timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every outbound call. A timeout surfaces as a transient
// failure, so stored credentials survive backend slowness.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTracer injects a pre-configured tracer. The default uses the global
// provider under the "gestor/backend" instrumentation name.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// New constructs a Client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer("gestor/backend")
	}
	return c
}

// Login exchanges credentials for a token set.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.call(ctx, "backend.login", http.MethodPost, "/auth/login", "", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	if err := resp.validate(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me resolves the principal behind a bearer token.
func (c *Client) Me(ctx context.Context, token string) (*PrincipalPayload, error) {
	var resp PrincipalPayload
	err := c.call(ctx, "backend.me", http.MethodGet, "/auth/me", token, nil, &resp)
	if err != nil {
		return nil, err
	}
	if err := resp.validate(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh exchanges a refresh token for a fresh token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	var resp RefreshResponse
	err := c.call(ctx, "backend.refresh", http.MethodPost, "/auth/refresh", "", refreshRequest{RefreshToken: refreshToken}, &resp)
	if err != nil {
		return nil, err
	}
	if err := resp.validate(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SwitchTenant rescopes the session's token to the given client (tenant).
func (c *Client) SwitchTenant(ctx context.Context, token, clientID string) (*SwitchTenantResponse, error) {
	var resp SwitchTenantResponse
	err := c.call(ctx, "backend.switch_tenant", http.MethodPost, "/auth/switch-tenant", token, switchTenantRequest{ClientID: clientID}, &resp)
	if err != nil {
		return nil, err
	}
	if err := resp.validate(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchClient loads the tenant (client) record behind an id.
func (c *Client) FetchClient(ctx context.Context, token, clientID string) (*ClientRecord, error) {
	var resp ClientRecord
	err := c.call(ctx, "backend.fetch_client", http.MethodGet, "/clients/"+clientID, token, nil, &resp)
	if err != nil {
		return nil, err
	}
	if err := resp.validate(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout invalidates the token server-side. Best effort: callers clear local
// credentials regardless of the outcome.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.call(ctx, "backend.logout", http.MethodPost, "/auth/logout", token, nil, nil)
}

// Ping reports whether the API answers at all. Used by the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "building ping request")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeTransient, "business API unreachable")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusInternalServerError {
		return dErrors.New(dErrors.CodeTransient, fmt.Sprintf("business API unhealthy: status %d", resp.StatusCode))
	}
	return nil
}

// call performs one traced request/response cycle against the API.
func (c *Client) call(ctx context.Context, span, method, path, token string, body, out any) error {
	ctx, sp := c.tracer.Start(ctx, span, trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("backend.path", path),
	))
	err := c.doCall(ctx, method, path, token, body, out)
	if err != nil {
		sp.RecordError(err)
		sp.SetStatus(codes.Error, err.Error())
	}
	sp.End()
	return err
}

func (c *Client) doCall(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "encoding request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "building request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Covers DNS failures, refused connections, and client timeouts.
		return dErrors.Wrap(err, dErrors.CodeTransient, "business API unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeTransient, "reading business API response")
	}

	if err := statusToError(resp.StatusCode, raw); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeMalformedResponse, "business API returned an unexpected response shape")
	}
	return nil
}

// apiError is the failure body the API emits alongside non-2xx statuses.
type apiError struct {
	Message string `json:"message"`
}

func statusToError(status int, raw []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}

	var payload apiError
	_ = json.Unmarshal(raw, &payload)
	msg := payload.Message

	switch {
	case status == http.StatusUnauthorized:
		if msg == "" {
			msg = "credenciais inválidas"
		}
		return dErrors.New(dErrors.CodeUnauthenticated, msg)
	case status == http.StatusNotFound:
		if msg == "" {
			msg = "registro não encontrado"
		}
		return dErrors.New(dErrors.CodeNotFound, msg)
	case status >= http.StatusInternalServerError:
		return dErrors.New(dErrors.CodeTransient, fmt.Sprintf("business API error: status %d", status))
	default:
		if msg == "" {
			msg = fmt.Sprintf("business API rejected the request: status %d", status)
		}
		return dErrors.New(dErrors.CodeBadRequest, msg)
	}
}
