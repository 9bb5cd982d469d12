package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/painel-admin-api/pkg/config"
	"github.com/noah-isme/painel-admin-api/pkg/middleware/requestid"
)

const maxBodyBytes = 10 << 20

// Endpoint names one upstream resource consumed by the aggregator.
type Endpoint string

const (
	EndpointCursosOverview    Endpoint = "cursos_overview"
	EndpointAlunos            Endpoint = "alunos"
	EndpointInstrutores       Endpoint = "instrutores"
	EndpointUsuarios          Endpoint = "usuarios"
	EndpointEmpresasDashboard Endpoint = "empresas_dashboard"
	EndpointVagas             Endpoint = "vagas"
)

// Error is a non-2xx answer or a transport failure from the platform API.
type Error struct {
	Endpoint Endpoint
	Status   int
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("upstream %s: status %d: %s", e.Endpoint, e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("upstream %s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("upstream %s: %s", e.Endpoint, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsForbidden reports whether err means the caller lacks permission upstream.
// Errors without a status are matched on their message.
func IsForbidden(err error) bool {
	if err == nil {
		return false
	}
	var upstreamErr *Error
	if errors.As(err, &upstreamErr) && upstreamErr.Status == http.StatusForbidden {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "403") || strings.Contains(msg, "forbidden")
}

// Observer receives per-call outcomes, typically backed by Prometheus.
type Observer interface {
	ObserveUpstreamCall(endpoint, outcome string, duration time.Duration)
}

type tokenKey struct{}

// WithBearerToken makes the client forward token on calls made with ctx.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// BearerToken returns the token attached by WithBearerToken.
func BearerToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Client performs authenticated GET calls against the platform API.
type Client struct {
	baseURL  string
	paths    map[Endpoint]string
	pageSize int
	http     *http.Client
	observer Observer
	logger   *zap.Logger
}

// NewClient builds a client for the configured platform API.
func NewClient(cfg config.UpstreamConfig, observer Observer, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		paths: map[Endpoint]string{
			EndpointCursosOverview:    cfg.Paths.CursosOverview,
			EndpointAlunos:            cfg.Paths.Alunos,
			EndpointInstrutores:       cfg.Paths.Instrutores,
			EndpointUsuarios:          cfg.Paths.Usuarios,
			EndpointEmpresasDashboard: cfg.Paths.EmpresasDashboard,
			EndpointVagas:             cfg.Paths.Vagas,
		},
		pageSize: pageSize,
		http:     &http.Client{Timeout: timeout},
		observer: observer,
		logger:   logger,
	}
}

// WithHTTPClient swaps the underlying transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.http = hc
	}
	return c
}

// Fetch returns the raw body of endpoint. List endpoints are requested with
// the first page at the configured page size.
func (c *Client) Fetch(ctx context.Context, endpoint Endpoint) ([]byte, error) {
	path, ok := c.paths[endpoint]
	if !ok || path == "" {
		return nil, &Error{Endpoint: endpoint, Message: "endpoint not configured"}
	}

	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if endpoint != EndpointCursosOverview {
		query := url.Values{}
		query.Set("page", "1")
		query.Set("pageSize", strconv.Itoa(c.pageSize))
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &Error{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if token := BearerToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if reqID := requestid.FromContext(ctx); reqID != "" {
		req.Header.Set(requestid.HeaderKey, reqID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(endpoint, "error", time.Since(start))
		return nil, &Error{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	duration := time.Since(start)
	if err != nil {
		c.observe(endpoint, "error", duration)
		return nil, &Error{Endpoint: endpoint, Status: resp.StatusCode, Err: err, Message: "read body"}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.observe(endpoint, strconv.Itoa(resp.StatusCode), duration)
		c.logger.Debug("upstream call failed",
			zap.String("endpoint", string(endpoint)),
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", duration),
		)
		return nil, &Error{Endpoint: endpoint, Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}
	}

	c.observe(endpoint, "ok", duration)
	return body, nil
}

func (c *Client) observe(endpoint Endpoint, outcome string, duration time.Duration) {
	if c.observer != nil {
		c.observer.ObserveUpstreamCall(string(endpoint), outcome, duration)
	}
}

// errorMessage pulls a human readable message out of common error bodies.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		var asString string
		if err := json.Unmarshal(payload.Error, &asString); err == nil && asString != "" {
			return asString
		}
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(payload.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "unexpected status"
}
