package issuer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	autherrors "github.com/jrsteele09/go-identity-dashboard/internal/errors"
)

// Remote API paths, relative to the base URL.
const (
	RouteLogin    = "/auth/login"
	RouteRegister = "/auth/register"

	defaultRemoteTimeout = 10 * time.Second
	maxResponseBytes     = 1 << 20
)

var _ Issuer = (*Remote)(nil)

// Remote talks JSON to the auth API. Every failure is terminal; nothing is retried.
type Remote struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

// RemoteOption defines a function type to modify the Remote instance.
type RemoteOption func(*Remote)

// WithTimeout bounds each request, including reading the response.
func WithTimeout(d time.Duration) RemoteOption {
	return func(r *Remote) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *Remote) {
		r.client = c
	}
}

func NewRemote(baseURL string, options ...RemoteOption) *Remote {
	r := &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
		timeout: defaultRemoteTimeout,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *Remote) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	return r.post(ctx, RouteLogin, req)
}

func (r *Remote) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	return r.post(ctx, RouteRegister, req)
}

// errorPayload is the body of a non-2xx response
type errorPayload struct {
	Message string `json:"message"`
}

func (r *Remote) post(ctx context.Context, path string, body any) (*AuthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("[Remote.post] marshal: %w", err)
	}

	url := r.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("[Remote.post] new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("auth request failed")
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload errorPayload
		_ = json.Unmarshal(raw, &payload)
		message := payload.Message
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		log.Debug().Int("status", resp.StatusCode).Str("url", url).Msg("auth request rejected")
		return nil, autherrors.AuthFailure(message, resp.StatusCode, fmt.Errorf("POST %s: status %d", path, resp.StatusCode))
	}

	var out AuthResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, autherrors.Transport("Failed to parse response", resp.StatusCode, err)
	}
	if out.Token == "" {
		return nil, autherrors.Transport("Failed to parse response", resp.StatusCode, errors.New("response has no token"))
	}
	return &out, nil
}

func transportError(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return autherrors.Transport("Request timeout", http.StatusRequestTimeout, err)
	case errors.Is(err, context.Canceled):
		return autherrors.Transport("Request cancelled", 0, err)
	}
	return autherrors.Transport(err.Error(), 0, err)
}
