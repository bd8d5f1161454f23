// Package probe checks that a provider is reachable with a given set of
// credentials.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/matheus3301/evowpp/internal/provider"
	"go.uber.org/zap"
)

// DefaultDeadline bounds a probe when the caller does not pick one.
const DefaultDeadline = 10 * time.Second

const maxBodyBytes = 1 << 20

// Verifier issues the reachability probe. It keeps no state between calls and
// is safe for concurrent use.
type Verifier struct {
	client *http.Client
	logger *zap.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithHTTPClient replaces the HTTP client. Its own Timeout, if any, still
// applies on top of the per-call deadline.
func WithHTTPClient(c *http.Client) Option {
	return func(v *Verifier) { v.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(v *Verifier) { v.logger = l }
}

// NewVerifier creates a Verifier.
func NewVerifier(opts ...Option) *Verifier {
	v := &Verifier{
		client: &http.Client{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify probes GET {baseUrl}/instance/fetchInstances with the config's API
// key. The request is abandoned once deadline elapses (DefaultDeadline when
// deadline <= 0) or ctx is done, whichever comes first. No retry is made.
func (v *Verifier) Verify(ctx context.Context, cfg provider.Config, deadline time.Duration) Result {
	if deadline <= 0 {
		deadline = DefaultDeadline
	}
	start := time.Now()
	probeCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	res := v.do(probeCtx, cfg)
	res.Elapsed = time.Since(start)

	fields := []zap.Field{
		zap.Object("provider", cfg),
		zap.Stringer("result", res.Kind),
		zap.Duration("elapsed", res.Elapsed),
	}
	switch res.Kind {
	case Success:
		v.logger.Info("provider probe succeeded", fields...)
	case HTTPFailure:
		v.logger.Warn("provider probe rejected", append(fields, zap.Int("status", res.StatusCode))...)
	default:
		v.logger.Warn("provider probe failed", append(fields, zap.String("error", res.Message))...)
	}
	return res
}

func (v *Verifier) do(ctx context.Context, cfg provider.Config) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.Endpoint(), nil)
	if err != nil {
		return Result{Kind: NetworkError, Message: err.Error()}
	}
	req.Header.Set("apikey", cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return transportFailure(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if readErr != nil {
			// A body cut off by our own deadline is still a timeout.
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return transportFailure(ctx, readErr)
			}
			body = nil
		}
		return Result{Kind: HTTPFailure, StatusCode: resp.StatusCode, Body: string(body)}
	}
	if readErr != nil {
		return transportFailure(ctx, readErr)
	}
	if !json.Valid(body) {
		return Result{Kind: ProtocolError, Message: "response body is not valid JSON"}
	}
	return Result{Kind: Success, Payload: json.RawMessage(body)}
}

// transportFailure separates our own deadline from every other failure to
// reach the provider.
func transportFailure(ctx context.Context, err error) Result {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return Result{Kind: Timeout, Message: err.Error()}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Result{Kind: Timeout, Message: err.Error()}
	}
	return Result{Kind: NetworkError, Message: err.Error()}
}
