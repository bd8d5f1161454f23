// Package configure saves provider settings and checks them against the
// provider.
package configure

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/matheus3301/evowpp/internal/credentials"
	"github.com/matheus3301/evowpp/internal/notify"
	"github.com/matheus3301/evowpp/internal/probe"
	"github.com/matheus3301/evowpp/internal/provider"
	"go.uber.org/zap"
)

// ReasonIncompleteFields is the rejection reason for input with an empty
// field.
const ReasonIncompleteFields = "incomplete-fields"

// Notice texts.
const (
	TextIncomplete = "Fill in all required fields"
	TextVerified   = "Configuration saved and connection verified"
)

// Outcome says whether the input was taken.
type Outcome int

const (
	Rejected Outcome = iota
	Accepted
)

func (o Outcome) String() string {
	if o == Accepted {
		return "accepted"
	}
	return "rejected"
}

// SaveResult describes one SaveAndVerify call. Verification is set only for
// Accepted input. Superseded means a newer save started before this
// verification finished, so its result was not applied.
type SaveResult struct {
	Outcome      Outcome
	Reason       string
	Verification probe.Result
	Superseded   bool
}

// Verifier checks a config against the provider.
type Verifier interface {
	Verify(ctx context.Context, cfg provider.Config, deadline time.Duration) probe.Result
}

// Session receives verification progress.
type Session interface {
	BeginVerification() uint64
	CompleteVerification(seq uint64, cfg provider.Config, res probe.Result) bool
}

// Controller runs the save, verify and report sequence.
type Controller struct {
	repo     credentials.Repository
	verifier Verifier
	session  Session
	sink     notify.Sink
	logger   *zap.Logger
	deadline time.Duration
	inflight atomic.Int32
}

// Option configures a Controller.
type Option func(*Controller)

// WithDeadline bounds each verification.
func WithDeadline(d time.Duration) Option {
	return func(c *Controller) { c.deadline = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController creates a controller. sink may be nil.
func NewController(repo credentials.Repository, verifier Verifier, session Session, sink notify.Sink, opts ...Option) *Controller {
	c := &Controller{
		repo:     repo,
		verifier: verifier,
		session:  session,
		sink:     sink,
		logger:   zap.NewNop(),
		deadline: probe.DefaultDeadline,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Busy reports whether a SaveAndVerify call is in progress.
func (c *Controller) Busy() bool {
	return c.inflight.Load() > 0
}

// SaveAndVerify normalizes input, rejects it when a field is empty, and
// otherwise persists it and checks it against the provider. The config stays
// saved whatever the check says. An error is returned only when persisting
// fails.
func (c *Controller) SaveAndVerify(ctx context.Context, input provider.Config) (SaveResult, error) {
	c.inflight.Add(1)
	defer c.inflight.Add(-1)

	cfg := input.Normalized()
	if !cfg.Complete() {
		c.logger.Info("provider config rejected", zap.String("reason", ReasonIncompleteFields))
		c.notify(notify.Negative, TextIncomplete)
		return SaveResult{Outcome: Rejected, Reason: ReasonIncompleteFields}, nil
	}

	if err := c.repo.Save(cfg); err != nil {
		c.logger.Error("save provider config", zap.Error(err))
		c.notify(notify.Negative, "Could not save configuration: "+err.Error())
		return SaveResult{}, fmt.Errorf("save provider config: %w", err)
	}

	seq := c.session.BeginVerification()
	res := c.verifier.Verify(ctx, cfg, c.deadline)
	out := SaveResult{Outcome: Accepted, Verification: res}

	if !c.session.CompleteVerification(seq, cfg, res) {
		c.logger.Debug("verification superseded", zap.Uint64("seq", seq), zap.Stringer("result", res.Kind))
		out.Superseded = true
		return out, nil
	}

	if res.OK() {
		c.notify(notify.Positive, TextVerified)
	} else {
		c.notify(notify.Negative, FailureText(res))
	}
	return out, nil
}

// FailureText is the notice shown when a saved config fails verification.
func FailureText(res probe.Result) string {
	return fmt.Sprintf("Configuration saved, but the connection failed: %s. Check the settings.", res.Classification())
}

func (c *Controller) notify(level notify.Level, text string) {
	if c.sink == nil {
		return
	}
	c.sink.Notify(notify.Notice{Level: level, Text: text, At: time.Now()})
}
