package configure

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/matheus3301/evowpp/internal/bus"
	"github.com/matheus3301/evowpp/internal/conversation"
	"github.com/matheus3301/evowpp/internal/credentials"
	"github.com/matheus3301/evowpp/internal/notify"
	"github.com/matheus3301/evowpp/internal/probe"
	"github.com/matheus3301/evowpp/internal/provider"
	"github.com/matheus3301/evowpp/internal/session"
	"github.com/matheus3301/evowpp/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var goodInput = provider.Config{BaseURL: " http://evo.local/ ", APIKey: "k-123456", InstanceName: "main "}

type fakeVerifier struct {
	mu       sync.Mutex
	calls    []provider.Config
	deadline time.Duration
	result   probe.Result
	onVerify func(cfg provider.Config)
}

func (f *fakeVerifier) Verify(_ context.Context, cfg provider.Config, deadline time.Duration) probe.Result {
	f.mu.Lock()
	f.calls = append(f.calls, cfg)
	f.deadline = deadline
	hook := f.onVerify
	f.mu.Unlock()
	if hook != nil {
		hook(cfg)
	}
	return f.result
}

func (f *fakeVerifier) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recorder struct {
	mu      sync.Mutex
	notices []notify.Notice
}

func (r *recorder) Notify(n notify.Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

func (r *recorder) All() []notify.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notice(nil), r.notices...)
}

type fixture struct {
	repo    *credentials.MemoryRepository
	verif   *fakeVerifier
	session *session.Controller
	sink    *recorder
	ctrl    *Controller
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	b := bus.New()
	f := &fixture{
		repo:  credentials.NewMemoryRepository(),
		verif: &fakeVerifier{result: probe.Result{Kind: probe.Success}},
		sink:  &recorder{},
	}
	f.session = session.NewController(f.repo, status.NewMachine(b), conversation.NewDefaultStore(), b, nil)
	f.ctrl = NewController(f.repo, f.verif, f.session, f.sink, opts...)
	return f
}

func TestIncompleteInputRejected(t *testing.T) {
	inputs := map[string]provider.Config{
		"all empty":        {},
		"no base url":      {APIKey: "k", InstanceName: "i"},
		"no api key":       {BaseURL: "http://h", InstanceName: "i"},
		"no instance":      {BaseURL: "http://h", APIKey: "k"},
		"whitespace field": {BaseURL: "http://h", APIKey: "   ", InstanceName: "i"},
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)

			res, err := f.ctrl.SaveAndVerify(context.Background(), input)

			require.NoError(t, err)
			assert.Equal(t, Rejected, res.Outcome)
			assert.Equal(t, ReasonIncompleteFields, res.Reason)
			assert.Zero(t, f.repo.Saves(), "rejected input is never written")
			assert.Zero(t, f.verif.Calls(), "rejected input is never verified")
			assert.Equal(t, status.Unconfigured, f.session.Status().State)
			notices := f.sink.All()
			require.Len(t, notices, 1)
			assert.Equal(t, notify.Negative, notices[0].Level)
			assert.Equal(t, TextIncomplete, notices[0].Text)
		})
	}
}

func TestSaveHappensOnceBeforeVerification(t *testing.T) {
	f := newFixture(t)
	var savesAtVerify int
	var stateAtVerify status.State
	f.verif.onVerify = func(provider.Config) {
		savesAtVerify = f.repo.Saves()
		stateAtVerify = f.session.Status().State
	}

	res, err := f.ctrl.SaveAndVerify(context.Background(), goodInput)

	require.NoError(t, err)
	assert.Equal(t, Accepted, res.Outcome)
	assert.Equal(t, 1, savesAtVerify)
	assert.Equal(t, 1, f.repo.Saves())
	assert.Equal(t, status.Verifying, stateAtVerify)
}

func TestInputIsNormalized(t *testing.T) {
	f := newFixture(t)

	_, err := f.ctrl.SaveAndVerify(context.Background(), goodInput)
	require.NoError(t, err)

	want := provider.Config{BaseURL: "http://evo.local/", APIKey: "k-123456", InstanceName: "main"}
	stored, err := f.repo.Load()
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, want, *stored)
	assert.Equal(t, want, f.verif.calls[0])
}

func TestVerificationSuccess(t *testing.T) {
	f := newFixture(t)
	f.session.OpenConfig()

	res, err := f.ctrl.SaveAndVerify(context.Background(), goodInput)

	require.NoError(t, err)
	assert.True(t, res.Verification.OK())
	assert.False(t, res.Superseded)
	assert.Equal(t, status.Connected, f.session.Status().State)
	assert.False(t, f.session.ConfigOpen())
	notices := f.sink.All()
	require.Len(t, notices, 1)
	assert.Equal(t, notify.Positive, notices[0].Level)
	assert.Equal(t, TextVerified, notices[0].Text)
}

func TestVerificationFailureKeepsConfig(t *testing.T) {
	tests := []struct {
		name   string
		result probe.Result
		reason string
	}{
		{"http", probe.Result{Kind: probe.HTTPFailure, StatusCode: 401, Body: "unauthorized"}, "rejected by server (HTTP 401)"},
		{"timeout", probe.Result{Kind: probe.Timeout}, "no response within limit"},
		{"network", probe.Result{Kind: probe.NetworkError, Message: "refused"}, "unreachable"},
		{"protocol", probe.Result{Kind: probe.ProtocolError}, "unexpected response format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.verif.result = tt.result
			f.session.OpenConfig()

			res, err := f.ctrl.SaveAndVerify(context.Background(), goodInput)

			require.NoError(t, err)
			assert.Equal(t, Accepted, res.Outcome)
			assert.Equal(t, tt.result.Kind, res.Verification.Kind)
			assert.Equal(t, status.Status{State: status.Failed, Reason: tt.reason}, f.session.Status())
			assert.True(t, f.session.ConfigOpen(), "form stays open on failure")

			stored, _ := f.repo.Load()
			require.NotNil(t, stored, "config is kept after a failed check")

			notices := f.sink.All()
			require.Len(t, notices, 1)
			assert.Equal(t, notify.Negative, notices[0].Level)
			assert.Contains(t, notices[0].Text, tt.reason)
		})
	}
}

func TestSaveErrorIsReported(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("disk full")
	f.repo.FailSaves(boom)

	_, err := f.ctrl.SaveAndVerify(context.Background(), goodInput)

	assert.ErrorIs(t, err, boom)
	assert.Zero(t, f.verif.Calls())
	assert.Equal(t, status.Unconfigured, f.session.Status().State)
	notices := f.sink.All()
	require.Len(t, notices, 1)
	assert.Equal(t, "Could not save configuration: disk full", notices[0].Text)
}

func TestDeadlineIsPassedThrough(t *testing.T) {
	f := newFixture(t, WithDeadline(250*time.Millisecond))
	_, err := f.ctrl.SaveAndVerify(context.Background(), goodInput)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, f.verif.deadline)

	g := newFixture(t)
	_, err = g.ctrl.SaveAndVerify(context.Background(), goodInput)
	require.NoError(t, err)
	assert.Equal(t, probe.DefaultDeadline, g.verif.deadline)
}

// TestLastSaveWins starts a slow verification, then a second save that
// completes first. The slow result must not overwrite the newer status.
func TestLastSaveWins(t *testing.T) {
	f := newFixture(t)
	release := make(chan struct{})
	started := make(chan struct{})
	slow := provider.Config{BaseURL: "http://slow", APIKey: "k", InstanceName: "i"}

	f.verif.onVerify = func(cfg provider.Config) {
		if cfg.BaseURL == slow.BaseURL {
			close(started)
			<-release
		}
	}

	done := make(chan SaveResult, 1)
	go func() {
		res, _ := f.ctrl.SaveAndVerify(context.Background(), slow)
		done <- res
	}()
	<-started
	assert.True(t, f.ctrl.Busy())

	// The newer save fails; the older one would have succeeded.
	second := &fakeVerifier{result: probe.Result{Kind: probe.NetworkError}}
	other := NewController(f.repo, second, f.session, f.sink)
	res, err := other.SaveAndVerify(context.Background(), goodInput)
	require.NoError(t, err)
	require.False(t, res.Superseded)
	require.Equal(t, status.Failed, f.session.Status().State)

	close(release)
	first := <-done
	assert.True(t, first.Superseded)
	assert.Equal(t, status.Failed, f.session.Status().State, "stale success is ignored")
	assert.False(t, f.ctrl.Busy())
	assert.Len(t, f.sink.All(), 1, "stale result is not announced")

	stored, _ := f.repo.Load()
	assert.Equal(t, "http://evo.local/", stored.BaseURL, "last save wins in storage too")
}

func TestEndToEndAgainstProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, "unauthorized")
			return
		}
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	f := newFixture(t)
	ctrl := NewController(f.repo, probe.NewVerifier(), f.session, f.sink, WithDeadline(time.Second))

	res, err := ctrl.SaveAndVerify(context.Background(), provider.Config{BaseURL: srv.URL + "/", APIKey: "bad", InstanceName: "i"})
	require.NoError(t, err)
	assert.Equal(t, probe.HTTPFailure, res.Verification.Kind)
	assert.Equal(t, "unauthorized", res.Verification.Body)
	assert.Equal(t, status.Failed, f.session.Status().State)

	res, err = ctrl.SaveAndVerify(context.Background(), provider.Config{BaseURL: srv.URL, APIKey: "good", InstanceName: "i"})
	require.NoError(t, err)
	assert.Equal(t, probe.Success, res.Verification.Kind)
	assert.Equal(t, status.Connected, f.session.Status().State)
	assert.Equal(t, 2, f.repo.Saves())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "accepted", Accepted.String())
	assert.Equal(t, "rejected", Rejected.String())
}
