package probe

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matheus3301/evowpp/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cfgFor(baseURL string) provider.Config {
	return provider.Config{BaseURL: baseURL, APIKey: "secret-key", InstanceName: "main"}
}

func TestVerifySuccess(t *testing.T) {
	var gotPath, gotKey, gotMethod, gotCT string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotKey = r.Header.Get("apikey")
		gotCT = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"instance":{"instanceName":"main"}}]`)
	}))
	defer srv.Close()

	res := NewVerifier().Verify(context.Background(), cfgFor(srv.URL), time.Second)

	require.Equal(t, Success, res.Kind, res.Message)
	assert.True(t, res.OK())
	assert.Equal(t, "connected", res.Classification())
	assert.JSONEq(t, `[{"instance":{"instanceName":"main"}}]`, string(res.Payload))
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, provider.ProbePath, gotPath)
	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "application/json", gotCT)
}

type recordingTransport struct {
	url string
}

func (rt *recordingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	rt.url = r.URL.String()
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`{}`)),
		Header:     make(http.Header),
		Request:    r,
	}, nil
}

func TestVerifyTrailingSlash(t *testing.T) {
	rt := &recordingTransport{}
	v := NewVerifier(WithHTTPClient(&http.Client{Transport: rt}))

	res := v.Verify(context.Background(), cfgFor("http://h/"), time.Second)

	require.Equal(t, Success, res.Kind)
	assert.Equal(t, "http://h/instance/fetchInstances", rt.url)
}

func TestVerifyHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, "unauthorized")
	}))
	defer srv.Close()

	res := NewVerifier().Verify(context.Background(), cfgFor(srv.URL), time.Second)

	require.Equal(t, HTTPFailure, res.Kind)
	assert.False(t, res.OK())
	assert.Equal(t, 401, res.StatusCode)
	assert.Equal(t, "unauthorized", res.Body)
	assert.Equal(t, "rejected by server (HTTP 401)", res.Classification())
}

func TestVerifyProtocolError(t *testing.T) {
	cases := map[string]string{
		"not json":  "<html>gateway</html>",
		"empty":     "",
		"truncated": `{"instance":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			}))
			defer srv.Close()

			res := NewVerifier().Verify(context.Background(), cfgFor(srv.URL), time.Second)

			assert.Equal(t, ProtocolError, res.Kind)
			assert.Equal(t, "unexpected response format", res.Classification())
			assert.NotEmpty(t, res.Message)
		})
	}
}

func TestVerifyTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	res := NewVerifier().Verify(context.Background(), cfgFor(srv.URL), 50*time.Millisecond)

	assert.Equal(t, Timeout, res.Kind)
	assert.Equal(t, "no response within limit", res.Classification())
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.GreaterOrEqual(t, res.Elapsed, 50*time.Millisecond)
}

func TestVerifyStalledBody(t *testing.T) {
	for _, code := range []int{http.StatusOK, http.StatusBadGateway} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			release := make(chan struct{})
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(code)
				_, _ = w.Write([]byte(`{"partial":`))
				w.(http.Flusher).Flush()
				select {
				case <-release:
				case <-r.Context().Done():
				}
			}))
			defer srv.Close()
			defer close(release)

			res := NewVerifier().Verify(context.Background(), cfgFor(srv.URL), 50*time.Millisecond)

			assert.Equal(t, Timeout, res.Kind)
			assert.Equal(t, "no response within limit", res.Classification())
			assert.Zero(t, res.StatusCode)
			assert.Empty(t, res.Body)
		})
	}
}

func TestVerifyNetworkError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	res := NewVerifier().Verify(context.Background(), cfgFor("http://"+addr), 10*time.Second)

	assert.Equal(t, NetworkError, res.Kind)
	assert.Equal(t, "unreachable", res.Classification())
	assert.NotEmpty(t, res.Message)
	assert.Less(t, res.Elapsed, 500*time.Millisecond)
}

func TestVerifyMalformedURL(t *testing.T) {
	res := NewVerifier().Verify(context.Background(), cfgFor("://nope"), time.Second)
	assert.Equal(t, NetworkError, res.Kind)
}

func TestVerifyCallerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		<-r.Context().Done()
		return nil, r.Context().Err()
	})}

	res := NewVerifier(WithHTTPClient(client)).Verify(ctx, cfgFor("http://h"), time.Second)
	assert.Equal(t, NetworkError, res.Kind)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestVerifyTransportTimeout(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, timeoutErr{}
	})}

	res := NewVerifier(WithHTTPClient(client)).Verify(context.Background(), cfgFor("http://h"), time.Second)
	assert.Equal(t, Timeout, res.Kind)
}

func TestVerifyDefaultDeadline(t *testing.T) {
	var deadline time.Time
	var ok bool
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		deadline, ok = r.Context().Deadline()
		return nil, errors.New("stop")
	})}

	before := time.Now()
	NewVerifier(WithHTTPClient(client)).Verify(context.Background(), cfgFor("http://h"), 0)

	require.True(t, ok)
	assert.WithinDuration(t, before.Add(DefaultDeadline), deadline, time.Second)
}

func TestKindString(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{Success, "success"},
		{HTTPFailure, "http_failure"},
		{Timeout, "timeout"},
		{NetworkError, "network_error"},
		{ProtocolError, "protocol_error"},
		{Kind(42), "kind(42)"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.k), got, tt.want)
		}
	}
}
