package probe

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind classifies the outcome of a probe.
type Kind int

const (
	Success Kind = iota
	HTTPFailure
	Timeout
	NetworkError
	ProtocolError
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case HTTPFailure:
		return "http_failure"
	case Timeout:
		return "timeout"
	case NetworkError:
		return "network_error"
	case ProtocolError:
		return "protocol_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is the outcome of a single Verify call. Only the fields relevant to
// Kind are populated.
type Result struct {
	Kind       Kind
	Payload    json.RawMessage // Success
	StatusCode int             // HTTPFailure
	Body       string          // HTTPFailure
	Message    string          // NetworkError, ProtocolError
	Elapsed    time.Duration
}

// OK reports whether the provider was reached and answered sensibly.
func (r Result) OK() bool {
	return r.Kind == Success
}

// Classification is the short user-facing description of the outcome.
func (r Result) Classification() string {
	switch r.Kind {
	case Success:
		return "connected"
	case HTTPFailure:
		return fmt.Sprintf("rejected by server (HTTP %d)", r.StatusCode)
	case Timeout:
		return "no response within limit"
	case NetworkError:
		return "unreachable"
	case ProtocolError:
		return "unexpected response format"
	default:
		return r.Kind.String()
	}
}
