// Package status models the connection status of the provider session.
package status

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/matheus3301/evowpp/internal/bus"
)

// State is the coarse connection state shown to the user.
type State string

const (
	Unconfigured State = "UNCONFIGURED"
	Verifying    State = "VERIFYING"
	Connected    State = "CONNECTED"
	Failed       State = "FAILED"
)

// Status is a State plus, for Failed, the reason.
type Status struct {
	State  State
	Reason string
}

func (s Status) String() string {
	if s.State == Failed && s.Reason != "" {
		return fmt.Sprintf("%s: %s", s.State, s.Reason)
	}
	return string(s.State)
}

// Trigger names an input to the state machine.
type Trigger string

const (
	Restore        Trigger = "restore"
	VerifyBegin    Trigger = "verify.begin"
	VerifyAccepted Trigger = "verify.accepted"
	VerifyFailed   Trigger = "verify.failed"
	Reset          Trigger = "reset"
)

var allStates = []State{Unconfigured, Verifying, Connected, Failed}

// transitions lists, per trigger, the states it may fire from and the state it
// leads to.
var transitions = map[Trigger]struct {
	from []State
	to   State
}{
	Restore:        {from: []State{Unconfigured}, to: Connected},
	VerifyBegin:    {from: allStates, to: Verifying},
	VerifyAccepted: {from: []State{Verifying}, to: Connected},
	VerifyFailed:   {from: []State{Verifying}, to: Failed},
	Reset:          {from: allStates, to: Unconfigured},
}

// ErrInvalidTransition is returned when a trigger does not apply to the
// current state.
var ErrInvalidTransition = errors.New("invalid status transition")

// Next computes the status that follows cur under trigger. reason is kept
// only when the result is Failed.
func Next(cur Status, trigger Trigger, reason string) (Status, error) {
	t, ok := transitions[trigger]
	if !ok {
		return cur, fmt.Errorf("%w: unknown trigger %q", ErrInvalidTransition, trigger)
	}
	if !slices.Contains(t.from, cur.State) {
		return cur, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, trigger, cur.State)
	}
	next := Status{State: t.to}
	if t.to == Failed {
		next.Reason = reason
	}
	return next, nil
}

// Machine holds the current Status and announces every change on the bus.
type Machine struct {
	mu      sync.RWMutex
	current Status
	bus     *bus.Bus
}

// NewMachine creates a machine in the Unconfigured state. b may be nil.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: Status{State: Unconfigured},
		bus:     b,
	}
}

// Current returns the current status.
func (m *Machine) Current() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Fire applies trigger and returns the new status.
func (m *Machine) Fire(trigger Trigger, reason string) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := Next(m.current, trigger, reason)
	if err != nil {
		return m.current, err
	}
	from := m.current
	m.current = next
	if m.bus != nil && from != next {
		m.bus.Publish(bus.Event{
			Kind: bus.KindStatusChanged,
			Payload: StatusChange{
				From:    from,
				To:      next,
				Trigger: trigger,
			},
		})
	}
	return next, nil
}

// StatusChange is the payload of status change events.
type StatusChange struct {
	From    Status
	To      Status
	Trigger Trigger
}
