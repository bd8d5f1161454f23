// Package model holds the TUI's view state over the session controller.
package model

import (
	"context"
	"strings"
	"sync"

	"github.com/matheus3301/evowpp/internal/bus"
	"github.com/matheus3301/evowpp/internal/conversation"
	"github.com/matheus3301/evowpp/internal/provider"
	"github.com/matheus3301/evowpp/internal/session"
	"github.com/matheus3301/evowpp/internal/status"
)

// Snapshot is everything the screen needs for one redraw.
type Snapshot struct {
	Status    status.Status
	Config    *provider.Config
	Contacts  []conversation.Contact
	Total     int
	Filter    string
	Active    conversation.Contact
	HasActive bool
	Messages  []conversation.Message
}

// ViewModel caches UI-only state and signals refreshes when the bus reports
// a change.
type ViewModel struct {
	mu     sync.RWMutex
	sess   *session.Controller
	bus    *bus.Bus
	filter string

	refreshCh chan struct{}
}

// NewViewModel creates a view model over sess. b may be nil.
func NewViewModel(sess *session.Controller, b *bus.Bus) *ViewModel {
	return &ViewModel{
		sess:      sess,
		bus:       b,
		refreshCh: make(chan struct{}, 1),
	}
}

// RefreshCh returns the channel that signals UI refresh. Bursts of events
// collapse into one signal.
func (vm *ViewModel) RefreshCh() <-chan struct{} {
	return vm.refreshCh
}

func (vm *ViewModel) signalRefresh() {
	select {
	case vm.refreshCh <- struct{}{}:
	default:
	}
}

// Start forwards bus events as refresh signals until ctx is done.
func (vm *ViewModel) Start(ctx context.Context) {
	if vm.bus == nil {
		return
	}
	events, unsub := vm.bus.Subscribe("", 64)
	go func() {
		defer unsub()
		for {
			select {
			case <-events:
				vm.signalRefresh()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// SetFilter narrows the contact list by name.
func (vm *ViewModel) SetFilter(term string) {
	vm.mu.Lock()
	vm.filter = strings.TrimSpace(term)
	vm.mu.Unlock()
	vm.signalRefresh()
}

// Filter returns the current filter term.
func (vm *ViewModel) Filter() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.filter
}

// Snapshot reads the current state.
func (vm *ViewModel) Snapshot() Snapshot {
	filter := vm.Filter()
	store := vm.sess.Conversations()
	snap := Snapshot{
		Status:   vm.sess.Status(),
		Config:   vm.sess.Config(),
		Contacts: store.Filter(filter),
		Total:    len(store.Contacts()),
		Filter:   filter,
	}
	if c, ok := vm.sess.ActiveContact(); ok {
		snap.Active = c
		snap.HasActive = true
		snap.Messages = store.Messages()
	}
	return snap
}

// FindContact resolves a name typed by the user. An exact match (ignoring
// case) wins over the first contact whose name contains query.
func (vm *ViewModel) FindContact(query string) (conversation.Contact, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return conversation.Contact{}, false
	}
	contacts := vm.sess.Conversations().Contacts()
	for _, c := range contacts {
		if strings.ToLower(c.Name) == q {
			return c, true
		}
	}
	for _, c := range contacts {
		if strings.Contains(strings.ToLower(c.Name), q) {
			return c, true
		}
	}
	return conversation.Contact{}, false
}

// LastLocalMessage returns the newest message the user wrote in the active
// conversation.
func (vm *ViewModel) LastLocalMessage() (contactID string, msg conversation.Message, ok bool) {
	active, has := vm.sess.ActiveContact()
	if !has {
		return "", conversation.Message{}, false
	}
	msgs := vm.sess.Conversations().Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Origin == conversation.Local {
			return active.ID, msgs[i], true
		}
	}
	return "", conversation.Message{}, false
}
