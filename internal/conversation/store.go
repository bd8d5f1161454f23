// Package conversation holds the contact roster and the per-contact message
// logs for the running session.
package conversation

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownContact = errors.New("unknown contact")
	ErrUnknownMessage = errors.New("unknown message")
	ErrEmptyContent   = errors.New("empty message content")
	ErrNotLocal       = errors.New("message was not sent locally")
	// ErrNoActiveContact is reported when sending with nothing selected. It
	// matches ErrEmptyContent under errors.Is.
	ErrNoActiveContact = fmt.Errorf("%w: no active contact", ErrEmptyContent)
)

// TimeLabelLayout formats CreatedAtLabel for local messages.
const TimeLabelLayout = "15:04"

// Store is the in-memory conversation state. Logs are seeded the first time a
// contact is selected and then kept, so reselecting a contact shows the same
// log including anything sent since. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	contacts []Contact
	index    map[string]int
	logs     map[string][]Message
	active   string

	seed  func(Contact) []Message
	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithSeed sets the function producing a contact's initial log.
func WithSeed(fn func(Contact) []Message) Option {
	return func(s *Store) { s.seed = fn }
}

// WithClock sets the clock used for message time labels.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator sets the generator for local message IDs.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// NewStore creates a store over the given roster. Duplicate IDs keep the
// first entry.
func NewStore(contacts []Contact, opts ...Option) *Store {
	s := &Store{
		index: make(map[string]int, len(contacts)),
		logs:  make(map[string][]Message),
		seed:  SeedMessages,
		now:   time.Now,
		newID: newMessageID,
	}
	for _, c := range contacts {
		if _, dup := s.index[c.ID]; dup {
			continue
		}
		s.index[c.ID] = len(s.contacts)
		s.contacts = append(s.contacts, c)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDefaultStore creates a store over the demo roster.
func NewDefaultStore(opts ...Option) *Store {
	return NewStore(SeedContacts(), opts...)
}

func newMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Contacts returns the roster in display order.
func (s *Store) Contacts() []Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.contacts)
}

// Filter returns contacts whose name contains term, ignoring case. An empty
// term matches everything.
func (s *Store) Filter(term string) []Contact {
	term = strings.ToLower(strings.TrimSpace(term))
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		if term == "" || strings.Contains(strings.ToLower(c.Name), term) {
			out = append(out, c)
		}
	}
	return out
}

// Contact looks a contact up by ID.
func (s *Store) Contact(id string) (Contact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return Contact{}, false
	}
	return s.contacts[i], true
}

// Active returns the selected contact, if any.
func (s *Store) Active() (Contact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == "" {
		return Contact{}, false
	}
	return s.contacts[s.index[s.active]], true
}

// SelectContact makes id the active contact and returns its log. An unknown
// id leaves the selection unchanged.
func (s *Store) SelectContact(id string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContact, id)
	}
	s.active = id
	return slices.Clone(s.logLocked(s.contacts[i])), nil
}

// Messages returns the active contact's log, or nil when nothing is selected.
func (s *Store) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == "" {
		return nil
	}
	return slices.Clone(s.logs[s.active])
}

// SendLocal appends content to the active contact's log as a local message in
// the Sent state. Content is stored as typed; it is only trimmed to decide
// whether it is empty.
func (s *Store) SendLocal(content string) (Message, error) {
	if strings.TrimSpace(content) == "" {
		return Message{}, ErrEmptyContent
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == "" {
		return Message{}, ErrNoActiveContact
	}
	msg := Message{
		ID:             s.newID(),
		Content:        content,
		CreatedAtLabel: s.now().Format(TimeLabelLayout),
		Origin:         Local,
		Delivery:       Sent,
	}
	s.logs[s.active] = append(s.logs[s.active], msg)
	return msg, nil
}

// AdvanceDelivery moves a local message forward to state to. It reports
// false when the message is already at or past to.
func (s *Store) AdvanceDelivery(contactID, msgID string, to Delivery) (bool, error) {
	if to < Sent || to > Read {
		return false, fmt.Errorf("invalid delivery state %d", int(to))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[contactID]; !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownContact, contactID)
	}
	log := s.logs[contactID]
	for i := range log {
		if log[i].ID != msgID {
			continue
		}
		if log[i].Origin != Local {
			return false, fmt.Errorf("%w: %s", ErrNotLocal, msgID)
		}
		if to <= log[i].Delivery {
			return false, nil
		}
		log[i].Delivery = to
		return true, nil
	}
	return false, fmt.Errorf("%w: %s/%s", ErrUnknownMessage, contactID, msgID)
}

func (s *Store) logLocked(c Contact) []Message {
	log, ok := s.logs[c.ID]
	if !ok {
		log = slices.Clone(s.seed(c))
		s.logs[c.ID] = log
	}
	return log
}
