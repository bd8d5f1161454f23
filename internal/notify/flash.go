package notify

import (
	"sync"
	"time"
)

// Default display times per level.
const (
	InfoTTL     = 5 * time.Second
	PositiveTTL = 5 * time.Second
	NegativeTTL = 10 * time.Second
)

// Flash keeps the most recent notice for display until it expires, and
// forwards every notice on a watch channel.
type Flash struct {
	mu      sync.RWMutex
	current Notice
	expires time.Time
	watchCh chan Notice
	now     func() time.Time
}

// NewFlash creates an empty flash model.
func NewFlash() *Flash {
	return &Flash{
		watchCh: make(chan Notice, 8),
		now:     time.Now,
	}
}

// Notify implements Sink.
func (f *Flash) Notify(n Notice) {
	now := f.now()
	if n.At.IsZero() {
		n.At = now
	}
	f.mu.Lock()
	f.current = n
	f.expires = now.Add(ttl(n.Level))
	f.mu.Unlock()
	select {
	case f.watchCh <- n:
	default:
	}
}

// Current returns the live notice, or nil once it has expired.
func (f *Flash) Current() *Notice {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.current.Text == "" || f.now().After(f.expires) {
		return nil
	}
	n := f.current
	return &n
}

// Text returns the live notice text, or "".
func (f *Flash) Text() string {
	if n := f.Current(); n != nil {
		return n.Text
	}
	return ""
}

// Clear drops the current notice.
func (f *Flash) Clear() {
	f.mu.Lock()
	f.current = Notice{}
	f.mu.Unlock()
}

// Watch returns a channel that receives every notice. Notices are dropped
// when nobody drains it.
func (f *Flash) Watch() <-chan Notice {
	return f.watchCh
}

func ttl(l Level) time.Duration {
	switch l {
	case Positive:
		return PositiveTTL
	case Negative:
		return NegativeTTL
	default:
		return InfoTTL
	}
}
