// Package receipts applies delivery receipts to local messages.
package receipts

import (
	"context"
	"errors"
	"sync"

	"github.com/matheus3301/evowpp/internal/bus"
	"github.com/matheus3301/evowpp/internal/conversation"
	"go.uber.org/zap"
)

// Receipt reports that a local message reached a delivery state.
type Receipt struct {
	ContactID string
	MessageID string
	State     conversation.Delivery
}

// DeliveryChanged is the payload of message.delivery_changed events.
type DeliveryChanged struct {
	ContactID string
	MessageID string
	State     conversation.Delivery
}

// Emit publishes r for an Engine to pick up.
func Emit(b *bus.Bus, r Receipt) {
	b.Publish(bus.Event{Kind: bus.KindReceipt, Payload: r})
}

// Engine subscribes to "receipt." events on the bus and moves the matching
// messages forward.
type Engine struct {
	store  *conversation.Store
	bus    *bus.Bus
	logger *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewEngine creates a receipts engine.
func NewEngine(store *conversation.Store, b *bus.Bus, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:  store,
		bus:    b,
		logger: logger,
	}
}

// Start begins consuming receipts. Calling Start on a running engine is a
// no-op.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		return
	}
	ctx, e.cancel = context.WithCancel(ctx)
	e.done = make(chan struct{})
	ch, unsub := e.bus.Subscribe("receipt.", 256)

	go func(done chan struct{}) {
		defer close(done)
		defer unsub()
		for {
			select {
			case evt := <-ch:
				e.handleEvent(evt)
			case <-ctx.Done():
				return
			}
		}
	}(e.done)
}

// Stop stops the engine and waits for the consumer to exit.
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel, e.done = nil, nil
	e.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (e *Engine) handleEvent(evt bus.Event) {
	r, ok := evt.Payload.(Receipt)
	if !ok {
		e.logger.Warn("unexpected receipt payload", zap.String("kind", evt.Kind), zap.Any("payload", evt.Payload))
		return
	}
	if _, err := e.Apply(r); err != nil {
		e.logger.Warn("receipt not applied", zap.Error(err),
			zap.String("contact", r.ContactID), zap.String("msg_id", r.MessageID))
	}
}

// Apply advances the message named by r. It reports whether anything
// changed; repeated or out-of-order receipts change nothing.
func (e *Engine) Apply(r Receipt) (bool, error) {
	changed, err := e.store.AdvanceDelivery(r.ContactID, r.MessageID, r.State)
	if err != nil {
		if errors.Is(err, conversation.ErrNotLocal) {
			e.logger.Debug("receipt for remote message ignored", zap.String("msg_id", r.MessageID))
			return false, nil
		}
		return false, err
	}
	if !changed {
		return false, nil
	}
	e.logger.Debug("delivery advanced",
		zap.String("contact", r.ContactID),
		zap.String("msg_id", r.MessageID),
		zap.Stringer("state", r.State),
	)
	e.bus.Publish(bus.Event{
		Kind:    bus.KindDeliveryChanged,
		Payload: DeliveryChanged(r),
	})
	return true, nil
}
