package session

import (
	"fmt"
	"sync"

	"github.com/matheus3301/evowpp/internal/bus"
	"github.com/matheus3301/evowpp/internal/conversation"
	"github.com/matheus3301/evowpp/internal/credentials"
	"github.com/matheus3301/evowpp/internal/probe"
	"github.com/matheus3301/evowpp/internal/provider"
	"github.com/matheus3301/evowpp/internal/status"
	"go.uber.org/zap"
)

// MessageAppended is the payload of message.appended events.
type MessageAppended struct {
	ContactID string
	Message   conversation.Message
}

// Controller owns the session-wide state: connection status, the active
// provider config, whether the configuration surface is open, and the
// conversation store.
type Controller struct {
	mu         sync.Mutex
	repo       credentials.Repository
	machine    *status.Machine
	conv       *conversation.Store
	bus        *bus.Bus
	logger     *zap.Logger
	cfg        *provider.Config
	configOpen bool
	seq        uint64
}

// NewController creates a controller. b and logger may be nil.
func NewController(repo credentials.Repository, machine *status.Machine, conv *conversation.Store, b *bus.Bus, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		repo:    repo,
		machine: machine,
		conv:    conv,
		bus:     b,
		logger:  logger,
	}
}

// Initialize restores the stored provider config. A stored config is taken as
// connected without probing the provider again.
func (c *Controller) Initialize() error {
	cfg, err := c.repo.Load()
	if err != nil {
		return fmt.Errorf("load provider config: %w", err)
	}
	if cfg == nil {
		c.logger.Info("no provider config stored")
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
	if _, err := c.machine.Fire(status.Restore, ""); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	c.logger.Info("provider config restored", zap.Object("provider", *cfg))
	return nil
}

// OnConfigAccepted marks cfg as the active, verified config and closes the
// configuration surface. Verifications still in flight become stale.
func (c *Controller) OnConfigAccepted(cfg provider.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.acceptLocked(cfg)
}

func (c *Controller) acceptLocked(cfg provider.Config) {
	if c.machine.Current().State != status.Verifying {
		_, _ = c.machine.Fire(status.VerifyBegin, "")
	}
	if _, err := c.machine.Fire(status.VerifyAccepted, ""); err != nil {
		c.logger.Error("accept config", zap.Error(err))
	}
	c.cfg = &cfg
	c.configOpen = false
	if c.bus != nil {
		c.bus.Publish(bus.Event{Kind: bus.KindConfigAccepted, Payload: cfg})
	}
}

// BeginVerification moves the session to VERIFYING and returns the sequence
// number that the matching CompleteVerification must present.
func (c *Controller) BeginVerification() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	if _, err := c.machine.Fire(status.VerifyBegin, ""); err != nil {
		c.logger.Error("begin verification", zap.Error(err))
	}
	return c.seq
}

// CompleteVerification applies the result of verification seq. It returns
// false, and changes nothing, when a newer verification or reset has started
// since.
func (c *Controller) CompleteVerification(seq uint64, cfg provider.Config, res probe.Result) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		c.logger.Debug("stale verification result ignored",
			zap.Uint64("seq", seq),
			zap.Uint64("latest", c.seq),
			zap.Stringer("result", res.Kind),
		)
		return false
	}
	if res.OK() {
		c.acceptLocked(cfg)
		return true
	}
	if _, err := c.machine.Fire(status.VerifyFailed, res.Classification()); err != nil {
		c.logger.Error("fail verification", zap.Error(err))
	}
	return true
}

// Reset returns the session to UNCONFIGURED. The stored config is kept.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.cfg = nil
	if _, err := c.machine.Fire(status.Reset, ""); err != nil {
		c.logger.Error("reset session", zap.Error(err))
	}
}

// OpenConfig opens the configuration surface.
func (c *Controller) OpenConfig() {
	c.mu.Lock()
	c.configOpen = true
	c.mu.Unlock()
}

// CloseConfig closes the configuration surface.
func (c *Controller) CloseConfig() {
	c.mu.Lock()
	c.configOpen = false
	c.mu.Unlock()
}

// ConfigOpen reports whether the configuration surface is open.
func (c *Controller) ConfigOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.configOpen
}

// Status returns the connection status.
func (c *Controller) Status() status.Status {
	return c.machine.Current()
}

// Config returns a copy of the active provider config, or nil.
func (c *Controller) Config() *provider.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg == nil {
		return nil
	}
	cfg := *c.cfg
	return &cfg
}

// Conversations returns the conversation store.
func (c *Controller) Conversations() *conversation.Store {
	return c.conv
}

// SelectContact switches the active contact and returns its log.
func (c *Controller) SelectContact(id string) ([]conversation.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs, err := c.conv.SelectContact(id)
	if err != nil {
		return nil, err
	}
	if c.bus != nil {
		c.bus.Publish(bus.Event{Kind: bus.KindContactSelected, Payload: id})
	}
	return msgs, nil
}

// ActiveContact returns the selected contact, if any.
func (c *Controller) ActiveContact() (conversation.Contact, bool) {
	return c.conv.Active()
}

// SendLocal appends content to the active conversation. Nothing is sent to
// the provider.
func (c *Controller) SendLocal(content string) (conversation.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg, err := c.conv.SendLocal(content)
	if err != nil {
		return msg, err
	}
	active, _ := c.conv.Active()
	c.logger.Debug("local message appended", zap.String("contact", active.ID), zap.String("id", msg.ID))
	if c.bus != nil {
		c.bus.Publish(bus.Event{
			Kind:    bus.KindMessageAppended,
			Payload: MessageAppended{ContactID: active.ID, Message: msg},
		})
	}
	return msg, nil
}
