package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/matheus3301/evowpp/internal/bus"
	"github.com/matheus3301/evowpp/internal/configure"
	"github.com/matheus3301/evowpp/internal/conversation"
	"github.com/matheus3301/evowpp/internal/credentials"
	"github.com/matheus3301/evowpp/internal/notify"
	"github.com/matheus3301/evowpp/internal/probe"
	"github.com/matheus3301/evowpp/internal/provider"
	"github.com/matheus3301/evowpp/internal/receipts"
	"github.com/matheus3301/evowpp/internal/session"
	"github.com/matheus3301/evowpp/internal/status"
)

type testApp struct {
	*App
	bus   *bus.Bus
	repo  *credentials.MemoryRepository
	flash *notify.Flash
}

func newTestApp(t *testing.T, stored *provider.Config) *testApp {
	t.Helper()
	b := bus.New()
	repo := credentials.NewMemoryRepository()
	if stored != nil {
		if err := repo.Save(*stored); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	sess := session.NewController(repo, status.NewMachine(b), conversation.NewDefaultStore(), b, nil)
	if err := sess.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	flash := notify.NewFlash()
	cc := configure.NewController(repo, probe.NewVerifier(), sess, flash)

	a := NewApp(Deps{
		SessionName: "test",
		Session:     sess,
		Configure:   cc,
		Repository:  repo,
		Flash:       flash,
		Bus:         b,
	})
	t.Cleanup(a.cancel)
	a.pages.Reset(PageContacts)
	return &testApp{App: a, bus: b, repo: repo, flash: flash}
}

func TestChatCommandOpensContact(t *testing.T) {
	a := newTestApp(t, nil)
	target := conversation.SeedContacts()[1]

	a.execute(ParseCommand("chat " + target.Name))

	if a.pages.Current() != PageChat {
		t.Fatalf("page = %q, want %q", a.pages.Current(), PageChat)
	}
	active, ok := a.deps.Session.ActiveContact()
	if !ok || active.ID != target.ID {
		t.Fatalf("active = %+v, %v", active, ok)
	}
}

func TestChatCommandUnknownContact(t *testing.T) {
	a := newTestApp(t, nil)
	a.execute(ParseCommand("chat zzz-no-match"))

	if a.pages.Current() != PageContacts {
		t.Fatalf("page = %q", a.pages.Current())
	}
	n := a.flash.Current()
	if n == nil || n.Level != notify.Negative {
		t.Fatalf("notice = %+v", n)
	}
}

func TestSendClearsComposer(t *testing.T) {
	a := newTestApp(t, nil)
	a.openChat(conversation.SeedContacts()[0].ID)
	before := len(a.deps.Session.Conversations().Messages())

	a.thread.Composer().SetText("hello")
	a.send("hello")

	if got := len(a.deps.Session.Conversations().Messages()); got != before+1 {
		t.Fatalf("messages = %d, want %d", got, before+1)
	}
	if a.thread.Composer().GetText() != "" {
		t.Fatal("composer not cleared")
	}

	a.thread.Composer().SetText("   ")
	a.send("   ")
	if got := len(a.deps.Session.Conversations().Messages()); got != before+1 {
		t.Fatalf("blank message appended: %d", got)
	}
	if a.thread.Composer().GetText() != "   " {
		t.Fatal("blank input should stay in the composer")
	}
}

func TestMarkEmitsReceipt(t *testing.T) {
	a := newTestApp(t, nil)
	events, unsub := a.bus.Subscribe(bus.KindReceipt, 4)
	defer unsub()

	a.openChat(conversation.SeedContacts()[0].ID)
	a.send("ping")
	_, last, ok := a.vm.LastLocalMessage()
	if !ok {
		t.Fatal("no local message")
	}

	a.execute(ParseCommand("mark read"))

	select {
	case evt := <-events:
		r, ok := evt.Payload.(receipts.Receipt)
		if !ok {
			t.Fatalf("payload %T", evt.Payload)
		}
		if r.MessageID != last.ID || r.State != conversation.Read {
			t.Fatalf("receipt = %+v", r)
		}
	case <-time.After(time.Second):
		t.Fatal("no receipt published")
	}
}

func TestMarkRejectsBadState(t *testing.T) {
	a := newTestApp(t, nil)
	a.execute(ParseCommand("mark sideways"))
	n := a.flash.Current()
	if n == nil || n.Level != notify.Negative {
		t.Fatalf("notice = %+v", n)
	}
}

func TestResetOpensConfigWithStoredValues(t *testing.T) {
	stored := provider.Config{BaseURL: "https://evo.test", APIKey: "key", InstanceName: "main"}
	a := newTestApp(t, &stored)
	if a.deps.Session.Status().State != status.Connected {
		t.Fatalf("state = %s", a.deps.Session.Status().State)
	}

	a.execute(ParseCommand("reset"))

	if a.deps.Session.Status().State != status.Unconfigured {
		t.Fatalf("state = %s", a.deps.Session.Status().State)
	}
	if a.pages.Current() != PageConfig || !a.deps.Session.ConfigOpen() {
		t.Fatalf("page = %q, open = %v", a.pages.Current(), a.deps.Session.ConfigOpen())
	}
	if got := a.form.Value(); got != stored {
		t.Fatalf("form = %+v, want %+v", got, stored)
	}
}

func TestAcceptedConfigClosesForm(t *testing.T) {
	a := newTestApp(t, nil)
	a.openConfig()
	if a.pages.Current() != PageConfig {
		t.Fatalf("page = %q", a.pages.Current())
	}

	// Only refresh itself may redraw the views here.
	a.pages.SetOnChange(nil)

	a.deps.Session.OnConfigAccepted(provider.Config{BaseURL: "https://evo.test", APIKey: "k", InstanceName: "i"})
	a.refresh()

	if a.pages.Current() != PageContacts {
		t.Fatalf("page = %q, want %q", a.pages.Current(), PageContacts)
	}
	if got := a.statusBar.GetText(true); !strings.Contains(got, "CONNECTED") {
		t.Errorf("status bar = %q, want CONNECTED", got)
	}
	if got := a.info.GetText(true); !strings.Contains(got, "evo.test") {
		t.Errorf("session info = %q, want base URL", got)
	}
}

func TestCancelConfig(t *testing.T) {
	a := newTestApp(t, nil)
	a.openConfig()
	a.closeConfig()
	if a.pages.Current() != PageContacts || a.deps.Session.ConfigOpen() {
		t.Fatalf("page = %q, open = %v", a.pages.Current(), a.deps.Session.ConfigOpen())
	}
}

func TestUnknownCommand(t *testing.T) {
	a := newTestApp(t, nil)
	a.execute(ParseCommand("frobnicate"))
	if a.flash.Text() != "Unknown command: frobnicate" {
		t.Fatalf("flash = %q", a.flash.Text())
	}
}
