// Package tui is the terminal front end.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/evowpp/internal/bus"
	"github.com/matheus3301/evowpp/internal/configure"
	"github.com/matheus3301/evowpp/internal/conversation"
	"github.com/matheus3301/evowpp/internal/credentials"
	"github.com/matheus3301/evowpp/internal/notify"
	"github.com/matheus3301/evowpp/internal/provider"
	"github.com/matheus3301/evowpp/internal/receipts"
	"github.com/matheus3301/evowpp/internal/session"
	"github.com/matheus3301/evowpp/internal/status"
	"github.com/matheus3301/evowpp/internal/tui/keys"
	"github.com/matheus3301/evowpp/internal/tui/model"
	"github.com/matheus3301/evowpp/internal/tui/ui"
	"github.com/matheus3301/evowpp/internal/tui/views"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

// Page names.
const (
	PageContacts = "contacts"
	PageChat     = "chat"
	PageDetails  = "details"
	PageConfig   = "config"
	PageHelp     = "help"
)

const promptHeight = 3

// Deps are the services the UI drives.
type Deps struct {
	SessionName string
	Session     *session.Controller
	Configure   *configure.Controller
	Repository  credentials.Repository
	Flash       *notify.Flash
	Sink        notify.Sink
	Bus         *bus.Bus
	Logger      *zap.Logger
}

// App is the main TUI application shell.
type App struct {
	deps     Deps
	logger   *zap.Logger
	app      *tview.Application
	theme    *ui.Theme
	vm       *model.ViewModel
	registry *keys.Registry

	root      *tview.Flex
	pages     *ui.Pages
	prompt    *ui.Prompt
	menu      *ui.Menu
	info      *ui.SessionInfo
	flashBar  *ui.FlashBar
	statusBar *views.StatusBar

	contacts *views.ContactList
	thread   *views.MessageThread
	details  *views.ContactInfo
	form     *views.ConfigForm
	help     *views.HelpView

	promptOpen bool
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(deps Deps) *App {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Sink == nil && deps.Flash != nil {
		deps.Sink = deps.Flash
	}
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		deps:      deps,
		logger:    deps.Logger.Named("tui"),
		app:       tview.NewApplication(),
		theme:     theme,
		vm:        model.NewViewModel(deps.Session, deps.Bus),
		registry:  keys.NewRegistry(),
		pages:     ui.NewPages(),
		prompt:    ui.NewPrompt(theme),
		menu:      ui.NewMenu(theme),
		info:      ui.NewSessionInfo(theme),
		flashBar:  ui.NewFlashBar(theme),
		statusBar: views.NewStatusBar(theme),
		contacts:  views.NewContactList(theme),
		thread:    views.NewMessageThread(theme),
		details:   views.NewContactInfo(theme),
		form:      views.NewConfigForm(theme),
		help:      views.NewHelpView(theme),
		ctx:       ctx,
		cancel:    cancel,
	}

	a.statusBar.SetSession(deps.SessionName)
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()
	a.help.Update(a.helpSections())

	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal(&keys.Action{
		Name: "command", Key: tcell.KeyRune, Rune: ':', Label: ":",
		Description: "Command", Handler: func() { a.showPrompt(ui.PromptCommand) },
	})
	a.registry.AddGlobal(&keys.Action{
		Name: "help", Key: tcell.KeyRune, Rune: '?', Label: "?",
		Description: "Help", Handler: func() { a.pages.Push(PageHelp) },
	})
	a.registry.AddGlobal(&keys.Action{
		Name: "config", Key: tcell.KeyRune, Rune: 'c', Label: "c",
		Description: "Settings", Handler: a.openConfig,
	})
	a.registry.AddGlobal(&keys.Action{
		Name: "quit", Key: tcell.KeyRune, Rune: 'q', Label: "q",
		Description: "Quit / Back", Handler: a.back,
	})

	a.registry.AddView(PageContacts, &keys.Action{
		Name: "open", Key: tcell.KeyEnter, Label: "Enter",
		Description: "Open chat", Handler: func() { a.openChat(a.contacts.SelectedID()) },
	})
	a.registry.AddView(PageContacts, &keys.Action{
		Name: "filter", Key: tcell.KeyRune, Rune: '/', Label: "/",
		Description: "Filter", Handler: func() { a.showPrompt(ui.PromptFilter) },
	})
	a.registry.AddView(PageContacts, &keys.Action{
		Name: "clear-filter", Key: tcell.KeyRune, Rune: '0', Label: "0",
		Description: "Show all", Handler: func() { a.setFilter("") },
	})
	for n := 1; n <= 9; n++ {
		idx := n
		a.registry.AddView(PageContacts, &keys.Action{
			Name: fmt.Sprintf("jump-%d", idx), Key: tcell.KeyRune, Rune: rune('0' + idx),
			Hidden: true, Handler: func() { a.openChat(a.contacts.IDByIndex(idx)) },
		})
	}

	a.registry.AddView(PageChat, &keys.Action{
		Name: "compose", Key: tcell.KeyRune, Rune: 'i', Label: "i",
		Description: "Compose", Handler: func() { a.app.SetFocus(a.thread.Composer()) },
	})
	a.registry.AddView(PageChat, &keys.Action{
		Name: "details", Key: tcell.KeyRune, Rune: 'd', Label: "d",
		Description: "Details", Handler: func() { a.pages.Push(PageDetails) },
	})
}

func (a *App) helpSections() []views.HelpSection {
	return []views.HelpSection{
		{Title: "Global Keys", Hints: append(a.registry.Hints(""),
			ui.MenuHint{Key: "Esc", Description: "Cancel / Go back"},
			ui.MenuHint{Key: "Ctrl-C", Description: "Quit immediately"},
		)},
		{Title: "Contact List", Hints: append(viewOnly(a.registry.Hints(PageContacts), a.registry.Hints("")),
			ui.MenuHint{Key: "1-9", Description: "Jump to Nth chat"},
			ui.MenuHint{Key: "j/k", Description: "Move down / up"},
		)},
		{Title: "Message Thread", Hints: append(viewOnly(a.registry.Hints(PageChat), a.registry.Hints("")),
			ui.MenuHint{Key: "Enter", Description: "Send message (in composer)"},
			ui.MenuHint{Key: "Esc", Description: "Leave composer"},
		)},
	}
}

// viewOnly drops the trailing global hints from a view's hint list.
func viewOnly(hints, global []ui.MenuHint) []ui.MenuHint {
	return hints[:len(hints)-len(global)]
}

func (a *App) setupCallbacks() {
	a.contacts.SetSelectedFunc(func(row, _ int) {
		a.openChat(a.contacts.IDByIndex(row))
	})

	a.thread.SetOnSend(a.send)

	a.form.SetOnSave(a.save)
	a.form.SetOnCancel(a.closeConfig)

	a.prompt.SetOnChange(func(mode ui.PromptMode, text string) {
		if mode == ui.PromptFilter {
			a.setFilter(text)
		}
	})
	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.hidePrompt()
		if mode == ui.PromptCommand {
			a.execute(ParseCommand(text))
		}
	})
	a.prompt.SetOnCancel(func() {
		if a.prompt.Mode() == ui.PromptFilter {
			a.setFilter("")
		}
		a.hidePrompt()
	})

	a.pages.SetOnChange(func(top string) {
		a.menu.Update(a.registry.Hints(top))
		a.refresh()
		a.focusPage(top)
	})
}

func (a *App) setupLayout() {
	a.pages.AddPage(PageContacts, a.contacts, true, false)
	a.pages.AddPage(PageChat, a.thread, true, false)
	a.pages.AddPage(PageDetails, a.details, true, false)
	a.pages.AddPage(PageConfig, centered(a.form, 72, 13), true, false)
	a.pages.AddPage(PageHelp, a.help, true, false)

	header := tview.NewFlex().
		AddItem(ui.NewLogo(a.theme), 20, 0, false).
		AddItem(a.info, 0, 1, false).
		AddItem(a.menu, 0, 1, false)

	a.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 5, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false).
		AddItem(a.flashBar, 1, 0, false)

	a.app.SetRoot(a.root, true)
	a.app.SetInputCapture(a.handleKey)
}

func centered(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 0, true).
			AddItem(nil, 0, 1, false), width, 0, true).
		AddItem(nil, 0, 1, false)
}

func (a *App) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	// Text inputs own their keys; each one handles Esc itself.
	if a.promptOpen || a.pages.Current() == PageConfig {
		return ev
	}
	if a.thread.Composer().HasFocus() {
		if ev.Key() == tcell.KeyEscape {
			a.app.SetFocus(a.thread.Messages())
			return nil
		}
		return ev
	}

	if ev.Key() == tcell.KeyEscape {
		if a.pages.Current() == PageContacts && a.vm.Filter() != "" {
			a.setFilter("")
		} else {
			a.pages.Pop()
		}
		return nil
	}

	if a.registry.HandleEvent(a.pages.Current(), ev) {
		return nil
	}
	return ev
}

func (a *App) focusPage(name string) {
	if a.promptOpen {
		return
	}
	switch name {
	case PageContacts:
		a.app.SetFocus(a.contacts)
	case PageChat:
		a.app.SetFocus(a.thread.Messages())
	case PageDetails:
		a.app.SetFocus(a.details)
	case PageConfig:
		a.app.SetFocus(a.form)
	case PageHelp:
		a.app.SetFocus(a.help)
	}
}

func (a *App) showPrompt(mode ui.PromptMode) {
	a.prompt.Activate(mode)
	if mode == ui.PromptFilter {
		a.prompt.SetText(a.vm.Filter())
	}
	a.promptOpen = true
	a.root.ResizeItem(a.prompt, promptHeight, 0)
	a.app.SetFocus(a.prompt)
}

func (a *App) hidePrompt() {
	a.promptOpen = false
	a.root.ResizeItem(a.prompt, 0, 0)
	a.focusPage(a.pages.Current())
}

func (a *App) setFilter(term string) {
	a.vm.SetFilter(term)
	a.refresh()
}

// back pops one page, or quits from the root page.
func (a *App) back() {
	if a.pages.Depth() > 1 {
		a.pages.Pop()
		return
	}
	a.Stop()
}

func (a *App) notice(level notify.Level, text string) {
	if a.deps.Sink != nil {
		a.deps.Sink.Notify(notify.Notice{Level: level, Text: text})
	}
	a.flashBar.Update(a.currentNotice())
}

func (a *App) currentNotice() *notify.Notice {
	if a.deps.Flash == nil {
		return nil
	}
	return a.deps.Flash.Current()
}

func (a *App) openChat(id string) {
	if id == "" {
		return
	}
	if _, err := a.deps.Session.SelectContact(id); err != nil {
		a.logger.Warn("select contact", zap.String("id", id), zap.Error(err))
		a.notice(notify.Negative, "Could not open chat: "+err.Error())
		return
	}
	a.pages.PopTo(PageContacts)
	a.pages.Push(PageChat)
}

func (a *App) send(text string) {
	_, err := a.deps.Session.SendLocal(text)
	switch {
	case errors.Is(err, conversation.ErrNoActiveContact):
		a.notice(notify.Negative, "Open a chat first")
	case errors.Is(err, conversation.ErrEmptyContent):
	case err != nil:
		a.notice(notify.Negative, "Could not send: "+err.Error())
	default:
		a.thread.ClearComposer()
		a.refresh()
	}
}

// storedConfig is the config the form starts from: the active one, else
// whatever was last saved.
func (a *App) storedConfig() provider.Config {
	if cfg := a.deps.Session.Config(); cfg != nil {
		return *cfg
	}
	if a.deps.Repository != nil {
		cfg, err := a.deps.Repository.Load()
		if err != nil {
			a.logger.Warn("load stored config", zap.Error(err))
		}
		if cfg != nil {
			return *cfg
		}
	}
	return provider.Config{}
}

func (a *App) openConfig() {
	a.deps.Session.OpenConfig()
	if a.pages.Current() != PageConfig {
		a.form.Load(a.storedConfig())
		a.form.SetBusy(a.deps.Configure.Busy())
	}
	a.pages.Push(PageConfig)
}

func (a *App) closeConfig() {
	a.deps.Session.CloseConfig()
	if a.pages.Current() == PageConfig {
		a.pages.Pop()
	}
}

// save runs SaveAndVerify off the UI goroutine.
func (a *App) save(cfg provider.Config) {
	if a.deps.Configure.Busy() {
		return
	}
	a.form.SetBusy(true)
	a.statusBar.SetBusy(true)
	go func() {
		_, err := a.deps.Configure.SaveAndVerify(a.ctx, cfg)
		if err != nil {
			a.logger.Error("save config", zap.Error(err))
		}
		a.app.QueueUpdateDraw(func() {
			a.form.SetBusy(a.deps.Configure.Busy())
			a.refresh()
		})
	}()
}

// verify re-checks the stored config.
func (a *App) verify() {
	cfg := a.storedConfig()
	if !cfg.Complete() {
		a.openConfig()
		return
	}
	a.save(cfg)
}

func (a *App) mark(arg string) {
	to, err := conversation.ParseDelivery(arg)
	if err != nil {
		a.notice(notify.Negative, "Usage: :mark delivered|read")
		return
	}
	contactID, msg, ok := a.vm.LastLocalMessage()
	if !ok {
		a.notice(notify.Info, "No message of yours in this chat")
		return
	}
	if a.deps.Bus == nil {
		return
	}
	receipts.Emit(a.deps.Bus, receipts.Receipt{ContactID: contactID, MessageID: msg.ID, State: to})
}

func (a *App) execute(cmd Command) {
	a.logger.Debug("command", zap.String("name", cmd.Name), zap.String("args", cmd.Args))
	switch cmd.Name {
	case "":
	case "quit":
		a.Stop()
	case "help":
		a.pages.Push(PageHelp)
	case "config":
		a.openConfig()
	case "verify":
		a.verify()
	case "reset":
		a.deps.Session.Reset()
		a.notice(notify.Info, "Session reset")
		a.openConfig()
	case "chat":
		c, ok := a.vm.FindContact(cmd.Args)
		if !ok {
			a.notice(notify.Negative, fmt.Sprintf("No contact matches %q", cmd.Args))
			return
		}
		a.openChat(c.ID)
	case "mark":
		a.mark(cmd.Args)
	default:
		a.notice(notify.Negative, "Unknown command: "+cmd.Name)
	}
}

// refresh redraws every view from a fresh snapshot. It must run on the UI
// goroutine.
func (a *App) refresh() {
	// An accepted config closes the settings surface.
	if a.pages.Current() == PageConfig && !a.deps.Session.ConfigOpen() {
		a.pages.Pop()
	}

	snap := a.vm.Snapshot()
	a.contacts.Update(snap.Contacts, snap.Total, snap.Filter)

	data := ui.SessionData{
		Session:  a.deps.SessionName,
		Status:   snap.Status.String(),
		Contacts: snap.Total,
	}
	if snap.Config != nil {
		data.Instance = snap.Config.InstanceName
		data.BaseURL = snap.Config.BaseURL
	}
	a.info.Update(data)

	a.statusBar.SetStatus(snap.Status)
	a.statusBar.SetBusy(a.deps.Configure.Busy() || snap.Status.State == status.Verifying)
	if snap.HasActive {
		a.statusBar.SetContact(snap.Active.Name)
		a.thread.Update(snap.Active, snap.Messages)
		a.details.Update(snap.Active, len(snap.Messages))
	} else {
		a.statusBar.SetContact("")
	}
	a.flashBar.Update(a.currentNotice())
}

func (a *App) watch() {
	ticker := time.NewTicker(time.Second)
	go func() {
		defer ticker.Stop()
		var notices <-chan notify.Notice
		if a.deps.Flash != nil {
			notices = a.deps.Flash.Watch()
		}
		for {
			select {
			case <-a.vm.RefreshCh():
				a.app.QueueUpdateDraw(a.refresh)
			case <-notices:
				a.app.QueueUpdateDraw(func() { a.flashBar.Update(a.currentNotice()) })
			case <-ticker.C:
				a.app.QueueUpdateDraw(func() {
					a.flashBar.Update(a.currentNotice())
					a.statusBar.Refresh()
				})
			case <-a.ctx.Done():
				return
			}
		}
	}()
}

// Run starts the TUI and blocks until it exits.
func (a *App) Run() error {
	a.vm.Start(a.ctx)
	a.pages.Reset(PageContacts)
	if a.deps.Session.Status().State == status.Unconfigured {
		a.openConfig()
	}
	a.watch()
	return a.app.Run()
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
