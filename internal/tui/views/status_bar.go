package views

import (
	"fmt"
	"time"

	"github.com/matheus3301/evowpp/internal/status"
	"github.com/matheus3301/evowpp/internal/tui/ui"
	"github.com/rivo/tview"
)

// StatusBar displays persistent session and connection status.
type StatusBar struct {
	*tview.TextView
	theme   *ui.Theme
	session string
	status  status.Status
	busy    bool
	contact string
	now     func() time.Time
}

// NewStatusBar creates a new status bar.
func NewStatusBar(theme *ui.Theme) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv, theme: theme, now: time.Now}
}

// SetSession updates the session name display.
func (sb *StatusBar) SetSession(name string) {
	sb.session = name
	sb.render()
}

// SetStatus updates the connection status display.
func (sb *StatusBar) SetStatus(st status.Status) {
	sb.status = st
	sb.render()
}

// SetBusy shows or hides the verification indicator.
func (sb *StatusBar) SetBusy(busy bool) {
	sb.busy = busy
	sb.render()
}

// SetContact updates the active contact display.
func (sb *StatusBar) SetContact(name string) {
	sb.contact = name
	sb.render()
}

// Refresh redraws with the current clock.
func (sb *StatusBar) Refresh() {
	sb.render()
}

func (sb *StatusBar) stateColor() string {
	switch sb.status.State {
	case status.Connected:
		return ui.ColorName(sb.theme.PositiveColor)
	case status.Failed:
		return ui.ColorName(sb.theme.NegativeColor)
	default:
		return ui.ColorName(sb.theme.InfoColor)
	}
}

func (sb *StatusBar) render() {
	sb.Clear()

	busy := " "
	if sb.busy {
		busy = "[yellow]~[-]"
	}
	contact := "-"
	if sb.contact != "" {
		contact = tview.Escape(sb.contact)
	}

	line := fmt.Sprintf(" [::b]%s[-:-:-] | [%s]%s[-] %s | %s | %s",
		tview.Escape(sb.session),
		sb.stateColor(), tview.Escape(sb.status.String()),
		busy, contact, sb.now().Format("15:04"))

	_, _ = fmt.Fprint(sb, line)
}
