package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// SessionData holds session information for display.
type SessionData struct {
	Session  string
	Instance string
	BaseURL  string
	Status   string
	Contacts int
}

// SessionInfo displays session metadata in the header.
type SessionInfo struct {
	*tview.TextView
	theme *Theme
}

// NewSessionInfo creates a new session info panel.
func NewSessionInfo(theme *Theme) *SessionInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &SessionInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders the session info.
func (si *SessionInfo) Update(data SessionData) {
	si.Clear()

	fg := ColorName(si.theme.FgColor)
	val := ColorName(si.theme.CounterColor)
	row := func(label, value string) {
		if value == "" {
			value = "-"
		}
		_, _ = fmt.Fprintf(si, "[%s::b]%-9s[-:-:-] [%s]%s[-]\n", fg, label+":", val, tview.Escape(value))
	}

	row("Session", data.Session)
	row("Instance", data.Instance)
	row("Provider", data.BaseURL)
	row("Status", data.Status)
	row("Contacts", fmt.Sprint(data.Contacts))
}
