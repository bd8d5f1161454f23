package views

import (
	"fmt"

	"github.com/matheus3301/evowpp/internal/conversation"
	"github.com/matheus3301/evowpp/internal/tui/ui"
	"github.com/rivo/tview"
)

// ContactInfo displays details about a contact.
type ContactInfo struct {
	*tview.TextView
	theme *ui.Theme
}

// NewContactInfo creates a new contact details view.
func NewContactInfo(theme *ui.Theme) *ContactInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Contact Details ")
	tv.SetTitleColor(theme.TitleColor)

	return &ContactInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Name implements ui.Component.
func (ci *ContactInfo) Name() string { return "details" }

// Update renders the details of c and the size of its log.
func (ci *ContactInfo) Update(c conversation.Contact, messages int) {
	ci.Clear()

	fg := ui.ColorName(ci.theme.FgColor)
	val := ui.ColorName(ci.theme.CounterColor)
	row := func(label, value string) {
		_, _ = fmt.Fprintf(ci, " [%s::b]%-13s[-:-:-] [%s]%s[-]\n", fg, label+":", val, tview.Escape(value))
	}

	_, _ = fmt.Fprintln(ci)
	row("Name", c.Name)
	row("Phone", c.Phone)
	row("Presence", c.Presence())
	row("Unread", fmt.Sprint(c.UnreadCount))
	row("Last active", c.LastActivityLabel)
	row("Last message", sanitizeForTerminal(c.LastMessagePreview, true))
	row("In this view", fmt.Sprintf("%d messages", messages))

	ci.SetTitle(fmt.Sprintf(" %s ", tview.Escape(c.Name)))
}
