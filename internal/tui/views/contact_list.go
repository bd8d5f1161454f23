package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/evowpp/internal/conversation"
	"github.com/matheus3301/evowpp/internal/tui/ui"
	"github.com/rivo/tview"
)

// ContactList is the roster table.
type ContactList struct {
	*tview.Table
	theme    *ui.Theme
	contacts []conversation.Contact
	total    int
	filter   string
}

// NewContactList creates a new contact list table.
func NewContactList(theme *ui.Theme) *ContactList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitleColor(theme.TitleColor)

	return &ContactList{
		Table: table,
		theme: theme,
	}
}

// Name implements ui.Component.
func (cl *ContactList) Name() string { return "contacts" }

// Update shows contacts, already narrowed by filter, out of total.
func (cl *ContactList) Update(contacts []conversation.Contact, total int, filter string) {
	cl.contacts = contacts
	cl.total = total
	cl.filter = filter
	cl.render()
}

func (cl *ContactList) render() {
	cl.Clear()

	headers := []struct {
		text string
		exp  int
	}{
		{" NAME", 1},
		{" LAST MESSAGE", 2},
		{" TIME", 0},
		{" ", 0},
	}
	for col, h := range headers {
		cl.SetCell(0, col, tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(cl.theme.TableHeaderFg).
			SetBackgroundColor(cl.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp))
	}

	for i, c := range cl.contacts {
		row := i + 1
		name := c.Name
		if c.UnreadCount > 0 {
			name = fmt.Sprintf("(%d) %s", c.UnreadCount, name)
		}
		presence := " "
		if c.Online {
			presence = "●"
		}
		cl.SetCell(row, 0, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(name, true))).SetExpansion(1).SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 1, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(c.LastMessagePreview, true))).SetExpansion(2).SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 2, tview.NewTableCell(tview.Escape(c.LastActivityLabel)).SetTextColor(cl.theme.FgColor).SetAlign(tview.AlignRight))
		cl.SetCell(row, 3, tview.NewTableCell(presence).SetTextColor(cl.theme.PositiveColor).SetAlign(tview.AlignCenter))
	}

	if cl.filter != "" {
		cl.SetTitle(fmt.Sprintf(" Contacts (%d/%d) filter: %s ", len(cl.contacts), cl.total, tview.Escape(cl.filter)))
	} else {
		cl.SetTitle(fmt.Sprintf(" Contacts (%d) ", len(cl.contacts)))
	}
	if len(cl.contacts) > 0 {
		if row, _ := cl.GetSelection(); row < 1 || row > len(cl.contacts) {
			cl.Select(1, 0)
		}
	}
}

// SelectedID returns the ID of the highlighted contact, or "".
func (cl *ContactList) SelectedID() string {
	row, _ := cl.GetSelection()
	return cl.IDByIndex(row)
}

// IDByIndex returns the ID of the Nth visible contact (1-based), or "".
func (cl *ContactList) IDByIndex(n int) string {
	if n < 1 || n > len(cl.contacts) {
		return ""
	}
	return cl.contacts[n-1].ID
}
