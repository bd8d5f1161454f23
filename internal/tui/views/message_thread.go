package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/evowpp/internal/conversation"
	"github.com/matheus3301/evowpp/internal/tui/ui"
	"github.com/rivo/tview"
)

// MessageThread displays one contact's log and a composer.
type MessageThread struct {
	*tview.Flex
	theme    *ui.Theme
	messages *tview.TextView
	composer *tview.InputField
	contact  conversation.Contact
	onSend   func(text string)
}

// NewMessageThread creates a new message thread view.
func NewMessageThread(theme *ui.Theme) *MessageThread {
	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.BorderColor)
	messages.SetBackgroundColor(theme.BgColor)
	messages.SetTextColor(theme.FgColor)
	messages.SetTitle(" Messages ")
	messages.SetTitleColor(theme.TitleColor)

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0).
		SetPlaceholder("Type a message")
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetFieldBackgroundColor(theme.BgColor)
	composer.SetFieldTextColor(theme.FgColor)
	composer.SetLabelColor(theme.MenuKeyColor)
	composer.SetTitle(" Compose (i to focus) ")
	composer.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(messages, 0, 1, true).
		AddItem(composer, 3, 0, false)

	mt := &MessageThread{
		Flex:     flex,
		theme:    theme,
		messages: messages,
		composer: composer,
	}

	composer.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && mt.onSend != nil {
			mt.onSend(composer.GetText())
		}
	})

	return mt
}

// Name implements ui.Component.
func (mt *MessageThread) Name() string { return "chat" }

// SetOnSend sets the callback for Enter in the composer. The callback decides
// whether to clear the composer.
func (mt *MessageThread) SetOnSend(fn func(text string)) {
	mt.onSend = fn
}

// ClearComposer empties the composer.
func (mt *MessageThread) ClearComposer() {
	mt.composer.SetText("")
}

// Update shows msgs for contact, oldest first.
func (mt *MessageThread) Update(contact conversation.Contact, msgs []conversation.Message) {
	mt.contact = contact
	mt.messages.SetTitle(fmt.Sprintf(" %s · %s ", tview.Escape(contact.Name), contact.Presence()))
	mt.messages.Clear()

	for _, m := range msgs {
		_, _ = fmt.Fprint(mt.messages, mt.formatMessage(m))
	}
	mt.messages.ScrollToEnd()
}

func (mt *MessageThread) formatMessage(m conversation.Message) string {
	sender := mt.contact.Name
	color := mt.theme.RemoteMsgColor
	ticks := ""
	if m.Origin == conversation.Local {
		sender = "You"
		color = mt.theme.LocalMsgColor
		ticks = " " + mt.deliveryTicks(m.Delivery)
	}
	return fmt.Sprintf("[%s::b]%s[-:-:-] [::d]%s[-:-:-]%s\n%s\n\n",
		ui.ColorName(color),
		tview.Escape(sanitizeForTerminal(sender, true)),
		m.CreatedAtLabel,
		ticks,
		tview.Escape(sanitizeForTerminal(m.Content, false)))
}

func (mt *MessageThread) deliveryTicks(d conversation.Delivery) string {
	switch d {
	case conversation.Read:
		return fmt.Sprintf("[%s]✓✓[-]", ui.ColorName(mt.theme.ReadTickColor))
	case conversation.Delivered:
		return "[::d]✓✓[-:-:-]"
	default:
		return "[::d]✓[-:-:-]"
	}
}

// Messages returns the messages text view (for focus management).
func (mt *MessageThread) Messages() *tview.TextView {
	return mt.messages
}

// Composer returns the composer input field (for focus management).
func (mt *MessageThread) Composer() *tview.InputField {
	return mt.composer
}
