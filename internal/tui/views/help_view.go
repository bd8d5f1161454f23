package views

import (
	"fmt"
	"strings"

	"github.com/matheus3301/evowpp/internal/tui/ui"
	"github.com/rivo/tview"
)

// HelpSection is a titled group of key hints.
type HelpSection struct {
	Title string
	Hints []ui.MenuHint
}

// HelpView displays key binding reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	return &HelpView{
		TextView: tv,
		theme:    theme,
	}
}

// Name implements ui.Component.
func (hv *HelpView) Name() string { return "help" }

// Update renders sections followed by the command reference.
func (hv *HelpView) Update(sections []HelpSection) {
	hv.Clear()
	_, _ = fmt.Fprint(hv, RenderHelp(hv.theme, sections))
}

// Commands lists the ':' commands.
var Commands = []ui.MenuHint{
	{Key: ":config", Description: "Edit the API settings"},
	{Key: ":verify", Description: "Test the stored settings again"},
	{Key: ":reset", Description: "Forget the stored settings"},
	{Key: ":chat <name>", Description: "Open chat by name"},
	{Key: ":mark delivered|read", Description: "Advance your last message"},
	{Key: ":help", Description: "Show this help"},
	{Key: ":quit", Description: "Quit application"},
}

// RenderHelp formats sections as tview-tagged text.
func RenderHelp(theme *ui.Theme, sections []HelpSection) string {
	kc := ui.ColorName(theme.MenuKeyColor)
	all := append(append([]HelpSection(nil), sections...), HelpSection{Title: "Commands (: mode)", Hints: Commands})

	var b strings.Builder
	for _, s := range all {
		fmt.Fprintf(&b, "\n  [::b]%s[-:-:-]\n\n", s.Title)
		for _, h := range s.Hints {
			fmt.Fprintf(&b, "  [%s]%-22s[-:-:-] %s\n", kc, tview.Escape(h.Key), h.Description)
		}
	}
	return b.String()
}
