package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/evowpp/internal/notify"
	"github.com/rivo/tview"
)

// FlashBar shows the live notice.
type FlashBar struct {
	*tview.TextView
	theme *Theme
}

// NewFlashBar creates a new flash notification bar.
func NewFlashBar(theme *Theme) *FlashBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)

	return &FlashBar{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders n, or clears the bar when n is nil.
func (fb *FlashBar) Update(n *notify.Notice) {
	fb.Clear()
	if n == nil {
		return
	}
	_, _ = fmt.Fprintf(fb, " [%s]%s[-]", ColorName(fb.LevelColor(n.Level)), tview.Escape(n.Text))
}

// LevelColor maps a notice level to its theme color.
func (fb *FlashBar) LevelColor(l notify.Level) tcell.Color {
	switch l {
	case notify.Positive:
		return fb.theme.PositiveColor
	case notify.Negative:
		return fb.theme.NegativeColor
	default:
		return fb.theme.InfoColor
	}
}
