package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Theme holds color constants for the TUI.
type Theme struct {
	BgColor           tcell.Color
	FgColor           tcell.Color
	BorderColor       tcell.Color
	BorderFocusColor  tcell.Color
	TableHeaderFg     tcell.Color
	TableHeaderBg     tcell.Color
	TableCursorFg     tcell.Color
	TableCursorBg     tcell.Color
	MenuKeyColor      tcell.Color
	TitleColor        tcell.Color
	CounterColor      tcell.Color
	LocalMsgColor     tcell.Color
	RemoteMsgColor    tcell.Color
	ReadTickColor     tcell.Color
	InfoColor         tcell.Color
	PositiveColor     tcell.Color
	NegativeColor     tcell.Color
	PromptBorderColor tcell.Color
}

// DefaultTheme returns the dark theme.
func DefaultTheme() *Theme {
	return &Theme{
		BgColor:           tcell.ColorBlack,
		FgColor:           tcell.ColorCadetBlue,
		BorderColor:       tcell.ColorSeaGreen,
		BorderFocusColor:  tcell.ColorLightGreen,
		TableHeaderFg:     tcell.ColorWhite,
		TableHeaderBg:     tcell.ColorBlack,
		TableCursorFg:     tcell.ColorBlack,
		TableCursorBg:     tcell.ColorMediumSeaGreen,
		MenuKeyColor:      tcell.ColorDodgerBlue,
		TitleColor:        tcell.ColorLightGreen,
		CounterColor:      tcell.ColorPapayaWhip,
		LocalMsgColor:     tcell.ColorLightGreen,
		RemoteMsgColor:    tcell.ColorWhite,
		ReadTickColor:     tcell.ColorDeepSkyBlue,
		InfoColor:         tcell.ColorNavajoWhite,
		PositiveColor:     tcell.ColorLimeGreen,
		NegativeColor:     tcell.ColorOrangeRed,
		PromptBorderColor: tcell.ColorDodgerBlue,
	}
}

// ColorName returns a tview color tag name for c.
func ColorName(c tcell.Color) string {
	for name, val := range tcell.ColorNames {
		if val == c {
			return name
		}
	}
	return fmt.Sprintf("#%06x", c.Hex())
}
