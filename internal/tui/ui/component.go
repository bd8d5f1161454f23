package ui

import "github.com/rivo/tview"

// MenuHint describes a keyboard shortcut for display in the menu.
type MenuHint struct {
	Key         string
	Description string
}

// Component is a page shown in the main area. Name is the page key and the
// title shown in the header.
type Component interface {
	tview.Primitive
	Name() string
}
