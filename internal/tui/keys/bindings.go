// Package keys maps key presses to named actions, per page.
package keys

import (
	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/evowpp/internal/tui/ui"
)

// Action represents a keybinding action.
type Action struct {
	Name        string
	Key         tcell.Key
	Rune        rune
	Label       string // key as shown in hints, e.g. "Enter"
	Description string
	Handler     func()
	Hidden      bool
}

// Matches returns true if the event matches this action.
func (a *Action) Matches(ev *tcell.EventKey) bool {
	if a.Key != tcell.KeyRune {
		return ev.Key() == a.Key
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == a.Rune
}

// Registry holds keybindings organized by scope. Registration order is kept
// so hints render in a stable order.
type Registry struct {
	global []*Action
	views  map[string][]*Action
}

// NewRegistry creates a new keybinding registry.
func NewRegistry() *Registry {
	return &Registry{
		views: make(map[string][]*Action),
	}
}

// AddGlobal registers a binding active on every page.
func (r *Registry) AddGlobal(a *Action) {
	r.global = append(r.global, a)
}

// AddView registers a binding active only on view.
func (r *Registry) AddView(view string, a *Action) {
	r.views[view] = append(r.views[view], a)
}

// Hints returns the visible bindings for view, view-specific ones first.
func (r *Registry) Hints(view string) []ui.MenuHint {
	var hints []ui.MenuHint
	for _, a := range append(append([]*Action(nil), r.views[view]...), r.global...) {
		if a.Hidden {
			continue
		}
		hints = append(hints, ui.MenuHint{Key: a.Label, Description: a.Description})
	}
	return hints
}

// HandleEvent runs the first action on view, then global, that matches ev.
// Returns true if a handler ran.
func (r *Registry) HandleEvent(view string, ev *tcell.EventKey) bool {
	for _, a := range r.views[view] {
		if a.Matches(ev) {
			a.Handler()
			return true
		}
	}
	for _, a := range r.global {
		if a.Matches(ev) {
			a.Handler()
			return true
		}
	}
	return false
}
