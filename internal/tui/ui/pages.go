package ui

import "github.com/rivo/tview"

// Pages is a stack-based page manager wrapping tview.Pages. Pages must be
// added with AddPage before they are pushed.
type Pages struct {
	*tview.Pages
	stack    []string
	onChange func(top string)
}

// NewPages creates a new stack-based page manager.
func NewPages() *Pages {
	return &Pages{
		Pages: tview.NewPages(),
	}
}

// SetOnChange sets a callback that fires with the new top page whenever the
// stack changes.
func (p *Pages) SetOnChange(fn func(top string)) {
	p.onChange = fn
}

// Push shows name on top of the stack. Pushing the current top page is a
// no-op.
func (p *Pages) Push(name string) {
	if p.Current() == name {
		return
	}
	if len(p.stack) > 0 {
		p.HidePage(p.stack[len(p.stack)-1])
	}
	p.stack = append(p.stack, name)
	p.ShowPage(name)
	p.SendToFront(name)
	p.notify()
}

// Pop removes the top page and shows the previous one. The last page is
// never popped. Returns the popped name, or "".
func (p *Pages) Pop() string {
	if len(p.stack) <= 1 {
		return ""
	}
	top := p.stack[len(p.stack)-1]
	p.HidePage(top)
	p.stack = p.stack[:len(p.stack)-1]
	current := p.stack[len(p.stack)-1]
	p.ShowPage(current)
	p.SendToFront(current)
	p.notify()
	return top
}

// PopTo pops until name is on top. It does nothing when name is not on the
// stack.
func (p *Pages) PopTo(name string) {
	found := false
	for _, n := range p.stack {
		if n == name {
			found = true
			break
		}
	}
	if !found {
		return
	}
	for p.Current() != name {
		p.Pop()
	}
}

// Current returns the name of the top page.
func (p *Pages) Current() string {
	if len(p.stack) == 0 {
		return ""
	}
	return p.stack[len(p.stack)-1]
}

// Depth returns the current stack depth.
func (p *Pages) Depth() int {
	return len(p.stack)
}

// Reset clears the stack and shows only the given page.
func (p *Pages) Reset(name string) {
	for _, n := range p.stack {
		p.HidePage(n)
	}
	p.stack = []string{name}
	p.ShowPage(name)
	p.SendToFront(name)
	p.notify()
}

func (p *Pages) notify() {
	if p.onChange != nil {
		p.onChange(p.Current())
	}
}
