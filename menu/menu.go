/*
DESCRIPTION
  menu.go provides the menu tree and a Navigator that moves a cursor
  through it in response to button actions, rendering the visible menu as
  overlay text.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package menu provides a hierarchical text menu driven by a small number
// of buttons.
package menu

import (
	"strings"

	"github.com/ausocean/utils/logging"
)

// To indicate package when logging.
const pkg = "menu: "

// Cursor marks.
const (
	markCursor = "> "
	markOther  = "  "
)

// Action is invoked when its item is selected. The Navigator is passed so
// that the action may minimize or restore the menu.
type Action interface {
	Do(n *Navigator)
}

// ActionFunc adapts a function to an Action.
type ActionFunc func(n *Navigator)

// Do calls f(n).
func (f ActionFunc) Do(n *Navigator) { f(n) }

// ChildSource provides the children of an item. It is either Static or
// Dynamic.
type ChildSource interface {
	items() ([]*Item, error)
}

// Static is a fixed, ordered list of children.
type Static []*Item

func (s Static) items() ([]*Item, error) { return s, nil }

// Dynamic produces the children each time its item is entered. The result
// is never cached.
type Dynamic func() ([]*Item, error)

func (d Dynamic) items() ([]*Item, error) { return d() }

// Item is a node of the menu tree. An item has an Action or Children, not
// both; an item with neither does nothing when selected.
type Item struct {
	Label    string
	Disabled bool
	Action   Action
	Children ChildSource
}

// Renderer receives the menu text after every change.
type Renderer interface {
	Render(text string)
}

// frame is one level of the submenu stack.
type frame struct {
	items  []*Item
	cursor int
}

// Navigator holds the position within a menu tree and its visibility.
// Navigator is not safe for concurrent use.
type Navigator struct {
	stack   []frame
	visible bool
	r       Renderer
	log     logging.Logger
}

// New returns a visible Navigator positioned at the first item of root and
// renders it.
func New(root Static, r Renderer, l logging.Logger) *Navigator {
	n := &Navigator{
		stack:   []frame{{items: root}},
		visible: true,
		r:       r,
		log:     l,
	}
	n.render()
	return n
}

func (n *Navigator) top() *frame { return &n.stack[len(n.stack)-1] }

// Next advances the cursor, wrapping to the first item after the last.
func (n *Navigator) Next() {
	f := n.top()
	if len(f.items) == 0 {
		return
	}
	f.cursor = (f.cursor + 1) % len(f.items)
	n.render()
}

// Select acts on the item under the cursor. Items with children are
// entered, materializing Dynamic children now; items with an action have
// it invoked.
func (n *Navigator) Select() {
	it := n.Current()
	if it == nil || it.Disabled {
		return
	}

	switch {
	case it.Children != nil:
		items, err := it.Children.items()
		if err != nil {
			n.log.Warning(pkg+"could not list submenu", "item", it.Label, "error", err.Error())
			items = nil
		}
		n.stack = append(n.stack, frame{items: items})
		n.log.Debug(pkg+"entered submenu", "item", it.Label, "items", len(items))
		n.render()
	case it.Action != nil:
		n.log.Debug(pkg+"selected", "item", it.Label)
		it.Action.Do(n)
		n.render()
	}
}

// Back leaves the current submenu. At the root it toggles visibility
// instead.
func (n *Navigator) Back() {
	if len(n.stack) == 1 {
		n.Toggle()
		return
	}
	n.stack = n.stack[:len(n.stack)-1]
	n.render()
}

// Minimize hides the menu without changing the position within it.
func (n *Navigator) Minimize() {
	n.visible = false
	n.render()
}

// Restore shows the menu at the position it was minimized at.
func (n *Navigator) Restore() {
	n.visible = true
	n.render()
}

// Toggle flips the visibility of the menu.
func (n *Navigator) Toggle() {
	if n.visible {
		n.Minimize()
		return
	}
	n.Restore()
}

// Home returns to the root menu, leaving the cursor of the root unchanged.
func (n *Navigator) Home() {
	n.stack = n.stack[:1]
	n.render()
}

// Visible reports whether the menu is shown.
func (n *Navigator) Visible() bool { return n.visible }

// Depth returns the number of submenus entered below the root.
func (n *Navigator) Depth() int { return len(n.stack) - 1 }

// Cursor returns the cursor index within the current submenu.
func (n *Navigator) Cursor() int { return n.top().cursor }

// Current returns the item under the cursor, or nil for an empty submenu.
func (n *Navigator) Current() *Item {
	f := n.top()
	if len(f.items) == 0 {
		return nil
	}
	return f.items[f.cursor]
}

// Text returns the menu as rendered: one label per line with the cursor
// line marked, or an empty string while minimized.
func (n *Navigator) Text() string {
	if !n.visible {
		return ""
	}
	f := n.top()
	var b strings.Builder
	for i, it := range f.items {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i == f.cursor {
			b.WriteString(markCursor)
		} else {
			b.WriteString(markOther)
		}
		b.WriteString(it.Label)
	}
	return b.String()
}

// Refresh renders the menu again.
func (n *Navigator) Refresh() { n.render() }

func (n *Navigator) render() {
	if n.r == nil {
		return
	}
	n.r.Render(n.Text())
}
