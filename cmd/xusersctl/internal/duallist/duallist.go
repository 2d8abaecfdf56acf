// Package duallist implements the assigned/available membership editor.
// Moves are local; nothing is sent until the caller submits Payload.
package duallist

import (
	"errors"
	"slices"
)

// ErrReadOnly is returned by moves on an editor built without edit rights.
var ErrReadOnly = errors.New("membership editor is read-only")

// Side names one of the two lists.
type Side int

const (
	Assigned Side = iota
	Available
)

func (s Side) String() string {
	if s == Available {
		return "available"
	}
	return "assigned"
}

// Editor holds two complementary lists over a universe of names.
type Editor struct {
	editable  bool
	universe  []string
	assigned  []string
	available []string
	selected  map[Side]map[string]bool
}

// New seeds the editor. Available is universe minus assigned, in universe
// order. Assigned names missing from universe are added to it so that the
// two lists always partition the universe.
func New(assigned, universe []string, editable bool) *Editor {
	e := &Editor{
		editable: editable,
		selected: map[Side]map[string]bool{Assigned: {}, Available: {}},
	}
	for _, name := range universe {
		if !slices.Contains(e.universe, name) {
			e.universe = append(e.universe, name)
		}
	}
	for _, name := range assigned {
		if slices.Contains(e.assigned, name) {
			continue
		}
		e.assigned = append(e.assigned, name)
		if !slices.Contains(e.universe, name) {
			e.universe = append(e.universe, name)
		}
	}
	for _, name := range e.universe {
		if !slices.Contains(e.assigned, name) {
			e.available = append(e.available, name)
		}
	}
	return e
}

// Editable reports whether moves and submission are allowed.
func (e *Editor) Editable() bool {
	return e.editable
}

// Assigned returns the assigned list in display order.
func (e *Editor) Assigned() []string {
	return slices.Clone(e.assigned)
}

// Available returns the available list. A read-only editor exposes none.
func (e *Editor) Available() []string {
	if !e.editable {
		return nil
	}
	return slices.Clone(e.available)
}

// Universe returns every name known to the editor.
func (e *Editor) Universe() []string {
	return slices.Clone(e.universe)
}

// List returns one side's contents.
func (e *Editor) List(side Side) []string {
	if side == Available {
		return e.Available()
	}
	return e.Assigned()
}

// Select marks names on side as selected. Names not on that side are ignored.
func (e *Editor) Select(side Side, names ...string) error {
	if !e.editable {
		return ErrReadOnly
	}
	list := e.list(side)
	for _, name := range names {
		if slices.Contains(*list, name) {
			e.selected[side][name] = true
		}
	}
	return nil
}

// Toggle flips the selection of one name on side.
func (e *Editor) Toggle(side Side, name string) error {
	if !e.editable {
		return ErrReadOnly
	}
	if e.selected[side][name] {
		delete(e.selected[side], name)
		return nil
	}
	return e.Select(side, name)
}

// Selected reports whether name is selected on side.
func (e *Editor) Selected(side Side, name string) bool {
	return e.selected[side][name]
}

// MoveSelectedRight moves the selected assigned names to available.
func (e *Editor) MoveSelectedRight() error {
	return e.move(Assigned, Available, false)
}

// MoveAllRight moves every assigned name to available.
func (e *Editor) MoveAllRight() error {
	return e.move(Assigned, Available, true)
}

// MoveSelectedLeft moves the selected available names to assigned.
func (e *Editor) MoveSelectedLeft() error {
	return e.move(Available, Assigned, false)
}

// MoveAllLeft moves every available name to assigned.
func (e *Editor) MoveAllLeft() error {
	return e.move(Available, Assigned, true)
}

// Payload is the full assigned list to submit.
func (e *Editor) Payload() []string {
	out := slices.Clone(e.assigned)
	if out == nil {
		out = []string{}
	}
	return out
}

func (e *Editor) list(side Side) *[]string {
	if side == Available {
		return &e.available
	}
	return &e.assigned
}

func (e *Editor) move(from, to Side, all bool) error {
	if !e.editable {
		return ErrReadOnly
	}
	src, dst := e.list(from), e.list(to)
	var keep []string
	for _, name := range *src {
		if all || e.selected[from][name] {
			*dst = append(*dst, name)
		} else {
			keep = append(keep, name)
		}
	}
	*src = keep
	e.selected[from] = map[string]bool{}
	return nil
}
