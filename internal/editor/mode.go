package editor

import (
	"fmt"

	"github.com/wastless/ridex-design-app-sub001/internal/geom"
	"github.com/wastless/ridex-design-app-sub001/internal/layer"
)

// Mode is the gesture in progress on the local canvas. Each variant carries
// only the fields its gesture needs.
type Mode interface {
	fmt.Stringer
	isMode()
}

// None is the idle state.
type None struct{}

// Pressing is a pointer held down that has not yet become a drag.
type Pressing struct {
	Origin geom.Point
}

// SelectionNet is a marquee drag.
type SelectionNet struct {
	Origin  geom.Point
	Current geom.Point
}

// Translating moves the selection; Current is the last pointer position
// already applied.
type Translating struct {
	Current geom.Point
}

// Inserting waits for the click that places a new layer.
type Inserting struct {
	Kind layer.Kind
}

// Resizing drags a handle of the selected layer.
type Resizing struct {
	Initial geom.XYWH
	Corner  geom.Side
}

// Pencil is freehand drawing.
type Pencil struct{}

func (None) isMode()         {}
func (Pressing) isMode()     {}
func (SelectionNet) isMode() {}
func (Translating) isMode()  {}
func (Inserting) isMode()    {}
func (Resizing) isMode()     {}
func (Pencil) isMode()       {}

func (None) String() string         { return "none" }
func (Pressing) String() string     { return "pressing" }
func (SelectionNet) String() string { return "selection-net" }
func (Translating) String() string  { return "translating" }
func (m Inserting) String() string  { return "inserting " + string(m.Kind) }
func (m Resizing) String() string   { return "resizing " + m.Corner.String() }
func (Pencil) String() string       { return "pencil" }

type modeKind int

const (
	kindNone modeKind = iota
	kindPressing
	kindSelectionNet
	kindTranslating
	kindInserting
	kindResizing
	kindPencil
)

func kindOf(m Mode) modeKind {
	switch m.(type) {
	case Pressing:
		return kindPressing
	case SelectionNet:
		return kindSelectionNet
	case Translating:
		return kindTranslating
	case Inserting:
		return kindInserting
	case Resizing:
		return kindResizing
	case Pencil:
		return kindPencil
	}
	return kindNone
}

// transitions lists where each mode may go besides None, which is always
// reachable. A mode may also be replaced by itself with new fields, as a
// drag does on every move.
var transitions = map[modeKind][]modeKind{
	kindNone:     {kindPressing, kindInserting, kindPencil},
	kindPressing: {kindTranslating, kindResizing, kindSelectionNet, kindInserting},
}

// CanTransition reports whether the canvas may go from one mode to another.
func CanTransition(from, to Mode) bool {
	f, t := kindOf(from), kindOf(to)
	if t == kindNone || f == t {
		return true
	}
	for _, k := range transitions[f] {
		if k == t {
			return true
		}
	}
	return false
}
