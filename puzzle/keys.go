package puzzle

import (
	"unicode"
	"unicode/utf8"
)

// Key names understood by HandleKey. Printable characters are passed as
// themselves.
const (
	KeyArrowUp    = "ArrowUp"
	KeyArrowDown  = "ArrowDown"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
	KeySpace      = " "
	KeyTab        = "Tab"
	KeyBackspace  = "Backspace"
	KeyDelete     = "Delete"
	KeyHome       = "Home"
	KeyEnd        = "End"
)

// Modifiers is a set of held modifier keys.
type Modifiers uint8

const (
	ModCtrl Modifiers = 1 << iota
	ModAlt
	ModMeta
)

// HandleKey applies one key press. It reports whether the key was handled,
// in which case the host should suppress its default behaviour. Keys held
// with ctrl, alt or meta are never handled.
func (cw *Crossword) HandleKey(key string, mods Modifiers) bool {
	if mods&(ModCtrl|ModAlt|ModMeta) != 0 {
		return false
	}

	switch key {
	case KeyArrowUp:
		cw.MoveRelative(-1, 0)
	case KeyArrowDown:
		cw.MoveRelative(1, 0)
	case KeyArrowLeft:
		cw.MoveRelative(0, -1)
	case KeyArrowRight:
		cw.MoveRelative(0, 1)
	case KeySpace, "Space", KeyTab:
		cw.ToggleDirection()
	case KeyBackspace:
		cw.clearSelected()
		cw.MoveBackward()
	case KeyDelete:
		cw.clearSelected()
	case KeyHome:
		cw.moveToAnswerEdge(false)
	case KeyEnd:
		cw.moveToAnswerEdge(true)
	default:
		if utf8.RuneCountInString(key) != 1 {
			return false
		}
		r, _ := utf8.DecodeRuneInString(key)
		if !unicode.IsPrint(r) {
			return false
		}
		cw.HandleCharacterInput(key)
	}
	return true
}
