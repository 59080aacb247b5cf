package terminal

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-skyward/pkg/input"
)

// Terminals never report Shift on its own, so descending gets a letter key.
const descendKey = "KeyC"

// Bindings returns the default bindings plus the terminal descend key
func Bindings() input.Bindings {
	b := input.DefaultBindings()
	b[descendKey] = input.ActionDown
	return b
}

// KeyCode maps a tcell key event to the physical key code the input layer
// binds against. It reports false for keys with no code.
func KeyCode(ev *tcell.EventKey) (string, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return "ArrowUp", true
	case tcell.KeyDown:
		return "ArrowDown", true
	case tcell.KeyLeft:
		return "ArrowLeft", true
	case tcell.KeyRight:
		return "ArrowRight", true
	case tcell.KeyRune:
	default:
		return "", false
	}

	r := ev.Rune()
	switch {
	case r == ' ':
		return "Space", true
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return "Key" + string(unicode.ToUpper(r)), true
	case r >= '0' && r <= '9':
		return "Digit" + string(r), true
	}
	return "", false
}
