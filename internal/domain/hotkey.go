package domain

import (
	"fmt"
	"strings"
)

// WindowKind names one process-wide window slot. The launcher owns at
// most one live window per kind.
type WindowKind string

const (
	WindowMain  WindowKind = "main"
	WindowNotes WindowKind = "notes"
	WindowAI    WindowKind = "ai"
)

// HotkeyTarget classifies what a registered hotkey is bound to.
type HotkeyTarget string

const (
	// HotkeyToggleMain toggles the main launcher window.
	HotkeyToggleMain HotkeyTarget = "toggle_main"
	// HotkeyWindow opens one of the secondary window kinds.
	HotkeyWindow HotkeyTarget = "window"
	// HotkeyScript launches a shortcut-bound script.
	HotkeyScript HotkeyTarget = "script"
)

// HotkeySignal identifies which registered hotkey fired. It exists only
// on the wake channel between the OS hook thread and the dispatcher.
type HotkeySignal struct {
	Target HotkeyTarget
	Window WindowKind
	Script string
}

// Modifier is one held modifier key of a shortcut.
type Modifier string

const (
	ModCtrl  Modifier = "ctrl"
	ModShift Modifier = "shift"
	ModAlt   Modifier = "alt"
	ModSuper Modifier = "super"
)

// Shortcut is a parsed global key combination.
type Shortcut struct {
	Modifiers []Modifier
	Key       string
}

// String renders the canonical "ctrl+shift+p" form.
func (s Shortcut) String() string {
	parts := make([]string, 0, len(s.Modifiers)+1)
	for _, m := range s.Modifiers {
		parts = append(parts, string(m))
	}
	parts = append(parts, s.Key)
	return strings.Join(parts, "+")
}

// ParseShortcut parses a "+"-separated combination such as
// "ctrl+shift+p" or "super+;" into a Shortcut. The last segment is the
// key; every preceding segment must be a known modifier. "cmd" and
// "meta" are accepted as aliases of super, "opt" as an alias of alt.
func ParseShortcut(raw string) (Shortcut, error) {
	segments := strings.Split(strings.ToLower(strings.TrimSpace(raw)), "+")
	if len(segments) == 0 || segments[len(segments)-1] == "" {
		return Shortcut{}, fmt.Errorf("shortcut %q: missing key", raw)
	}

	key := segments[len(segments)-1]
	// Lazily allocated so a plain key yields a nil slice.
	var mods []Modifier
	seen := map[Modifier]bool{}
	for _, segment := range segments[:len(segments)-1] {
		mod, err := parseModifier(segment)
		if err != nil {
			return Shortcut{}, fmt.Errorf("shortcut %q: %w", raw, err)
		}
		if seen[mod] {
			return Shortcut{}, fmt.Errorf("shortcut %q: duplicate modifier %q", raw, mod)
		}
		seen[mod] = true
		mods = append(mods, mod)
	}

	return Shortcut{Modifiers: mods, Key: key}, nil
}

func parseModifier(segment string) (Modifier, error) {
	switch segment {
	case "ctrl", "control":
		return ModCtrl, nil
	case "shift":
		return ModShift, nil
	case "alt", "opt", "option":
		return ModAlt, nil
	case "super", "cmd", "meta", "win":
		return ModSuper, nil
	case "":
		return "", fmt.Errorf("empty modifier")
	default:
		return "", fmt.Errorf("unknown modifier %q", segment)
	}
}
