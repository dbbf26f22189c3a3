package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Script is one launchable entry of the script catalog.
type Script struct {
	Name        string
	Path        string
	Description string
	// Shortcut is an optional global key combination bound to this
	// script, in the canonical "ctrl+shift+p" form.
	Shortcut string
	// Interpreter overrides the executable used to run the script.
	// Empty means the script file is executed directly.
	Interpreter string
}

// Validate reports the first structural problem with the entry.
func (s Script) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("script name is required")
	}
	if strings.TrimSpace(s.Path) == "" {
		return fmt.Errorf("script %q: path is required", s.Name)
	}
	if s.Shortcut != "" {
		if _, err := ParseShortcut(s.Shortcut); err != nil {
			return fmt.Errorf("script %q: %w", s.Name, err)
		}
	}
	return nil
}
