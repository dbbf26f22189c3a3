package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int            `toml:"version"`
	Scripts []scriptSchema `toml:"scripts"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported scripts schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type scriptSchema struct {
	Name        string `toml:"name"`
	Path        string `toml:"path"`
	Description string `toml:"description,omitempty"`
	Shortcut    string `toml:"shortcut,omitempty"`
	Interpreter string `toml:"interpreter,omitempty"`
}
