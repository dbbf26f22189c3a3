package ports

import "github.com/scriptpad-app/scriptpad/internal/domain"

// Registration is one successfully registered global hotkey. Fired
// events arrive on Pressed from a dedicated OS hook thread; the channel
// stays open until Unregister.
type Registration interface {
	Pressed() <-chan struct{}
	Unregister()
}

// HotkeyRegistrar binds global key combinations at the OS level.
// Registration failure (combination owned by another application) is
// reported per key and is non-fatal to other registrations.
type HotkeyRegistrar interface {
	Register(shortcut domain.Shortcut) (Registration, error)
}
