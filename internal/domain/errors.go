package domain

import "errors"

var (
	// ErrSpawnFailed wraps the OS error when a script process could not
	// be started; the session never exists.
	ErrSpawnFailed = errors.New("script spawn failed")
	// ErrBrokenPipe is returned when writing to a script whose process
	// has already exited.
	ErrBrokenPipe = errors.New("script stdin closed")
	// ErrMalformed wraps a protocol line that could not be decoded. The
	// line is dropped; the read loop keeps running.
	ErrMalformed = errors.New("malformed protocol line")
	// ErrConcurrentPrompt rejects a prompt request while another prompt
	// of the same session is still awaiting its answer.
	ErrConcurrentPrompt = errors.New("concurrent prompt not allowed")
	// ErrSessionClosed rejects operations on a session whose process
	// has exited.
	ErrSessionClosed = errors.New("session closed")
	// ErrUnknownCorrelation marks a response whose id matches no
	// pending request; it is logged and discarded, never surfaced to a
	// caller.
	ErrUnknownCorrelation = errors.New("unknown correlation id")
	// ErrHotkeyRegistration marks a key combination that could not be
	// registered, typically because another application owns it.
	// Non-fatal: remaining registrations keep working.
	ErrHotkeyRegistration = errors.New("hotkey registration failed")
	// ErrScriptNotFound is returned by the script catalog.
	ErrScriptNotFound = errors.New("script not found")
)
