package ports

import (
	"context"

	"github.com/scriptpad-app/scriptpad/internal/domain"
)

// ProcessSpec describes one script process to start.
type ProcessSpec struct {
	Path string
	Args []string
	Env  []string
	Dir  string
	// Interpreter, when set, runs the script through the given
	// executable instead of executing the file directly.
	Interpreter string
	// PTY attaches the child to a pseudo-terminal instead of plain
	// pipes. Line framing is unchanged.
	PTY bool
	// StderrTailLines bounds the retained stderr tail. Zero uses the
	// runner default.
	StderrTailLines int
}

// Process is one running script owned by the supervisor. Protocol lines
// flow out through Lines in the order the script wrote them; the channel
// closes when stdout is exhausted.
type Process interface {
	// ID is the supervisor-assigned handle id.
	ID() string

	// Send writes one newline-terminated protocol line to the child's
	// stdin. Returns domain.ErrBrokenPipe once the child has exited.
	Send(line string) error

	// Lines returns the in-order channel of raw stdout lines.
	Lines() <-chan string

	// StderrTail returns the last retained stderr lines, for crash
	// reporting.
	StderrTail() []string

	// Kill terminates the whole process group. Idempotent; killing an
	// already-exited process is a no-op.
	Kill() error

	// Wait blocks until the process has exited and both pumps have
	// drained, then reports how it ended. Safe to call more than once.
	Wait() domain.ExitStatus
}

// ProcessRunner spawns script processes in their own process group so
// that teardown reaps every descendant.
type ProcessRunner interface {
	Start(ctx context.Context, spec ProcessSpec) (Process, error)
}
