package application

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/scriptpad-app/scriptpad/internal/domain"
	"github.com/scriptpad-app/scriptpad/internal/ports"
)

const sessionEventBuffer = 64

// Supervisor launches script sessions and merges their events onto the
// single channel the dispatcher drains. Each session owns its own id
// counter and pending map; the supervisor shares nothing across
// sessions beyond this event channel.
type Supervisor struct {
	runner ports.ProcessRunner
	clock  ports.Clock
	logger *zap.Logger

	events chan Event

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSupervisor(runner ports.ProcessRunner, clock ports.Clock, logger *zap.Logger) *Supervisor {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Supervisor{
		runner:   runner,
		clock:    clock,
		logger:   logger,
		events:   make(chan Event, sessionEventBuffer),
		sessions: map[string]*Session{},
	}
}

// Launch spawns the script in its own process group and starts its read
// loop. A spawn failure is reported once; the session never exists.
func (sv *Supervisor) Launch(ctx context.Context, script domain.Script) (*Session, error) {
	if err := script.Validate(); err != nil {
		return nil, err
	}

	proc, err := sv.runner.Start(ctx, ports.ProcessSpec{
		Path:        script.Path,
		Interpreter: script.Interpreter,
	})
	if err != nil {
		sv.logger.Error("script spawn failed",
			zap.String("script", script.Name),
			zap.Error(err))
		return nil, err
	}

	session := startSession(script, proc, sv.clock, sv.logger, sv.events, sv.remove)

	sv.mu.Lock()
	sv.sessions[session.ID()] = session
	sv.mu.Unlock()

	sv.logger.Info("script launched",
		zap.String("session", session.ID()),
		zap.String("script", script.Name))
	return session, nil
}

// Events is the merged in-order-per-session event stream. The dispatcher
// must drain it for the lifetime of the supervisor.
func (sv *Supervisor) Events() <-chan Event {
	return sv.events
}

// Get returns a live session by id.
func (sv *Supervisor) Get(id string) (*Session, bool) {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	s, ok := sv.sessions[id]
	return s, ok
}

// Sessions snapshots the live sessions.
func (sv *Supervisor) Sessions() []*Session {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	out := make([]*Session, 0, len(sv.sessions))
	for _, s := range sv.sessions {
		out = append(out, s)
	}
	return out
}

// KillAll tears down every live session's process group and waits for
// the sessions to close.
func (sv *Supervisor) KillAll() {
	sessions := sv.Sessions()
	for _, s := range sessions {
		if err := s.Kill(); err != nil {
			sv.logger.Warn("session kill failed",
				zap.String("session", s.ID()),
				zap.Error(err))
		}
	}
	for _, s := range sessions {
		s.Wait()
	}
}

func (sv *Supervisor) remove(s *Session) {
	sv.mu.Lock()
	delete(sv.sessions, s.ID())
	sv.mu.Unlock()
}
