package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/scriptpad-app/scriptpad/internal/domain"
	"github.com/scriptpad-app/scriptpad/internal/ports"
	"github.com/scriptpad-app/scriptpad/internal/protocol"
)

// EventType tags a session event delivered to the dispatcher.
type EventType string

const (
	// EventMessage is a fire-and-forget envelope from the script
	// (update, exit announcement, unknown kind).
	EventMessage EventType = "message"
	// EventExit reports that the session's process ended and the
	// session is closed.
	EventExit EventType = "exit"
)

// Event is one scheduler-visible occurrence on a session.
type Event struct {
	Type    EventType
	Session *Session
	Message domain.Message
	Exit    domain.ExitStatus
}

// Session is one running script plus its protocol state: correlation
// ids, pending requests and the prompt state machine. The read loop is
// the session's only stdout consumer, so envelopes are handled in the
// order the script wrote them.
type Session struct {
	script domain.Script
	proc   ports.Process

	correlator *Correlator
	prompts    *PromptMachine

	clock  ports.Clock
	logger *zap.Logger

	events chan<- Event
	onExit func(*Session)

	done chan struct{}
	exit domain.ExitStatus
}

func startSession(
	script domain.Script,
	proc ports.Process,
	clock ports.Clock,
	logger *zap.Logger,
	events chan<- Event,
	onExit func(*Session),
) *Session {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		script:     script,
		proc:       proc,
		correlator: NewCorrelator(clock, logger),
		prompts:    NewPromptMachine(),
		clock:      clock,
		logger:     logger,
		events:     events,
		onExit:     onExit,
		done:       make(chan struct{}),
	}
	go s.readLoop()
	return s
}

// ID is the supervisor-assigned session handle id.
func (s *Session) ID() string {
	return s.proc.ID()
}

// Script is the catalog entry this session runs.
func (s *Session) Script() domain.Script {
	return s.script
}

// State reports the current prompt state.
func (s *Session) State() domain.PromptState {
	return s.prompts.State()
}

// StderrTail returns the retained stderr tail for crash reporting.
func (s *Session) StderrTail() []string {
	return s.proc.StderrTail()
}

// PendingRequests reports the number of unanswered requests.
func (s *Session) PendingRequests() int {
	return s.correlator.PendingCount()
}

// Ask sends one interactive prompt to the script and suspends until the
// script answers, the prompt is cancelled, or the timeout elapses. A
// zero timeout waits indefinitely. While a prompt is outstanding any
// further Ask fails with domain.ErrConcurrentPrompt.
func (s *Session) Ask(ctx context.Context, msg domain.Message, timeout time.Duration) (domain.Outcome, error) {
	if !msg.Kind.RequiresResponse() {
		return domain.Outcome{}, fmt.Errorf("kind %q is not a prompt", msg.Kind)
	}

	if err := s.prompts.BeginSend(msg.Kind); err != nil {
		return domain.Outcome{}, err
	}

	id := s.correlator.NextID()
	msg.ID = id
	pending, err := s.correlator.Register(id, domain.KindSubmit)
	if err != nil {
		s.prompts.AbortSend()
		return domain.Outcome{}, err
	}

	line, err := protocol.Encode(msg)
	if err != nil {
		s.correlator.Cancel(id, domain.Cancelled())
		<-pending.Outcome()
		s.prompts.AbortSend()
		return domain.Outcome{}, err
	}

	// Awaiting must be recorded before the line is written: a script
	// that answers within the Send call races the read loop's resolve,
	// which has to find the awaiting id or the machine wedges.
	s.prompts.MarkAwaiting(id)

	if err := s.proc.Send(line); err != nil {
		s.settle(id, domain.Cancelled())
		<-pending.Outcome()
		if errors.Is(err, domain.ErrBrokenPipe) {
			return domain.Outcome{}, fmt.Errorf("%w: %s", domain.ErrSessionClosed, err)
		}
		return domain.Outcome{}, err
	}

	s.logger.Debug("prompt sent",
		zap.String("session", s.ID()),
		zap.String("id", id),
		zap.String("kind", string(msg.Kind)))

	var deadline <-chan time.Time
	if timeout > 0 {
		deadline = s.clock.After(timeout)
	}

	select {
	case outcome := <-pending.Outcome():
		return outcome, nil
	case <-deadline:
		s.settle(id, domain.TimedOut())
		return <-pending.Outcome(), nil
	case <-ctx.Done():
		s.settle(id, domain.Cancelled())
		return <-pending.Outcome(), nil
	}
}

// CancelPrompt settles the outstanding prompt, if any, with the
// canonical cancelled outcome. The suspended Ask caller observes a nil
// value, never a hang. Idempotent.
func (s *Session) CancelPrompt() {
	if id, ok := s.prompts.Cancel(); ok {
		s.correlator.Cancel(id, domain.Cancelled())
	}
}

// settle cancels both the correlator entry and the prompt state for id,
// tolerating a concurrent resolve by the read loop: the pending channel
// is settled exactly once either way.
func (s *Session) settle(id string, outcome domain.Outcome) {
	s.correlator.Cancel(id, outcome)
	s.prompts.Resolve(id)
}

// Kill tears down the whole process group. Idempotent.
func (s *Session) Kill() error {
	return s.proc.Kill()
}

// Wait blocks until the session is closed and reports how the process
// ended.
func (s *Session) Wait() domain.ExitStatus {
	<-s.done
	return s.exit
}

// Done closes when the session has fully shut down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) readLoop() {
	for line := range s.proc.Lines() {
		msg, err := protocol.Decode(line)
		if err != nil {
			// Drop the line; a malformed envelope never terminates
			// the read loop or the session.
			s.logger.Warn("dropping malformed protocol line",
				zap.String("session", s.ID()),
				zap.Error(err))
			continue
		}
		s.handle(msg)
	}

	status := s.proc.Wait()
	s.prompts.Close()
	s.correlator.CancelAll(domain.Cancelled())

	s.exit = status
	if s.onExit != nil {
		s.onExit(s)
	}
	close(s.done)

	s.logger.Info("session closed",
		zap.String("session", s.ID()),
		zap.String("script", s.script.Name),
		zap.String("reason", string(status.Reason)),
		zap.Int("code", status.Code))
	s.emit(Event{Type: EventExit, Session: s, Exit: status})
}

func (s *Session) handle(msg domain.Message) {
	switch msg.Kind {
	case domain.KindSubmit:
		if s.correlator.Resolve(msg.ID, msg.Kind, msg.Value) {
			s.prompts.Resolve(msg.ID)
		}
	case domain.KindUpdate, domain.KindExit:
		s.emit(Event{Type: EventMessage, Session: s, Message: msg})
	case domain.KindUnknown:
		if msg.ID != "" {
			// Might still answer a pending request; the correlator
			// logs the kind mismatch and discards.
			s.correlator.Resolve(msg.ID, msg.Kind, nil)
		}
		s.emit(Event{Type: EventMessage, Session: s, Message: msg})
	default:
		s.logger.Warn("protocol error: request kind sent by script",
			zap.String("session", s.ID()),
			zap.String("kind", string(msg.Kind)))
	}
}

func (s *Session) emit(event Event) {
	if s.events == nil {
		return
	}
	s.events <- event
}
