package application

import (
	"sync"

	"github.com/scriptpad-app/scriptpad/internal/domain"
)

// PromptMachine enforces the one-prompt-at-a-time contract of a running
// script: Idle -> Sending -> Awaiting -> Idle on resolve or cancel, any
// state -> Closed on process exit. A script's own execution is
// single-threaded, so a second outstanding prompt is a caller bug, not
// a queueable request.
type PromptMachine struct {
	mu           sync.Mutex
	state        domain.PromptState
	awaitingID   string
	awaitingKind domain.Kind
}

func NewPromptMachine() *PromptMachine {
	return &PromptMachine{state: domain.PromptIdle}
}

// State reports the current prompt state.
func (m *PromptMachine) State() domain.PromptState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Awaiting reports the id of the outstanding prompt, if any.
func (m *PromptMachine) Awaiting() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.awaitingID, m.state == domain.PromptAwaiting
}

// BeginSend claims the session for a new prompt of the given kind.
func (m *PromptMachine) BeginSend(kind domain.Kind) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case domain.PromptIdle:
		m.state = domain.PromptSending
		m.awaitingKind = kind
		return nil
	case domain.PromptClosed:
		return domain.ErrSessionClosed
	default:
		return domain.ErrConcurrentPrompt
	}
}

// MarkAwaiting records that the request was written and registered.
func (m *PromptMachine) MarkAwaiting(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == domain.PromptSending {
		m.state = domain.PromptAwaiting
		m.awaitingID = id
	}
}

// AbortSend releases the claim after a failed write, before any request
// was registered.
func (m *PromptMachine) AbortSend() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == domain.PromptSending {
		m.state = domain.PromptIdle
		m.awaitingKind = ""
	}
}

// Resolve returns the machine to Idle if id is the outstanding prompt.
func (m *PromptMachine) Resolve(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != domain.PromptAwaiting || m.awaitingID != id {
		return false
	}
	m.toIdleLocked()
	return true
}

// Cancel clears the outstanding prompt, reporting its id. The transient
// cancelled state collapses straight back to Idle; callers settle the
// pending request through the correlator.
func (m *PromptMachine) Cancel() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != domain.PromptAwaiting {
		return "", false
	}
	id := m.awaitingID
	m.toIdleLocked()
	return id, true
}

// Close is terminal; every later transition attempt fails with
// domain.ErrSessionClosed.
func (m *PromptMachine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = domain.PromptClosed
	m.awaitingID = ""
	m.awaitingKind = ""
}

func (m *PromptMachine) toIdleLocked() {
	m.state = domain.PromptIdle
	m.awaitingID = ""
	m.awaitingKind = ""
}
