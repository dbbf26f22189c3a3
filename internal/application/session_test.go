package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriptpad-app/scriptpad/internal/domain"
	"github.com/scriptpad-app/scriptpad/internal/protocol"
)

type askResult struct {
	outcome domain.Outcome
	err     error
}

func askAsync(s *Session, msg domain.Message, timeout time.Duration) <-chan askResult {
	results := make(chan askResult, 1)
	go func() {
		outcome, err := s.Ask(context.Background(), msg, timeout)
		results <- askResult{outcome: outcome, err: err}
	}()
	return results
}

// sentRequest waits for the session to write its nth request line and
// returns the decoded message, so tests learn the assigned id.
func sentRequest(t *testing.T, proc *fakeProcess, n int) domain.Message {
	t.Helper()

	require.Eventually(t, func() bool {
		return len(proc.sentLines()) >= n
	}, time.Second, 5*time.Millisecond)

	msg, err := protocol.Decode(proc.sentLines()[n-1])
	require.NoError(t, err)
	return msg
}

func newTestSession(proc *fakeProcess, events chan<- Event) *Session {
	script := domain.Script{Name: "pick-fruit", Path: "/scripts/pick-fruit.sh"}
	return startSession(script, proc, newFakeClock(), nil, events, nil)
}

func TestSessionArgSubmitRoundTrip(t *testing.T) {
	t.Parallel()

	proc := newFakeProcess("s1")
	s := newTestSession(proc, nil)

	results := askAsync(s, domain.Arg("", "Pick", []domain.Choice{
		{Name: "Apple", Value: "apple"},
		{Name: "Banana", Value: "banana"},
	}), 0)

	request := sentRequest(t, proc, 1)
	assert.Equal(t, domain.KindArg, request.Kind)
	assert.Equal(t, "1", request.ID)
	assert.Equal(t, "Pick", request.Placeholder)

	proc.emit(fmt.Sprintf(`{"type":"submit","id":%q,"value":"apple"}`, request.ID))

	result := <-results
	require.NoError(t, result.err)
	require.NotNil(t, result.outcome.Value)
	assert.Equal(t, "apple", *result.outcome.Value)
	assert.Equal(t, domain.OutcomeSubmitted, result.outcome.Status)

	assert.Equal(t, domain.PromptIdle, s.State())
	assert.Zero(t, s.PendingRequests())
}

// instantAnswerProcess answers every prompt from inside Send, before
// the asking goroutine regains control, and only returns once the read
// loop has resolved the request. The tightest possible script: the
// answer races the sender's own bookkeeping.
type instantAnswerProcess struct {
	*fakeProcess
	session func() *Session
}

func (p *instantAnswerProcess) Send(line string) error {
	if err := p.fakeProcess.Send(line); err != nil {
		return err
	}

	msg, err := protocol.Decode(line)
	if err != nil {
		return err
	}
	p.emit(fmt.Sprintf(`{"type":"submit","id":%q,"value":"apple"}`, msg.ID))

	s := p.session()
	deadline := time.Now().Add(time.Second)
	for s.PendingRequests() > 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	return nil
}

func TestSessionImmediateAnswerReturnsToIdle(t *testing.T) {
	t.Parallel()

	proc := &instantAnswerProcess{fakeProcess: newFakeProcess("s1")}
	var s *Session
	proc.session = func() *Session { return s }
	s = startSession(domain.Script{Name: "pick-fruit", Path: "/scripts/pick-fruit.sh"},
		proc, newFakeClock(), nil, nil, nil)

	outcome, err := s.Ask(context.Background(), domain.Arg("", "Pick", nil), 0)
	require.NoError(t, err)
	require.NotNil(t, outcome.Value)
	assert.Equal(t, "apple", *outcome.Value)
	assert.Equal(t, domain.PromptIdle, s.State())
	assert.Zero(t, s.PendingRequests())

	// The machine must accept the next prompt instead of reporting a
	// concurrent one.
	outcome, err = s.Ask(context.Background(), domain.Input("", "Name"), 0)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSubmitted, outcome.Status)
	assert.Equal(t, domain.PromptIdle, s.State())
}

func TestSessionCancelBeforeSubmitResolvesCancelled(t *testing.T) {
	t.Parallel()

	proc := newFakeProcess("s1")
	s := newTestSession(proc, nil)

	results := askAsync(s, domain.Input("", "Name?"), 0)
	sentRequest(t, proc, 1)

	s.CancelPrompt()

	result := <-results
	require.NoError(t, result.err)
	assert.Equal(t, domain.OutcomeCancelled, result.outcome.Status)
	assert.Nil(t, result.outcome.Value)
	assert.Equal(t, domain.PromptIdle, s.State())

	// A late submit for the cancelled request is discarded silently.
	proc.emit(`{"type":"submit","id":"1","value":"late"}`)
	assert.Zero(t, s.PendingRequests())
}

func TestSessionConcurrentPromptRejected(t *testing.T) {
	t.Parallel()

	proc := newFakeProcess("s1")
	s := newTestSession(proc, nil)

	results := askAsync(s, domain.Arg("", "Pick", nil), 0)
	request := sentRequest(t, proc, 1)

	_, err := s.Ask(context.Background(), domain.Input("", "Name?"), 0)
	assert.ErrorIs(t, err, domain.ErrConcurrentPrompt)

	proc.emit(fmt.Sprintf(`{"type":"submit","id":%q,"value":null}`, request.ID))
	result := <-results
	require.NoError(t, result.err)
	assert.Nil(t, result.outcome.Value)
}

func TestSessionMalformedLineDoesNotKillReadLoop(t *testing.T) {
	t.Parallel()

	proc := newFakeProcess("s1")
	s := newTestSession(proc, nil)

	results := askAsync(s, domain.Arg("", "Pick", nil), 0)
	request := sentRequest(t, proc, 1)

	proc.emit(`{"type":"submit","id":`)
	proc.emit(`not json at all`)
	proc.emit(fmt.Sprintf(`{"type":"submit","id":%q,"value":"ok"}`, request.ID))

	result := <-results
	require.NoError(t, result.err)
	require.NotNil(t, result.outcome.Value)
	assert.Equal(t, "ok", *result.outcome.Value)
}

func TestSessionTimeoutResolvesTimedOut(t *testing.T) {
	t.Parallel()

	proc := newFakeProcess("s1")
	clock := newFakeClock()
	s := startSession(domain.Script{Name: "x", Path: "/s/x.sh"}, proc, clock, nil, nil, nil)

	results := askAsync(s, domain.Input("", "Name?"), 5*time.Second)
	sentRequest(t, proc, 1)

	// Fire until Ask has armed its deadline timer and observed it.
	var result askResult
	require.Eventually(t, func() bool {
		clock.fire()
		select {
		case result = <-results:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, result.err)
	assert.Equal(t, domain.OutcomeTimedOut, result.outcome.Status)
	assert.Nil(t, result.outcome.Value)
	assert.Equal(t, domain.PromptIdle, s.State())
	assert.Zero(t, s.PendingRequests())
}

func TestSessionProcessExitClosesAndCancelsAll(t *testing.T) {
	t.Parallel()

	events := make(chan Event, 8)
	proc := newFakeProcess("s1")
	s := newTestSession(proc, events)

	results := askAsync(s, domain.Arg("", "Pick", nil), 0)
	sentRequest(t, proc, 1)

	proc.finish(domain.Crashed(3))

	result := <-results
	require.NoError(t, result.err)
	assert.Equal(t, domain.OutcomeCancelled, result.outcome.Status)

	status := s.Wait()
	assert.Equal(t, domain.ExitCrashed, status.Reason)
	assert.Equal(t, 3, status.Code)
	assert.Equal(t, domain.PromptClosed, s.State())
	assert.Zero(t, s.PendingRequests())

	_, err := s.Ask(context.Background(), domain.Arg("", "Pick", nil), 0)
	assert.ErrorIs(t, err, domain.ErrSessionClosed)

	event := <-events
	assert.Equal(t, EventExit, event.Type)
	assert.Equal(t, domain.ExitCrashed, event.Exit.Reason)
}

func TestSessionAskAfterBrokenPipe(t *testing.T) {
	t.Parallel()

	proc := newFakeProcess("s1")
	s := newTestSession(proc, nil)

	proc.finish(domain.Exited())
	s.Wait()

	_, err := s.Ask(context.Background(), domain.Input("", "Name?"), 0)
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
	assert.Zero(t, s.PendingRequests())
}

func TestSessionForwardsFireAndForgetMessages(t *testing.T) {
	t.Parallel()

	events := make(chan Event, 8)
	proc := newFakeProcess("s1")
	s := newTestSession(proc, events)

	proc.emit(`{"type":"update","id":"9","progress":50}`)
	event := <-events
	assert.Equal(t, EventMessage, event.Type)
	assert.Equal(t, domain.KindUpdate, event.Message.Kind)
	assert.Equal(t, float64(50), event.Message.Data["progress"])

	proc.emit(`{"type":"hologram","payload":"???"}`)
	event = <-events
	assert.Equal(t, domain.KindUnknown, event.Message.Kind)
	assert.Equal(t, "hologram", event.Message.RawKind)

	// Ordering within the session follows the script's writes.
	assert.Equal(t, domain.PromptIdle, s.State())
}

func TestSessionContextCancelResolvesCancelled(t *testing.T) {
	t.Parallel()

	proc := newFakeProcess("s1")
	s := newTestSession(proc, nil)

	ctx, cancel := context.WithCancel(context.Background())
	results := make(chan askResult, 1)
	go func() {
		outcome, err := s.Ask(ctx, domain.Input("", "Name?"), 0)
		results <- askResult{outcome: outcome, err: err}
	}()
	sentRequest(t, proc, 1)

	cancel()

	result := <-results
	require.NoError(t, result.err)
	assert.Equal(t, domain.OutcomeCancelled, result.outcome.Status)
	assert.Zero(t, s.PendingRequests())
}

func TestSupervisorLaunchAndKillAll(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	sv := NewSupervisor(runner, nil, nil)

	s1, err := sv.Launch(context.Background(), domain.Script{Name: "a", Path: "/s/a.sh"})
	require.NoError(t, err)
	s2, err := sv.Launch(context.Background(), domain.Script{Name: "b", Path: "/s/b.sh"})
	require.NoError(t, err)
	assert.Len(t, sv.Sessions(), 2)

	got, ok := sv.Get(s1.ID())
	require.True(t, ok)
	assert.Same(t, s1, got)

	sv.KillAll()

	assert.Equal(t, domain.ExitKilled, s1.Wait().Reason)
	assert.Equal(t, domain.ExitKilled, s2.Wait().Reason)
	assert.Empty(t, sv.Sessions())
}

func TestSupervisorSpawnFailureReportsOnce(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{failErr: fmt.Errorf("%w: no such file", domain.ErrSpawnFailed)}
	sv := NewSupervisor(runner, nil, nil)

	_, err := sv.Launch(context.Background(), domain.Script{Name: "a", Path: "/missing.sh"})
	assert.ErrorIs(t, err, domain.ErrSpawnFailed)
	assert.Empty(t, sv.Sessions())
}

func TestSupervisorRejectsInvalidScript(t *testing.T) {
	t.Parallel()

	sv := NewSupervisor(&fakeRunner{}, nil, nil)
	_, err := sv.Launch(context.Background(), domain.Script{Name: "a"})
	assert.ErrorContains(t, err, "path is required")
}
