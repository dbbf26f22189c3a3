package domain

// OutcomeStatus classifies how a pending request was settled.
type OutcomeStatus string

const (
	OutcomeSubmitted OutcomeStatus = "submitted"
	OutcomeCancelled OutcomeStatus = "cancelled"
	OutcomeTimedOut  OutcomeStatus = "timed_out"
)

// Outcome is the single settlement of a pending request. Every
// registered request settles with exactly one Outcome; a cancelled or
// timed-out prompt carries a nil Value, which scripts observe as an
// absent result rather than an error or a hang.
type Outcome struct {
	Status OutcomeStatus
	Value  *string
}

// Submitted wraps a script-provided value.
func Submitted(value *string) Outcome {
	return Outcome{Status: OutcomeSubmitted, Value: value}
}

// Cancelled is the canonical cancelled settlement.
func Cancelled() Outcome {
	return Outcome{Status: OutcomeCancelled}
}

// TimedOut settles a request whose caller-supplied deadline elapsed.
func TimedOut() Outcome {
	return Outcome{Status: OutcomeTimedOut}
}

// ExitReason classifies how a script process ended.
type ExitReason string

const (
	// ExitNormal is a zero exit code.
	ExitNormal ExitReason = "exited"
	// ExitCrashed is a non-zero exit code the host did not cause.
	ExitCrashed ExitReason = "crashed"
	// ExitKilled is host-initiated teardown of the process group.
	ExitKilled ExitReason = "killed"
)

// ExitStatus is the terminal state of a session's process.
type ExitStatus struct {
	Reason ExitReason
	Code   int
}

func Exited() ExitStatus {
	return ExitStatus{Reason: ExitNormal}
}

func Crashed(code int) ExitStatus {
	return ExitStatus{Reason: ExitCrashed, Code: code}
}

func Killed() ExitStatus {
	return ExitStatus{Reason: ExitKilled}
}
