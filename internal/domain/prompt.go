package domain

// PromptState is the per-session prompt lifecycle. At most one prompt is
// outstanding per running script at any time.
type PromptState string

const (
	// PromptIdle means no prompt is outstanding.
	PromptIdle PromptState = "idle"
	// PromptSending means a request is being written to the script's
	// stdin but has not yet been registered as awaiting.
	PromptSending PromptState = "sending"
	// PromptAwaiting means a request is registered and an answer is
	// expected.
	PromptAwaiting PromptState = "awaiting"
	// PromptClosed is terminal; the session's process has exited.
	PromptClosed PromptState = "closed"
)
