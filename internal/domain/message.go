package domain

// Kind tags a protocol message. The wire field is "type".
type Kind string

const (
	// KindArg is a script-initiated choice prompt.
	KindArg Kind = "arg"
	// KindDiv is a script-initiated HTML display prompt.
	KindDiv Kind = "div"
	// KindEditor is a script-initiated text editor prompt.
	KindEditor Kind = "editor"
	// KindInput is a script-initiated free-text prompt.
	KindInput Kind = "input"
	// KindSubmit answers a prompt; it always carries the id of the
	// request it resolves.
	KindSubmit Kind = "submit"
	// KindUpdate is a fire-and-forget live UI update.
	KindUpdate Kind = "update"
	// KindExit signals script or host initiated termination.
	KindExit Kind = "exit"
	// KindUnknown is produced for tags this host does not know about.
	// Newer script SDKs must keep working against an older host.
	KindUnknown Kind = "unknown"
)

// RequiresResponse reports whether a message of this kind opens a prompt
// that must eventually be answered with a submit.
func (k Kind) RequiresResponse() bool {
	switch k {
	case KindArg, KindDiv, KindEditor, KindInput:
		return true
	default:
		return false
	}
}

// Choice is one selectable option of an arg prompt.
type Choice struct {
	Name        string
	Value       string
	Description string
}

// Message is one decoded protocol envelope. Exactly which fields are
// meaningful depends on Kind; the zero value of every other field is
// ignored on encode.
type Message struct {
	Kind Kind
	// ID correlates a request with its eventual submit. Fire-and-forget
	// kinds leave it empty.
	ID string

	// arg
	Placeholder string
	Choices     []Choice

	// div
	HTML     string
	Tailwind string

	// editor / input
	Text     string
	Language string
	Secret   bool

	// submit; nil means the prompt was cancelled or dismissed.
	Value *string

	// update; free-form payload forwarded untouched.
	Data map[string]any

	// exit
	ExitCode *int
	ExitNote string

	// RawKind preserves the original tag when Kind is KindUnknown.
	RawKind string
}

// Arg builds an arg prompt message.
func Arg(id, placeholder string, choices []Choice) Message {
	return Message{Kind: KindArg, ID: id, Placeholder: placeholder, Choices: choices}
}

// Div builds an HTML display prompt message.
func Div(id, html string) Message {
	return Message{Kind: KindDiv, ID: id, HTML: html}
}

// Input builds a free-text prompt message.
func Input(id, placeholder string) Message {
	return Message{Kind: KindInput, ID: id, Placeholder: placeholder}
}

// Editor builds an editor prompt message.
func Editor(id, text, language string) Message {
	return Message{Kind: KindEditor, ID: id, Text: text, Language: language}
}

// Submit builds a prompt answer. A nil value is the canonical cancelled
// submission.
func Submit(id string, value *string) Message {
	return Message{Kind: KindSubmit, ID: id, Value: value}
}

// Exit builds a termination signal.
func Exit(code *int, note string) Message {
	return Message{Kind: KindExit, ExitCode: code, ExitNote: note}
}
