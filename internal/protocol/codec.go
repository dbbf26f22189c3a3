// Package protocol frames and (de)serializes the newline-delimited JSON
// envelopes exchanged with script processes: one UTF-8 JSON object per
// line of the child's stdin and stdout.
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scriptpad-app/scriptpad/internal/domain"
)

type choiceSchema struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

type argSchema struct {
	Type        string         `json:"type"`
	ID          string         `json:"id"`
	Placeholder string         `json:"placeholder"`
	Choices     []choiceSchema `json:"choices"`
}

type divSchema struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	HTML     string `json:"html"`
	Tailwind string `json:"tailwind,omitempty"`
}

type editorSchema struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

type inputSchema struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	Placeholder string `json:"placeholder"`
	Secret      bool   `json:"secret,omitempty"`
}

// Value has no omitempty: a cancelled submission is "value":null on the
// wire, not an absent field.
type submitSchema struct {
	Type  string  `json:"type"`
	ID    string  `json:"id"`
	Value *string `json:"value"`
}

type exitSchema struct {
	Type    string `json:"type"`
	Code    *int   `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Decode parses one protocol line into a domain message. Unknown type
// tags decode to domain.KindUnknown so newer script SDKs keep working
// against this host. Anything unparseable is wrapped in
// domain.ErrMalformed; callers log and drop the line.
func Decode(line string) (domain.Message, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return domain.Message{}, fmt.Errorf("%w: empty line", domain.ErrMalformed)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", domain.ErrMalformed, err)
	}

	typeRaw, ok := fields["type"]
	if !ok {
		return domain.Message{}, fmt.Errorf("%w: missing type tag", domain.ErrMalformed)
	}
	var tag string
	if err := json.Unmarshal(typeRaw, &tag); err != nil {
		return domain.Message{}, fmt.Errorf("%w: type tag is not a string", domain.ErrMalformed)
	}

	switch domain.Kind(tag) {
	case domain.KindArg:
		var s argSchema
		if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
			return domain.Message{}, fmt.Errorf("%w: arg payload: %v", domain.ErrMalformed, err)
		}
		return domain.Arg(s.ID, s.Placeholder, choicesFromSchema(s.Choices)), nil
	case domain.KindDiv:
		var s divSchema
		if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
			return domain.Message{}, fmt.Errorf("%w: div payload: %v", domain.ErrMalformed, err)
		}
		msg := domain.Div(s.ID, s.HTML)
		msg.Tailwind = s.Tailwind
		return msg, nil
	case domain.KindEditor:
		var s editorSchema
		if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
			return domain.Message{}, fmt.Errorf("%w: editor payload: %v", domain.ErrMalformed, err)
		}
		return domain.Editor(s.ID, s.Text, s.Language), nil
	case domain.KindInput:
		var s inputSchema
		if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
			return domain.Message{}, fmt.Errorf("%w: input payload: %v", domain.ErrMalformed, err)
		}
		msg := domain.Input(s.ID, s.Placeholder)
		msg.Secret = s.Secret
		return msg, nil
	case domain.KindSubmit:
		var s submitSchema
		if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
			return domain.Message{}, fmt.Errorf("%w: submit payload: %v", domain.ErrMalformed, err)
		}
		return domain.Submit(s.ID, s.Value), nil
	case domain.KindUpdate:
		return decodeUpdate(fields)
	case domain.KindExit:
		var s exitSchema
		if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
			return domain.Message{}, fmt.Errorf("%w: exit payload: %v", domain.ErrMalformed, err)
		}
		return domain.Exit(s.Code, s.Message), nil
	default:
		return decodeUnknown(tag, fields)
	}
}

// decodeUpdate flattens every field besides the tag and id into Data,
// mirroring the free-form shape scripts send.
func decodeUpdate(fields map[string]json.RawMessage) (domain.Message, error) {
	msg := domain.Message{Kind: domain.KindUpdate, Data: map[string]any{}}
	for key, raw := range fields {
		switch key {
		case "type":
		case "id":
			if err := json.Unmarshal(raw, &msg.ID); err != nil {
				return domain.Message{}, fmt.Errorf("%w: update id: %v", domain.ErrMalformed, err)
			}
		default:
			var value any
			if err := json.Unmarshal(raw, &value); err != nil {
				return domain.Message{}, fmt.Errorf("%w: update field %q: %v", domain.ErrMalformed, key, err)
			}
			msg.Data[key] = value
		}
	}
	return msg, nil
}

func decodeUnknown(tag string, fields map[string]json.RawMessage) (domain.Message, error) {
	msg := domain.Message{Kind: domain.KindUnknown, RawKind: tag}
	if raw, ok := fields["id"]; ok {
		if err := json.Unmarshal(raw, &msg.ID); err != nil {
			return domain.Message{}, fmt.Errorf("%w: id of %q envelope: %v", domain.ErrMalformed, tag, err)
		}
	}
	return msg, nil
}

// Encode serializes a message to one protocol line, without the trailing
// newline. JSON string escaping keeps embedded newlines out of the
// framing; Encode still refuses to produce anything that would break the
// one-object-per-line invariant.
func Encode(msg domain.Message) (string, error) {
	payload, err := encodePayload(msg)
	if err != nil {
		return "", err
	}

	line, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode %s envelope: %w", msg.Kind, err)
	}
	if bytes.ContainsAny(line, "\n\r") {
		return "", fmt.Errorf("encode %s envelope: payload breaks line framing", msg.Kind)
	}
	return string(line), nil
}

func encodePayload(msg domain.Message) (any, error) {
	switch msg.Kind {
	case domain.KindArg:
		return argSchema{
			Type:        string(msg.Kind),
			ID:          msg.ID,
			Placeholder: msg.Placeholder,
			Choices:     choicesToSchema(msg.Choices),
		}, nil
	case domain.KindDiv:
		return divSchema{Type: string(msg.Kind), ID: msg.ID, HTML: msg.HTML, Tailwind: msg.Tailwind}, nil
	case domain.KindEditor:
		return editorSchema{Type: string(msg.Kind), ID: msg.ID, Text: msg.Text, Language: msg.Language}, nil
	case domain.KindInput:
		return inputSchema{Type: string(msg.Kind), ID: msg.ID, Placeholder: msg.Placeholder, Secret: msg.Secret}, nil
	case domain.KindSubmit:
		return submitSchema{Type: string(msg.Kind), ID: msg.ID, Value: msg.Value}, nil
	case domain.KindUpdate:
		payload := make(map[string]any, len(msg.Data)+2)
		for key, value := range msg.Data {
			payload[key] = value
		}
		payload["type"] = string(msg.Kind)
		if msg.ID != "" {
			payload["id"] = msg.ID
		}
		return payload, nil
	case domain.KindExit:
		return exitSchema{Type: string(msg.Kind), Code: msg.ExitCode, Message: msg.ExitNote}, nil
	default:
		return nil, fmt.Errorf("encode: unsupported kind %q", msg.Kind)
	}
}

func choicesFromSchema(in []choiceSchema) []domain.Choice {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Choice, 0, len(in))
	for _, c := range in {
		out = append(out, domain.Choice{Name: c.Name, Value: c.Value, Description: c.Description})
	}
	return out
}

func choicesToSchema(in []domain.Choice) []choiceSchema {
	out := make([]choiceSchema, 0, len(in))
	for _, c := range in {
		out = append(out, choiceSchema{Name: c.Name, Value: c.Value, Description: c.Description})
	}
	return out
}
