package protocol

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriptpad-app/scriptpad/internal/domain"
)

func TestDecodeArg(t *testing.T) {
	t.Parallel()

	line := `{"type":"arg","id":"1","placeholder":"Pick","choices":[{"name":"Apple","value":"apple"},{"name":"Banana","value":"banana","description":"yellow"}]}`
	msg, err := Decode(line)
	require.NoError(t, err)

	assert.Equal(t, domain.KindArg, msg.Kind)
	assert.Equal(t, "1", msg.ID)
	assert.Equal(t, "Pick", msg.Placeholder)
	require.Len(t, msg.Choices, 2)
	assert.Equal(t, domain.Choice{Name: "Apple", Value: "apple"}, msg.Choices[0])
	assert.Equal(t, "yellow", msg.Choices[1].Description)
}

func TestDecodeSubmit(t *testing.T) {
	t.Parallel()

	msg, err := Decode(`{"type":"submit","id":"1","value":"apple"}`)
	require.NoError(t, err)
	assert.Equal(t, domain.KindSubmit, msg.Kind)
	assert.Equal(t, "1", msg.ID)
	require.NotNil(t, msg.Value)
	assert.Equal(t, "apple", *msg.Value)
}

func TestDecodeSubmitNullValue(t *testing.T) {
	t.Parallel()

	msg, err := Decode(`{"type":"submit","id":"2","value":null}`)
	require.NoError(t, err)
	assert.Equal(t, "2", msg.ID)
	assert.Nil(t, msg.Value)
}

func TestDecodeDiv(t *testing.T) {
	t.Parallel()

	msg, err := Decode(`{"type":"div","id":"3","html":"<h1>Hi</h1>","tailwind":"text-2xl"}`)
	require.NoError(t, err)
	assert.Equal(t, domain.KindDiv, msg.Kind)
	assert.Equal(t, "<h1>Hi</h1>", msg.HTML)
	assert.Equal(t, "text-2xl", msg.Tailwind)
}

func TestDecodeUpdateFlattensPayload(t *testing.T) {
	t.Parallel()

	msg, err := Decode(`{"type":"update","id":"4","progress":42,"label":"working"}`)
	require.NoError(t, err)
	assert.Equal(t, domain.KindUpdate, msg.Kind)
	assert.Equal(t, "4", msg.ID)
	assert.Equal(t, float64(42), msg.Data["progress"])
	assert.Equal(t, "working", msg.Data["label"])
	assert.NotContains(t, msg.Data, "type")
	assert.NotContains(t, msg.Data, "id")
}

func TestDecodeExit(t *testing.T) {
	t.Parallel()

	msg, err := Decode(`{"type":"exit","code":0,"message":"done"}`)
	require.NoError(t, err)
	assert.Equal(t, domain.KindExit, msg.Kind)
	require.NotNil(t, msg.ExitCode)
	assert.Equal(t, 0, *msg.ExitCode)
	assert.Equal(t, "done", msg.ExitNote)
	assert.Empty(t, msg.ID)
}

func TestDecodeUnknownKindIsForwardCompatible(t *testing.T) {
	t.Parallel()

	msg, err := Decode(`{"type":"webcam","id":"9","device":"front"}`)
	require.NoError(t, err)
	assert.Equal(t, domain.KindUnknown, msg.Kind)
	assert.Equal(t, "webcam", msg.RawKind)
	assert.Equal(t, "9", msg.ID)
}

func TestDecodeMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
	}{
		{name: "empty line", line: ""},
		{name: "whitespace only", line: "   "},
		{name: "truncated json", line: `{"type":"arg","id":`},
		{name: "not an object", line: `[1,2,3]`},
		{name: "missing type", line: `{"id":"1","value":"x"}`},
		{name: "numeric type tag", line: `{"type":7,"id":"1"}`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(tc.line)
			assert.ErrorIs(t, err, domain.ErrMalformed)
		})
	}
}

func TestEncodeArg(t *testing.T) {
	t.Parallel()

	line, err := Encode(domain.Arg("1", "Pick one", []domain.Choice{
		{Name: "Apple", Value: "apple"},
	}))
	require.NoError(t, err)

	assert.True(t, json.Valid([]byte(line)))
	assert.Contains(t, line, `"type":"arg"`)
	assert.Contains(t, line, `"id":"1"`)
	assert.Contains(t, line, `"placeholder":"Pick one"`)
	assert.Contains(t, line, `"Apple"`)
}

func TestEncodeArgEmptyChoicesIsArray(t *testing.T) {
	t.Parallel()

	line, err := Encode(domain.Arg("1", "Pick", nil))
	require.NoError(t, err)
	assert.Contains(t, line, `"choices":[]`)
}

func TestEncodeSubmitNilValueIsNull(t *testing.T) {
	t.Parallel()

	line, err := Encode(domain.Submit("2", nil))
	require.NoError(t, err)
	assert.Contains(t, line, `"value":null`)
}

func TestEncodeEscapesEmbeddedNewlines(t *testing.T) {
	t.Parallel()

	line, err := Encode(domain.Div("5", "line one\nline two"))
	require.NoError(t, err)
	assert.NotContains(t, line, "\n")

	decoded, err := Decode(line)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", decoded.HTML)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	value := "picked"
	code := 3
	messages := []domain.Message{
		domain.Arg("1", "Pick", []domain.Choice{{Name: "A", Value: "a", Description: "first"}}),
		domain.Div("2", "<b>hey</b>"),
		domain.Editor("3", "body\ntext", "markdown"),
		domain.Input("4", "Name?"),
		domain.Submit("5", &value),
		domain.Submit("6", nil),
		domain.Exit(&code, "boom"),
	}

	for _, msg := range messages {
		line, err := Encode(msg)
		require.NoError(t, err, "kind %s", msg.Kind)
		assert.False(t, strings.ContainsAny(line, "\n\r"))

		decoded, err := Decode(line)
		require.NoError(t, err, "kind %s", msg.Kind)
		assert.Equal(t, msg, decoded, "kind %s", msg.Kind)
	}
}

func TestEncodeUpdateCarriesFreeFormData(t *testing.T) {
	t.Parallel()

	line, err := Encode(domain.Message{
		Kind: domain.KindUpdate,
		ID:   "7",
		Data: map[string]any{"progress": float64(80)},
	})
	require.NoError(t, err)

	decoded, err := Decode(line)
	require.NoError(t, err)
	assert.Equal(t, domain.KindUpdate, decoded.Kind)
	assert.Equal(t, "7", decoded.ID)
	assert.Equal(t, float64(80), decoded.Data["progress"])
}

func TestEncodeUnknownKindRejected(t *testing.T) {
	t.Parallel()

	_, err := Encode(domain.Message{Kind: domain.KindUnknown, RawKind: "webcam"})
	assert.ErrorContains(t, err, "unsupported kind")
}
