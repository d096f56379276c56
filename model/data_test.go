package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayload_JSONObject(t *testing.T) {
	p := ParsePayload([]byte(`{"text":"hi"}`))

	assert.True(t, p.IsJSON())
	assert.Empty(t, p.Text())
}

func TestParsePayload_JSONScalar(t *testing.T) {
	// Any valid JSON value counts, not just objects.
	for _, body := range []string{`42`, `true`, `null`, `"quoted"`, `[1,2]`} {
		p := ParsePayload([]byte(body))
		assert.True(t, p.IsJSON(), "body %q should parse as JSON", body)
	}
}

func TestParsePayload_PlainText(t *testing.T) {
	p := ParsePayload([]byte("just some words"))

	assert.False(t, p.IsJSON())
	assert.Equal(t, "just some words", p.Text())
}

func TestParsePayload_MalformedJSONFallsBackToText(t *testing.T) {
	p := ParsePayload([]byte(`{"broken":`))

	assert.False(t, p.IsJSON())
	assert.Equal(t, `{"broken":`, p.Text())
}

func TestParsePayload_WhitespaceAroundJSON(t *testing.T) {
	p := ParsePayload([]byte("  {\"k\":1}\n"))

	assert.True(t, p.IsJSON())
}

func TestParsePayload_Empty(t *testing.T) {
	p := ParsePayload([]byte(""))

	assert.False(t, p.IsJSON())
	assert.Equal(t, "", p.Text())
}

func TestPayload_MarshalJSON_JSONKeptVerbatim(t *testing.T) {
	p := ParsePayload([]byte(`{"nested":{"k":[1,2,3]}}`))

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nested":{"k":[1,2,3]}}`, string(out))
}

func TestPayload_MarshalJSON_TextBecomesString(t *testing.T) {
	p := TextPayload(`say "hello"`)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `"say \"hello\""`, string(out))
}

func TestPayload_MarshalJSON_InsideStruct(t *testing.T) {
	frame := struct {
		Payload Payload `json:"payload"`
	}{Payload: ParsePayload([]byte("hi"))}

	out, err := json.Marshal(frame)
	require.NoError(t, err)
	assert.JSONEq(t, `{"payload":"hi"}`, string(out))
}
