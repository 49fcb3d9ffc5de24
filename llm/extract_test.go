package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON_Strict(t *testing.T) {
	obj := ExtractJSON(`{"title":"Plano","spec":{"overview":{"objective":"x"}}}`)
	require.NotNil(t, obj)
	assert.Equal(t, "Plano", obj["title"])
}

func TestExtractJSON_Fenced(t *testing.T) {
	obj := ExtractJSON("```json\n{\"title\":\"A\",\"spec\":{\"a\":1}}\n```")
	require.NotNil(t, obj)
	assert.Equal(t, "A", obj["title"])
	assert.Equal(t, map[string]any{"a": float64(1)}, obj["spec"])
}

func TestExtractJSON_FenceInsideValueKept(t *testing.T) {
	raw := "```json\n{\"title\":\"A\",\"spec\":{\"snippet\":\"```sql\\nSELECT 1\\n```\"}}\n```"
	obj := ExtractJSON(raw)
	require.NotNil(t, obj)
	spec := obj["spec"].(map[string]any)
	assert.Equal(t, "```sql\nSELECT 1\n```", spec["snippet"])

	obj = ExtractJSON(`{"title":"B","spec":{"md":"use ` + "```" + ` para código"}}`)
	require.NotNil(t, obj)
	assert.Equal(t, "use ``` para código", obj["spec"].(map[string]any)["md"])
}

func TestExtractJSON_SurroundingProse(t *testing.T) {
	obj := ExtractJSON("Claro! Segue o plano:\n{\"title\":\"A\",\"spec\":{\"b\":true}}\nBoa sorte.")
	require.NotNil(t, obj)
	assert.Equal(t, "A", obj["title"])
}

func TestExtractJSON_TrailingCommas(t *testing.T) {
	obj := ExtractJSON(`{"title":"A","spec":{"steps":["a","b",],},}`)
	require.NotNil(t, obj)
	spec := obj["spec"].(map[string]any)
	assert.Equal(t, []any{"a", "b"}, spec["steps"])
}

func TestExtractJSON_TruncatedBrackets(t *testing.T) {
	obj := ExtractJSON(`{"title":"A","spec":{"a":[1,2`)
	require.NotNil(t, obj)
	assert.Equal(t, "A", obj["title"])
	assert.Equal(t, map[string]any{"a": []any{float64(1), float64(2)}}, obj["spec"])
}

func TestExtractJSON_UnterminatedString(t *testing.T) {
	obj := ExtractJSON(`{"title":"Plano de emerg`)
	require.NotNil(t, obj)
	assert.Equal(t, "Plano de emerg", obj["title"])
}

func TestExtractJSON_EscapedQuoteInsideString(t *testing.T) {
	obj := ExtractJSON(`{"title":"diz \"oi\" e {x}","spec":{"k":"v"`)
	require.NotNil(t, obj)
	assert.Equal(t, `diz "oi" e {x}`, obj["title"])
	assert.Equal(t, map[string]any{"k": "v"}, obj["spec"])
}

func TestExtractJSON_DanglingSeparator(t *testing.T) {
	obj := ExtractJSON(`{"title":"A","spec":{"steps":["a",`)
	require.NotNil(t, obj)
	spec := obj["spec"].(map[string]any)
	assert.Equal(t, []any{"a"}, spec["steps"])
}

func TestExtractJSON_Garbage(t *testing.T) {
	assert.Nil(t, ExtractJSON("não sei responder"))
	assert.Nil(t, ExtractJSON(""))
	assert.Nil(t, ExtractJSON("[1,2,3]"))
	assert.NotPanics(t, func() { ExtractJSON(`{"a":"\`) })
	assert.NotPanics(t, func() { ExtractJSON(`}{`) })
}

func TestValidatePlan(t *testing.T) {
	assert.NoError(t, ValidatePlan(map[string]any{"title": "A", "spec": map[string]any{"x": 1}}))
	assert.ErrorIs(t, ValidatePlan(nil), ErrIncompletePlan)
	assert.ErrorIs(t, ValidatePlan(map[string]any{"title": "A"}), ErrIncompletePlan)
	assert.ErrorIs(t, ValidatePlan(map[string]any{"title": " ", "spec": map[string]any{"x": 1}}), ErrIncompletePlan)
	assert.ErrorIs(t, ValidatePlan(map[string]any{"title": "A", "spec": map[string]any{}}), ErrIncompletePlan)
	assert.ErrorIs(t, ValidatePlan(map[string]any{"title": "A", "spec": "texto"}), ErrIncompletePlan)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "ab", Preview("abc", 2))
	assert.Equal(t, "çã", Preview("çãé", 2))
	assert.Equal(t, "abc", Preview("abc", 200))
}
