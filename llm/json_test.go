package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSONBlockStripsJSONFence(t *testing.T) {
	in := "```json\n[{\"index\":0}]\n```"
	assert.Equal(t, `[{"index":0}]`, CleanJSONBlock(in))
}

func TestCleanJSONBlockStripsPlainFence(t *testing.T) {
	in := "```\n{\"a\":1}\n```"
	assert.Equal(t, `{"a":1}`, CleanJSONBlock(in))
}

func TestCleanJSONBlockPassesThroughBareJSON(t *testing.T) {
	in := `[{"index":0,"score":0.5}]`
	assert.Equal(t, in, CleanJSONBlock(in))
}

func TestExtractJSONArrayFromProse(t *testing.T) {
	in := `Sure, here are the scores you asked for:

[{"index": 0, "score": 0.9, "tags": ["ai"]}, {"index": 1, "score": 0.1}]

Let me know if you need anything else.`

	out, err := ExtractJSONArray(in)
	require.NoError(t, err)
	assert.Equal(t, `[{"index": 0, "score": 0.9, "tags": ["ai"]}, {"index": 1, "score": 0.1}]`, out)
}

func TestExtractJSONArrayHandlesNestedArrays(t *testing.T) {
	in := `[{"tags": ["a", "b"], "score": 1}]`
	out, err := ExtractJSONArray(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestExtractJSONArrayIgnoresBracketsInsideStrings(t *testing.T) {
	in := `[{"title": "array syntax: a[i] = ]weird["}]`
	out, err := ExtractJSONArray(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestExtractJSONArrayFromFencedResponse(t *testing.T) {
	in := "```json\n[{\"index\": 0}]\n```"
	out, err := ExtractJSONArray(in)
	require.NoError(t, err)
	assert.Equal(t, `[{"index": 0}]`, out)
}

func TestExtractJSONArrayNoArray(t *testing.T) {
	_, err := ExtractJSONArray("I could not score these articles.")
	assert.Error(t, err)
}

func TestExtractJSONArrayUnbalanced(t *testing.T) {
	_, err := ExtractJSONArray(`[{"index": 0`)
	assert.Error(t, err)
}
