package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
  "hot_facts": ["user's deploy key lives in 1password"],
  "patterns": ["asks for summaries every morning"],
  "reflections": ["should answer in fewer words"],
  "consolidations": [{"merge_ids": ["m1", "m2"], "into": "merged fact"}],
  "digest": "A quiet day."
}`

func TestParse_Plain(t *testing.T) {
	a, err := Parse(sampleResponse)
	require.NoError(t, err)

	assert.Equal(t, []string{"user's deploy key lives in 1password"}, a.HotFacts)
	assert.Equal(t, []string{"asks for summaries every morning"}, a.Patterns)
	assert.Equal(t, []string{"should answer in fewer words"}, a.Reflections)
	require.Len(t, a.Consolidations, 1)
	assert.Equal(t, []string{"m1", "m2"}, a.Consolidations[0].MergeIDs)
	assert.Equal(t, "merged fact", a.Consolidations[0].Into)
	assert.Equal(t, "A quiet day.", a.Digest)
}

func TestParse_StripsFences(t *testing.T) {
	plain, err := Parse(sampleResponse)
	require.NoError(t, err)

	for _, wrapped := range []string{
		"```json\n" + sampleResponse + "\n```",
		"```\n" + sampleResponse + "\n```",
	} {
		a, err := Parse(wrapped)
		require.NoError(t, err)
		assert.Equal(t, plain, a)
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse("the model rambled instead of emitting JSON")
	require.Error(t, err)

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestParse_GracefulDefaults(t *testing.T) {
	a, err := Parse(`{"hot_facts": "not a list", "digest": 42, "consolidations": [{"merge_ids": "nope"}, "junk"]}`)
	require.NoError(t, err)

	assert.Empty(t, a.HotFacts)
	assert.Empty(t, a.Patterns)
	assert.Empty(t, a.Reflections)
	assert.Equal(t, "", a.Digest)
	require.Len(t, a.Consolidations, 1)
	assert.Empty(t, a.Consolidations[0].MergeIDs)
	assert.Equal(t, "", a.Consolidations[0].Into)
}

func TestParse_EmptyObject(t *testing.T) {
	a, err := Parse("{}")
	require.NoError(t, err)
	assert.NotNil(t, a.HotFacts)
	assert.Empty(t, a.HotFacts)
}
