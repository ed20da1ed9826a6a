package sanitize

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(role, content string) map[string]any {
	return map[string]any{"role": role, "content": content}
}

func TestClean_SkipsSystemAndMalformed(t *testing.T) {
	raw := []any{
		msg("system", "you are a helpful assistant"),
		"not an object",
		map[string]any{"content": "no role"},
		map[string]any{"role": 42, "content": "numeric role"},
		msg("user", "hi"),
	}

	out := Clean(raw, 0)
	require.Len(t, out, 1)
	assert.Equal(t, "user", out[0].Role)
	assert.Equal(t, "hi", out[0].Content)
}

func TestClean_ContentBlocks(t *testing.T) {
	raw := []any{
		map[string]any{
			"role": "user",
			"content": []any{
				map[string]any{"type": "text", "text": "look at this"},
				map[string]any{"type": "image", "source": map[string]any{}},
				map[string]any{"type": "tool_use", "id": "t1"},
				map[string]any{"type": "text", "text": "what is it?"},
			},
		},
		map[string]any{"role": "user", "content": []any{map[string]any{"type": "tool_use"}}},
	}

	out := Clean(raw, 0)
	require.Len(t, out, 1)
	assert.Equal(t, "look at this\n[image]\nwhat is it?", out[0].Content)
}

func TestClean_MemoryMarkerDropped(t *testing.T) {
	raw := []any{
		msg("user", "<relevant-memories>previously injected facts</relevant-memories>"),
		msg("user", "a genuine question"),
	}

	out := Clean(raw, 0)
	require.Len(t, out, 1)
	assert.Equal(t, "a genuine question", out[0].Content)
}

func TestClean_Base64Replaced(t *testing.T) {
	payload := strings.Repeat("QUJD", 40) // 160 encoded chars
	raw := []any{msg("user", "here: data:image/png;base64,"+payload+" done")}

	out := Clean(raw, 0)
	require.Len(t, out, 1)
	assert.Equal(t, "here: [base64-data] done", out[0].Content)
	assert.NotContains(t, out[0].Content, payload)
}

func TestClean_ShortBase64Kept(t *testing.T) {
	raw := []any{msg("user", "tiny: data:image/png;base64,QUJDRA==")}

	out := Clean(raw, 0)
	require.Len(t, out, 1)
	assert.Contains(t, out[0].Content, "QUJDRA==")
}

func TestClean_ToolTruncation(t *testing.T) {
	long := strings.Repeat("x", 700)
	raw := []any{
		map[string]any{"role": "tool", "name": "exec", "content": long},
		msg("tool", "short output"),
	}

	out := Clean(raw, 500)
	require.Len(t, out, 2)
	assert.Equal(t, "tool", out[0].Role)
	assert.Equal(t, "exec", out[0].ToolName)
	assert.True(t, strings.HasSuffix(out[0].Content, " [truncated]"))
	assert.Len(t, out[0].Content, 500+len(" [truncated]"))
	assert.Equal(t, "short output", out[1].Content)
	assert.Empty(t, out[1].ToolName)
}

func TestClean_ToolTruncationKeepsValidUTF8(t *testing.T) {
	// Three-byte runes never line up with the cut point, so a byte-exact
	// cut would leave a dangling partial rune.
	long := strings.Repeat("日", 300)
	raw := []any{map[string]any{"role": "tool", "content": long}}

	out := Clean(raw, 500)
	require.Len(t, out, 1)
	assert.True(t, strings.HasSuffix(out[0].Content, " [truncated]"))
	assert.True(t, utf8.ValidString(out[0].Content))
	body := strings.TrimSuffix(out[0].Content, " [truncated]")
	assert.LessOrEqual(t, len(body), 500)
	assert.Equal(t, 0, len(body)%3)
}

func TestClean_RoleNormalization(t *testing.T) {
	raw := []any{
		msg("function", "odd role"),
		msg("assistant", "normal"),
	}

	out := Clean(raw, 0)
	require.Len(t, out, 2)
	assert.Equal(t, "assistant", out[0].Role)
	assert.Equal(t, "assistant", out[1].Role)
}

func TestBuildLogEntry(t *testing.T) {
	entry := BuildLogEntry([]any{msg("user", "hello")}, "telegram:12345", "telegram", "agent:main:telegram:12345")
	require.NotNil(t, entry)
	assert.Equal(t, "telegram:12345", entry.UserID)
	assert.Equal(t, "telegram", entry.Channel)
	assert.NotEmpty(t, entry.Timestamp)
	assert.NotEmpty(t, entry.Date())

	assert.Nil(t, BuildLogEntry([]any{msg("system", "setup")}, "u", "c", "s"))
}
