package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"bogus", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "debug", DebugLevel.String())
	assert.Equal(t, "info", InfoLevel.String())
	assert.Equal(t, "warn", WarnLevel.String())
	assert.Equal(t, "error", ErrorLevel.String())
	assert.Equal(t, "unknown", Level(99).String())
}

func TestNewWithNilConfig(t *testing.T) {
	l := New(nil)
	assert.NotNil(t, l)
	assert.NoError(t, l.Close())
}

func TestWithDoesNotOwnCloser(t *testing.T) {
	l := New(&Config{Level: DebugLevel, Format: "text", Output: "stdout"})
	derived := l.With("component", "test")

	assert.NotNil(t, derived)
	assert.NoError(t, derived.Close())
	assert.NoError(t, l.Close())
}

func TestSetGlobalReplacesLogger(t *testing.T) {
	prev := Global()
	defer SetGlobal(prev)

	// The package installs a default at init; a configured logger set
	// afterwards must still take over.
	first := New(&Config{Level: InfoLevel, Format: "text", Output: "stdout"})
	SetGlobal(first)
	assert.Equal(t, first, Global())

	second := New(&Config{Level: DebugLevel, Format: "json", Output: "stderr"})
	SetGlobal(second)
	assert.Equal(t, second, Global())
}

func TestFromContext(t *testing.T) {
	l := New(&Config{Level: InfoLevel, Format: "text", Output: "stderr"})
	ctx := l.WithContext(context.Background())

	assert.Equal(t, l, FromContext(ctx))
	assert.Equal(t, Global(), FromContext(context.Background()))
}
