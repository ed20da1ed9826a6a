package capture

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memkeep/memkeep/pkg/identity"
	"github.com/memkeep/memkeep/pkg/logstore"
	"github.com/memkeep/memkeep/pkg/metrics"
)

func msg(role, content string) map[string]any {
	return map[string]any{"role": role, "content": content}
}

func newRecorder(t *testing.T, cfg Config) (*Recorder, *logstore.Store) {
	t.Helper()
	logs := logstore.New(t.TempDir())
	return NewRecorder(logs, cfg, nil, nil), logs
}

func TestRecord_AppendsSanitizedTurn(t *testing.T) {
	r, logs := newRecorder(t, Config{})

	sc := identity.SessionContext{SessionKey: "agent:main:telegram:12345", Channel: "telegram"}
	err := r.Record(sc, []any{
		msg("system", "ignored"),
		msg("user", "remember that I prefer tea"),
		msg("assistant", "noted"),
	})
	require.NoError(t, err)

	date := time.Now().UTC().Format("2006-01-02")
	entries, err := logstore.ReadDaily(logs.DayPath(date))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "telegram:12345", entries[0].UserID)
	assert.Equal(t, "telegram", entries[0].Channel)
	assert.Len(t, entries[0].Messages, 2)
}

func TestRecord_DropsEmptyTurn(t *testing.T) {
	r, logs := newRecorder(t, Config{})

	sc := identity.SessionContext{SessionKey: "some-session", Channel: "cli"}
	err := r.Record(sc, []any{msg("system", "only system content")})
	require.NoError(t, err)

	date := time.Now().UTC().Format("2006-01-02")
	_, statErr := os.Stat(logs.DayPath(date))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRecord_ResolvesAliases(t *testing.T) {
	dir := t.TempDir()
	mapPath := filepath.Join(dir, "identities.json")
	im := &identity.Map{Identities: []*identity.Entry{
		{Canonical: "alice", Aliases: []string{"telegram:12345"}},
	}}
	require.NoError(t, identity.SaveMap(mapPath, im))

	logs := logstore.New(t.TempDir())
	r := NewRecorder(logs, Config{IdentityMapPath: mapPath}, nil, nil)

	sc := identity.SessionContext{SessionKey: "agent:main:telegram:12345", Channel: "telegram"}
	require.NoError(t, r.Record(sc, []any{msg("user", "hello")}))

	date := time.Now().UTC().Format("2006-01-02")
	entries, err := logstore.ReadDaily(logs.DayPath(date))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].UserID)
}

func TestRecord_CountsAppendedEntries(t *testing.T) {
	logs := logstore.New(t.TempDir())
	m := metrics.NewManager(metrics.DefaultConfig())
	r := NewRecorder(logs, Config{}, m, nil)

	sc := identity.SessionContext{SessionKey: "s1", Channel: "cli"}
	require.NoError(t, r.Record(sc, []any{msg("user", "one")}))
	require.NoError(t, r.Record(sc, []any{msg("user", "two")}))

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		if f.GetName() == "logstore_entries_appended_total" {
			found = true
			require.Len(t, f.GetMetric(), 1)
			assert.Equal(t, float64(2), f.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found, "expected logstore_entries_appended_total to be registered")
}
