package maintenance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memkeep/memkeep/pkg/analysis"
)

func TestDigestWriter_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "digests")
	w := NewDigestWriter(dir)

	a := &analysis.Analysis{
		HotFacts:    []string{"deploy key lives in 1password"},
		Patterns:    []string{"asks for summaries every morning"},
		Reflections: []string{"answer in fewer words"},
		Consolidations: []analysis.Consolidation{
			{MergeIDs: []string{"m1", "m2"}, Into: "merged preference"},
		},
		Digest: "A productive day.",
	}

	require.NoError(t, w.Save("2026-02-07", a, &StoreStats{HotMemories: 12, ColdDays: 3}))

	data, err := os.ReadFile(w.Path("2026-02-07"))
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "# Daily Memory Digest — 2026-02-07")
	assert.Contains(t, text, "A productive day.")
	assert.Contains(t, text, "- deploy key lives in 1password")
	assert.Contains(t, text, "- asks for summaries every morning")
	assert.Contains(t, text, "- answer in fewer words")
	assert.Contains(t, text, "merged 2 entries into: merged preference")
	assert.Contains(t, text, "hot memories: 12")
	assert.Contains(t, text, "cold storage days: 3")
}

func TestDigestWriter_OverwritesAndOmitsEmptySections(t *testing.T) {
	w := NewDigestWriter(t.TempDir())

	require.NoError(t, w.Save("2026-02-07", &analysis.Analysis{Digest: "first pass"}, nil))
	require.NoError(t, w.Save("2026-02-07", &analysis.Analysis{Digest: "second pass"}, nil))

	data, err := os.ReadFile(w.Path("2026-02-07"))
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "second pass")
	assert.NotContains(t, text, "first pass")
	assert.NotContains(t, text, "## New Facts")
	assert.NotContains(t, text, "## Consolidations")
	assert.NotContains(t, text, "## Store Statistics")
}
