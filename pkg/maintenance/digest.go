package maintenance

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/memkeep/memkeep/pkg/analysis"
)

// StoreStats carries store counts rendered into the digest footer.
type StoreStats struct {
	// HotMemories is the number of facts in the long-term store.
	HotMemories int
	// ColdDays is the number of daily log files in cold storage.
	ColdDays int
}

// DigestWriter renders one day's analysis into a human-readable Markdown
// report at <dir>/<date>.md.
type DigestWriter struct {
	dir string
}

// NewDigestWriter creates a writer rooted at dir.
func NewDigestWriter(dir string) *DigestWriter {
	return &DigestWriter{dir: dir}
}

// Path returns the digest file path for date.
func (w *DigestWriter) Path(date string) string {
	return filepath.Join(w.dir, date+".md")
}

// Save renders and writes the digest for date, replacing any prior digest
// so that a retried day is replayable.
func (w *DigestWriter) Save(date string, a *analysis.Analysis, stats *StoreStats) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("maintenance: create digest dir: %w", err)
	}
	return os.WriteFile(w.Path(date), []byte(w.render(date, a, stats)), 0644)
}

func (w *DigestWriter) render(date string, a *analysis.Analysis, stats *StoreStats) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Daily Memory Digest — %s\n\n", date)

	b.WriteString("## Summary\n\n")
	if a.Digest != "" {
		b.WriteString(a.Digest + "\n\n")
	} else {
		b.WriteString("No summary produced.\n\n")
	}

	writeListSection(&b, "New Facts", a.HotFacts)
	writeListSection(&b, "Patterns", a.Patterns)
	writeListSection(&b, "Self-Reflections", a.Reflections)

	if len(a.Consolidations) > 0 {
		b.WriteString("## Consolidations\n\n")
		for _, c := range a.Consolidations {
			fmt.Fprintf(&b, "- merged %d entries into: %s\n", len(c.MergeIDs), c.Into)
		}
		b.WriteString("\n")
	}

	if stats != nil {
		b.WriteString("## Store Statistics\n\n")
		fmt.Fprintf(&b, "- hot memories: %d\n", stats.HotMemories)
		fmt.Fprintf(&b, "- cold storage days: %d\n", stats.ColdDays)
	}

	return b.String()
}

func writeListSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}
