// Package analysis prepares conversation logs for the text-generation
// oracle and parses its structured findings: bounded-size chunking, the
// extraction prompt, and the tolerant response parser.
package analysis

import (
	"fmt"
	"strings"

	"github.com/memkeep/memkeep/pkg/logstore"
)

// DefaultMaxChunkChars is the soft per-chunk size limit.
const DefaultMaxChunkChars = 4000

// Chunk splits a day's entries into bounded-size text chunks. Entry
// renderings are never split: a chunk may exceed the limit only when a
// single entry's rendering alone is oversized. maxChunkChars <= 0 selects
// the default.
func Chunk(entries []*logstore.LogEntry, maxChunkChars int) []string {
	if maxChunkChars <= 0 {
		maxChunkChars = DefaultMaxChunkChars
	}

	var chunks []string
	var buf strings.Builder
	for _, entry := range entries {
		rendered := RenderEntry(entry)
		if buf.Len() > 0 && buf.Len()+len(rendered) > maxChunkChars {
			chunks = append(chunks, strings.TrimSpace(buf.String()))
			buf.Reset()
		}
		buf.WriteString(rendered)
	}
	if trimmed := strings.TrimSpace(buf.String()); trimmed != "" {
		chunks = append(chunks, trimmed)
	}
	return chunks
}

// RenderEntry renders one entry as a header line followed by one line per
// message and a trailing blank line.
func RenderEntry(entry *logstore.LogEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[session: %s | user: %s | %s]\n", entry.SessionID, entry.UserID, entry.Timestamp)
	for _, msg := range entry.Messages {
		label := strings.ToUpper(msg.Role)
		if msg.Role == "tool" && msg.ToolName != "" {
			label = fmt.Sprintf("TOOL(%s)", msg.ToolName)
		}
		fmt.Fprintf(&b, "%s: %s\n", label, msg.Content)
	}
	b.WriteString("\n")
	return b.String()
}
