package analysis

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Analysis is the structured result of one day's oracle exchange.
type Analysis struct {
	HotFacts       []string        `json:"hot_facts"`
	Patterns       []string        `json:"patterns"`
	Reflections    []string        `json:"reflections"`
	Consolidations []Consolidation `json:"consolidations"`
	Digest         string          `json:"digest"`
}

// Consolidation asks the store to merge several existing facts into one.
type Consolidation struct {
	MergeIDs []string `json:"merge_ids"`
	Into     string   `json:"into"`
}

// ParseError reports an oracle response that was not valid JSON even after
// fence stripping.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("analysis: oracle response is not valid JSON: %v", e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// Parse decodes an oracle response into an Analysis. A surrounding markdown
// code fence (with or without a "json" tag) is stripped first. Missing or
// wrongly-typed fields degrade to empty defaults; only invalid JSON is an
// error.
func Parse(responseText string) (*Analysis, error) {
	text := stripFence(responseText)

	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, &ParseError{Cause: err}
	}

	a := &Analysis{
		HotFacts:       toStringSlice(raw["hot_facts"]),
		Patterns:       toStringSlice(raw["patterns"]),
		Reflections:    toStringSlice(raw["reflections"]),
		Consolidations: toConsolidations(raw["consolidations"]),
	}
	if digest, ok := raw["digest"].(string); ok {
		a.Digest = digest
	}
	return a, nil
}

// stripFence removes one leading/trailing markdown code fence if present.
func stripFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimPrefix(trimmed, "json")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func toStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func toConsolidations(v any) []Consolidation {
	items, ok := v.([]any)
	if !ok {
		return []Consolidation{}
	}
	out := make([]Consolidation, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		c := Consolidation{MergeIDs: toStringSlice(m["merge_ids"])}
		if into, ok := m["into"].(string); ok {
			c.Into = into
		}
		out = append(out, c)
	}
	return out
}
