package memstore

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// The two hosted backend generations disagree on field casing
// (snake_case vs camelCase) and on whether lists arrive flat or wrapped
// in {"results": [...]}. Every backend response funnels through the
// normalizers below so the rest of the pipeline only ever sees the
// canonical shapes.

// NormalizeItems decodes a backend payload into canonical memory items.
func NormalizeItems(data []byte) ([]*MemoryItem, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("memstore: decode items: %w", err)
	}

	list := unwrapList(raw)
	items := make([]*MemoryItem, 0, len(list))
	for _, el := range list {
		if m, ok := el.(map[string]any); ok {
			items = append(items, normalizeItem(m))
		}
	}
	return items, nil
}

// NormalizeItem decodes a single-object backend payload.
func NormalizeItem(data []byte) (*MemoryItem, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("memstore: decode item: %w", err)
	}
	return normalizeItem(raw), nil
}

// NormalizeAddResult decodes an Add response, flat or wrapped.
func NormalizeAddResult(data []byte) (*AddResult, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("memstore: decode add result: %w", err)
	}

	out := &AddResult{Results: []AddChange{}}
	for _, el := range unwrapList(raw) {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		change := AddChange{
			ID:     pickString(m, "id"),
			Memory: pickString(m, "memory", "text"),
			Event:  Event(strings.ToUpper(pickString(m, "event"))),
		}
		if change.Event == "" {
			change.Event = EventAdd
		}
		out.Results = append(out.Results, change)
	}
	return out, nil
}

// unwrapList accepts either a flat JSON array or an object carrying the
// list under "results" or "memories".
func unwrapList(raw any) []any {
	switch v := raw.(type) {
	case []any:
		return v
	case map[string]any:
		for _, key := range []string{"results", "memories"} {
			if list, ok := v[key].([]any); ok {
				return list
			}
		}
	}
	return nil
}

func normalizeItem(m map[string]any) *MemoryItem {
	item := &MemoryItem{
		ID:        pickString(m, "id"),
		Memory:    pickString(m, "memory", "text"),
		UserID:    pickString(m, "user_id", "userId"),
		CreatedAt: pickString(m, "created_at", "createdAt"),
		UpdatedAt: pickString(m, "updated_at", "updatedAt"),
	}
	if score, ok := m["score"].(float64); ok {
		item.Score = score
	}
	if meta, ok := m["metadata"].(map[string]any); ok {
		item.Metadata = make(map[string]string, len(meta))
		for k, v := range meta {
			if s, ok := v.(string); ok {
				item.Metadata[k] = s
			}
		}
	}
	return item
}

// pickString returns the first present string value among keys.
func pickString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok {
			return s
		}
	}
	return ""
}
