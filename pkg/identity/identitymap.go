package identity

import (
	"encoding/json"
	"os"
)

// Entry associates one canonical user ID with the raw channel identifiers
// known to belong to the same person.
type Entry struct {
	Canonical string   `json:"canonical"`
	Aliases   []string `json:"aliases"`
	Label     string   `json:"label,omitempty"`
}

// Map is the on-disk alias table. Within a map, any alias belongs to at
// most one canonical entry at a time; AddAlias enforces this.
type Map struct {
	Identities []*Entry `json:"identities"`
}

// LoadMap reads an identity map from path. Any failure (missing file,
// unreadable file, malformed JSON, wrong shape) resolves to nil so that
// callers degrade to identity passthrough rather than aborting.
func LoadMap(path string) *Map {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	if m.Identities == nil {
		return nil
	}
	return &m
}

// SaveMap writes the identity map to path as pretty-printed JSON with a
// trailing newline, replacing any previous file.
func SaveMap(path string, m *Map) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// BuildAliasLookup flattens a map into alias -> canonical form. Every
// canonical ID also maps to itself so it is a valid lookup key. A nil map
// yields a nil lookup.
func BuildAliasLookup(m *Map) map[string]string {
	if m == nil {
		return nil
	}
	lookup := make(map[string]string)
	for _, e := range m.Identities {
		lookup[e.Canonical] = e.Canonical
		for _, alias := range e.Aliases {
			lookup[alias] = e.Canonical
		}
	}
	return lookup
}

// ResolveCanonical maps a raw channel identifier to its canonical user ID.
// Unknown IDs (or a nil lookup) pass through unchanged.
func ResolveCanonical(rawID string, lookup map[string]string) string {
	if lookup == nil {
		return rawID
	}
	if canonical, ok := lookup[rawID]; ok {
		return canonical
	}
	return rawID
}

// AddAlias attaches alias to the entry for canonical, creating the entry if
// needed. If the alias currently belongs to a different entry it is detached
// from that entry first. The map is mutated in place. Returns whether a new
// association was made and the entry the alias now belongs to.
func AddAlias(m *Map, canonical, alias, label string) (bool, *Entry) {
	var target *Entry
	for _, e := range m.Identities {
		if e.Canonical == canonical {
			target = e
			continue
		}
		for i, a := range e.Aliases {
			if a == alias {
				e.Aliases = append(e.Aliases[:i], e.Aliases[i+1:]...)
				break
			}
		}
	}

	if target == nil {
		target = &Entry{Canonical: canonical, Aliases: []string{}}
		if label != "" {
			target.Label = label
		}
		m.Identities = append(m.Identities, target)
	} else if label != "" && target.Label == "" {
		target.Label = label
	}

	for _, a := range target.Aliases {
		if a == alias {
			return false, target
		}
	}
	target.Aliases = append(target.Aliases, alias)
	return true, target
}
