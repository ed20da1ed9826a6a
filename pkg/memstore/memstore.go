// Package memstore defines the long-term memory capability the maintenance
// pipeline promotes facts into: a five-operation key/value fact store with
// two interchangeable backends (a self-hosted local store and a remote
// platform API), selected by configuration.
package memstore

import (
	"context"
	"errors"
)

// Sentinel errors for the memory store.
var (
	ErrNotFound    = errors.New("memstore: memory not found")
	ErrUnavailable = errors.New("memstore: backend unavailable")
	ErrBadRequest  = errors.New("memstore: invalid request")
)

// Event classifies the outcome of an Add for one memory.
type Event string

const (
	EventAdd    Event = "ADD"
	EventUpdate Event = "UPDATE"
	EventDelete Event = "DELETE"
	EventNoop   Event = "NOOP"
)

// Message is one conversation turn submitted to the store's own
// fact-extraction ingestion.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MemoryItem is the canonical shape of one stored memory. All backends
// normalize their wire formats into this shape.
type MemoryItem struct {
	ID        string            `json:"id"`
	Memory    string            `json:"memory"`
	UserID    string            `json:"user_id,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Score     float64           `json:"score,omitempty"`
	CreatedAt string            `json:"created_at,omitempty"`
	UpdatedAt string            `json:"updated_at,omitempty"`
}

// AddChange is one store mutation produced by an Add call.
type AddChange struct {
	ID     string `json:"id"`
	Memory string `json:"memory"`
	Event  Event  `json:"event"`
}

// AddResult is the canonical outcome of an Add call.
type AddResult struct {
	Results []AddChange `json:"results"`
}

// AddOptions scope an Add call.
type AddOptions struct {
	UserID   string
	Metadata map[string]string
}

// SearchOptions scope a Search call.
type SearchOptions struct {
	UserID string
	Limit  int
}

// ListOptions scope a GetAll call.
type ListOptions struct {
	UserID string
	Limit  int
}

// Store is the memory backend capability. Exactly these five operations
// are available to the pipeline; backend selection happens at startup,
// never by runtime type inspection.
type Store interface {
	// Add ingests messages and returns the resulting store changes.
	Add(ctx context.Context, messages []Message, opts AddOptions) (*AddResult, error)

	// Search returns memories relevant to the query.
	Search(ctx context.Context, query string, opts SearchOptions) ([]*MemoryItem, error)

	// Get returns a single memory by ID.
	Get(ctx context.Context, id string) (*MemoryItem, error)

	// GetAll lists stored memories.
	GetAll(ctx context.Context, opts ListOptions) ([]*MemoryItem, error)

	// Delete removes a memory by ID.
	Delete(ctx context.Context, id string) error
}
