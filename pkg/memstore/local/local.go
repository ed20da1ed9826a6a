// Package local provides the self-hosted memory backend: a Badger-backed
// fact store with naive text-scan retrieval. It trades semantic search for
// zero external dependencies, which is enough for single-user deployments.
package local

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/memkeep/memkeep/pkg/memstore"
)

// Config holds configuration for the local store.
type Config struct {
	Path       string
	SyncWrites bool
}

// Store implements memstore.Store on top of Badger.
type Store struct {
	db *badger.DB
}

// New opens (or creates) the Badger database at cfg.Path.
func New(cfg *Config) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path)
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger at %s: %v", memstore.ErrUnavailable, cfg.Path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func memoryKey(id string) []byte {
	return []byte("memory:" + id)
}

func userIndexKey(userID, id string) []byte {
	return []byte(fmt.Sprintf("idx:user:%s:%s", userID, id))
}

func userIndexPrefix(userID string) []byte {
	return []byte(fmt.Sprintf("idx:user:%s:", userID))
}

// Add ingests messages as facts. Each non-empty user or assistant message
// becomes one memory; an exact duplicate of an existing memory for the same
// user is reported as NOOP instead of stored again.
func (s *Store) Add(ctx context.Context, messages []memstore.Message, opts memstore.AddOptions) (*memstore.AddResult, error) {
	existing, err := s.GetAll(ctx, memstore.ListOptions{UserID: opts.UserID})
	if err != nil {
		return nil, err
	}
	known := make(map[string]string, len(existing))
	for _, item := range existing {
		known[item.Memory] = item.ID
	}

	result := &memstore.AddResult{Results: []memstore.AddChange{}}
	now := time.Now().UTC().Format(time.RFC3339)

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, msg := range messages {
			if msg.Role != "user" && msg.Role != "assistant" {
				continue
			}
			fact := strings.TrimSpace(msg.Content)
			if fact == "" {
				continue
			}

			if id, ok := known[fact]; ok {
				result.Results = append(result.Results, memstore.AddChange{
					ID: id, Memory: fact, Event: memstore.EventNoop,
				})
				continue
			}

			item := &memstore.MemoryItem{
				ID:        uuid.NewString(),
				Memory:    fact,
				UserID:    opts.UserID,
				Metadata:  opts.Metadata,
				CreatedAt: now,
				UpdatedAt: now,
			}
			data, err := json.Marshal(item)
			if err != nil {
				return fmt.Errorf("memstore: marshal item: %w", err)
			}
			if err := txn.Set(memoryKey(item.ID), data); err != nil {
				return err
			}
			if err := txn.Set(userIndexKey(opts.UserID, item.ID), nil); err != nil {
				return err
			}

			known[fact] = item.ID
			result.Results = append(result.Results, memstore.AddChange{
				ID: item.ID, Memory: fact, Event: memstore.EventAdd,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Search scans stored memories for a case-insensitive substring match.
func (s *Store) Search(ctx context.Context, query string, opts memstore.SearchOptions) ([]*memstore.MemoryItem, error) {
	items, err := s.GetAll(ctx, memstore.ListOptions{UserID: opts.UserID})
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	needle := strings.ToLower(query)
	var matches []*memstore.MemoryItem
	for _, item := range items {
		if !strings.Contains(strings.ToLower(item.Memory), needle) {
			continue
		}
		item.Score = float64(len(query)) / float64(len(item.Memory))
		matches = append(matches, item)
		if len(matches) >= limit {
			break
		}
	}
	return matches, nil
}

// Get returns a memory by ID.
func (s *Store) Get(ctx context.Context, id string) (*memstore.MemoryItem, error) {
	var item *memstore.MemoryItem
	err := s.db.View(func(txn *badger.Txn) error {
		entry, err := txn.Get(memoryKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return fmt.Errorf("%w: %s", memstore.ErrNotFound, id)
			}
			return err
		}
		return entry.Value(func(val []byte) error {
			item = &memstore.MemoryItem{}
			return json.Unmarshal(val, item)
		})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// GetAll lists memories, optionally scoped to one user.
func (s *Store) GetAll(ctx context.Context, opts memstore.ListOptions) ([]*memstore.MemoryItem, error) {
	var items []*memstore.MemoryItem
	err := s.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		var prefix []byte
		if opts.UserID != "" {
			iterOpts.PrefetchValues = false
			prefix = userIndexPrefix(opts.UserID)
		} else {
			prefix = []byte("memory:")
		}
		iterOpts.Prefix = prefix

		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if opts.Limit > 0 && len(items) >= opts.Limit {
				break
			}

			var data []byte
			if opts.UserID != "" {
				id := strings.TrimPrefix(string(it.Item().Key()), string(prefix))
				entry, err := txn.Get(memoryKey(id))
				if err != nil {
					continue
				}
				if data, err = entry.ValueCopy(nil); err != nil {
					continue
				}
			} else {
				var err error
				if data, err = it.Item().ValueCopy(nil); err != nil {
					continue
				}
			}

			item := &memstore.MemoryItem{}
			if err := json.Unmarshal(data, item); err != nil {
				continue
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes a memory and its user index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(memoryKey(id)); err != nil {
			return err
		}
		return txn.Delete(userIndexKey(item.UserID, id))
	})
}
