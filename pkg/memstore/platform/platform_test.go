package platform

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memkeep/memkeep/pkg/memstore"
)

// fakePlatform mimics the hosted memory API, deliberately answering with
// camelCase fields and wrapped lists to exercise the normalization boundary.
type fakePlatform struct {
	mu     sync.Mutex
	nextID int
	items  map[string]map[string]string // id -> {text, userId}
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{items: map[string]map[string]string{}}
}

func (f *fakePlatform) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Token test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		f.mu.Lock()
		defer f.mu.Unlock()

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/memories/":
			var req struct {
				Messages []memstore.Message `json:"messages"`
				UserID   string             `json:"user_id"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

			var results []map[string]string
			for _, msg := range req.Messages {
				text := strings.TrimSpace(msg.Content)
				if text == "" || (msg.Role != "user" && msg.Role != "assistant") {
					continue
				}
				if id := f.findByText(req.UserID, text); id != "" {
					results = append(results, map[string]string{"id": id, "text": text, "event": "NOOP"})
					continue
				}
				f.nextID++
				id := "mem-" + strconv.Itoa(f.nextID)
				f.items[id] = map[string]string{"text": text, "userId": req.UserID}
				results = append(results, map[string]string{"id": id, "text": text, "event": "ADD"})
			}
			writeJSON(w, map[string]any{"results": results})

		case r.Method == http.MethodPost && r.URL.Path == "/v1/memories/search/":
			var req struct {
				Query  string `json:"query"`
				UserID string `json:"user_id"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			var out []map[string]string
			for id, item := range f.items {
				if item["userId"] == req.UserID && strings.Contains(strings.ToLower(item["text"]), strings.ToLower(req.Query)) {
					out = append(out, map[string]string{"id": id, "text": item["text"], "userId": item["userId"]})
				}
			}
			writeJSON(w, map[string]any{"results": out})

		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/memories/") && r.URL.Path != "/v1/memories/":
			id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/memories/"), "/")
			item, ok := f.items[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			writeJSON(w, map[string]string{"id": id, "text": item["text"], "userId": item["userId"]})

		case r.Method == http.MethodGet && r.URL.Path == "/v1/memories/":
			user := r.URL.Query().Get("user_id")
			var out []map[string]string
			for id, item := range f.items {
				if user == "" || item["userId"] == user {
					out = append(out, map[string]string{"id": id, "text": item["text"], "userId": item["userId"]})
				}
			}
			writeJSON(w, map[string]any{"results": out})

		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/v1/memories/"):
			id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/memories/"), "/")
			if _, ok := f.items[id]; !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			delete(f.items, id)
			writeJSON(w, map[string]string{"status": "deleted"})

		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
}

func (f *fakePlatform) findByText(userID, text string) string {
	for id, item := range f.items {
		if item["userId"] == userID && item["text"] == text {
			return id
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	srv := httptest.NewServer(newFakePlatform().handler(t))
	t.Cleanup(srv.Close)
	return New(&Config{BaseURL: srv.URL, APIKey: "test-key"})
}

// TestPlatformStoreSuite runs the memstore conformance suite against the
// HTTP client backed by a fake platform server.
func TestPlatformStoreSuite(t *testing.T) {
	suite := &memstore.StoreTestSuite{
		NewStore: func(t *testing.T) memstore.Store {
			return newTestStore(t)
		},
	}
	suite.RunAllTests(t)
}

func TestUnauthorizedBecomesHTTPError(t *testing.T) {
	srv := httptest.NewServer(newFakePlatform().handler(t))
	t.Cleanup(srv.Close)

	s := New(&Config{BaseURL: srv.URL, APIKey: "wrong-key"})
	_, err := s.GetAll(context.Background(), memstore.ListOptions{})
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
}

func TestGetMapsNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, memstore.ErrNotFound)
}

func TestUnreachableBackend(t *testing.T) {
	s := New(&Config{BaseURL: "http://127.0.0.1:1", APIKey: "k"})
	_, err := s.GetAll(context.Background(), memstore.ListOptions{})
	assert.ErrorIs(t, err, memstore.ErrUnavailable)
}
