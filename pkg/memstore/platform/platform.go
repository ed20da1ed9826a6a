// Package platform provides the hosted memory backend: a thin HTTP client
// for the platform memory API. All responses funnel through the memstore
// normalization boundary, so backend casing and wrapping quirks never leak
// into the pipeline.
package platform

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/memkeep/memkeep/pkg/memstore"
)

// Config holds configuration for the platform client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// HTTPError reports a non-2xx platform response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("platform: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Store implements memstore.Store against the platform memory API.
type Store struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New creates a platform-backed store.
func New(cfg *Config) *Store {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Store{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Add submits messages to the platform's fact-extraction ingestion.
func (s *Store) Add(ctx context.Context, messages []memstore.Message, opts memstore.AddOptions) (*memstore.AddResult, error) {
	body := map[string]any{
		"messages": messages,
		"user_id":  opts.UserID,
	}
	if len(opts.Metadata) > 0 {
		body["metadata"] = opts.Metadata
	}

	data, err := s.do(ctx, http.MethodPost, "/v1/memories/", body)
	if err != nil {
		return nil, err
	}
	return memstore.NormalizeAddResult(data)
}

// Search queries the platform for relevant memories.
func (s *Store) Search(ctx context.Context, query string, opts memstore.SearchOptions) ([]*memstore.MemoryItem, error) {
	body := map[string]any{"query": query}
	if opts.UserID != "" {
		body["user_id"] = opts.UserID
	}
	if opts.Limit > 0 {
		body["limit"] = opts.Limit
	}

	data, err := s.do(ctx, http.MethodPost, "/v1/memories/search/", body)
	if err != nil {
		return nil, err
	}
	return memstore.NormalizeItems(data)
}

// Get fetches one memory by ID.
func (s *Store) Get(ctx context.Context, id string) (*memstore.MemoryItem, error) {
	data, err := s.do(ctx, http.MethodGet, "/v1/memories/"+url.PathEscape(id)+"/", nil)
	if err != nil {
		return nil, err
	}
	return memstore.NormalizeItem(data)
}

// GetAll lists memories, optionally scoped to one user.
func (s *Store) GetAll(ctx context.Context, opts memstore.ListOptions) ([]*memstore.MemoryItem, error) {
	params := url.Values{}
	if opts.UserID != "" {
		params.Set("user_id", opts.UserID)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	path := "/v1/memories/"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	data, err := s.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return memstore.NormalizeItems(data)
}

// Delete removes one memory by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.do(ctx, http.MethodDelete, "/v1/memories/"+url.PathEscape(id)+"/", nil)
	return err
}

// do performs one API call and returns the raw response body.
func (s *Store) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("platform: marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("platform: create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+s.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", memstore.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("platform: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", memstore.ErrNotFound, path)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}
