// Package logstore is the cold-storage layer: append-only daily JSONL logs
// of sanitized conversation entries, plus the processed-date watermark that
// keeps maintenance runs idempotent.
package logstore

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Message is one sanitized turn inside a LogEntry.
type Message struct {
	Role     string `json:"role"`
	Content  string `json:"content"`
	ToolName string `json:"tool_name,omitempty"`
}

// LogEntry is one captured conversation turn-set. Entries are immutable once
// appended; the date portion of Timestamp selects the daily file.
type LogEntry struct {
	Timestamp string    `json:"timestamp"`
	UserID    string    `json:"user_id"`
	Channel   string    `json:"channel"`
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
}

// Date returns the UTC calendar date of the entry, or "" if the timestamp
// does not parse.
func (e *LogEntry) Date() string {
	ts, err := time.Parse(time.RFC3339, e.Timestamp)
	if err != nil {
		return ""
	}
	return ts.UTC().Format("2006-01-02")
}

// DayFile identifies one unprocessed daily log.
type DayFile struct {
	Date string
	Path string
}

const processedFile = ".processed"

var dailyFilePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\.jsonl$`)

// Store reads and writes daily conversation logs under a single directory.
type Store struct {
	dir string
	now func() time.Time
}

// New creates a Store rooted at dir. The directory is created lazily on the
// first append.
func New(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Dir returns the log directory.
func (s *Store) Dir() string {
	return s.dir
}

// Append persists one entry as a single JSON line in that entry's daily
// file. O_APPEND keeps concurrent appenders from interleaving partial lines.
func (s *Store) Append(entry *LogEntry) error {
	date := entry.Date()
	if date == "" {
		return fmt.Errorf("logstore: entry has invalid timestamp %q", entry.Timestamp)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("logstore: create log dir: %w", err)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("logstore: marshal entry: %w", err)
	}

	path := filepath.Join(s.dir, date+".jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("logstore: open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("logstore: append to %s: %w", path, err)
	}
	return nil
}

// ReadDaily parses a daily log file. A missing file yields an empty slice;
// individual corrupt lines are skipped so one bad record cannot poison the
// whole day.
func ReadDaily(path string) ([]*LogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("logstore: read %s: %w", path, err)
	}

	var entries []*LogEntry
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}

// DayPath returns the path of the daily file for date.
func (s *Store) DayPath(date string) string {
	return filepath.Join(s.dir, date+".jsonl")
}

// ProcessedDates returns the watermark set. A missing or unreadable sentinel
// file yields an empty set.
func (s *Store) ProcessedDates() map[string]bool {
	processed := make(map[string]bool)
	data, err := os.ReadFile(filepath.Join(s.dir, processedFile))
	if err != nil {
		return processed
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			processed[line] = true
		}
	}
	return processed
}

// MarkProcessed appends date to the watermark file. Duplicate lines are
// harmless since membership is set-based.
func (s *Store) MarkProcessed(date string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("logstore: create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(s.dir, processedFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("logstore: open watermark: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(date + "\n"); err != nil {
		return fmt.Errorf("logstore: append watermark: %w", err)
	}
	return nil
}

// ListDays returns the dates of every daily log file, ascending. Used for
// cold-storage statistics in the daily digest.
func (s *Store) ListDays() []string {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	var dates []string
	for _, f := range files {
		if m := dailyFilePattern.FindStringSubmatch(f.Name()); m != nil {
			dates = append(dates, m[1])
		}
	}
	sort.Strings(dates)
	return dates
}

// FindUnprocessed lists daily logs that are closed out (not today, UTC) and
// not yet in the watermark set, sorted ascending by date.
func (s *Store) FindUnprocessed() ([]DayFile, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("logstore: list %s: %w", s.dir, err)
	}

	today := s.now().UTC().Format("2006-01-02")
	processed := s.ProcessedDates()

	var days []DayFile
	for _, f := range files {
		m := dailyFilePattern.FindStringSubmatch(f.Name())
		if m == nil {
			continue
		}
		date := m[1]
		if date == today || processed[date] {
			continue
		}
		days = append(days, DayFile{Date: date, Path: filepath.Join(s.dir, f.Name())})
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}
