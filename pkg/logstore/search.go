package logstore

import (
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SearchResult pairs a matching entry with a context window around the
// first match inside it.
type SearchResult struct {
	Entry        *LogEntry
	Date         string
	MatchContext string
}

// SearchOptions bound a log search. Date bounds are inclusive and compared
// against the filename-derived date string.
type SearchOptions struct {
	DateFrom string
	DateTo   string
	Limit    int
}

// DefaultSearchLimit is used when SearchOptions.Limit is not positive.
const DefaultSearchLimit = 5

// contextWindow is the number of characters kept on each side of a match.
const contextWindow = 100

// Search scans daily logs newest-first for a case-insensitive substring
// match in any message text. Each matching entry contributes at most one
// result; scanning stops once the limit is reached. A missing log directory
// yields no results.
func (s *Store) Search(query string, opts SearchOptions) ([]SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	files, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	type dayFile struct {
		date string
		name string
	}
	var days []dayFile
	for _, f := range files {
		m := dailyFilePattern.FindStringSubmatch(f.Name())
		if m == nil {
			continue
		}
		date := m[1]
		if opts.DateFrom != "" && date < opts.DateFrom {
			continue
		}
		if opts.DateTo != "" && date > opts.DateTo {
			continue
		}
		days = append(days, dayFile{date: date, name: f.Name()})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].date > days[j].date })

	needle := strings.ToLower(query)
	var results []SearchResult
	for _, day := range days {
		entries, err := ReadDaily(s.DayPath(day.date))
		if err != nil {
			continue
		}
		// Within one day, prefer the most recently appended entries.
		for i := len(entries) - 1; i >= 0; i-- {
			entry := entries[i]
			for _, msg := range entry.Messages {
				start, end := indexFold(msg.Content, needle)
				if start < 0 {
					continue
				}
				results = append(results, SearchResult{
					Entry:        entry,
					Date:         day.date,
					MatchContext: matchContext(msg.Content, start, end-start),
				})
				break
			}
			if len(results) >= limit {
				return results, nil
			}
		}
	}
	return results, nil
}

var collapseWhitespace = regexp.MustCompile(`\s+`)

// indexFold locates needle (already lowercased) inside text. Lowercasing
// can change the byte length of some runes, so the lowered match offset is
// mapped back onto text's own byte offsets before slicing. Returns
// (-1, -1) when there is no match.
func indexFold(text, needle string) (int, int) {
	lower := strings.ToLower(text)
	idx := strings.Index(lower, needle)
	if idx < 0 {
		return -1, -1
	}
	if len(lower) == len(text) {
		return idx, idx + len(needle)
	}

	start, end := -1, -1
	lowOff := 0
	for origOff, r := range text {
		if lowOff == idx {
			start = origOff
		}
		if lowOff >= idx+len(needle) {
			end = origOff
			break
		}
		lowOff += utf8.RuneLen(unicode.ToLower(r))
	}
	if start < 0 {
		start = len(text)
	}
	if end < 0 {
		end = len(text)
	}
	return start, end
}

// matchContext extracts up to contextWindow characters on each side of the
// match, marking truncation with ellipses.
func matchContext(text string, idx, matchLen int) string {
	start := idx - contextWindow
	if start < 0 {
		start = 0
	}
	end := idx + matchLen + contextWindow
	if end > len(text) {
		end = len(text)
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}

	window := collapseWhitespace.ReplaceAllString(text[start:end], " ")
	if start > 0 {
		window = "..." + window
	}
	if end < len(text) {
		window += "..."
	}
	return window
}
