// Package sanitize normalizes raw chat-host messages before they are
// appended to cold storage. It strips injected memory context, binary
// payloads, and oversized tool output so that later analysis sees only
// genuine conversation text.
package sanitize

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/memkeep/memkeep/pkg/logstore"
)

// DefaultMaxToolResultChars bounds tool-role message text.
const DefaultMaxToolResultChars = 500

// memoryMarker tags previously injected memory context. Messages carrying
// it are dropped wholesale to avoid re-ingestion feedback loops.
const memoryMarker = "<relevant-memories>"

// base64Data matches inline data-URI payloads large enough to be binary
// content rather than hand-typed text.
var base64Data = regexp.MustCompile(`data:[a-zA-Z0-9.+/-]+;base64,[A-Za-z0-9+/=]{100,}`)

// Clean filters and normalizes a raw message list. Messages without a
// recognizable role, system messages, and messages with no extractable text
// are dropped. maxToolResultChars <= 0 selects the default.
func Clean(raw []any, maxToolResultChars int) []logstore.Message {
	if maxToolResultChars <= 0 {
		maxToolResultChars = DefaultMaxToolResultChars
	}

	var out []logstore.Message
	for _, item := range raw {
		msg, ok := item.(map[string]any)
		if !ok {
			continue
		}
		role, ok := msg["role"].(string)
		if !ok || role == "" {
			continue
		}
		if role == "system" {
			continue
		}

		text := extractText(msg["content"])
		if text == "" {
			continue
		}
		if strings.Contains(text, memoryMarker) {
			continue
		}

		text = base64Data.ReplaceAllString(text, "[base64-data]")

		normalized := normalizeRole(role)
		if normalized == "tool" && len(text) > maxToolResultChars {
			text = truncate(text, maxToolResultChars) + " [truncated]"
		}

		clean := logstore.Message{Role: normalized, Content: text}
		if normalized == "tool" {
			if name, ok := msg["name"].(string); ok {
				clean.ToolName = name
			}
		}
		out = append(out, clean)
	}
	return out
}

// truncate cuts text to at most max bytes without splitting a multi-byte
// rune, so truncated output stays valid UTF-8.
func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	return text[:max]
}

// extractText flattens a message body into plain text. String bodies pass
// through; block arrays contribute text blocks joined by newline and a
// placeholder for image blocks.
func extractText(content any) string {
	switch body := content.(type) {
	case string:
		return body
	case []any:
		var parts []string
		for _, b := range body {
			block, ok := b.(map[string]any)
			if !ok {
				continue
			}
			switch block["type"] {
			case "text":
				if text, ok := block["text"].(string); ok {
					parts = append(parts, text)
				}
			case "image", "image_url":
				parts = append(parts, "[image]")
			}
		}
		return strings.Join(parts, "\n")
	default:
		return ""
	}
}

// normalizeRole collapses unknown roles to assistant.
func normalizeRole(role string) string {
	switch role {
	case "user", "assistant", "tool":
		return role
	default:
		return "assistant"
	}
}

// BuildLogEntry cleans raw messages and wraps the survivors into a
// timestamped LogEntry. Returns nil if nothing survives cleaning.
func BuildLogEntry(raw []any, userID, channel, sessionID string) *logstore.LogEntry {
	messages := Clean(raw, DefaultMaxToolResultChars)
	if len(messages) == 0 {
		return nil
	}
	return &logstore.LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		UserID:    userID,
		Channel:   channel,
		SessionID: sessionID,
		Messages:  messages,
	}
}
