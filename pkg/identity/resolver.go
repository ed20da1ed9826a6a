// Package identity resolves stable per-user identifiers from heterogeneous
// chat-channel session contexts and maintains the alias table that unifies
// raw channel identifiers under canonical user IDs.
package identity

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// SessionContext carries the channel-level facts available when a turn is
// captured. Fields may be empty depending on what the host provides.
type SessionContext struct {
	// SessionKey is the host's composite session identifier, typically
	// "agent:<agentId>:<provider>:<peerId>".
	SessionKey string

	// Channel is the channel or provider name, e.g. "telegram".
	Channel string
}

// DefaultUserID is returned when no identifying information is available.
const DefaultUserID = "default"

// ResolveUserID derives a stable user identifier from a session context.
//
// Resolution order: a parseable "agent:<id>:<provider>:<peer>" session key
// yields "<provider>:<peer>" (the peer may itself contain colons); otherwise
// a channel plus session key yields "<channel>:<hash>"; a bare session key
// yields "session:<hash>"; with nothing to go on, DefaultUserID.
func ResolveUserID(sc SessionContext) string {
	if sc.SessionKey != "" {
		parts := strings.SplitN(sc.SessionKey, ":", 4)
		if len(parts) == 4 && parts[0] == "agent" && parts[2] != "" && parts[3] != "" {
			return parts[2] + ":" + parts[3]
		}
	}
	if sc.Channel != "" && sc.SessionKey != "" {
		return sc.Channel + ":" + ShortHash(sc.SessionKey)
	}
	if sc.SessionKey != "" {
		return "session:" + ShortHash(sc.SessionKey)
	}
	return DefaultUserID
}

// IsGroupChat reports whether the session context looks like a group or
// channel conversation rather than a direct chat. Telegram group chats are
// recognized by their negative chat ID in the last session key segment.
func IsGroupChat(sc SessionContext) bool {
	key := sc.SessionKey
	if key == "" {
		return false
	}
	if strings.Contains(key, ":group:") || strings.Contains(key, ":channel:") {
		return true
	}
	if strings.Contains(key, "telegram:") {
		segments := strings.Split(key, ":")
		last := segments[len(segments)-1]
		if strings.HasPrefix(last, "-") {
			return true
		}
	}
	return false
}

// ShortHash returns a deterministic 8-character lowercase hex digest of s.
// FNV-32a is stable across runs and platforms; collisions are acceptable
// for the fallback-ID use case.
func ShortHash(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return fmt.Sprintf("%08x", h.Sum32())
}
