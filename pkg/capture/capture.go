// Package capture records finished conversation turns into cold storage.
// It is the glue between identity resolution, message sanitization, and
// the append-only log store, meant to run inside the host agent at the
// end of each session turn.
package capture

import (
	"time"

	"github.com/memkeep/memkeep/pkg/identity"
	"github.com/memkeep/memkeep/pkg/logger"
	"github.com/memkeep/memkeep/pkg/logstore"
	"github.com/memkeep/memkeep/pkg/metrics"
	"github.com/memkeep/memkeep/pkg/sanitize"
)

// Config holds capture settings.
type Config struct {
	// IdentityMapPath points at the alias table. Empty disables alias
	// resolution.
	IdentityMapPath string

	// MaxToolResultChars truncates tool output. Zero selects the default.
	MaxToolResultChars int
}

// Recorder writes sanitized conversation turns to the log store.
type Recorder struct {
	logs    *logstore.Store
	aliases map[string]string
	metrics *metrics.Manager
	log     logger.Logger
	maxTool int
}

// NewRecorder builds a Recorder. The identity map is loaded once at
// construction; a missing or malformed map silently disables aliasing.
func NewRecorder(logs *logstore.Store, cfg Config, m *metrics.Manager, log logger.Logger) *Recorder {
	if log == nil {
		log = logger.Global()
	}
	maxTool := cfg.MaxToolResultChars
	if maxTool <= 0 {
		maxTool = sanitize.DefaultMaxToolResultChars
	}

	var aliases map[string]string
	if cfg.IdentityMapPath != "" {
		if im := identity.LoadMap(cfg.IdentityMapPath); im != nil {
			aliases = identity.BuildAliasLookup(im)
		}
	}

	return &Recorder{
		logs:    logs,
		aliases: aliases,
		metrics: m,
		log:     log,
		maxTool: maxTool,
	}
}

// Record sanitizes a finished turn and appends it to the daily log.
// Turns with no salvageable content are dropped without error.
func (r *Recorder) Record(sc identity.SessionContext, rawMessages []any) error {
	userID := identity.ResolveUserID(sc)
	userID = identity.ResolveCanonical(userID, r.aliases)

	messages := sanitize.Clean(rawMessages, r.maxTool)
	if len(messages) == 0 {
		r.log.Debug("Dropping empty turn", "session", sc.SessionKey)
		return nil
	}

	entry := &logstore.LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		UserID:    userID,
		Channel:   sc.Channel,
		SessionID: sc.SessionKey,
		Messages:  messages,
	}
	if err := r.logs.Append(entry); err != nil {
		return err
	}

	if r.metrics != nil {
		r.metrics.RecordEntryAppended(sc.Channel)
	}
	r.log.Debug("Captured turn",
		"user", userID,
		"channel", sc.Channel,
		"messages", len(entry.Messages),
		"group", identity.IsGroupChat(sc),
	)
	return nil
}
