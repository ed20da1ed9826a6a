package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveUserID_AgentSessionKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"telegram peer", "agent:main:telegram:12345", "telegram:12345"},
		{"peer with colons", "agent:main:discord:guild:42:user:7", "discord:guild:42:user:7"},
		{"whatsapp peer", "agent:work:whatsapp:+15550100", "whatsapp:+15550100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveUserID(SessionContext{SessionKey: tt.key})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveUserID_Fallbacks(t *testing.T) {
	// Channel plus unparseable session key falls back to a channel-scoped hash.
	got := ResolveUserID(SessionContext{SessionKey: "opaque-key", Channel: "slack"})
	assert.Equal(t, "slack:"+ShortHash("opaque-key"), got)

	// Session key alone falls back to a session-scoped hash.
	got = ResolveUserID(SessionContext{SessionKey: "opaque-key"})
	assert.Equal(t, "session:"+ShortHash("opaque-key"), got)

	// Nothing at all resolves to the default identity.
	assert.Equal(t, DefaultUserID, ResolveUserID(SessionContext{}))
}

func TestResolveUserID_Deterministic(t *testing.T) {
	sc := SessionContext{SessionKey: "some-opaque-session"}
	first := ResolveUserID(sc)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ResolveUserID(sc))
	}

	other := ResolveUserID(SessionContext{SessionKey: "another-opaque-session"})
	assert.NotEqual(t, first, other)
}

func TestShortHash(t *testing.T) {
	h := ShortHash("agent:main:telegram:12345")
	assert.Len(t, h, 8)
	assert.Regexp(t, "^[0-9a-f]{8}$", h)
	assert.Equal(t, h, ShortHash("agent:main:telegram:12345"))
	assert.NotEqual(t, h, ShortHash("agent:main:telegram:12346"))
}

func TestIsGroupChat(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"telegram group", "agent:main:telegram:-100123456", true},
		{"telegram direct", "agent:main:telegram:12345", false},
		{"explicit group segment", "agent:main:discord:group:42", true},
		{"explicit channel segment", "agent:main:slack:channel:C042", true},
		{"negative id without telegram", "agent:main:matrix:-42", false},
		{"empty key", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsGroupChat(SessionContext{SessionKey: tt.key})
			assert.Equal(t, tt.want, got)
		})
	}
}
