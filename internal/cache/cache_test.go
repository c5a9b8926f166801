package cache

import (
	"testing"
	"time"

	"HealthBuddy/internal/session"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKeyIsStable(t *testing.T) {
	msgs := []session.Message{
		{Role: session.RoleSystem, Content: "preamble"},
		{Role: session.RoleUser, Content: "hi"},
	}

	assert.Equal(t, GenerateKey(msgs), GenerateKey(msgs))
}

func TestGenerateKeyDiffersOnContent(t *testing.T) {
	a := []session.Message{{Role: session.RoleUser, Content: "hi"}}
	b := []session.Message{{Role: session.RoleUser, Content: "hello"}}

	assert.NotEqual(t, GenerateKey(a), GenerateKey(b))
}

func TestGenerateKeyDiffersOnToolLinkage(t *testing.T) {
	a := []session.Message{{Role: session.RoleTool, Content: "{}", ToolCallID: "call_1"}}
	b := []session.Message{{Role: session.RoleTool, Content: "{}", ToolCallID: "call_2"}}

	assert.NotEqual(t, GenerateKey(a), GenerateKey(b))
}

func TestExpired(t *testing.T) {
	fresh := CachedResponse{Response: "hi", Timestamp: time.Now()}
	assert.False(t, fresh.Expired())

	stale := CachedResponse{Response: "hi", Timestamp: time.Now().Add(-TTL - time.Minute)}
	assert.True(t, stale.Expired())
}
