package cache

import (
	"crypto/sha256"
	"fmt"
	"time"

	"HealthBuddy/internal/session"
)

// TTL bounds how long a cached reply stays valid.
const TTL = 10 * time.Minute

// CachedResponse represents a cached model reply.
type CachedResponse struct {
	Response  string
	Timestamp time.Time
}

// Expired reports whether the entry is past its TTL.
func (c CachedResponse) Expired() bool {
	return time.Since(c.Timestamp) > TTL
}

// GenerateKey derives a cache key from the transcript. Role, content and
// tool-result linkage all feed the hash, so transcripts that differ only in
// tool traffic do not collide.
func GenerateKey(messages []session.Message) string {
	h := sha256.New()
	for _, msg := range messages {
		h.Write([]byte(msg.Role))
		h.Write([]byte(msg.Content))
		h.Write([]byte(msg.ToolCallID))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
