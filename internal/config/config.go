package config

import "time"

const (
	// DefaultModel is the chat completion model used for every request.
	DefaultModel = "gpt-4o"

	// Temperature and MaxResponseTokens bound every model call. Fixed per
	// process, not per-call inputs.
	Temperature       = 0.7
	MaxResponseTokens = 200

	// RequestTimeout caps a single model round-trip.
	RequestTimeout = 30 * time.Second

	// RecommendationTurnThreshold is the number of user turns after which
	// the preamble allows the model to proactively recommend a specialist.
	RecommendationTurnThreshold = 10

	// DefaultLogPath is the conversation log store.
	DefaultLogPath = "conversation_log.json"

	// TimestampLayout is the format used in conversation log entries.
	TimestampLayout = "2006-01-02 15:04:05"
)

// Config holds application configuration
type Config struct {
	Model         string
	SessionID     string
	Debug         bool
	DirectoryPath string // Optional YAML seed file for the specialist directory
	LogPath       string // Conversation log store
}
