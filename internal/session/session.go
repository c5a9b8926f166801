package session

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is a capability invocation requested by the model. Arguments is a
// JSON-encoded object, exactly as the model produced it.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message represents a single chat message. Messages are immutable once
// appended to a session.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Session represents a chat session. Transcript is the full message history
// sent to the model, including the system preamble at index 0. Display holds
// only user and assistant messages, for rendering. Both are append-only.
type Session struct {
	ID         string    `json:"id"`
	StartTime  time.Time `json:"start_time"`
	Transcript []Message `json:"transcript"`
	Display    []Message `json:"display"`
	UserTurns  int       `json:"user_turns"`
}

// New creates a session seeded with the system preamble and an assistant
// greeting.
func New(preamble, greeting string) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		StartTime: now,
		Transcript: []Message{
			{Role: RoleSystem, Content: preamble, Timestamp: now},
		},
		Display: []Message{
			{Role: RoleAssistant, Content: greeting, Timestamp: now},
		},
	}
}

// AppendUser records a user submission, incrementing the turn counter.
func (s *Session) AppendUser(text string) {
	msg := Message{Role: RoleUser, Content: text, Timestamp: time.Now()}
	s.Transcript = append(s.Transcript, msg)
	s.Display = append(s.Display, msg)
	s.UserTurns++
}

// AppendAssistant records an assistant reply.
func (s *Session) AppendAssistant(text string) {
	msg := Message{Role: RoleAssistant, Content: text, Timestamp: time.Now()}
	s.Transcript = append(s.Transcript, msg)
	s.Display = append(s.Display, msg)
}

// Snapshot returns a copy of the session whose transcript and display
// slices are independent of the original, so it can be read while the
// original keeps growing.
func (s *Session) Snapshot() *Session {
	snap := *s
	snap.Transcript = append([]Message(nil), s.Transcript...)
	snap.Display = append([]Message(nil), s.Display...)
	return &snap
}

// AppendToolExchange records an assistant message carrying tool calls
// followed by its tool results, in that order. Tool traffic stays off the
// display log.
func (s *Session) AppendToolExchange(assistant Message, results ...Message) {
	s.Transcript = append(s.Transcript, assistant)
	s.Transcript = append(s.Transcript, results...)
}

// specialistCues are the words that mark an explicit request for a doctor,
// bypassing the recommendation turn threshold.
var specialistCues = []string{"need", "want", "see", "consult", "nutritionist", "doctor"}

// HasSpecialistCue reports whether the text contains an explicit request for
// a specialist.
func HasSpecialistCue(text string) bool {
	lower := strings.ToLower(text)
	for _, cue := range specialistCues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}
