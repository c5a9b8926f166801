package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"HealthBuddy/internal/session"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists sessions and their transcripts in SQLite. It is the durable
// complement to the flat conversation log: transcripts survive restarts and
// can be resumed by session ID.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the session database.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	createSessionsTable := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		start_time DATETIME,
		user_turns INTEGER
	);`

	createMessagesTable := `
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT,
		role TEXT,
		content TEXT,
		tool_call_id TEXT,
		tool_calls TEXT,
		timestamp DATETIME,
		FOREIGN KEY(session_id) REFERENCES sessions(id)
	);`

	if _, err := db.Exec(createSessionsTable); err != nil {
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}

	if _, err := db.Exec(createMessagesTable); err != nil {
		return nil, fmt.Errorf("failed to create messages table: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Save writes the session and its full transcript, replacing any earlier
// snapshot of the same session.
func (s *Store) Save(sess *session.Session) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT OR REPLACE INTO sessions (id, start_time, user_turns) VALUES (?, ?, ?)",
		sess.ID, sess.StartTime, sess.UserTurns,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM messages WHERE session_id = ?", sess.ID); err != nil {
		return fmt.Errorf("failed to clear old messages: %w", err)
	}

	for _, msg := range sess.Transcript {
		// Tool-call requests must round-trip: a resumed transcript with a
		// role=tool message whose ID matches no assistant tool_calls is
		// rejected by the chat completions API.
		var callsJSON string
		if len(msg.ToolCalls) > 0 {
			data, err := json.Marshal(msg.ToolCalls)
			if err != nil {
				return fmt.Errorf("failed to encode tool calls: %w", err)
			}
			callsJSON = string(data)
		}

		_, err = tx.Exec(
			"INSERT INTO messages (session_id, role, content, tool_call_id, tool_calls, timestamp) VALUES (?, ?, ?, ?, ?, ?)",
			sess.ID, msg.Role, msg.Content, msg.ToolCallID, callsJSON, msg.Timestamp,
		)
		if err != nil {
			s.logger.Warn("failed to save message", "error", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("session saved", "session_id", sess.ID, "message_count", len(sess.Transcript))
	return nil
}

// Load restores a session transcript by ID, including tool-call requests and
// their results; the display log is rebuilt from user/assistant messages.
func (s *Store) Load(sessionID string) (*session.Session, error) {
	var startTime time.Time
	var userTurns int

	err := s.db.QueryRow("SELECT start_time, user_turns FROM sessions WHERE id = ?", sessionID).
		Scan(&startTime, &userTurns)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	rows, err := s.db.Query(
		"SELECT role, content, tool_call_id, tool_calls, timestamp FROM messages WHERE session_id = ? ORDER BY id",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	sess := &session.Session{
		ID:        sessionID,
		StartTime: startTime,
		UserTurns: userTurns,
	}

	for rows.Next() {
		var msg session.Message
		var callsJSON string
		if err := rows.Scan(&msg.Role, &msg.Content, &msg.ToolCallID, &callsJSON, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if callsJSON != "" {
			if err := json.Unmarshal([]byte(callsJSON), &msg.ToolCalls); err != nil {
				return nil, fmt.Errorf("failed to decode tool calls: %w", err)
			}
		}
		sess.Transcript = append(sess.Transcript, msg)
		if msg.Role == session.RoleUser || msg.Role == session.RoleAssistant {
			sess.Display = append(sess.Display, msg)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	return sess, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
