package translog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Entry is one logged orchestration cycle.
type Entry struct {
	Timestamp   string `json:"timestamp"`
	UserInput   string `json:"user_input"`
	BotResponse string `json:"bot_response"`
}

// CorruptError reports that the backing store is not a valid JSON array. The
// store can be recovered with Reset; history up to the corruption is lost.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("conversation log %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Logger appends conversation entries to a pretty-printed JSON array on
// disk. Access is confined to a single writer: the whole
// read-append-rewrite cycle runs under an internal mutex, and the rewrite
// goes through a temp file and rename so a crash cannot leave a torn array.
type Logger struct {
	path string
	mu   sync.Mutex
}

// New creates a logger over the given store path. The store is created lazily
// on first append.
func New(path string) *Logger {
	return &Logger{path: path}
}

// Append adds one entry to the store, initializing it to an empty array if
// absent. A store that fails to parse returns *CorruptError and the entry is
// not written.
func (l *Logger) Append(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load()
	if err != nil {
		return err
	}

	entries = append(entries, entry)
	return l.write(entries)
}

// Entries returns the stored entries in append order.
func (l *Logger) Entries() ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

// Reset reinitializes the store to an empty array, discarding its contents.
func (l *Logger) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.write([]Entry{})
}

func (l *Logger) load() ([]Entry, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation log: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &CorruptError{Path: l.path, Err: err}
	}
	return entries, nil
}

func (l *Logger) write(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode conversation log: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(l.path), ".translog-*")
	if err != nil {
		return fmt.Errorf("failed to create temp log file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write conversation log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp log file: %w", err)
	}

	if err := os.Rename(tmp.Name(), l.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace conversation log: %w", err)
	}
	return nil
}
