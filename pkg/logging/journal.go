// Package logging provides the operational zap logger and the per-session command
// journal.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level represents journal severity
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// Category represents the subsystem generating the entry
type Category string

const (
	CategorySession    Category = "session"
	CategoryCommand    Category = "command"
	CategoryNavigation Category = "navigation"
	CategoryWindow     Category = "window"
)

// Event is one journal line.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Category  Category       `json:"category"`
	EventType string         `json:"type"`
	SessionID string         `json:"session_id,omitempty"`
	Command   string         `json:"command,omitempty"`
	Status    *int           `json:"status,omitempty"`
	Duration  time.Duration  `json:"duration_ns,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// Journal appends JSONL events for one session to <dir>/sessions/<id>.jsonl. Error
// events are also copied to <dir>/errors.jsonl.
type Journal struct {
	sessionID   string
	baseDir     string
	sessionFile *os.File
	errorFile   *os.File
	mu          sync.Mutex
	minLevel    Level
}

// OpenJournal creates the directory layout and opens the session's journal.
func OpenJournal(baseDir, sessionID string) (*Journal, error) {
	sessionsDir := filepath.Join(baseDir, "sessions")
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	sessionFile, err := os.OpenFile(
		filepath.Join(sessionsDir, sessionID+".jsonl"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0644,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open session journal: %w", err)
	}

	errorFile, err := os.OpenFile(
		filepath.Join(baseDir, "errors.jsonl"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0644,
	)
	if err != nil {
		sessionFile.Close()
		return nil, fmt.Errorf("failed to open error journal: %w", err)
	}

	return &Journal{
		sessionID:   sessionID,
		baseDir:     baseDir,
		sessionFile: sessionFile,
		errorFile:   errorFile,
		minLevel:    LevelInfo,
	}, nil
}

// Path returns the session journal file.
func (j *Journal) Path() string {
	return filepath.Join(j.baseDir, "sessions", j.sessionID+".jsonl")
}

// SetMinLevel sets the minimum level written
func (j *Journal) SetMinLevel(level Level) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, ok := levelRank[level]; ok {
		j.minLevel = level
	}
}

// Log writes an event. A nil journal discards it.
func (j *Journal) Log(event Event) error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.SessionID == "" {
		event.SessionID = j.sessionID
	}
	if levelRank[event.Level] < levelRank[j.minLevel] {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	data = append(data, '\n')

	if j.sessionFile != nil {
		if _, err := j.sessionFile.Write(data); err != nil {
			return fmt.Errorf("failed to write to session journal: %w", err)
		}
	}
	if event.Level == LevelError && j.errorFile != nil {
		if _, err := j.errorFile.Write(data); err != nil {
			return fmt.Errorf("failed to write to error journal: %w", err)
		}
	}
	return nil
}

// Command records one dispatched command. Non-zero statuses are logged at error level.
func (j *Journal) Command(command string, status int, message string, elapsed time.Duration) error {
	level := LevelInfo
	if status != 0 {
		level = LevelError
	}
	return j.Log(Event{
		Level:     level,
		Category:  CategoryCommand,
		EventType: "command.completed",
		Command:   command,
		Status:    &status,
		Duration:  elapsed,
		Message:   message,
	})
}

// Lifecycle records a session lifecycle change.
func (j *Journal) Lifecycle(eventType, message string, details map[string]any) error {
	return j.Log(Event{
		Level:     LevelInfo,
		Category:  CategorySession,
		EventType: eventType,
		Message:   message,
		Details:   details,
	})
}

// Close closes the journal files
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	var errs []error
	if j.sessionFile != nil {
		if err := j.sessionFile.Close(); err != nil {
			errs = append(errs, err)
		}
		j.sessionFile = nil
	}
	if j.errorFile != nil {
		if err := j.errorFile.Close(); err != nil {
			errs = append(errs, err)
		}
		j.errorFile = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing journal files: %v", errs)
	}
	return nil
}

// ReadRecentEvents reads the last count events from a journal file.
func ReadRecentEvents(path string, count int) ([]Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer file.Close()

	var events []Event
	decoder := json.NewDecoder(file)
	for {
		var event Event
		if err := decoder.Decode(&event); err != nil {
			break
		}
		events = append(events, event)
	}
	if count > 0 && len(events) > count {
		events = events[len(events)-count:]
	}
	return events, nil
}
