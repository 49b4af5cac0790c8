package model

import "time"

// JournalEntry captures one command invocation against the bridge.
type JournalEntry struct {
	ID         string    `json:"id"`
	Command    string    `json:"command"`
	OK         bool      `json:"ok"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}
