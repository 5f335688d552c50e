// Package history keeps the bounded poll history and derives statistics and
// exports from it.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/climaneer/climaneer/internal/model"
)

const maxEntries = 1000

// Log is a bounded, in-memory record of mapped readings, one entry per poll.
// Oldest entries are dropped once the cap is reached.
type Log struct {
	mu      sync.Mutex
	entries []model.HistoryEntry // oldest first
}

func NewLog() *Log {
	return &Log{}
}

// Add records a reading and returns the stored entry.
func (l *Log) Add(r model.SensorReading, now time.Time) model.HistoryEntry {
	e := model.HistoryEntry{
		ID:        uuid.NewString(),
		Timestamp: now.UTC().Format(time.RFC3339),
		Sensors:   r,
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	if n := len(l.entries); n > maxEntries {
		l.entries = l.entries[n-maxEntries:]
	}
	return e
}

// Recent returns up to limit entries, newest first. limit <= 0 returns all.
func (l *Log) Recent(limit int) []model.HistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.entries)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]model.HistoryEntry, limit)
	for i := 0; i < limit; i++ {
		out[i] = l.entries[n-1-i]
	}
	return out
}

// Len reports the number of retained entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear drops every entry.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
