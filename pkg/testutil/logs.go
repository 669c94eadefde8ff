package testutil

import (
	"encoding/json"
	"sync"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// LogEntry is one structured log line: msg, error and the key/value pairs.
// Numbers decode as float64.
type LogEntry map[string]any

// LogRecorder collects the lines written through a logger returned by
// NewRecordingLogger.
type LogRecorder struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewRecordingLogger returns a logger that records every line, V(1) included.
// Inject it with log.IntoContext.
func NewRecordingLogger() (logr.Logger, *LogRecorder) {
	rec := &LogRecorder{}
	logger := funcr.NewJSON(func(obj string) {
		var entry LogEntry
		if err := json.Unmarshal([]byte(obj), &entry); err != nil {
			return
		}
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.entries = append(rec.entries, entry)
	}, funcr.Options{Verbosity: 1})
	return logger, rec
}

// Entries returns a copy of the recorded lines.
func (r *LogRecorder) Entries() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Find returns the lines whose message is msg.
func (r *LogRecorder) Find(msg string) []LogEntry {
	var found []LogEntry
	for _, e := range r.Entries() {
		if e["msg"] == msg {
			found = append(found, e)
		}
	}
	return found
}
