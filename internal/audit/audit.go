package audit

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// TimeFormat is RFC3339 with microseconds, always UTC.
const TimeFormat = "2006-01-02T15:04:05.000000Z"

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string `json:"ts"`
	RunID     string `json:"run"` // Shared by every entry of one invocation.
	Operation string `json:"op"`

	Files   []string `json:"files,omitempty"`
	KeyPath string   `json:"key_path,omitempty"`
	Program string   `json:"program,omitempty"` // For run.
	Exit    *int     `json:"exit,omitempty"`    // For run.
	Error   string   `json:"error,omitempty"`   // Set when the operation failed.
}

// Trail appends entries to one audit log. A nil *Trail discards everything.
type Trail struct {
	Fs    afero.Fs
	Path  string
	RunID string
}

// NewTrail returns a Trail on the OS filesystem with a fresh run id.
func NewTrail(path string) *Trail {
	return &Trail{Fs: afero.NewOsFs(), Path: path, RunID: uuid.NewString()}
}

// Record appends an entry. Failures are swallowed: an operation must never
// fail because its audit entry could not be written.
func (t *Trail) Record(entry Entry) {
	if t == nil || t.Path == "" {
		return
	}

	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(TimeFormat)
	}
	if entry.RunID == "" {
		entry.RunID = t.RunID
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	if dir := filepath.Dir(t.Path); dir != "." {
		if err := t.Fs.MkdirAll(dir, 0700); err != nil {
			return
		}
	}

	// #nosec G302 -- the log holds paths, not secrets.
	f, err := t.Fs.OpenFile(t.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	_, _ = f.Write(append(data, '\n'))
}

// Entries reads every entry written so far. A missing log has no entries.
func (t *Trail) Entries() ([]Entry, error) {
	if t == nil || t.Path == "" {
		return nil, nil
	}

	data, err := afero.ReadFile(t.Fs, t.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
