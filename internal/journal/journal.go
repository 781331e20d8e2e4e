// Package journal keeps a small local record of completed deliveries so
// status can report what happened without calling any Google API.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// maxEntries bounds the journal file; older deliveries are dropped.
const maxEntries = 100

// Entry records one completed delivery.
type Entry struct {
	Time         time.Time `json:"time"`
	Recipient    string    `json:"recipient,omitempty"`
	MessageID    string    `json:"message_id,omitempty"`
	ArticleCount int       `json:"article_count"`
	UpdatedRange string    `json:"updated_range,omitempty"`
}

type Journal struct {
	Entries []Entry `json:"entries"`

	dataDir  string
	filePath string
}

func New(dataDir string) *Journal {
	return &Journal{
		Entries:  []Entry{},
		dataDir:  dataDir,
		filePath: filepath.Join(dataDir, "journal.json"),
	}
}

func (j *Journal) Load() error {
	if err := os.MkdirAll(j.dataDir, 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := os.ReadFile(j.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read journal: %w", err)
	}

	if err := json.Unmarshal(data, j); err != nil {
		return fmt.Errorf("failed to unmarshal journal: %w", err)
	}
	return nil
}

func (j *Journal) Save() error {
	if err := os.MkdirAll(j.dataDir, 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal journal: %w", err)
	}

	if err := os.WriteFile(j.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write journal: %w", err)
	}
	return nil
}

// Record appends an entry and trims the journal to its size bound.
func (j *Journal) Record(e Entry) {
	j.Entries = append(j.Entries, e)
	if len(j.Entries) > maxEntries {
		j.Entries = j.Entries[len(j.Entries)-maxEntries:]
	}
}

// Last returns the most recent entry, or nil when the journal is empty.
func (j *Journal) Last() *Entry {
	if len(j.Entries) == 0 {
		return nil
	}
	return &j.Entries[len(j.Entries)-1]
}

// Tail returns up to n most recent entries, oldest first.
func (j *Journal) Tail(n int) []Entry {
	if n <= 0 || len(j.Entries) == 0 {
		return nil
	}
	if n > len(j.Entries) {
		n = len(j.Entries)
	}
	return j.Entries[len(j.Entries)-n:]
}

func (j *Journal) Len() int {
	return len(j.Entries)
}

// FilePath returns the journal file location.
func (j *Journal) FilePath() string {
	return j.filePath
}
