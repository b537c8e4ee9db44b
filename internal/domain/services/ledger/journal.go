package ledger

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"honeypot-lab/internal/domain/models"
)

// Journal is the append-only durability boundary for conversation events
type Journal interface {
	Append(ctx context.Context, rec models.EventRecord) error
	Close() error
}

// FileJournal writes one JSON object per line to a file opened in append mode.
// Lines from all sessions land in the order Append is called.
type FileJournal struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// OpenFileJournal opens (creating if needed) the journal file and its directory
func OpenFileJournal(path string) (*FileJournal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	return &FileJournal{path: path, file: f}, nil
}

// Path returns the journal file location
func (j *FileJournal) Path() string {
	return j.path
}

// Append writes rec as a single line before returning
func (j *FileJournal) Append(_ context.Context, rec models.EventRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	line = append(line, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return fmt.Errorf("journal %s is closed", j.path)
	}
	if _, err := j.file.Write(line); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// Close flushes and closes the journal file
func (j *FileJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return nil
	}
	err := j.file.Sync()
	if cerr := j.file.Close(); err == nil {
		err = cerr
	}
	j.file = nil
	return err
}

// ReadJournal decodes every record of a JSONL journal file in order
func ReadJournal(path string) ([]models.EventRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []models.EventRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for n := 1; scanner.Scan(); n++ {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec models.EventRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return records, fmt.Errorf("line %d: %w", n, err)
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}

// NopJournal discards every record
type NopJournal struct{}

func (NopJournal) Append(context.Context, models.EventRecord) error { return nil }
func (NopJournal) Close() error                                     { return nil }
