package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Record maps one randomly named output file back to its origin.
type Record struct {
	Token    string    `json:"token"`
	Original string    `json:"original"`
	Source   string    `json:"source"`
	Subject  string    `json:"subject,omitempty"`
	SavedAt  time.Time `json:"saved_at"`
}

// Log appends one provenance record per saved attachment, as JSON lines.
// Random target names discard the original filenames; the log is the only
// way to trace them back.
type Log struct {
	path   string
	file   *os.File
	writer *bufio.Writer
}

// Open creates or opens the audit log for appending.
func Open(path string) (*Log, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("audit log path is empty")
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}

	return &Log{
		path:   path,
		file:   file,
		writer: bufio.NewWriterSize(file, 64*1024),
	}, nil
}

// Append writes one record as a single JSON line.
func (l *Log) Append(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode audit record: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}
	if err := l.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}
	return nil
}

// Close flushes buffered records and closes the underlying file.
func (l *Log) Close() error {
	var firstErr error
	if err := l.writer.Flush(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("flush audit log: %w", err)
	}
	if err := l.file.Sync(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("sync audit log: %w", err)
	}
	if err := l.file.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close audit log: %w", err)
	}
	return firstErr
}
