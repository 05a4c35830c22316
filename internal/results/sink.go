package results

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Record is one persisted probe result: the triple that was attempted and
// the raw crash diagnostic.
type Record struct {
	Triple     string
	Diagnostic []byte
}

// Sink appends records to the results log. Record is safe for concurrent
// use; each record's two lines are written atomically with respect to other
// records.
type Sink struct {
	mu sync.Mutex
	f  *os.File
}

// OpenSink opens (or creates) the log at path for appending. The parent
// directory is created if missing.
func OpenSink(path string) (*Sink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create results dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open results log: %w", err)
	}
	return &Sink{f: f}, nil
}

// Record appends one two-line record: the triple, then the escaped
// diagnostic. Append order is completion order, not submission order.
func (s *Sink) Record(triple string, diagnostic []byte) error {
	line := triple + "\n" + Escape(diagnostic) + "\n"
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.f.WriteString(line); err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

// Close closes the underlying log file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
