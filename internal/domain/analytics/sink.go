package analytics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Sink receives checkout events. Implementations forward them to an
// analytics backend, a file, memory, or nowhere.
type Sink interface {
	// Record stores a single event.
	Record(event Event) error

	// Close releases any resources.
	Close() error
}

// FileSink appends events to a JSON-lines file.
type FileSink struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// NewFileSink creates a sink writing to path, creating parent directories
// as needed.
func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create analytics directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open analytics file: %w", err)
	}

	return &FileSink{path: path, file: file}, nil
}

// Record appends the event as one JSON line.
func (s *FileSink) Record(event Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data = append(data, '\n')
	if _, err := s.file.Write(data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		err := s.file.Close()
		s.file = nil
		return err
	}
	return nil
}

// Path returns the file the sink writes to.
func (s *FileSink) Path() string {
	return s.path
}

// MemorySink stores events in memory (for tests and the TUI event log).
type MemorySink struct {
	mu     sync.RWMutex
	events []Event
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		events: make([]Event, 0),
	}
}

// Record stores the event.
func (s *MemorySink) Record(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Close is a no-op for the memory sink.
func (s *MemorySink) Close() error {
	return nil
}

// Events returns a copy of all recorded events.
func (s *MemorySink) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]Event, len(s.events))
	copy(result, s.events)
	return result
}

// EventsOfType returns recorded events matching the given type.
func (s *MemorySink) EventsOfType(eventType EventType) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []Event
	for _, event := range s.events {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}

// Clear removes all recorded events.
func (s *MemorySink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = s.events[:0]
}

// NullSink discards all events (for disabled analytics).
type NullSink struct{}

// NewNullSink creates a sink that discards everything.
func NewNullSink() *NullSink {
	return &NullSink{}
}

// Record discards the event.
func (s *NullSink) Record(_ Event) error {
	return nil
}

// Close is a no-op.
func (s *NullSink) Close() error {
	return nil
}

// Ensure implementations satisfy the Sink interface.
var (
	_ Sink = (*FileSink)(nil)
	_ Sink = (*MemorySink)(nil)
	_ Sink = (*NullSink)(nil)
)
