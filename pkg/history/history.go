// Package history records the bytes exchanged with a session's child process
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultMaxSize is the byte budget of a transcript created with size 0
const DefaultMaxSize = 10 * 1024 * 1024

// Direction represents the direction of data flow relative to the child
type Direction int

const (
	// DirectionInput is data written to the child
	DirectionInput Direction = iota
	// DirectionOutput is data read from the child
	DirectionOutput
)

// String returns the string representation of Direction
func (d Direction) String() string {
	switch d {
	case DirectionInput:
		return "input"
	case DirectionOutput:
		return "output"
	default:
		return "unknown"
	}
}

// FileFormat represents different file export formats
type FileFormat int

const (
	// FormatPlainText writes the child's raw output, replayable with cat
	FormatPlainText FileFormat = iota
	// FormatTimestamped writes one escaped line per entry
	FormatTimestamped
	// FormatJSON writes all entries as one JSON document
	FormatJSON
)

// String returns the string representation of FileFormat
func (f FileFormat) String() string {
	switch f {
	case FormatPlainText:
		return "plain_text"
	case FormatTimestamped:
		return "timestamped"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ParseFileFormat parses a format name as used on the command line
func ParseFileFormat(name string) (FileFormat, error) {
	switch strings.ToLower(name) {
	case "plain", "plain_text", "text", "raw":
		return FormatPlainText, nil
	case "timestamped", "log":
		return FormatTimestamped, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatPlainText, fmt.Errorf("unknown transcript format: %s", name)
	}
}

// Entry is one chunk of data exchanged with the child
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Direction Direction `json:"direction"`
	Data      []byte    `json:"data"`
	Length    int       `json:"length"`
}

// Validate checks if the entry is valid
func (e Entry) Validate() error {
	if e.Timestamp.IsZero() {
		return fmt.Errorf("timestamp cannot be zero")
	}
	if e.Direction != DirectionInput && e.Direction != DirectionOutput {
		return fmt.Errorf("invalid direction: %d", e.Direction)
	}
	if e.Data == nil {
		return fmt.Errorf("data cannot be nil")
	}
	if e.Length != len(e.Data) {
		return fmt.Errorf("length mismatch: expected %d, got %d", len(e.Data), e.Length)
	}
	return nil
}

// NewEntry creates an entry holding a copy of data, stamped with the current time
func NewEntry(data []byte, direction Direction) Entry {
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)
	return Entry{
		Timestamp: time.Now(),
		Direction: direction,
		Data:      dataCopy,
		Length:    len(data),
	}
}

// Stats provides statistics about a transcript
type Stats struct {
	TotalEntries  int        `json:"total_entries"`
	TotalBytes    int        `json:"total_bytes"`
	InputEntries  int        `json:"input_entries"`
	OutputEntries int        `json:"output_entries"`
	InputBytes    int        `json:"input_bytes"`
	OutputBytes   int        `json:"output_bytes"`
	MaxSize       int        `json:"max_size"`
	Evicted       int        `json:"evicted"`
	OldestEntry   *time.Time `json:"oldest_entry,omitempty"`
	NewestEntry   *time.Time `json:"newest_entry,omitempty"`
}

// Transcript is a size-bounded record of a session's input and output.
// When the byte budget is exceeded the oldest entries are dropped.
// It is safe for concurrent use: the pump records output while the UI
// records input.
type Transcript struct {
	mu      sync.Mutex
	entries []Entry
	size    int
	maxSize int
	evicted int
}

// NewTranscript creates a transcript holding at most maxSize bytes
func NewTranscript(maxSize int) *Transcript {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Transcript{maxSize: maxSize}
}

// Record appends a chunk. Empty chunks are ignored.
func (t *Transcript) Record(data []byte, direction Direction) error {
	if direction != DirectionInput && direction != DirectionOutput {
		return fmt.Errorf("invalid direction: %d", direction)
	}
	if len(data) == 0 {
		return nil
	}

	entry := NewEntry(data, direction)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = append(t.entries, entry)
	t.size += entry.Length
	t.evictLocked()
	return nil
}

// RecordInput records data sent to the child
func (t *Transcript) RecordInput(data []byte) {
	_ = t.Record(data, DirectionInput)
}

// RecordOutput records data read from the child
func (t *Transcript) RecordOutput(data []byte) {
	_ = t.Record(data, DirectionOutput)
}

// evictLocked drops the oldest entries until the budget is met.
// The newest entry is always kept, even when it alone is too large.
func (t *Transcript) evictLocked() {
	drop := 0
	for t.size > t.maxSize && len(t.entries)-drop > 1 {
		t.size -= t.entries[drop].Length
		drop++
	}
	if drop > 0 {
		t.entries = append(t.entries[:0:0], t.entries[drop:]...)
		t.evicted += drop
	}
}

// Size returns the number of bytes held
func (t *Transcript) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.size
}

// Count returns the number of entries held
func (t *Transcript) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// MaxSize returns the byte budget
func (t *Transcript) MaxSize() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.maxSize
}

// SetMaxSize changes the byte budget, evicting entries if needed
func (t *Transcript) SetMaxSize(size int) error {
	if size <= 0 {
		return fmt.Errorf("size must be positive")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.maxSize = size
	t.evictLocked()
	return nil
}

// Entries returns a copy of all entries, oldest first
func (t *Transcript) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	result := make([]Entry, len(t.entries))
	copy(result, t.entries)
	return result
}

// Output returns the concatenated output of the child
func (t *Transcript) Output() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []byte
	for _, entry := range t.entries {
		if entry.Direction == DirectionOutput {
			out = append(out, entry.Data...)
		}
	}
	return out
}

// Clear drops all entries
func (t *Transcript) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = nil
	t.size = 0
}

// Stats returns statistics about the transcript
func (t *Transcript) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := Stats{
		TotalEntries: len(t.entries),
		TotalBytes:   t.size,
		MaxSize:      t.maxSize,
		Evicted:      t.evicted,
	}
	for _, entry := range t.entries {
		if entry.Direction == DirectionInput {
			stats.InputEntries++
			stats.InputBytes += entry.Length
		} else {
			stats.OutputEntries++
			stats.OutputBytes += entry.Length
		}
	}
	if len(t.entries) > 0 {
		oldest := t.entries[0].Timestamp
		newest := t.entries[len(t.entries)-1].Timestamp
		stats.OldestEntry = &oldest
		stats.NewestEntry = &newest
	}
	return stats
}

// Save writes the transcript to filename
func (t *Transcript) Save(filename string, format FileFormat) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	return saveEntriesToFile(t.Entries(), filename, format)
}

// saveEntriesToFile writes entries through a temporary file renamed into place
func saveEntriesToFile(entries []Entry, filename string, format FileFormat) error {
	var write func(*os.File, []Entry) error
	switch format {
	case FormatPlainText:
		write = saveAsPlainText
	case FormatTimestamped:
		write = saveAsTimestamped
	case FormatJSON:
		write = saveAsJSON
	default:
		return fmt.Errorf("unsupported file format: %v", format)
	}

	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	tempFile := filename + ".tmp"
	file, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := write(file, entries); err != nil {
		file.Close()
		os.Remove(tempFile)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

// saveAsPlainText writes the raw output stream
func saveAsPlainText(file *os.File, entries []Entry) error {
	for _, entry := range entries {
		if entry.Direction != DirectionOutput {
			continue
		}
		if _, err := file.Write(entry.Data); err != nil {
			return fmt.Errorf("failed to write data: %w", err)
		}
	}
	return nil
}

// saveAsTimestamped writes one line per entry, "<<" for input and ">>" for output
func saveAsTimestamped(file *os.File, entries []Entry) error {
	for _, entry := range entries {
		direction := "<<"
		if entry.Direction == DirectionOutput {
			direction = ">>"
		}

		line := fmt.Sprintf("[%s] %s %s\n",
			entry.Timestamp.Format("2006-01-02 15:04:05.000"),
			direction,
			escape(entry.Data))

		if _, err := file.WriteString(line); err != nil {
			return fmt.Errorf("failed to write timestamped data: %w", err)
		}
	}
	return nil
}

// escape makes control bytes visible while keeping printable text as is
func escape(data []byte) string {
	quoted := strconv.Quote(string(data))
	return quoted[1 : len(quoted)-1]
}

// saveAsJSON saves entries as JSON
func saveAsJSON(file *os.File, entries []Entry) error {
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	data := struct {
		Entries []Entry `json:"entries"`
		Count   int     `json:"count"`
	}{
		Entries: entries,
		Count:   len(entries),
	}

	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
