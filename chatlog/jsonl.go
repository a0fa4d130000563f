package chatlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// Writer appends exchanges to a JSONL stream, one JSON object per line.
// It is safe for concurrent use.
type Writer struct {
	mu  sync.Mutex
	enc *json.Encoder
	c   io.Closer
}

// NewWriter writes exchanges to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

// OpenWriter opens (or creates) a transcript file for appending.
func OpenWriter(filename string) (*Writer, error) {
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening transcript: %w", err)
	}
	return &Writer{enc: json.NewEncoder(f), c: f}, nil
}

// Write appends one exchange.
func (w *Writer) Write(ex Exchange) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(ex)
}

// Close closes the underlying file, if any.
func (w *Writer) Close() error {
	if w.c == nil {
		return nil
	}
	return w.c.Close()
}

// ParseJSONL loads a transcript from a JSONL file.
func ParseJSONL(filename string) (*Transcript, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return ParseJSONLReader(f)
}

// ParseJSONLReader loads a transcript from a JSONL stream. Blank lines are
// skipped; a malformed line is an error naming its line number.
func ParseJSONLReader(r io.Reader) (*Transcript, error) {
	t := NewTranscript()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" {
			continue
		}

		var ex Exchange
		if err := json.Unmarshal([]byte(line), &ex); err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", lineNum, err)
		}
		if ex.SessionID == "" {
			return nil, fmt.Errorf("line %d: missing session_id", lineNum)
		}
		t.Add(ex)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	t.Sort()
	return t, nil
}
