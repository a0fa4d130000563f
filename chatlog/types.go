// Package chatlog records and analyzes conversation transcripts.
// Exchanges are appended as JSON Lines during a session and can be loaded
// back for replay or exported to CSV for spreadsheet analysis.
package chatlog

import (
	"fmt"
	"sort"
	"time"
)

// Exchange is a single user turn and the engine's reply.
type Exchange struct {
	SessionID string    `json:"session_id"`
	Turn      int       `json:"turn"`
	Input     string    `json:"input"`
	Response  string    `json:"response"`
	Source    string    `json:"source"`
	Matched   bool      `json:"matched"`
	Timestamp time.Time `json:"timestamp"`
}

// Trace is the ordered exchanges of one session.
type Trace struct {
	SessionID string
	Exchanges []Exchange
}

// Transcript holds the traces of every session in a log.
type Transcript struct {
	Sessions map[string]*Trace
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{Sessions: make(map[string]*Trace)}
}

// Add appends an exchange, creating the session's trace if needed.
func (t *Transcript) Add(ex Exchange) {
	trace, ok := t.Sessions[ex.SessionID]
	if !ok {
		trace = &Trace{SessionID: ex.SessionID}
		t.Sessions[ex.SessionID] = trace
	}
	trace.Exchanges = append(trace.Exchanges, ex)
}

// Sort orders each trace by turn number.
func (t *Transcript) Sort() {
	for _, trace := range t.Sessions {
		sort.Slice(trace.Exchanges, func(i, j int) bool {
			return trace.Exchanges[i].Turn < trace.Exchanges[j].Turn
		})
	}
}

// Traces returns all traces sorted by session ID.
func (t *Transcript) Traces() []*Trace {
	traces := make([]*Trace, 0, len(t.Sessions))
	for _, trace := range t.Sessions {
		traces = append(traces, trace)
	}
	sort.Slice(traces, func(i, j int) bool {
		return traces[i].SessionID < traces[j].SessionID
	})
	return traces
}

// NumSessions returns the number of sessions in the transcript.
func (t *Transcript) NumSessions() int {
	return len(t.Sessions)
}

// NumExchanges returns the total number of exchanges across sessions.
func (t *Transcript) NumExchanges() int {
	total := 0
	for _, trace := range t.Sessions {
		total += len(trace.Exchanges)
	}
	return total
}

// MatchRate returns the fraction of exchanges answered by a pattern or rule
// rather than a fallback.
func (t *Transcript) MatchRate() float64 {
	total, matched := 0, 0
	for _, trace := range t.Sessions {
		for _, ex := range trace.Exchanges {
			total++
			if ex.Matched {
				matched++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total)
}

// Duration returns the time from first to last exchange in the trace.
func (tr *Trace) Duration() time.Duration {
	if len(tr.Exchanges) < 2 {
		return 0
	}
	return tr.Exchanges[len(tr.Exchanges)-1].Timestamp.Sub(tr.Exchanges[0].Timestamp)
}

// String returns a short description of the trace.
func (tr *Trace) String() string {
	return fmt.Sprintf("Session %s: %d exchanges (duration: %v)",
		tr.SessionID, len(tr.Exchanges), tr.Duration())
}
