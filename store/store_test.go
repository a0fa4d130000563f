package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/yooz-lang/go-yooz/chatlog"
)

func openStore(t *testing.T) *SessionStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "yooz.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestExchangeRoundTrip(t *testing.T) {
	s := openStore(t)
	if err := s.CreateSession("s1"); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	at := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	for turn := 1; turn <= 2; turn++ {
		err := s.AppendExchange(chatlog.Exchange{
			SessionID: "s1",
			Turn:      turn,
			Input:     "سلام",
			Response:  "سلام به تو",
			Source:    "pattern",
			Matched:   true,
			Timestamp: at.Add(time.Duration(turn) * time.Second),
		})
		if err != nil {
			t.Fatalf("AppendExchange: %v", err)
		}
	}

	got, err := s.Exchanges("s1")
	if err != nil {
		t.Fatalf("Exchanges: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("exchanges = %d, want 2", len(got))
	}
	if got[0].Turn != 1 || got[1].Turn != 2 {
		t.Error("exchanges not in turn order")
	}
	if got[0].Input != "سلام" || got[0].Response != "سلام به تو" || !got[0].Matched {
		t.Errorf("fields lost: %+v", got[0])
	}
	if got[0].Timestamp.Unix() != at.Add(time.Second).Unix() {
		t.Errorf("timestamp = %v", got[0].Timestamp)
	}
}

func TestDuplicateTurnRejected(t *testing.T) {
	s := openStore(t)
	if err := s.CreateSession("s1"); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	ex := chatlog.Exchange{SessionID: "s1", Turn: 1, Input: "x", Response: "y", Source: "rule", Timestamp: time.Now()}
	if err := s.AppendExchange(ex); err != nil {
		t.Fatalf("AppendExchange: %v", err)
	}
	if err := s.AppendExchange(ex); err == nil {
		t.Error("duplicate turn should violate the unique constraint")
	}
}

func TestVariablesRoundTrip(t *testing.T) {
	s := openStore(t)
	if err := s.CreateSession("s1"); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	vars := map[string]string{"hasGreeted": "1", "نام": "علی"}
	if err := s.SaveVariables("s1", vars); err != nil {
		t.Fatalf("SaveVariables: %v", err)
	}

	got, err := s.LoadVariables("s1")
	if err != nil {
		t.Fatalf("LoadVariables: %v", err)
	}
	if got["hasGreeted"] != "1" || got["نام"] != "علی" {
		t.Errorf("variables lost: %v", got)
	}

	// Saving again replaces the snapshot.
	if err := s.SaveVariables("s1", map[string]string{"hasGreeted": "0"}); err != nil {
		t.Fatalf("SaveVariables: %v", err)
	}
	got, _ = s.LoadVariables("s1")
	if len(got) != 1 || got["hasGreeted"] != "0" {
		t.Errorf("snapshot not replaced: %v", got)
	}
}

func TestLoadVariablesUnknownSession(t *testing.T) {
	s := openStore(t)
	got, err := s.LoadVariables("ناشناخته")
	if err != nil {
		t.Fatalf("LoadVariables: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("unknown session should have no variables: %v", got)
	}
}

func TestListSessions(t *testing.T) {
	s := openStore(t)
	if err := s.CreateSession("s1"); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := s.CreateSession("s2"); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := s.AppendExchange(chatlog.Exchange{SessionID: "s1", Turn: 1, Input: "x", Response: "y", Source: "pattern", Timestamp: time.Now()}); err != nil {
		t.Fatalf("AppendExchange: %v", err)
	}
	if err := s.EndSession("s1"); err != nil {
		t.Fatalf("EndSession: %v", err)
	}

	infos, err := s.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("sessions = %d, want 2", len(infos))
	}

	byID := map[string]SessionInfo{}
	for _, info := range infos {
		byID[info.ID] = info
	}
	if byID["s1"].Active {
		t.Error("ended session should not be active")
	}
	if byID["s1"].Turns != 1 {
		t.Errorf("s1 turns = %d, want 1", byID["s1"].Turns)
	}
	if !byID["s2"].Active {
		t.Error("open session should be active")
	}
}
