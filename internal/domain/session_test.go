package domain

import (
	"reflect"
	"testing"
)

func newTestSession() *Session {
	return NewSession([]string{"Anna", "Boris", "Carl", "Destiny"}, "classic", ModeMultiplayer)
}

func TestOpponentOf(t *testing.T) {
	s := newTestSession()
	s.Secrets["p1"] = "Anna"
	s.Secrets["p2"] = "Boris"

	if got := s.OpponentOf("p1"); got != "p2" {
		t.Fatalf("OpponentOf(p1) = %q, want p2", got)
	}
	if got := s.OpponentOf("p2"); got != "p1" {
		t.Fatalf("OpponentOf(p2) = %q, want p1", got)
	}
}

func TestOpponentOfBeforeSecondJoin(t *testing.T) {
	s := newTestSession()
	s.Secrets["p1"] = "Anna"

	if got := s.OpponentOf("p1"); got != "" {
		t.Fatalf("OpponentOf(p1) = %q, want empty", got)
	}
}

func TestEliminateReviveRoundTrip(t *testing.T) {
	s := newTestSession()
	s.Secrets["p1"] = "Anna"

	if err := s.Eliminate("p1", 2); err != nil {
		t.Fatalf("eliminate error: %v", err)
	}
	before := s.Ledger("p1").Indices()

	if err := s.Eliminate("p1", 1); err != nil {
		t.Fatalf("eliminate error: %v", err)
	}
	if err := s.Revive("p1", 1); err != nil {
		t.Fatalf("revive error: %v", err)
	}

	after := s.Ledger("p1").Indices()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("ledger after round trip = %v, want %v", after, before)
	}
}

func TestEliminateIdempotent(t *testing.T) {
	s := newTestSession()

	if err := s.Eliminate("p1", 3); err != nil {
		t.Fatalf("eliminate error: %v", err)
	}
	if err := s.Eliminate("p1", 3); err != nil {
		t.Fatalf("repeat eliminate error: %v", err)
	}
	if got := len(s.Ledger("p1")); got != 1 {
		t.Fatalf("ledger size = %d, want 1", got)
	}
}

func TestEliminateBounds(t *testing.T) {
	tests := []struct {
		name  string
		index int
	}{
		{name: "negative", index: -1},
		{name: "past end", index: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession()
			if err := s.Eliminate("p1", tt.index); err != ErrIndexOutOfRange {
				t.Fatalf("eliminate(%d) = %v, want ErrIndexOutOfRange", tt.index, err)
			}
			if len(s.Ledger("p1")) != 0 {
				t.Fatalf("ledger mutated by rejected index")
			}
		})
	}
}

func TestLedgersAreIndependent(t *testing.T) {
	s := newTestSession()

	if err := s.Eliminate("p1", 0); err != nil {
		t.Fatalf("eliminate error: %v", err)
	}
	if s.Ledger("p2").Has(0) {
		t.Fatalf("p2 ledger affected by p1 elimination")
	}
}

func TestDialogueAppendOnly(t *testing.T) {
	s := newTestSession()
	s.Append("Is it a robot?", "p1")
	s.Append("No", "p2")

	if len(s.Dialogue) != 2 {
		t.Fatalf("dialogue length = %d, want 2", len(s.Dialogue))
	}

	q, a, ok := s.LastExchange()
	if !ok {
		t.Fatalf("expected last exchange")
	}
	if q.Text != "Is it a robot?" || q.SpeakerID != "p1" {
		t.Fatalf("question = %+v", q)
	}
	if a.Text != "No" || a.SpeakerID != "p2" {
		t.Fatalf("answer = %+v", a)
	}
}

func TestHumanCountExcludesStandin(t *testing.T) {
	s := NewSession([]string{"Anna", "Boris"}, "classic", ModeSolo)
	s.Secrets["p1"] = "Anna"
	s.StandinID = "standin-1"
	s.Secrets["standin-1"] = "Boris"

	if got := s.HumanCount(); got != 1 {
		t.Fatalf("HumanCount() = %d, want 1", got)
	}
	if got := s.ParticipantCount(); got != 2 {
		t.Fatalf("ParticipantCount() = %d, want 2", got)
	}
}

func TestAllReady(t *testing.T) {
	s := newTestSession()
	s.Secrets["p1"] = "Anna"
	s.Secrets["p2"] = "Boris"

	s.AddReadyVote("p1")
	if s.AllReady() {
		t.Fatalf("AllReady() with one vote, want false")
	}
	s.AddReadyVote("p1")
	if got := s.ReadyCount(); got != 1 {
		t.Fatalf("ReadyCount() after duplicate vote = %d, want 1", got)
	}
	s.AddReadyVote("p2")
	if !s.AllReady() {
		t.Fatalf("AllReady() with both votes, want true")
	}
}
