package app

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"

	"guesswho/internal/domain"
)

// countingProvider serves a fixed roster and counts fetches.
type countingProvider struct {
	names []string
	err   error
	calls int64
}

func (p *countingProvider) Roster(_ context.Context, _ string) ([]string, error) {
	atomic.AddInt64(&p.calls, 1)
	if p.err != nil {
		return nil, p.err
	}
	return p.names, nil
}

func newTestRegistry(seed int64, provider *countingProvider, size int) *Registry {
	return NewRegistry(provider, NewService(rand.New(rand.NewSource(seed))), size)
}

func fourNames() []string {
	return []string{"Anna", "Boris", "Carl", "Destiny"}
}

func TestObtainCreatesOnFirstJoin(t *testing.T) {
	provider := &countingProvider{names: fourNames()}
	reg := newTestRegistry(1, provider, 4)

	sess, err := reg.Obtain(context.Background(), "room-1", "p1", "classic", domain.ModeMultiplayer)
	if err != nil {
		t.Fatalf("obtain: %v", err)
	}
	if len(sess.Roster) != 4 {
		t.Fatalf("board size = %d, want 4", len(sess.Roster))
	}
	if _, ok := sess.Secrets["p1"]; !ok {
		t.Fatalf("first joiner has no secret")
	}
	if sess.TurnHolder != "p1" {
		t.Fatalf("turn holder = %q, want first joiner", sess.TurnHolder)
	}
	if provider.calls != 1 {
		t.Fatalf("roster fetched %d times, want 1", provider.calls)
	}
}

func TestObtainRejoinIsIdempotent(t *testing.T) {
	provider := &countingProvider{names: fourNames()}
	reg := newTestRegistry(1, provider, 4)

	first, err := reg.Obtain(context.Background(), "room-1", "p1", "classic", domain.ModeMultiplayer)
	if err != nil {
		t.Fatalf("obtain: %v", err)
	}
	secret := first.Secrets["p1"]

	again, err := reg.Obtain(context.Background(), "room-1", "p1", "classic", domain.ModeMultiplayer)
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if again != first {
		t.Fatalf("rejoin produced a different session")
	}
	if again.Secrets["p1"] != secret {
		t.Fatalf("rejoin changed secret: %q -> %q", secret, again.Secrets["p1"])
	}
	if provider.calls != 1 {
		t.Fatalf("roster fetched %d times, want 1", provider.calls)
	}
}

func TestObtainAssignsDistinctSecrets(t *testing.T) {
	provider := &countingProvider{names: fourNames()}
	reg := newTestRegistry(3, provider, 4)

	sess, err := reg.Obtain(context.Background(), "room-1", "p1", "classic", domain.ModeMultiplayer)
	if err != nil {
		t.Fatalf("obtain p1: %v", err)
	}
	if _, err := reg.Obtain(context.Background(), "room-1", "p2", "classic", domain.ModeMultiplayer); err != nil {
		t.Fatalf("obtain p2: %v", err)
	}

	if sess.Secrets["p1"] == sess.Secrets["p2"] {
		t.Fatalf("both participants drew %q", sess.Secrets["p1"])
	}
}

func TestObtainThirdJoinerRejected(t *testing.T) {
	provider := &countingProvider{names: fourNames()}
	reg := newTestRegistry(1, provider, 4)

	sess, _ := reg.Obtain(context.Background(), "room-1", "p1", "classic", domain.ModeMultiplayer)
	if _, err := reg.Obtain(context.Background(), "room-1", "p2", "classic", domain.ModeMultiplayer); err != nil {
		t.Fatalf("obtain p2: %v", err)
	}

	if _, err := reg.Obtain(context.Background(), "room-1", "p3", "classic", domain.ModeMultiplayer); err != ErrRoomFull {
		t.Fatalf("third join = %v, want ErrRoomFull", err)
	}
	if sess.HasParticipant("p3") {
		t.Fatalf("rejected joiner mutated the session")
	}
	if len(sess.Secrets) != 2 {
		t.Fatalf("secrets = %d entries after rejected join, want 2", len(sess.Secrets))
	}
}

func TestObtainRosterFailureLeavesNoSession(t *testing.T) {
	provider := &countingProvider{err: errors.New("upstream down")}
	reg := newTestRegistry(1, provider, 4)

	_, err := reg.Obtain(context.Background(), "room-1", "p1", "classic", domain.ModeMultiplayer)
	if !errors.Is(err, ErrRosterUnavailable) {
		t.Fatalf("obtain = %v, want ErrRosterUnavailable", err)
	}
	if reg.Len() != 0 {
		t.Fatalf("failed creation left %d sessions behind", reg.Len())
	}

	// The room stays joinable once the provider recovers.
	provider.err = nil
	if _, err := reg.Obtain(context.Background(), "room-1", "p1", "classic", domain.ModeMultiplayer); err != nil {
		t.Fatalf("obtain after recovery: %v", err)
	}
}

func TestObtainShortRosterRejected(t *testing.T) {
	provider := &countingProvider{names: []string{"Anna", "Boris"}}
	reg := newTestRegistry(1, provider, 4)

	_, err := reg.Obtain(context.Background(), "room-1", "p1", "classic", domain.ModeMultiplayer)
	if !errors.Is(err, ErrRosterUnavailable) {
		t.Fatalf("obtain = %v, want ErrRosterUnavailable", err)
	}
}

func TestObtainValidatesIdentifiers(t *testing.T) {
	provider := &countingProvider{names: fourNames()}
	reg := newTestRegistry(1, provider, 4)

	if _, err := reg.Obtain(context.Background(), "", "p1", "classic", domain.ModeMultiplayer); err != ErrInvalidRoomID {
		t.Fatalf("empty room id = %v, want ErrInvalidRoomID", err)
	}
	if _, err := reg.Obtain(context.Background(), "room-1", "", "classic", domain.ModeMultiplayer); err != ErrInvalidParticipantID {
		t.Fatalf("empty participant id = %v, want ErrInvalidParticipantID", err)
	}
}

func TestObtainConcurrentFirstJoins(t *testing.T) {
	provider := &countingProvider{names: fourNames()}
	reg := newTestRegistry(1, provider, 4)

	var wg sync.WaitGroup
	sessions := make([]*domain.Session, 8)
	for i := 0; i < len(sessions); i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			sess, err := reg.Obtain(context.Background(), "room-1", "p1", "classic", domain.ModeMultiplayer)
			if err != nil {
				t.Errorf("obtain: %v", err)
				return
			}
			sessions[slot] = sess
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(sessions); i++ {
		if sessions[i] != sessions[0] {
			t.Fatalf("concurrent joins produced distinct sessions")
		}
	}
	if provider.calls != 1 {
		t.Fatalf("roster fetched %d times, want 1", provider.calls)
	}
	if reg.Len() != 1 {
		t.Fatalf("registry holds %d sessions, want 1", reg.Len())
	}
}

func TestObtainSoloArmsStandin(t *testing.T) {
	provider := &countingProvider{names: fourNames()}
	reg := newTestRegistry(1, provider, 4)

	sess, err := reg.Obtain(context.Background(), "room-1", "p1", "classic", domain.ModeSolo)
	if err != nil {
		t.Fatalf("obtain: %v", err)
	}

	if sess.StandinID == "" {
		t.Fatalf("solo session has no stand-in")
	}
	standinSecret, ok := sess.Secrets[sess.StandinID]
	if !ok {
		t.Fatalf("stand-in has no secret")
	}
	if standinSecret == sess.Secrets["p1"] {
		t.Fatalf("stand-in shares the human's secret %q", standinSecret)
	}
	if sess.HumanCount() != 1 {
		t.Fatalf("human count = %d, want 1", sess.HumanCount())
	}
	if sess.TurnHolder != "p1" {
		t.Fatalf("turn holder = %q, want the human", sess.TurnHolder)
	}
}

func TestRemoveRetiresRoomID(t *testing.T) {
	provider := &countingProvider{names: fourNames()}
	reg := newTestRegistry(1, provider, 4)

	if _, err := reg.Obtain(context.Background(), "room-1", "p1", "classic", domain.ModeMultiplayer); err != nil {
		t.Fatalf("obtain: %v", err)
	}
	reg.Remove("room-1")

	if _, ok := reg.Lookup("room-1"); ok {
		t.Fatalf("removed room still resolvable")
	}
}

func TestSecondJoinerCoinFlipVariesOpener(t *testing.T) {
	openedBySecond := false
	openedByFirst := false
	for seed := int64(0); seed < 32; seed++ {
		provider := &countingProvider{names: fourNames()}
		reg := newTestRegistry(seed, provider, 4)
		sess, err := reg.Obtain(context.Background(), "room-1", "p1", "classic", domain.ModeMultiplayer)
		if err != nil {
			t.Fatalf("obtain p1: %v", err)
		}
		if _, err := reg.Obtain(context.Background(), "room-1", "p2", "classic", domain.ModeMultiplayer); err != nil {
			t.Fatalf("obtain p2: %v", err)
		}
		switch sess.TurnHolder {
		case "p1":
			openedByFirst = true
		case "p2":
			openedBySecond = true
		default:
			t.Fatalf("turn holder = %q", sess.TurnHolder)
		}
	}
	if !openedByFirst || !openedBySecond {
		t.Fatalf("coin flip never varied: first=%v second=%v", openedByFirst, openedBySecond)
	}
}
