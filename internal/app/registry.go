package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"guesswho/internal/domain"
	"guesswho/internal/roster"
)

var (
	ErrInvalidRoomID        = errors.New("invalid room id")
	ErrInvalidParticipantID = errors.New("invalid participant id")
	ErrRoomFull             = errors.New("room already has the maximum number of participants")
	ErrRosterUnavailable    = errors.New("roster unavailable")
)

// Registry owns the process-wide map from room id to live session. It is the
// only state shared across match goroutines, so creation-check-then-insert
// happens under one lock.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session

	provider roster.Provider
	svc      *Service
	size     int
}

// NewRegistry constructs a registry drawing boards of the given size from the
// provider.
func NewRegistry(provider roster.Provider, svc *Service, size int) *Registry {
	return &Registry{
		sessions: make(map[string]*domain.Session),
		provider: provider,
		svc:      svc,
		size:     size,
	}
}

// Obtain returns the live session for the room, creating it on first join.
// Creation fetches the roster exactly once; a fetch failure leaves no partial
// session behind. For a participant not seen before, a unique secret is
// assigned; re-joining returns the existing session unchanged. A join beyond
// capacity fails without mutating the session.
func (r *Registry) Obtain(ctx context.Context, roomID, participantID, variant string, mode domain.Mode) (*domain.Session, error) {
	if roomID == "" {
		return nil, ErrInvalidRoomID
	}
	if participantID == "" {
		return nil, ErrInvalidParticipantID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[roomID]
	if !ok {
		created, err := r.createSession(ctx, variant, mode)
		if err != nil {
			return nil, err
		}
		sess = created
		r.sessions[roomID] = sess
	}

	if sess.HasParticipant(participantID) {
		return sess, nil
	}

	if sess.HumanCount() >= MaxHumanParticipants {
		return nil, ErrRoomFull
	}

	if _, err := r.svc.AssignSecret(sess, participantID); err != nil {
		return nil, err
	}

	if sess.TurnHolder == "" {
		sess.TurnHolder = participantID
	} else if sess.HumanCount() == 2 && r.svc.rng.Intn(2) == 0 {
		// Coin flip: the second joiner may open the match.
		sess.TurnHolder = participantID
	}

	if mode == domain.ModeSolo && sess.StandinID == "" {
		standinID := "standin-" + uuid.NewString()
		if _, err := r.svc.AssignSecret(sess, standinID); err != nil {
			delete(sess.Secrets, participantID)
			delete(sess.Eliminated, participantID)
			return nil, err
		}
		sess.StandinID = standinID
	}

	return sess, nil
}

// Lookup returns the session for a room id without creating one.
func (r *Registry) Lookup(roomID string) (*domain.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[roomID]
	return sess, ok
}

// Remove retires a session. Lookups by the old room id find nothing afterwards.
func (r *Registry) Remove(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, roomID)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// createSession fetches the variant roster and builds an empty session over a
// board of exactly r.size candidates.
func (r *Registry) createSession(ctx context.Context, variant string, mode domain.Mode) (*domain.Session, error) {
	names, err := r.provider.Roster(ctx, variant)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRosterUnavailable, err)
	}
	if len(names) < r.size {
		return nil, fmt.Errorf("%w: got %d distinct candidates, need %d", ErrRosterUnavailable, len(names), r.size)
	}

	board := append([]string(nil), names...)
	r.svc.rng.Shuffle(len(board), func(i, j int) {
		board[i], board[j] = board[j], board[i]
	})

	return domain.NewSession(board[:r.size], variant, mode), nil
}
