package app

import (
	"errors"
	"math/rand"
	"time"

	"guesswho/internal/domain"
)

// Service contains the gameplay use-cases operating on session state.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

var (
	ErrGameOver           = errors.New("session already has a winner")
	ErrNoOpponent         = errors.New("opponent has not joined yet")
	ErrUnknownParticipant = errors.New("participant not found")
	ErrSecretsExhausted   = errors.New("no unassigned candidate left for secret")
)

// Ask records a question from the asker and hands the turn to the opponent.
// Turn order is advisory: an out-of-turn question still lands, matching the
// trusted-participant model.
func (s *Service) Ask(sess *domain.Session, askerID, question string) ([]Event, error) {
	if sess.Terminal() {
		return nil, ErrGameOver
	}
	if !sess.HasParticipant(askerID) {
		return nil, ErrUnknownParticipant
	}

	sess.Append(question, askerID)
	sess.TurnHolder = sess.OpponentOf(askerID)
	sess.Phase = domain.PhaseAwaitingAnswer

	return []Event{
		{
			Kind: EventQuestionAsked,
			Payload: QuestionAskedPayload{
				Question:   question,
				AskerID:    askerID,
				TurnHolder: sess.TurnHolder,
			},
		},
	}, nil
}

// Answer records an answer. The turn returns to the answerer, who eliminates
// candidates and asks next.
func (s *Service) Answer(sess *domain.Session, answererID, answer string) ([]Event, error) {
	if sess.Terminal() {
		return nil, ErrGameOver
	}
	if !sess.HasParticipant(answererID) {
		return nil, ErrUnknownParticipant
	}

	sess.Append(answer, answererID)
	sess.TurnHolder = answererID
	sess.Phase = domain.PhaseAsking

	return []Event{
		{
			Kind: EventAnswerGiven,
			Payload: AnswerGivenPayload{
				Answer:     answer,
				AnswererID: answererID,
				TurnHolder: sess.TurnHolder,
			},
		},
	}, nil
}

// Guess resolves a guess against the opponent's secret immediately. A match
// decides the session; a mismatch costs the guesser their turn and produces
// an implicit "No" acknowledgment targeted at the guesser alone.
func (s *Service) Guess(sess *domain.Session, guesserID, candidate string) ([]Event, error) {
	if sess.Terminal() {
		return nil, ErrGameOver
	}
	if !sess.HasParticipant(guesserID) {
		return nil, ErrUnknownParticipant
	}
	opponentID := sess.OpponentOf(guesserID)
	if opponentID == "" {
		return nil, ErrNoOpponent
	}

	if candidate == sess.Secrets[opponentID] {
		sess.Winner = guesserID
		sess.Phase = domain.PhaseGameOver
		return []Event{
			{
				Kind:    EventWinner,
				Payload: WinnerPayload{WinnerID: guesserID},
			},
		}, nil
	}

	sess.TurnHolder = opponentID
	sess.Phase = domain.PhaseAsking

	return []Event{
		{
			Kind: EventBadGuess,
			Payload: BadGuessPayload{
				GuesserID:  guesserID,
				Guess:      candidate,
				TurnHolder: opponentID,
			},
		},
		{
			Kind: EventAnswerGiven,
			Payload: AnswerGivenPayload{
				Answer:     "No",
				AnswererID: opponentID,
				TurnHolder: opponentID,
				Implicit:   true,
			},
			Recipients: []string{guesserID},
		},
	}, nil
}

// Eliminate marks a roster index in the actor's own ledger. No phase or turn
// effect; bookkeeping remains legal after the game is decided.
func (s *Service) Eliminate(sess *domain.Session, actorID string, index int) ([]Event, error) {
	if err := sess.Eliminate(actorID, index); err != nil {
		return nil, err
	}
	return ledgerEvents(sess, actorID), nil
}

// Revive clears a roster index from the actor's own ledger.
func (s *Service) Revive(sess *domain.Session, actorID string, index int) ([]Event, error) {
	if err := sess.Revive(actorID, index); err != nil {
		return nil, err
	}
	return ledgerEvents(sess, actorID), nil
}

// MergeEliminations folds a batch of fresh indices into the actor's ledger.
// Used for the stand-in, whose strategy eliminates several candidates per
// exchange. Out-of-range indices are rejected without partial mutation.
func (s *Service) MergeEliminations(sess *domain.Session, actorID string, indices []int) ([]Event, error) {
	for _, index := range indices {
		if index < 0 || index >= len(sess.Roster) {
			return nil, domain.ErrIndexOutOfRange
		}
	}
	for _, index := range indices {
		sess.Ledger(actorID).Add(index)
	}
	return ledgerEvents(sess, actorID), nil
}

// Ready records a rematch vote. In solo sessions the stand-in votes alongside
// its human. Completion retires the session for gameplay; the caller owns
// registry removal and fresh-room issuance.
func (s *Service) Ready(sess *domain.Session, actorID string) ([]Event, error) {
	if !sess.HasParticipant(actorID) {
		return nil, ErrUnknownParticipant
	}

	sess.AddReadyVote(actorID)
	if sess.StandinID != "" {
		sess.AddReadyVote(sess.StandinID)
	}

	if sess.AllReady() {
		return []Event{
			{
				Kind:    EventSessionComplete,
				Payload: SessionCompletePayload{},
			},
		}, nil
	}

	return []Event{
		{
			Kind: EventReadyWait,
			Payload: ReadyWaitPayload{
				ParticipantID: actorID,
				Votes:         sess.ReadyCount(),
			},
		},
	}, nil
}

// ledgerEvents emits the actor's full ledger to the actor and the new count
// to everyone else.
func ledgerEvents(sess *domain.Session, actorID string) []Event {
	ledger := sess.Ledger(actorID)
	return []Event{
		{
			Kind: EventEliminationUpdated,
			Payload: EliminationUpdatedPayload{
				ParticipantID: actorID,
				Indices:       ledger.Indices(),
			},
			Recipients: []string{actorID},
		},
		{
			Kind: EventEliminationCount,
			Payload: EliminationCountPayload{
				ParticipantID: actorID,
				Count:         len(ledger),
			},
		},
	}
}
