package domain

import "errors"

// Phase represents the kind of action a session expects next.
type Phase string

const (
	// PhaseAsking indicates the turn holder may ask a question.
	PhaseAsking Phase = "asking"
	// PhaseAwaitingAnswer indicates the turn holder must answer the last question.
	PhaseAwaitingAnswer Phase = "awaiting_answer"
	// PhaseGameOver indicates a winner has been decided.
	PhaseGameOver Phase = "game_over"
)

// Mode selects how a session is populated.
type Mode string

const (
	// ModeMultiplayer pits two human participants against each other.
	ModeMultiplayer Mode = "multiplayer"
	// ModeSolo pairs a single human with a scripted stand-in opponent.
	ModeSolo Mode = "solo"
)

// ErrIndexOutOfRange is returned when an elimination index falls outside the roster.
var ErrIndexOutOfRange = errors.New("roster index out of range")

// Message is a single dialogue entry. The dialogue is append-only.
type Message struct {
	Text      string `json:"text"`
	SpeakerID string `json:"speaker_id"`
}

// Session captures the full mutable state of one game room.
type Session struct {
	Roster     []string
	Secrets    map[string]string
	Eliminated map[string]EliminationSet
	Dialogue   []Message
	TurnHolder string
	Phase      Phase
	Winner     string
	ReadyVotes map[string]struct{}
	Variant    string
	Mode       Mode

	// StandinID is the participant id of the scripted opponent, or empty
	// in multiplayer sessions.
	StandinID string
}

// NewSession constructs an empty session over a fixed roster.
func NewSession(roster []string, variant string, mode Mode) *Session {
	return &Session{
		Roster:     roster,
		Secrets:    make(map[string]string),
		Eliminated: make(map[string]EliminationSet),
		ReadyVotes: make(map[string]struct{}),
		Phase:      PhaseAsking,
		Variant:    variant,
		Mode:       mode,
	}
}

// HasParticipant reports whether the id already holds a secret in this session.
func (s *Session) HasParticipant(id string) bool {
	_, ok := s.Secrets[id]
	return ok
}

// ParticipantCount returns the number of participants holding secrets,
// stand-in included.
func (s *Session) ParticipantCount() int {
	return len(s.Secrets)
}

// HumanCount returns the number of human participants.
func (s *Session) HumanCount() int {
	n := len(s.Secrets)
	if s.StandinID != "" {
		if _, ok := s.Secrets[s.StandinID]; ok {
			n--
		}
	}
	return n
}

// OpponentOf returns the id of the other participant, or an empty string if
// the opponent has not joined yet.
func (s *Session) OpponentOf(id string) string {
	for other := range s.Secrets {
		if other != id {
			return other
		}
	}
	return ""
}

// Append adds a dialogue entry. Entries are never pruned.
func (s *Session) Append(text, speakerID string) {
	s.Dialogue = append(s.Dialogue, Message{Text: text, SpeakerID: speakerID})
}

// LastExchange returns the most recent question/answer pair, scanning the
// dialogue backwards. ok is false while fewer than two entries exist.
func (s *Session) LastExchange() (question, answer Message, ok bool) {
	n := len(s.Dialogue)
	if n < 2 {
		return Message{}, Message{}, false
	}
	return s.Dialogue[n-2], s.Dialogue[n-1], true
}

// Ledger returns the elimination set for a participant, creating it on first use.
func (s *Session) Ledger(id string) EliminationSet {
	set, ok := s.Eliminated[id]
	if !ok {
		set = make(EliminationSet)
		s.Eliminated[id] = set
	}
	return set
}

// Eliminate marks a roster index in the participant's own ledger. Marking an
// already-eliminated index is a no-op. The opponent's ledger and the true
// secrets are never consulted.
func (s *Session) Eliminate(id string, index int) error {
	if index < 0 || index >= len(s.Roster) {
		return ErrIndexOutOfRange
	}
	s.Ledger(id).Add(index)
	return nil
}

// Revive clears a roster index from the participant's own ledger.
func (s *Session) Revive(id string, index int) error {
	if index < 0 || index >= len(s.Roster) {
		return ErrIndexOutOfRange
	}
	s.Ledger(id).Remove(index)
	return nil
}

// AddReadyVote records a rematch vote for the participant.
func (s *Session) AddReadyVote(id string) {
	s.ReadyVotes[id] = struct{}{}
}

// ReadyCount returns the number of distinct rematch votes.
func (s *Session) ReadyCount() int {
	return len(s.ReadyVotes)
}

// AllReady reports whether every participant has voted for a rematch.
func (s *Session) AllReady() bool {
	return len(s.Secrets) > 0 && len(s.ReadyVotes) >= len(s.Secrets)
}

// Terminal reports whether a winner has been decided. Terminal sessions
// reject further gameplay actions; only rematch votes are still accepted.
func (s *Session) Terminal() bool {
	return s.Winner != ""
}
