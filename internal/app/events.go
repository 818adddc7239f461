package app

// EventKind identifies emitted session events for transport dispatch.
type EventKind string

const (
	EventQuestionAsked      EventKind = "question_asked"
	EventAnswerGiven        EventKind = "answer_given"
	EventEliminationUpdated EventKind = "elimination_updated"
	EventEliminationCount   EventKind = "elimination_count"
	EventWinner             EventKind = "winner"
	EventBadGuess           EventKind = "bad_guess"
	EventReadyWait          EventKind = "ready_wait"
	EventSessionComplete    EventKind = "session_complete"
)

// Event is a session event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // participant IDs; empty means broadcast
}

type QuestionAskedPayload struct {
	Question   string
	AskerID    string
	TurnHolder string
}

type AnswerGivenPayload struct {
	Answer     string
	AnswererID string
	TurnHolder string
	// Implicit marks the automatic "No" acknowledgment sent to a guesser
	// after a failed guess; implicit answers never enter the dialogue.
	Implicit bool
}

type EliminationUpdatedPayload struct {
	ParticipantID string
	Indices       []int
}

type EliminationCountPayload struct {
	ParticipantID string
	Count         int
}

type WinnerPayload struct {
	WinnerID string
}

type BadGuessPayload struct {
	GuesserID  string
	Guess      string
	TurnHolder string
}

type ReadyWaitPayload struct {
	ParticipantID string
	Votes         int
}

type SessionCompletePayload struct{}
