package nakama

import (
	"guesswho/internal/app"
)

// Client -> Server message payloads. All traffic on the match socket is JSON.

type AskRequest struct {
	Question string `json:"question"`
}

type AnswerRequest struct {
	Answer string `json:"answer"`
}

type GuessRequest struct {
	Character string `json:"character"`
}

type EliminateRequest struct {
	Index int `json:"index"`
}

type ReviveRequest struct {
	Index int `json:"index"`
}

// Server -> Client event payloads.

// SessionInitEvent carries a joiner's private view of the session: the board,
// their own secret and nothing about the opponent's.
type SessionInitEvent struct {
	RoomID     string   `json:"roomId"`
	Variant    string   `json:"variant"`
	Mode       string   `json:"mode"`
	Roster     []string `json:"roster"`
	Secret     string   `json:"secret"`
	Eliminated []int    `json:"eliminated"`
	TurnHolder string   `json:"turnHolder"`
	Phase      string   `json:"phase"`
}

type TurnEvent struct {
	TurnHolder string `json:"turnHolder"`
	Phase      string `json:"phase"`
}

type QuestionAskedEvent struct {
	Question   string `json:"question"`
	AskerID    string `json:"askerId"`
	TurnHolder string `json:"turnHolder"`
}

type AnswerGivenEvent struct {
	Answer     string `json:"answer"`
	AnswererID string `json:"answererId"`
	TurnHolder string `json:"turnHolder"`
	Implicit   bool   `json:"implicit,omitempty"`
}

type EliminationSetEvent struct {
	ParticipantID string `json:"participantId"`
	Indices       []int  `json:"indices"`
}

type EliminationCountEvent struct {
	ParticipantID string `json:"participantId"`
	Count         int    `json:"count"`
}

// WinnerEvent reveals both secrets; confidentiality ends with the session.
type WinnerEvent struct {
	WinnerID string            `json:"winnerId"`
	Secrets  map[string]string `json:"secrets"`
}

type BadGuessEvent struct {
	GuesserID  string `json:"guesserId"`
	Guess      string `json:"guess"`
	TurnHolder string `json:"turnHolder"`
}

type ReadyWaitEvent struct {
	ParticipantID string `json:"participantId"`
	Votes         int    `json:"votes"`
}

type RematchEvent struct {
	MatchID string `json:"matchId"`
}

type PlayerCountEvent struct {
	Humans  int  `json:"humans"`
	Standin bool `json:"standin"`
}

type GameErrorEvent struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// toWireEvent maps an app event to its op code and wire payload. The second
// return is false for kinds the adapter handles itself rather than on the
// socket.
func toWireEvent(ev app.Event, secrets map[string]string) (int64, any, bool) {
	switch ev.Kind {
	case app.EventQuestionAsked:
		p := ev.Payload.(app.QuestionAskedPayload)
		return OpQuestionAsked, QuestionAskedEvent{
			Question:   p.Question,
			AskerID:    p.AskerID,
			TurnHolder: p.TurnHolder,
		}, true
	case app.EventAnswerGiven:
		p := ev.Payload.(app.AnswerGivenPayload)
		return OpAnswerGiven, AnswerGivenEvent{
			Answer:     p.Answer,
			AnswererID: p.AnswererID,
			TurnHolder: p.TurnHolder,
			Implicit:   p.Implicit,
		}, true
	case app.EventEliminationUpdated:
		p := ev.Payload.(app.EliminationUpdatedPayload)
		return OpEliminationSet, EliminationSetEvent{
			ParticipantID: p.ParticipantID,
			Indices:       p.Indices,
		}, true
	case app.EventEliminationCount:
		p := ev.Payload.(app.EliminationCountPayload)
		return OpEliminationCount, EliminationCountEvent{
			ParticipantID: p.ParticipantID,
			Count:         p.Count,
		}, true
	case app.EventWinner:
		p := ev.Payload.(app.WinnerPayload)
		return OpWinner, WinnerEvent{
			WinnerID: p.WinnerID,
			Secrets:  secrets,
		}, true
	case app.EventBadGuess:
		p := ev.Payload.(app.BadGuessPayload)
		return OpBadGuess, BadGuessEvent{
			GuesserID:  p.GuesserID,
			Guess:      p.Guess,
			TurnHolder: p.TurnHolder,
		}, true
	case app.EventReadyWait:
		p := ev.Payload.(app.ReadyWaitPayload)
		return OpReadyWait, ReadyWaitEvent{
			ParticipantID: p.ParticipantID,
			Votes:         p.Votes,
		}, true
	default:
		return 0, nil, false
	}
}
