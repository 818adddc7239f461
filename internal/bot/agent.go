package bot

import (
	"guesswho/internal/domain"
)

// Agent represents an autonomous stand-in participant bound to one session.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// AnswerQuestion produces the stand-in's reply to a question about its own
// secret. Unknown agents (no secret in the session) decline with "No".
func (a *Agent) AnswerQuestion(sess *domain.Session, question string) string {
	secret, ok := sess.Secrets[a.ID]
	if !ok {
		return AnswerNo
	}
	return a.Strategy.Answer(secret, question)
}

// NextQuestion produces the stand-in's next question from the board and its
// own elimination ledger.
func (a *Agent) NextQuestion(sess *domain.Session) string {
	return a.Strategy.ProposeQuestion(sess.Roster, sess.Ledger(a.ID))
}

// ReviewAnswer lets the stand-in react to a finished question/answer exchange
// by choosing fresh roster indices for its ledger. Indices already in the
// ledger are filtered out regardless of what the strategy returns.
func (a *Agent) ReviewAnswer(sess *domain.Session, question, answer string) []int {
	ledger := sess.Ledger(a.ID)
	picked := a.Strategy.ChooseEliminations(sess.Roster, ledger, question, answer)

	fresh := picked[:0]
	for _, index := range picked {
		if index < 0 || index >= len(sess.Roster) {
			continue
		}
		if ledger.Has(index) {
			continue
		}
		fresh = append(fresh, index)
	}
	return fresh
}
