package bot

import (
	"guesswho/internal/domain"
)

// Canonical answers a stand-in may give.
const (
	AnswerYes = "Yes"
	AnswerNo  = "No"
)

// Brain is the interface all stand-in strategies implement. The surrounding
// session logic only orchestrates; everything a strategy knows about the
// board arrives through these three calls.
type Brain interface {
	// ProposeQuestion produces the stand-in's next question given the board
	// and its own elimination ledger.
	ProposeQuestion(roster []string, eliminated domain.EliminationSet) string

	// Answer replies "Yes" or "No" to a question about the stand-in's secret.
	Answer(secret, question string) string

	// ChooseEliminations picks roster indices to newly eliminate after an
	// exchange. Returned indices must not already be in the ledger.
	ChooseEliminations(roster []string, eliminated domain.EliminationSet, question, answer string) []int
}
