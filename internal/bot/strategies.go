package bot

import (
	"math/rand"
	"time"

	"guesswho/internal/domain"
)

// maxEliminationsPerTurn caps how many candidates the scripted brain crosses
// off after a single exchange.
const maxEliminationsPerTurn = 5

// cannedQuestions is the scripted brain's rotation. The entries carry no
// inference value; the brain exists to exercise the orchestration around it.
var cannedQuestions = []string{
	"Are you a fun person?",
	"Do you enjoy rainy days?",
	"Would you survive a camping trip?",
	"Do you always answer honestly?",
	"Is your favorite color blue?",
}

// ScriptedBrain is the default stand-in strategy: canned questions, coin-flip
// answers, and random eliminations. It never inspects the question text.
type ScriptedBrain struct {
	rng  *rand.Rand
	next int
}

// NewScriptedBrain constructs a scripted brain with the provided rng or a
// time-seeded default.
func NewScriptedBrain(rng *rand.Rand) *ScriptedBrain {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ScriptedBrain{rng: rng}
}

// ProposeQuestion cycles through the canned rotation.
func (b *ScriptedBrain) ProposeQuestion(_ []string, _ domain.EliminationSet) string {
	question := cannedQuestions[b.next%len(cannedQuestions)]
	b.next++
	return question
}

// Answer flips a coin.
func (b *ScriptedBrain) Answer(_, _ string) string {
	if b.rng.Intn(2) == 0 {
		return AnswerYes
	}
	return AnswerNo
}

// ChooseEliminations draws up to maxEliminationsPerTurn indices that are not
// yet in the ledger. The draw is bounded by the candidates actually
// remaining, so a nearly exhausted board cannot stall it.
func (b *ScriptedBrain) ChooseEliminations(roster []string, eliminated domain.EliminationSet, _, _ string) []int {
	remaining := make([]int, 0, len(roster))
	for i := range roster {
		if !eliminated.Has(i) {
			remaining = append(remaining, i)
		}
	}

	count := maxEliminationsPerTurn
	if count > len(remaining) {
		count = len(remaining)
	}

	b.rng.Shuffle(len(remaining), func(i, j int) {
		remaining[i], remaining[j] = remaining[j], remaining[i]
	})
	return remaining[:count]
}
