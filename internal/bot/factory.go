package bot

import (
	"fmt"
)

// BrainLevel selects a stand-in strategy.
type BrainLevel int

const (
	// BrainLevelScripted is the canned-question, coin-flip strategy.
	BrainLevelScripted BrainLevel = iota
)

// NewBrain creates a stand-in brain for the given level.
func NewBrain(level BrainLevel) (Brain, error) {
	switch level {
	case BrainLevelScripted:
		return NewScriptedBrain(nil), nil
	default:
		return nil, fmt.Errorf("unknown brain level: %d", level)
	}
}

// NewAgent builds a stand-in agent with the default strategy and a display
// name drawn from the identity pool.
func NewAgent(id string) (*Agent, error) {
	brain, err := NewBrain(BrainLevelScripted)
	if err != nil {
		return nil, err
	}
	return &Agent{
		ID:       id,
		Name:     PickDisplayName(id),
		Strategy: brain,
	}, nil
}
