package bot

import (
	"fmt"
)

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel) (Brain, error) {
	switch level {
	case BotLevelRandom:
		return &RandomBot{}, nil
	case BotLevelSmart:
		return &SmartBot{}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
