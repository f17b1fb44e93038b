package bot

import (
	"math/rand"

	"mafiaville/internal/bot/brain"
	"mafiaville/internal/domain"
	"mafiaville/internal/ports"
)

// BotLevel selects how much of its memory a bot uses.
type BotLevel int

const (
	BotLevelRandom BotLevel = iota + 1
	BotLevelSmart
)

// ParseLevel maps an identity difficulty to a level. Unknown values play smart.
func ParseLevel(difficulty string) BotLevel {
	if difficulty == "easy" {
		return BotLevelRandom
	}
	return BotLevelSmart
}

// Brain is the interface that all bot strategies must implement.
// ok is false when the bot chooses not to act or not to vote.
type Brain interface {
	Act(mem *brain.GameMemory, prompt domain.ActionPrompt, rng *rand.Rand) (ans domain.Answer, ok bool)
	Vote(mem *brain.GameMemory, ballot ports.Ballot, rng *rand.Rand) (choice string, ok bool)
}
