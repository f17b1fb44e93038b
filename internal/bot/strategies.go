package bot

import (
	"math/rand"
	"slices"

	"mafiaville/internal/bot/brain"
	"mafiaville/internal/domain"
	"mafiaville/internal/ports"
)

// RandomBot answers every prompt with a random legal choice.
type RandomBot struct{}

func (RandomBot) Act(_ *brain.GameMemory, prompt domain.ActionPrompt, rng *rand.Rand) (domain.Answer, bool) {
	if len(prompt.Options) == 0 {
		return domain.Answer{}, false
	}
	kind := prompt.Options[rng.Intn(len(prompt.Options))]
	targets, ok := pick(prompt.Targets, kind.Picks(), rng)
	if !ok {
		return domain.Answer{}, false
	}
	return domain.Answer{Kind: kind, Targets: targets}, true
}

func (RandomBot) Vote(mem *brain.GameMemory, ballot ports.Ballot, rng *rand.Rand) (string, bool) {
	choices := without(ballot.Choices, mem.Self)
	if len(choices) == 0 || rng.Intn(4) == 0 {
		return "", false
	}
	return choices[rng.Intn(len(choices))], true
}

// pick draws n distinct entries from pool.
func pick(pool []string, n int, rng *rand.Rand) ([]string, bool) {
	if n == 0 {
		return nil, true
	}
	if len(pool) < n {
		return nil, false
	}
	idx := rng.Perm(len(pool))[:n]
	out := make([]string, n)
	for i, j := range idx {
		out[i] = pool[j]
	}
	return out, true
}

func without(ids []string, skip ...string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(skip, id) {
			out = append(out, id)
		}
	}
	return out
}
