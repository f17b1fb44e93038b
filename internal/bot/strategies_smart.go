package bot

import (
	"math/rand"
	"slices"

	"mafiaville/internal/bot/brain"
	"mafiaville/internal/domain"
	"mafiaville/internal/ports"
)

// SmartBot plays its role using what it has learned: investigators chase
// unknowns, killers chase suspects, and voters follow the evidence.
type SmartBot struct{}

func (b SmartBot) Act(mem *brain.GameMemory, prompt domain.ActionPrompt, rng *rand.Rand) (domain.Answer, bool) {
	one := func(kind domain.ActionKind, target string) (domain.Answer, bool) {
		if target == "" {
			return domain.Answer{}, false
		}
		return domain.Answer{Kind: kind, Targets: []string{target}}, true
	}
	targets := prompt.Targets

	switch prompt.Role {
	case domain.RoleGodfather, domain.RoleMafioso:
		if mem.Order != "" && slices.Contains(targets, mem.Order) {
			return one(domain.ActionKill, mem.Order)
		}
		return one(domain.ActionKill, b.threat(mem, targets, rng))
	case domain.RoleFramer, domain.RoleSilencer:
		return one(prompt.Options[0], b.threat(mem, targets, rng))
	case domain.RoleDoctor:
		target := mem.Self
		if !slices.Contains(targets, target) {
			target = anyOf(targets, rng)
		}
		if t, ok := mem.MostTrusted(targets); ok && rng.Intn(2) == 0 {
			target = t
		}
		return one(domain.ActionHeal, target)
	case domain.RoleDetective, domain.RoleSpy:
		return one(prompt.Options[0], b.unknown(mem, targets, rng))
	case domain.RolePI:
		first := b.unknown(mem, targets, rng)
		rest := without(targets, first)
		if first == "" || len(rest) == 0 {
			return domain.Answer{}, false
		}
		second := anyOf(rest, rng)
		if s, ok := mem.MostSuspicious(rest); ok {
			second = s
		}
		return domain.Answer{Kind: domain.ActionCompare, Targets: []string{first, second}}, true
	case domain.RoleVigilante:
		if s, ok := mem.MostSuspicious(targets); ok && mem.StandingOf(s) == brain.StandingSuspected {
			return one(domain.ActionKill, s)
		}
		return domain.Answer{}, false
	case domain.RoleJailer:
		if len(prompt.Options) == 1 && prompt.Options[0] == domain.ActionJail {
			if s, ok := mem.MostSuspicious(targets); ok {
				return one(domain.ActionJail, s)
			}
			return one(domain.ActionJail, b.unknown(mem, targets, rng))
		}
		if len(targets) == 1 && mem.StandingOf(targets[0]) == brain.StandingSuspected {
			return one(domain.ActionExecute, targets[0])
		}
		return domain.Answer{}, false
	case domain.RoleArsonist:
		canDouse := slices.Contains(prompt.Options, domain.ActionDouse)
		if slices.Contains(prompt.Options, domain.ActionIgnite) && (!canDouse || rng.Intn(3) == 0) {
			return domain.Answer{Kind: domain.ActionIgnite}, true
		}
		if canDouse {
			return one(domain.ActionDouse, anyOf(targets, rng))
		}
		return domain.Answer{}, false
	case domain.RoleMayor:
		return domain.Answer{Kind: domain.ActionReveal}, rng.Intn(3) == 0
	}
	return RandomBot{}.Act(mem, prompt, rng)
}

func (b SmartBot) Vote(mem *brain.GameMemory, ballot ports.Ballot, rng *rand.Rand) (string, bool) {
	if ballot.Kind == ports.BallotVerdict {
		return b.verdict(mem, ballot.Nominee), true
	}
	candidates := ballot.Choices
	switch mem.Role {
	case domain.RoleJester:
		if slices.Contains(candidates, mem.Self) {
			return mem.Self, true
		}
	case domain.RoleExecutioner:
		if slices.Contains(candidates, mem.ExecutionerTarget) {
			return mem.ExecutionerTarget, true
		}
	}
	if mem.Alignment == domain.AlignmentMafia {
		target := b.threat(mem, candidates, rng)
		return target, target != ""
	}
	if s, ok := mem.MostSuspicious(candidates); ok {
		return s, true
	}
	return "", false
}

func (b SmartBot) verdict(mem *brain.GameMemory, nominee string) string {
	switch {
	case mem.Role == domain.RoleExecutioner && nominee == mem.ExecutionerTarget:
		return ports.VoteGuilty
	case mem.IsAlly(nominee):
		return ports.VoteInnocent
	case mem.Alignment == domain.AlignmentMafia:
		return ports.VoteGuilty
	case mem.StandingOf(nominee) == brain.StandingTrusted:
		return ports.VoteInnocent
	case mem.StandingOf(nominee) == brain.StandingSuspected:
		return ports.VoteGuilty
	}
	return ports.VoteInnocent
}

// threat is the target a Mafia bot most wants gone: confirmed town first, then anyone not on the team.
func (b SmartBot) threat(mem *brain.GameMemory, targets []string, rng *rand.Rand) string {
	pool := make([]string, 0, len(targets))
	for _, id := range targets {
		if id == mem.Self || mem.IsAlly(id) {
			continue
		}
		if mem.StandingOf(id) == brain.StandingTrusted {
			return id
		}
		pool = append(pool, id)
	}
	return anyOf(pool, rng)
}

// unknown prefers players the bot has no reading on yet.
func (b SmartBot) unknown(mem *brain.GameMemory, targets []string, rng *rand.Rand) string {
	pool := make([]string, 0, len(targets))
	for _, id := range targets {
		if mem.StandingOf(id) == brain.StandingUnknown {
			pool = append(pool, id)
		}
	}
	if len(pool) == 0 {
		pool = targets
	}
	return anyOf(pool, rng)
}

func anyOf(ids []string, rng *rand.Rand) string {
	if len(ids) == 0 {
		return ""
	}
	return ids[rng.Intn(len(ids))]
}
