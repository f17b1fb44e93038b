package bot

import (
	"math/rand"
	"sync"

	"mafiaville/internal/app"
	"mafiaville/internal/bot/brain"
	"mafiaville/internal/domain"
	"mafiaville/internal/ports"
)

// Agent represents an autonomous bot player. It is safe for concurrent use.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain

	mu     sync.Mutex
	memory *brain.GameMemory
	rng    *rand.Rand
}

// NewAgent creates an agent with the brain for level.
func NewAgent(id, name string, level BotLevel, seed int64) (*Agent, error) {
	b, err := NewBrain(level)
	if err != nil {
		return nil, err
	}
	return &Agent{
		ID:       id,
		Name:     name,
		Strategy: b,
		memory:   brain.NewMemory(id),
		rng:      rand.New(rand.NewSource(seed)),
	}, nil
}

// Learn records the agent's role card for a new game.
func (a *Agent) Learn(card ports.RoleCard) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.memory.Reset()
	a.memory.Learn(card.Role, card.Alignment, card.Teammates, card.ExecutionerTarget)
}

// Act asks the agent for its answer to a night prompt.
func (a *Agent) Act(prompt domain.ActionPrompt) (domain.Answer, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Strategy.Act(a.memory, prompt, a.rng)
}

// Vote asks the agent for its ballot choice.
func (a *Agent) Vote(ballot ports.Ballot) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Strategy.Vote(a.memory, ballot, a.rng)
}

// Standing exposes what the agent believes about id.
func (a *Agent) Standing(id string) brain.Standing {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.memory.StandingOf(id)
}

// OnGameEvent feeds an event the agent is allowed to see into its memory.
func (a *Agent) OnGameEvent(ev app.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	m := a.memory

	switch p := ev.Payload.(type) {
	case app.MafiaOrderPayload:
		m.Order = p.Target
	case app.InvestigationPayload:
		if p.Suspicious {
			m.MarkSuspicious(p.Target, 3)
		} else {
			m.MarkTrusted(p.Target)
		}
	case app.ComparisonPayload:
		a.settleComparison(p)
	case app.SpyReportPayload:
		m.RecordVisits(p.Target, p.Visited)
	case app.RoleChangedPayload:
		m.Role = p.To
		if p.To == domain.RoleJester {
			m.ExecutionerTarget = ""
		}
	case app.NightSummaryPayload:
		m.Order = ""
		var victims []string
		for _, d := range p.Deaths {
			if d.Cause == domain.CauseMayor {
				m.MarkTrusted(d.Victims[0])
				continue
			}
			if d.Cause.Soft() {
				continue
			}
			for _, id := range d.Victims {
				m.MarkDead(id)
			}
			victims = append(victims, d.Victims...)
		}
		m.SettleVisits(victims)
	case app.VerdictPayload:
		if p.Executed {
			m.MarkDead(p.Nominee)
		}
	case app.SnapshotPayload:
		for _, id := range p.Snapshot.Dead {
			m.MarkDead(id)
		}
		if p.Snapshot.RevealedMayor != "" {
			m.MarkTrusted(p.Snapshot.RevealedMayor)
		}
	}
}

// settleComparison propagates a PI reading from a player with a known standing to the other.
func (a *Agent) settleComparison(p app.ComparisonPayload) {
	m := a.memory
	for _, pair := range [][2]string{{p.First, p.Second}, {p.Second, p.First}} {
		known, other := pair[0], pair[1]
		switch m.StandingOf(known) {
		case brain.StandingTrusted:
			if p.SameSide {
				m.MarkTrusted(other)
			} else {
				m.MarkSuspicious(other, 3)
			}
		case brain.StandingSuspected:
			if p.SameSide {
				m.MarkSuspicious(other, 2)
			}
		}
	}
	if !p.SameSide {
		m.MarkSuspicious(p.First, 1)
		m.MarkSuspicious(p.Second, 1)
	}
}
