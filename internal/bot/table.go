package bot

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"mafiaville/internal/app"
	"mafiaville/internal/domain"
	"mafiaville/internal/ports"
)

// ErrNotSeated is returned for players without an agent at the table.
var ErrNotSeated = errors.New("bot not seated")

// Table is the set of agents playing one game. It answers prompts, ballots
// and role cards on their behalf and feeds them the events they may see.
type Table struct {
	mu       sync.RWMutex
	agents   map[string]*Agent
	minThink time.Duration
	maxThink time.Duration
	rng      *rand.Rand
	rngMu    sync.Mutex
}

// NewTable creates an empty table. Agents wait between minThink and maxThink before answering.
func NewTable(minThink, maxThink time.Duration, seed int64) *Table {
	if maxThink < minThink {
		maxThink = minThink
	}
	return &Table{
		agents:   make(map[string]*Agent),
		minThink: minThink,
		maxThink: maxThink,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Seat adds an agent to the table.
func (t *Table) Seat(a *Agent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.agents[a.ID] = a
}

// Remove drops the agent with the given id.
func (t *Table) Remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.agents, id)
}

// Agent returns the agent seated as id.
func (t *Table) Agent(id string) (*Agent, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	a, ok := t.agents[id]
	return a, ok
}

// Has reports whether id is played by an agent.
func (t *Table) Has(id string) bool {
	_, ok := t.Agent(id)
	return ok
}

// Ask implements ports.PromptPort for seated agents.
func (t *Table) Ask(ctx context.Context, prompt domain.ActionPrompt) (domain.Answer, error) {
	a, ok := t.Agent(prompt.PlayerID)
	if !ok {
		return domain.Answer{}, ErrNotSeated
	}
	if err := t.think(ctx); err != nil {
		return domain.Answer{}, err
	}
	ans, ok := a.Act(prompt)
	if !ok {
		return domain.Answer{}, ports.ErrNoResponse
	}
	return ans, nil
}

// CollectVotes implements ports.VotePort for the seated voters of the ballot.
// Other voters are ignored.
func (t *Table) CollectVotes(ctx context.Context, ballot ports.Ballot) (map[string]string, error) {
	votes := make(map[string]string)
	for _, id := range ballot.Voters {
		a, ok := t.Agent(id)
		if !ok {
			continue
		}
		if choice, ok := a.Vote(ballot); ok {
			votes[id] = choice
		}
	}
	return votes, nil
}

// NotifyRole implements ports.RoleNotifier for seated agents.
func (t *Table) NotifyRole(_ context.Context, card ports.RoleCard) error {
	a, ok := t.Agent(card.PlayerID)
	if !ok {
		return ErrNotSeated
	}
	a.Learn(card)
	return nil
}

// Publish implements app.EventSink. Broadcast events reach every agent and
// targeted events only their recipients.
func (t *Table) Publish(_ context.Context, events []app.Event) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, ev := range events {
		if len(ev.Recipients) == 0 {
			for _, a := range t.agents {
				a.OnGameEvent(ev)
			}
			continue
		}
		for _, id := range ev.Recipients {
			if a, ok := t.agents[id]; ok {
				a.OnGameEvent(ev)
			}
		}
	}
}

func (t *Table) think(ctx context.Context) error {
	if t.maxThink <= 0 {
		return ctx.Err()
	}
	d := t.minThink
	if span := t.maxThink - t.minThink; span > 0 {
		t.rngMu.Lock()
		d += time.Duration(t.rng.Int63n(int64(span)))
		t.rngMu.Unlock()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var (
	_ ports.PromptPort   = (*Table)(nil)
	_ ports.VotePort     = (*Table)(nil)
	_ ports.RoleNotifier = (*Table)(nil)
	_ app.EventSink      = (*Table)(nil)
)
