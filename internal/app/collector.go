package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"mafiaville/internal/domain"
	"mafiaville/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"golang.org/x/sync/errgroup"
)

// Collector gathers at most one night action per living, unjailed player.
type Collector struct {
	prompts ports.PromptPort
	sink    EventSink
	logger  runtime.Logger
}

// NewCollector builds a Collector over the prompt collaborator.
func NewCollector(prompts ports.PromptPort, sink EventSink, logger runtime.Logger) *Collector {
	return &Collector{prompts: prompts, sink: sink, logger: logger}
}

// AskDusk prompts the living Jailer for tonight's prisoner and applies the jail.
func (c *Collector) AskDusk(ctx context.Context, session *domain.GameSession, timeout time.Duration) (domain.NightAction, bool) {
	prompt, ok := session.DuskPrompt()
	if !ok {
		return nil, false
	}
	act, ok := c.ask(ctx, prompt, timeout)
	if !ok {
		return nil, false
	}
	jail := act.(domain.Jail)
	session.Jail(jail.Target)
	c.logger.Debug("Collector: round %d prisoner %s", session.Round, jail.Target)
	return jail, true
}

// Collect prompts every eligible player concurrently and waits until all
// answered or the timeout elapsed. Silence is "no action".
func (c *Collector) Collect(ctx context.Context, session *domain.GameSession, timeout time.Duration) map[domain.Role]domain.NightAction {
	var (
		mu      sync.Mutex
		actions = make(map[domain.Role]domain.NightAction)
		g       errgroup.Group
		jailed  []Event
	)

	mafioso := session.LivingHolderOf(domain.RoleMafioso)
	if session.Jailed(mafioso) {
		mafioso = ""
	}
	godfather := session.Roles.Godfather.Holder

	for _, id := range session.AliveIDs() {
		if session.Jailed(id) {
			jailed = append(jailed, Event{
				Kind:       EventJailed,
				Payload:    JailedPayload{Round: session.Round},
				Recipients: []string{id},
			})
			continue
		}
		prompt, ok := session.NightPrompt(id)
		if !ok {
			continue
		}
		if prompt.Role == domain.RoleMafioso && session.IsAlive(godfather) {
			prompt.Note = "the Godfather's order overrides your choice"
		}
		g.Go(func() error {
			act, ok := c.ask(ctx, prompt, timeout)
			if !ok {
				return nil
			}
			mu.Lock()
			actions[prompt.Role] = act
			mu.Unlock()

			if prompt.Role == domain.RoleGodfather && mafioso != "" {
				c.sink.Publish(ctx, []Event{{
					Kind:       EventMafiaOrder,
					Payload:    MafiaOrderPayload{OrderedBy: prompt.PlayerID, Target: act.(domain.Kill).Target},
					Recipients: []string{mafioso},
				}})
			}
			return nil
		})
	}
	if len(jailed) > 0 {
		c.sink.Publish(ctx, jailed)
	}
	_ = g.Wait()
	return actions
}

// ask delivers one prompt and binds the answer. Timeouts and invalid answers yield no action.
func (c *Collector) ask(ctx context.Context, prompt domain.ActionPrompt, timeout time.Duration) (domain.NightAction, bool) {
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ans, err := c.prompts.Ask(actx, prompt)
	if err != nil {
		if errors.Is(err, ports.ErrNoResponse) || errors.Is(err, context.DeadlineExceeded) {
			c.sink.Publish(ctx, []Event{notice(prompt.PlayerID, NoticeNoResponse, prompt.Role, "")})
		} else {
			c.logger.Warn("Collector: prompt to %s failed: %v", prompt.PlayerID, err)
		}
		return nil, false
	}
	act, err := prompt.Bind(ans)
	if err != nil {
		c.logger.Debug("Collector: rejected answer from %s (%s): %v", prompt.PlayerID, prompt.Role, err)
		c.sink.Publish(ctx, []Event{notice(prompt.PlayerID, NoticeInvalidChoice, prompt.Role, "")})
		return nil, false
	}
	return act, true
}
