// Package sim plays complete games in-process with a bot in every seat.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"mafiaville/internal/app"
	"mafiaville/internal/bot"
	"mafiaville/internal/domain"
	"mafiaville/internal/ports"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
)

// Options configures one simulated game.
type Options struct {
	Players   int
	Seed      int64
	Settings  domain.Settings
	MaxRounds int
	MinThink  time.Duration
	MaxThink  time.Duration
}

// Result is the record of a finished game.
type Result struct {
	GameID  string
	Outcome *domain.Outcome
	Rounds  int
	Roles   map[string]domain.Role
	Names   map[string]string
	Events  []app.Event
}

// Recorder keeps every published event and logs the public ones.
type Recorder struct {
	logger runtime.Logger
	names  map[string]string

	mu     sync.Mutex
	events []app.Event
}

// NewRecorder returns a sink that logs with display names from names.
func NewRecorder(logger runtime.Logger, names map[string]string) *Recorder {
	return &Recorder{logger: logger, names: names}
}

func (r *Recorder) Publish(_ context.Context, events []app.Event) {
	r.mu.Lock()
	r.events = append(r.events, events...)
	r.mu.Unlock()
	for _, ev := range events {
		r.log(ev)
	}
}

// Events returns a copy of the events recorded so far.
func (r *Recorder) Events() []app.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]app.Event(nil), r.events...)
}

func (r *Recorder) name(id string) string {
	if n, ok := r.names[id]; ok && n != "" {
		return n
	}
	return id
}

func (r *Recorder) log(ev app.Event) {
	switch p := ev.Payload.(type) {
	case app.GameStartedPayload:
		r.logger.Info("Sim: game %s started with %d players", p.GameID, len(p.Players))
	case app.PhaseChangedPayload:
		r.logger.Info("Sim: round %d %s", p.Round, p.Phase)
	case app.NightSummaryPayload:
		if len(p.Deaths) == 0 {
			r.logger.Info("Sim: nobody died in round %d", p.Round)
		}
		for _, d := range p.Deaths {
			for _, v := range d.Victims {
				r.logger.Info("Sim: %s died (%s)", r.name(v), d.Cause)
			}
		}
	case app.NominationPayload:
		if p.Nominee != "" {
			r.logger.Info("Sim: %s put on trial (threshold %d)", r.name(p.Nominee), p.Threshold)
		}
	case app.VerdictPayload:
		if p.Executed {
			r.logger.Info("Sim: %s executed %d-%d, was %s", r.name(p.Nominee), p.Guilty, p.Innocent, p.Role)
		} else {
			r.logger.Info("Sim: %s spared %d-%d", r.name(p.Nominee), p.Guilty, p.Innocent)
		}
	case app.GameEndedPayload:
		r.logger.Info("Sim: %s wins", p.Winner)
	default:
		r.logger.Debug("Sim: %s event to %v", ev.Kind, ev.Recipients)
	}
}

type fanout []app.EventSink

func (f fanout) Publish(ctx context.Context, events []app.Event) {
	for _, s := range f {
		s.Publish(ctx, events)
	}
}

// Run seats opts.Players bots and plays one game to its end. A game that hits
// opts.MaxRounds returns its partial Result with app.ErrRoundLimit.
func Run(ctx context.Context, opts Options, logger runtime.Logger) (*Result, error) {
	table := bot.NewTable(opts.MinThink, opts.MaxThink, opts.Seed)
	players := make([]*domain.Player, 0, opts.Players)
	names := make(map[string]string, opts.Players)
	for i := 0; i < opts.Players; i++ {
		identity := bot.GetBotIdentity(i)
		id := uuid.NewString()
		agent, err := bot.NewAgent(id, identity.DisplayName, identity.Level(), opts.Seed+int64(i)+1)
		if err != nil {
			return nil, fmt.Errorf("failed to create bot %d: %w", i, err)
		}
		table.Seat(agent)
		players = append(players, &domain.Player{ID: id, DisplayName: identity.DisplayName})
		names[id] = identity.DisplayName
	}

	recorder := NewRecorder(logger, names)
	sink := fanout{table, recorder}
	svc := app.NewService(rand.New(rand.NewSource(opts.Seed)))
	session := domain.NewGameSession(uuid.NewString(), players, opts.Settings.JailerExecutions)

	res := &Result{GameID: session.ID, Names: names}
	events, err := svc.AssignRoles(ctx, session, opts.Settings, table)
	sink.Publish(ctx, events)
	if err != nil {
		res.Events = recorder.Events()
		return res, err
	}

	orch := app.NewOrchestrator(svc, app.OrchestratorDeps{
		Prompts:   table,
		Votes:     table,
		Settings:  ports.StaticSettings(opts.Settings),
		Sink:      sink,
		Logger:    logger,
		Fallback:  opts.Settings,
		MaxRounds: opts.MaxRounds,
	})
	out, err := play(ctx, orch, session)

	res.Outcome = out
	res.Rounds = session.Round
	res.Roles = make(map[string]domain.Role, len(session.Players))
	for id, p := range session.Players {
		res.Roles[id] = p.Role
	}
	res.Events = recorder.Events()
	return res, err
}

func play(ctx context.Context, orch *app.Orchestrator, session *domain.GameSession) (out *domain.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			var inconsistent *domain.InconsistentStateError
			if e, ok := r.(error); ok && errors.As(e, &inconsistent) {
				err = inconsistent
				return
			}
			panic(r)
		}
	}()
	return orch.Run(ctx, session)
}
