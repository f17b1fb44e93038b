package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mafiaville/internal/domain"
	"mafiaville/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// ErrRoundLimit is returned by Run when a game exceeds the configured number of rounds.
var ErrRoundLimit = errors.New("round limit reached")

// Orchestrator drives a ready session through Night and Day rounds until a win.
type Orchestrator struct {
	svc       *Service
	collector *Collector
	votes     ports.VotePort
	settings  ports.SettingsPort
	sink      EventSink
	wills     ports.LastWillSource
	logger    runtime.Logger

	fallback  domain.Settings
	maxRounds int
	pause     func(time.Duration)
}

// OrchestratorDeps lists the collaborators of a game.
type OrchestratorDeps struct {
	Prompts  ports.PromptPort
	Votes    ports.VotePort
	Settings ports.SettingsPort
	Sink     EventSink
	Wills    ports.LastWillSource // optional
	Logger   runtime.Logger
	// Fallback is used when Settings fails.
	Fallback domain.Settings
	// MaxRounds stops Run with ErrRoundLimit; zero means unlimited.
	MaxRounds int
}

// NewOrchestrator wires the engine over its collaborators.
func NewOrchestrator(svc *Service, deps OrchestratorDeps) *Orchestrator {
	return &Orchestrator{
		svc:       svc,
		collector: NewCollector(deps.Prompts, deps.Sink, deps.Logger),
		votes:     deps.Votes,
		settings:  deps.Settings,
		sink:      deps.Sink,
		wills:     deps.Wills,
		logger:    deps.Logger,
		fallback:  deps.Fallback,
		maxRounds: deps.MaxRounds,
		pause:     time.Sleep,
	}
}

// Run plays rounds until the game ends. ctx is checked between rounds only;
// a started round always runs to resolution.
func (o *Orchestrator) Run(ctx context.Context, session *domain.GameSession) (*domain.Outcome, error) {
	if session.Outcome != nil {
		return session.Outcome, ErrGameOver
	}
	if !session.GameReady {
		return nil, ErrGameNotReady
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if o.maxRounds > 0 && session.Round >= o.maxRounds {
			return nil, fmt.Errorf("%w: %d", ErrRoundLimit, o.maxRounds)
		}
		if out := o.PlayRound(context.WithoutCancel(ctx), session, o.currentSettings(ctx)); out != nil {
			o.logger.Info("Orchestrator: game %s ended in round %d, winner %s", session.ID, session.Round, out.Winner)
			return out, nil
		}
	}
}

func (o *Orchestrator) currentSettings(ctx context.Context) domain.Settings {
	if o.settings == nil {
		return o.fallback
	}
	st, err := o.settings.Settings(ctx)
	if err != nil {
		o.logger.Warn("Orchestrator: settings unavailable, using defaults: %v", err)
		return o.fallback
	}
	return st
}

// PlayRound runs one Night followed by one Day and returns the outcome if a win was reached.
func (o *Orchestrator) PlayRound(ctx context.Context, session *domain.GameSession, st domain.Settings) *domain.Outcome {
	o.collectWills(session)
	rec := session.BeginNight()
	o.publish(ctx, Event{
		Kind:    EventPhaseChanged,
		Payload: PhaseChangedPayload{Phase: domain.PhaseNight, Round: rec.Number, Duration: st.NightDuration},
	})

	jail, jailed := o.collector.AskDusk(ctx, session, st.JailDuration)
	actions := o.collector.Collect(ctx, session, st.NightDuration)
	if jailed {
		if _, ok := actions[domain.RoleJailer]; !ok {
			actions[domain.RoleJailer] = jail
		}
	}
	o.logger.Debug("Orchestrator: round %d collected %d actions", rec.Number, len(actions))

	o.collectWills(session)
	o.publish(ctx, o.svc.ResolveNight(session, actions)...)
	if out := o.svc.EvaluateWin(session, ""); out != nil {
		o.publish(ctx, o.snapshot(session), gameEndedEvent(session, out))
		return out
	}

	session.Phase = domain.PhaseDay
	o.publish(ctx,
		Event{Kind: EventPhaseChanged, Payload: PhaseChangedPayload{Phase: domain.PhaseDay, Round: rec.Number, Duration: st.DayDuration}},
		o.snapshot(session),
	)
	o.pause(st.DayDuration)

	out := o.dayVote(ctx, session, st)
	o.publish(ctx, o.snapshot(session))
	if out != nil {
		o.publish(ctx, gameEndedEvent(session, out))
	}
	return out
}

func (o *Orchestrator) dayVote(ctx context.Context, session *domain.GameSession, st domain.Settings) *domain.Outcome {
	candidates := session.AliveUnsilenced()
	votes, err := o.votes.CollectVotes(ctx, ports.Ballot{
		Kind:    ports.BallotNomination,
		Round:   session.Round,
		Voters:  candidates,
		Choices: candidates,
		Window:  st.VotingDuration,
	})
	if err != nil {
		o.logger.Warn("Orchestrator: nomination votes failed: %v", err)
	}
	events, nom := o.svc.TallyNomination(session, votes)
	o.publish(ctx, events...)
	if !nom.Nominated() {
		return nil
	}

	votes, err = o.votes.CollectVotes(ctx, ports.Ballot{
		Kind:    ports.BallotVerdict,
		Round:   session.Round,
		Voters:  VerdictVoters(session, nom.Nominee),
		Choices: []string{ports.VoteGuilty, ports.VoteInnocent},
		Nominee: nom.Nominee,
		Window:  st.VotingDuration,
	})
	if err != nil {
		o.logger.Warn("Orchestrator: verdict votes failed: %v", err)
	}
	o.collectWills(session)
	events, verdict := o.svc.ResolveVerdict(session, nom.Nominee, votes)
	o.publish(ctx, events...)
	if !verdict.Executed {
		return nil
	}
	return o.svc.EvaluateWin(session, nom.Nominee)
}

func (o *Orchestrator) collectWills(session *domain.GameSession) {
	if o.wills == nil {
		return
	}
	for id, lines := range o.wills.DrainLastWills() {
		for _, line := range lines {
			if err := o.svc.AppendLastWill(session, id, line); err != nil {
				o.logger.Debug("Orchestrator: will line from %s dropped: %v", id, err)
			}
		}
	}
}

func (o *Orchestrator) snapshot(session *domain.GameSession) Event {
	return Event{Kind: EventSnapshot, Payload: SnapshotPayload{Snapshot: session.PublicSnapshot()}}
}

func (o *Orchestrator) publish(ctx context.Context, events ...Event) {
	if len(events) == 0 {
		return
	}
	o.sink.Publish(ctx, events)
}
