package nakama

import (
	"context"
	"errors"
	"sync"
	"time"

	"mafiaville/internal/app"
	"mafiaville/internal/bot"
	"mafiaville/internal/domain"
	"mafiaville/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

var (
	errUnreachable = errors.New("player not connected")
	errNoBallot    = errors.New("no ballot is open")
	errNotEligible = errors.New("not eligible to vote")
	errBadChoice   = errors.New("choice not on the ballot")
	errNotPrompted = errors.New("no action was requested")
	errWillBacklog = errors.New("too many pending will lines")
)

// maxPendingWills caps the will lines a player may queue between phase changes.
const maxPendingWills = 10

type outbound struct {
	op         int64
	data       []byte
	recipients []string
}

type rosterEntry struct {
	alignment domain.Alignment
	alive     bool
}

type openBallot struct {
	voters  map[string]bool
	choices map[string]bool
	votes   map[string]string
	humans  int
	done    chan struct{}
	closed  bool
}

type gameResult struct {
	outcome *domain.Outcome
	err     error
}

// matchBridge connects the engine goroutine to the single-threaded match loop.
// The engine calls the port methods; the loop delivers client input and flushes
// the outbox once per tick. Bot seats are served by the bot table directly.
type matchBridge struct {
	logger runtime.Logger
	bots   *bot.Table

	mu        sync.Mutex
	outbox    []outbound
	connected map[string]bool
	prompts   map[string]chan domain.Answer
	ballot    *openBallot
	wills     map[string][]string
	roster    map[string]*rosterEntry
	inGame    bool
	phase     domain.Phase
	result    *gameResult
}

func newMatchBridge(logger runtime.Logger, bots *bot.Table) *matchBridge {
	return &matchBridge{
		logger:    logger,
		bots:      bots,
		connected: make(map[string]bool),
		prompts:   make(map[string]chan domain.Answer),
		wills:     make(map[string][]string),
		roster:    make(map[string]*rosterEntry),
		phase:     domain.PhaseLobby,
	}
}

// reset prepares the bridge for a new game.
func (b *matchBridge) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prompts = make(map[string]chan domain.Answer)
	b.ballot = nil
	b.wills = make(map[string][]string)
	b.roster = make(map[string]*rosterEntry)
	b.inGame = false
	b.phase = domain.PhaseSetup
	b.result = nil
}

func (b *matchBridge) setConnected(userID string, connected bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if connected {
		b.connected[userID] = true
		return
	}
	delete(b.connected, userID)
	if ch, ok := b.prompts[userID]; ok {
		delete(b.prompts, userID)
		close(ch)
	}
}

func (b *matchBridge) enqueue(op int64, data []byte, recipients ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enqueueLocked(op, data, recipients...)
}

func (b *matchBridge) enqueueLocked(op int64, data []byte, recipients ...string) {
	b.outbox = append(b.outbox, outbound{op: op, data: data, recipients: recipients})
}

// Publish implements app.EventSink.
func (b *matchBridge) Publish(ctx context.Context, events []app.Event) {
	b.bots.Publish(ctx, events)

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ev := range events {
		b.trackLocked(ev)
		op, data, err := encodeEvent(ev)
		if err != nil {
			b.logger.Error("Bridge: %v", err)
			continue
		}
		b.enqueueLocked(op, data, ev.Recipients...)
	}
}

// trackLocked mirrors what the match loop needs to know without touching the session.
func (b *matchBridge) trackLocked(ev app.Event) {
	switch p := ev.Payload.(type) {
	case app.GameStartedPayload:
		b.inGame = true
	case app.SetupFailedPayload:
		b.phase = domain.PhaseLobby
		b.roster = make(map[string]*rosterEntry)
	case app.PhaseChangedPayload:
		b.phase = p.Phase
	case app.SnapshotPayload:
		b.phase = p.Snapshot.Phase
		for _, id := range p.Snapshot.Dead {
			if e, ok := b.roster[id]; ok {
				e.alive = false
			}
		}
	case app.GameEndedPayload:
		b.inGame = false
		b.phase = domain.PhaseEnded
	}
}

// Ask implements ports.PromptPort.
func (b *matchBridge) Ask(ctx context.Context, prompt domain.ActionPrompt) (domain.Answer, error) {
	if b.bots.Has(prompt.PlayerID) {
		return b.bots.Ask(ctx, prompt)
	}
	data, err := encodePrompt(prompt)
	if err != nil {
		return domain.Answer{}, err
	}

	ch := make(chan domain.Answer, 1)
	b.mu.Lock()
	if !b.connected[prompt.PlayerID] {
		b.mu.Unlock()
		return domain.Answer{}, ports.ErrNoResponse
	}
	b.prompts[prompt.PlayerID] = ch
	b.enqueueLocked(OpActionPrompt, data, prompt.PlayerID)
	b.mu.Unlock()

	select {
	case <-ctx.Done():
		b.mu.Lock()
		if b.prompts[prompt.PlayerID] == ch {
			delete(b.prompts, prompt.PlayerID)
		}
		b.mu.Unlock()
		return domain.Answer{}, ctx.Err()
	case ans, ok := <-ch:
		if !ok {
			return domain.Answer{}, ports.ErrNoResponse
		}
		return ans, nil
	}
}

// submitAnswer hands a client's night action to the waiting prompt.
func (b *matchBridge) submitAnswer(userID string, ans domain.Answer) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.prompts[userID]
	if !ok {
		return errNotPrompted
	}
	delete(b.prompts, userID)
	ch <- ans
	return nil
}

// CollectVotes implements ports.VotePort. Bots vote at once; connected humans
// have until the window closes or everyone has voted.
func (b *matchBridge) CollectVotes(ctx context.Context, ballot ports.Ballot) (map[string]string, error) {
	votes, err := b.bots.CollectVotes(ctx, ballot)
	if err != nil {
		return nil, err
	}

	open := &openBallot{
		voters:  make(map[string]bool),
		choices: make(map[string]bool),
		votes:   make(map[string]string),
		done:    make(chan struct{}),
	}
	for _, c := range ballot.Choices {
		open.choices[c] = true
	}

	b.mu.Lock()
	for _, id := range ballot.Voters {
		if !b.bots.Has(id) && b.connected[id] {
			open.voters[id] = true
			open.humans++
		}
	}
	if open.humans == 0 {
		b.mu.Unlock()
		return votes, nil
	}
	data, err := encodeBallot(string(ballot.Kind), ballot.Round, ballot.Voters, ballot.Choices, ballot.Nominee, ballot.Window.Milliseconds())
	if err != nil {
		b.mu.Unlock()
		return votes, err
	}
	b.ballot = open
	b.enqueueLocked(OpBallotOpened, data)
	b.mu.Unlock()

	timer := time.NewTimer(ballot.Window)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	case <-open.done:
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.ballot = nil
	for voter, choice := range open.votes {
		votes[voter] = choice
	}
	return votes, ctx.Err()
}

// submitVote records or withdraws a human vote on the open ballot.
func (b *matchBridge) submitVote(userID, choice string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	open := b.ballot
	if open == nil {
		return errNoBallot
	}
	if !open.voters[userID] {
		return errNotEligible
	}
	if choice == "" {
		delete(open.votes, userID)
		return nil
	}
	if !open.choices[choice] {
		return errBadChoice
	}
	open.votes[userID] = choice
	if len(open.votes) == open.humans && !open.closed {
		open.closed = true
		close(open.done)
	}
	return nil
}

// NotifyRole implements ports.RoleNotifier. Disconnected humans are unreachable.
func (b *matchBridge) NotifyRole(ctx context.Context, card ports.RoleCard) error {
	if b.bots.Has(card.PlayerID) {
		if err := b.bots.NotifyRole(ctx, card); err != nil {
			return err
		}
		b.mu.Lock()
		b.roster[card.PlayerID] = &rosterEntry{alignment: card.Alignment, alive: true}
		b.mu.Unlock()
		return nil
	}

	_, data, err := encodeEvent(app.Event{Kind: app.EventRoleAssigned, Payload: app.RoleAssignedPayload{
		Role:              card.Role,
		Alignment:         card.Alignment,
		Teammates:         card.Teammates,
		ExecutionerTarget: card.ExecutionerTarget,
	}})
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.connected[card.PlayerID] {
		return errUnreachable
	}
	b.roster[card.PlayerID] = &rosterEntry{alignment: card.Alignment, alive: true}
	b.enqueueLocked(OpRoleAssigned, data, card.PlayerID)
	return nil
}

// appendWill queues a last will line until the engine drains it.
func (b *matchBridge) appendWill(userID, line string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.wills[userID]) >= maxPendingWills {
		return errWillBacklog
	}
	b.wills[userID] = append(b.wills[userID], line)
	return nil
}

// DrainLastWills implements ports.LastWillSource.
func (b *matchBridge) DrainLastWills() map[string][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.wills
	b.wills = make(map[string][]string)
	return out
}

func (b *matchBridge) sendError(userID string, code int, message string) {
	data, err := encodeError(code, message)
	if err != nil {
		b.logger.Error("Bridge: failed to encode error: %v", err)
		return
	}
	b.enqueue(OpGameError, data, userID)
}

func (b *matchBridge) finish(outcome *domain.Outcome, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.result = &gameResult{outcome: outcome, err: err}
	b.inGame = false
}

// takeResult returns the finished game's result once.
func (b *matchBridge) takeResult() *gameResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.result
	b.result = nil
	return r
}

func (b *matchBridge) currentPhase() domain.Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase
}

func (b *matchBridge) setPhase(p domain.Phase) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.phase = p
}

// standing answers the voice policy question for a user.
func (b *matchBridge) standing(userID string, seated bool) app.VoiceStanding {
	b.mu.Lock()
	defer b.mu.Unlock()
	st := app.VoiceStanding{Seated: seated, InGame: b.inGame}
	if e, ok := b.roster[userID]; ok {
		st.Alive = e.alive
		st.Alignment = e.alignment
	}
	return st
}

// flush sends every queued message. Targeted messages whose recipients are all
// offline are dropped rather than broadcast.
func (b *matchBridge) flush(dispatcher runtime.MatchDispatcher, presences map[string]runtime.Presence) {
	b.mu.Lock()
	pending := b.outbox
	b.outbox = nil
	b.mu.Unlock()

	for _, msg := range pending {
		var recipients []runtime.Presence
		if len(msg.recipients) > 0 {
			for _, id := range msg.recipients {
				if p, ok := presences[id]; ok {
					recipients = append(recipients, p)
				}
			}
			if len(recipients) == 0 {
				continue
			}
		}
		if err := dispatcher.BroadcastMessage(msg.op, msg.data, recipients, nil, true); err != nil {
			b.logger.Warn("Bridge: broadcast of op %d failed: %v", msg.op, err)
		}
	}
}

var (
	_ ports.PromptPort     = (*matchBridge)(nil)
	_ ports.VotePort       = (*matchBridge)(nil)
	_ ports.RoleNotifier   = (*matchBridge)(nil)
	_ ports.LastWillSource = (*matchBridge)(nil)
	_ app.EventSink        = (*matchBridge)(nil)
)
