package nakama

import (
	"context"
	"errors"
	"testing"
	"time"

	"mafiaville/internal/app"
	"mafiaville/internal/bot"
	"mafiaville/internal/domain"
	"mafiaville/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

func newTestBridge(connected ...string) *matchBridge {
	b := newMatchBridge(noopLogger{}, bot.NewTable(0, 0, 1))
	for _, id := range connected {
		b.setConnected(id, true)
	}
	return b
}

// waitFor retries fn until it succeeds or a second passes.
func waitFor(t *testing.T, fn func() error) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		err := fn()
		if err == nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not met: %v", err)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestBridgeAskDeliversHumanAnswer(t *testing.T) {
	b := newTestBridge("u1")
	want := domain.Answer{Kind: domain.ActionHeal, Targets: []string{"u2"}}

	type result struct {
		ans domain.Answer
		err error
	}
	done := make(chan result, 1)
	go func() {
		ans, err := b.Ask(context.Background(), domain.ActionPrompt{PlayerID: "u1", Role: domain.RoleDoctor})
		done <- result{ans, err}
	}()

	waitFor(t, func() error { return b.submitAnswer("u1", want) })
	res := <-done
	if res.err != nil {
		t.Fatalf("Ask error: %v", res.err)
	}
	if res.ans.Kind != want.Kind || len(res.ans.Targets) != 1 || res.ans.Targets[0] != "u2" {
		t.Fatalf("answer = %+v", res.ans)
	}

	dispatcher := &mockDispatcher{}
	b.flush(dispatcher, map[string]runtime.Presence{"u1": presence("u1")})
	prompts := dispatcher.messages(OpActionPrompt)
	if len(prompts) != 1 || prompts[0].recipients[0] != "u1" {
		t.Fatalf("prompt messages = %+v", prompts)
	}
	if err := b.submitAnswer("u1", want); !errors.Is(err, errNotPrompted) {
		t.Fatalf("second answer error = %v, want errNotPrompted", err)
	}
}

func TestBridgeAskUnreachable(t *testing.T) {
	b := newTestBridge()
	if _, err := b.Ask(context.Background(), domain.ActionPrompt{PlayerID: "u1"}); !errors.Is(err, ports.ErrNoResponse) {
		t.Fatalf("Ask of disconnected player error = %v", err)
	}

	b.setConnected("u2", true)
	done := make(chan error, 1)
	go func() {
		_, err := b.Ask(context.Background(), domain.ActionPrompt{PlayerID: "u2"})
		done <- err
	}()
	waitFor(t, func() error {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.prompts["u2"]; !ok {
			return errNotPrompted
		}
		return nil
	})
	b.setConnected("u2", false)
	if err := <-done; !errors.Is(err, ports.ErrNoResponse) {
		t.Fatalf("Ask after disconnect error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	b.setConnected("u3", true)
	if _, err := b.Ask(ctx, domain.ActionPrompt{PlayerID: "u3"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Ask timeout error = %v", err)
	}
}

func TestBridgeCollectVotes(t *testing.T) {
	b := newTestBridge("u1", "u2")
	ballot := ports.Ballot{
		Kind:    ports.BallotNomination,
		Round:   1,
		Voters:  []string{"u1", "u2"},
		Choices: []string{"u1", "u2", "u3"},
		Window:  time.Second,
	}

	if err := b.submitVote("u1", "u2"); !errors.Is(err, errNoBallot) {
		t.Fatalf("vote without ballot error = %v", err)
	}

	type result struct {
		votes map[string]string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		votes, err := b.CollectVotes(context.Background(), ballot)
		done <- result{votes, err}
	}()

	waitFor(t, func() error { return b.submitVote("u1", "u3") })
	if err := b.submitVote("u9", "u3"); !errors.Is(err, errNotEligible) {
		t.Fatalf("stranger vote error = %v", err)
	}
	if err := b.submitVote("u2", "nobody"); !errors.Is(err, errBadChoice) {
		t.Fatalf("invalid choice error = %v", err)
	}
	if err := b.submitVote("u2", "u3"); err != nil {
		t.Fatalf("vote error: %v", err)
	}

	select {
	case res := <-done:
		if res.err != nil {
			t.Fatalf("CollectVotes error: %v", res.err)
		}
		if res.votes["u1"] != "u3" || res.votes["u2"] != "u3" {
			t.Fatalf("votes = %v", res.votes)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("ballot did not close once everyone voted")
	}
}

func TestBridgeCollectVotesWithoutHumans(t *testing.T) {
	b := newTestBridge()
	votes, err := b.CollectVotes(context.Background(), ports.Ballot{Voters: []string{"u1"}, Choices: []string{"u1"}, Window: time.Hour})
	if err != nil || len(votes) != 0 {
		t.Fatalf("votes = %v, err = %v", votes, err)
	}
}

func TestBridgeNotifyRoleAndStanding(t *testing.T) {
	b := newTestBridge("u1")
	ctx := context.Background()

	if err := b.NotifyRole(ctx, ports.RoleCard{PlayerID: "u2", Role: domain.RoleDoctor}); !errors.Is(err, errUnreachable) {
		t.Fatalf("NotifyRole of disconnected player error = %v", err)
	}
	if err := b.NotifyRole(ctx, ports.RoleCard{PlayerID: "u1", Role: domain.RoleMafioso, Alignment: domain.AlignmentMafia}); err != nil {
		t.Fatalf("NotifyRole error: %v", err)
	}
	b.Publish(ctx, []app.Event{{Kind: app.EventGameStarted, Payload: app.GameStartedPayload{GameID: "g"}}})

	st := b.standing("u1", true)
	if !st.InGame || !st.Alive || st.Alignment != domain.AlignmentMafia {
		t.Fatalf("standing = %+v", st)
	}

	b.Publish(ctx, []app.Event{{Kind: app.EventSnapshot, Payload: app.SnapshotPayload{Snapshot: domain.Snapshot{Phase: domain.PhaseDay, Dead: []string{"u1"}}}}})
	if st := b.standing("u1", true); st.Alive {
		t.Fatalf("dead player still alive in standing")
	}
	if b.currentPhase() != domain.PhaseDay {
		t.Fatalf("phase = %s", b.currentPhase())
	}
}

func TestBridgeFlushSkipsOfflineRecipients(t *testing.T) {
	b := newTestBridge()
	b.enqueue(OpNotice, []byte(`{}`), "u2")
	b.enqueue(OpSnapshot, []byte(`{}`))
	b.enqueue(OpInvestigation, []byte(`{}`), "u1")

	dispatcher := &mockDispatcher{}
	b.flush(dispatcher, map[string]runtime.Presence{"u1": presence("u1")})

	if len(dispatcher.sent) != 2 {
		t.Fatalf("sent = %+v", dispatcher.sent)
	}
	if dispatcher.sent[0].opCode != OpSnapshot || dispatcher.sent[0].recipients != nil {
		t.Fatalf("broadcast = %+v", dispatcher.sent[0])
	}
	if dispatcher.sent[1].opCode != OpInvestigation || dispatcher.sent[1].recipients[0] != "u1" {
		t.Fatalf("targeted = %+v", dispatcher.sent[1])
	}

	b.flush(dispatcher, nil)
	if len(dispatcher.sent) != 2 {
		t.Fatalf("outbox not drained")
	}
}

func TestBridgeWills(t *testing.T) {
	b := newTestBridge()
	for i := 0; i < maxPendingWills; i++ {
		if err := b.appendWill("u1", "line"); err != nil {
			t.Fatalf("appendWill error: %v", err)
		}
	}
	if err := b.appendWill("u1", "one more"); !errors.Is(err, errWillBacklog) {
		t.Fatalf("backlog error = %v", err)
	}
	if got := b.DrainLastWills(); len(got["u1"]) != maxPendingWills {
		t.Fatalf("drained %d lines", len(got["u1"]))
	}
	if got := b.DrainLastWills(); len(got) != 0 {
		t.Fatalf("second drain = %v", got)
	}
}
