package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"mafiaville/internal/domain"
	"mafiaville/internal/ports"
)

type fakeRoleNotifier struct {
	mu    sync.Mutex
	fail  map[string]bool
	cards map[string]ports.RoleCard
}

func (f *fakeRoleNotifier) NotifyRole(_ context.Context, card ports.RoleCard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cards == nil {
		f.cards = make(map[string]ports.RoleCard)
	}
	f.cards[card.PlayerID] = card
	if f.fail[card.PlayerID] {
		return errors.New("player unreachable")
	}
	return nil
}

func lobbySession(n int) *domain.GameSession {
	players := make([]*domain.Player, 0, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("p%d", i)
		players = append(players, &domain.Player{ID: id, DisplayName: id})
	}
	return domain.NewGameSession("game-1", players, domain.DefaultJailerExecutions)
}

func TestDrawRolesDistribution(t *testing.T) {
	tests := []struct {
		n           int
		wantMafia   int
		wantNeutral int
	}{
		{n: 5, wantMafia: 1, wantNeutral: 0},
		{n: 6, wantMafia: 1, wantNeutral: 1},
		{n: 8, wantMafia: 2, wantNeutral: 1},
		{n: 12, wantMafia: 3, wantNeutral: 2},
		{n: 16, wantMafia: 4, wantNeutral: 2},
	}
	svc := newTestService()
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_players", tt.n), func(t *testing.T) {
			roles, err := svc.DrawRoles(tt.n)
			if err != nil {
				t.Fatalf("draw error: %v", err)
			}
			if len(roles) != tt.n {
				t.Fatalf("roles = %d, want %d", len(roles), tt.n)
			}
			counts := map[domain.Alignment]int{}
			seen := map[domain.Role]bool{}
			for _, r := range roles {
				counts[r.Alignment()]++
				if r.Unique() && seen[r] {
					t.Fatalf("role %s drawn twice", r)
				}
				seen[r] = true
			}
			if counts[domain.AlignmentMafia] != tt.wantMafia || counts[domain.AlignmentNeutral] != tt.wantNeutral {
				t.Fatalf("counts = %v", counts)
			}
			if counts[domain.AlignmentMafia] > domain.MafiaCap(tt.n) {
				t.Fatalf("mafia exceeds cap")
			}
			if !seen[domain.RoleGodfather] {
				t.Fatal("godfather missing")
			}
		})
	}
}

func TestDrawRolesTooFew(t *testing.T) {
	if _, err := newTestService().DrawRoles(4); !errors.Is(err, ErrTooFewPlayers) {
		t.Fatalf("err = %v, want ErrTooFewPlayers", err)
	}
}

func TestAssignRolesCommits(t *testing.T) {
	s := lobbySession(8)
	notifier := &fakeRoleNotifier{}
	settings := domain.Settings{MafiaVisibilityThreshold: 7, JailerExecutions: 3}

	events, err := newTestService().AssignRoles(context.Background(), s, settings, notifier)
	if err != nil {
		t.Fatalf("assign error: %v", err)
	}
	if !s.GameReady || s.Phase != domain.PhaseSetup {
		t.Fatalf("ready = %v phase = %s", s.GameReady, s.Phase)
	}
	if len(events) != 1 || events[0].Kind != EventGameStarted {
		t.Fatalf("events = %+v", events)
	}
	if got := len(s.MafiaIDs) + len(s.VillageIDs) + len(s.NeutralIDs); got != 8 {
		t.Fatalf("tracked players = %d", got)
	}
	for _, id := range s.MafiaIDs {
		if len(notifier.cards[id].Teammates) != len(s.MafiaIDs)-1 {
			t.Fatalf("mafia %s teammates = %v", id, notifier.cards[id].Teammates)
		}
	}
	if exe := s.Roles.Executioner.Holder; exe != "" {
		target := s.Players[s.Roles.Executioner.Target]
		if target == nil || target.Alignment != domain.AlignmentVillage {
			t.Fatalf("executioner target %q is not village", s.Roles.Executioner.Target)
		}
	}
}

func TestAssignRolesHidesTeamBelowThreshold(t *testing.T) {
	s := lobbySession(8)
	notifier := &fakeRoleNotifier{}
	settings := domain.Settings{MafiaVisibilityThreshold: 9, JailerExecutions: 3}
	if _, err := newTestService().AssignRoles(context.Background(), s, settings, notifier); err != nil {
		t.Fatalf("assign error: %v", err)
	}
	for _, id := range s.MafiaIDs {
		if len(notifier.cards[id].Teammates) != 0 {
			t.Fatalf("teammates revealed below threshold")
		}
	}
}

func TestAssignRolesRollsBackOnNotificationFailure(t *testing.T) {
	s := lobbySession(6)
	notifier := &fakeRoleNotifier{fail: map[string]bool{"p4": true}}
	settings := domain.Settings{MafiaVisibilityThreshold: 7, JailerExecutions: 3}

	events, err := newTestService().AssignRoles(context.Background(), s, settings, notifier)
	var setupErr *SetupError
	if !errors.As(err, &setupErr) || !errors.Is(err, ErrSetupRolledBack) {
		t.Fatalf("err = %v, want *SetupError", err)
	}
	if len(setupErr.Unreachable) != 1 || setupErr.Unreachable[0] != "p4" {
		t.Fatalf("unreachable = %v", setupErr.Unreachable)
	}
	if len(notifier.cards) != 6 {
		t.Fatalf("notified %d players, want all 6 attempted", len(notifier.cards))
	}
	for id, p := range s.Players {
		if p.Role != domain.RoleNone || p.Alignment != domain.AlignmentNone {
			t.Fatalf("player %s kept %s/%s after rollback", id, p.Role, p.Alignment)
		}
	}
	if s.GameReady {
		t.Fatal("game ready after rollback")
	}
	if len(s.MafiaIDs) != 0 || len(s.VillageIDs) != 0 || len(s.NeutralIDs) != 0 {
		t.Fatal("tracking lists not cleared")
	}
	if s.Roles.Godfather.Holder != "" || s.Roles.Jailer.KillsLeft != 3 {
		t.Fatalf("role states not reset: %+v", s.Roles)
	}
	if len(events) != 1 || events[0].Kind != EventSetupFailed {
		t.Fatalf("events = %+v", events)
	}

	// A retry from the lobby succeeds once everybody is reachable.
	notifier.fail = nil
	if _, err := newTestService().AssignRoles(context.Background(), s, settings, notifier); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
}

func TestAssignRolesRequiresLobby(t *testing.T) {
	s := lobbySession(6)
	s.Phase = domain.PhaseNight
	if _, err := newTestService().AssignRoles(context.Background(), s, domain.Settings{}, &fakeRoleNotifier{}); !errors.Is(err, ErrNotInSetup) {
		t.Fatalf("err = %v, want ErrNotInSetup", err)
	}
}

func TestAppendLastWill(t *testing.T) {
	s := lobbySession(5)
	svc := newTestService()
	if err := svc.AppendLastWill(s, "p1", "  I was the doctor  "); err != nil {
		t.Fatalf("append error: %v", err)
	}
	if got := s.Players["p1"].LastWill; len(got) != 1 || got[0] != "I was the doctor" {
		t.Fatalf("will = %v", got)
	}
	if err := svc.AppendLastWill(s, "nobody", "x"); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("err = %v", err)
	}
	for i := 0; i < maxWillLines-1; i++ {
		_ = svc.AppendLastWill(s, "p1", "line")
	}
	if err := svc.AppendLastWill(s, "p1", "overflow"); !errors.Is(err, ErrWillFull) {
		t.Fatalf("err = %v, want ErrWillFull", err)
	}
}
