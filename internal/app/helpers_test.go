package app

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"mafiaville/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// recordingSink keeps every published event.
type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Publish(_ context.Context, events []Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
}

func (s *recordingSink) ofKind(kind EventKind) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, ev := range s.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

type seat struct {
	id   string
	role domain.Role
}

// newTable builds a ready session with fixed roles, in seat order.
func newTable(t *testing.T, seats ...seat) *domain.GameSession {
	t.Helper()
	players := make([]*domain.Player, 0, len(seats))
	for _, s := range seats {
		players = append(players, &domain.Player{ID: s.id, DisplayName: s.id})
	}
	session := domain.NewGameSession("game-1", players, domain.DefaultJailerExecutions)
	for _, s := range seats {
		session.Assign(s.id, s.role)
	}
	session.GameReady = true
	return session
}

// eightPlayers is the standard table used by the night scenarios.
func eightPlayers(t *testing.T) *domain.GameSession {
	return newTable(t,
		seat{"gf", domain.RoleGodfather},
		seat{"maf", domain.RoleMafioso},
		seat{"doc", domain.RoleDoctor},
		seat{"det", domain.RoleDetective},
		seat{"vig", domain.RoleVigilante},
		seat{"jail", domain.RoleJailer},
		seat{"v1", domain.RoleVillager},
		seat{"v2", domain.RoleVillager},
	)
}

func newTestService() *Service {
	return NewService(rand.New(rand.NewSource(1)))
}

// assertAliveConsistent checks that the living set matches the Alive flags.
func assertAliveConsistent(t *testing.T, s *domain.GameSession) {
	t.Helper()
	alive := 0
	for _, p := range s.Players {
		if p.Alive {
			alive++
			if !s.IsAlive(p.ID) {
				t.Fatalf("player %s flagged alive but not in living set", p.ID)
			}
		} else if s.IsAlive(p.ID) {
			t.Fatalf("dead player %s still in living set", p.ID)
		}
	}
	if alive != s.AliveCount() {
		t.Fatalf("alive flags = %d, living set = %d", alive, s.AliveCount())
	}
}

func noticesFor(events []Event, to string, kind NoticeKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind != EventNotice || len(ev.Recipients) != 1 || ev.Recipients[0] != to {
			continue
		}
		if ev.Payload.(NoticePayload).Kind == kind {
			n++
		}
	}
	return n
}

func eventsOfKind(events []Event, kind EventKind) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}
