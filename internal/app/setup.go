package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"mafiaville/internal/domain"
	"mafiaville/internal/ports"

	"golang.org/x/sync/errgroup"
)

// SetupError reports the players that could not receive their role. The
// assignment was rolled back before it is returned.
type SetupError struct {
	Unreachable []string
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("role notification failed for %s", strings.Join(e.Unreachable, ", "))
}

// Is lets errors.Is match ErrSetupRolledBack.
func (e *SetupError) Is(target error) bool {
	return target == ErrSetupRolledBack
}

var (
	mafiaTiers = [][]domain.Role{
		{domain.RoleGodfather},
		{domain.RoleMafioso},
		{domain.RoleFramer, domain.RoleSilencer},
	}
	villageTiers = [][]domain.Role{
		{domain.RoleDoctor, domain.RoleDetective},
		{domain.RoleJailer, domain.RoleVigilante, domain.RoleMayor},
		{domain.RoleDistractor, domain.RolePI, domain.RoleSpy},
	}
	neutralTiers = [][]domain.Role{
		{domain.RoleJester, domain.RoleExecutioner, domain.RoleArsonist, domain.RoleBaiter},
	}
)

// DrawRoles returns a role list for n players. Mafia is max(1, n/4) capped at
// n/3, neutral is n/6 and the rest is Village. Tiers are used in order and
// shuffled within, and Villager fills what the Village tiers cannot.
func (s *Service) DrawRoles(n int) ([]domain.Role, error) {
	if n < domain.MinPlayers {
		return nil, ErrTooFewPlayers
	}
	mafia := max(1, n/4)
	mafia = min(mafia, domain.MafiaCap(n))
	neutral := n / 6

	roles := make([]domain.Role, 0, n)
	roles = append(roles, s.drawTiers(mafiaTiers, mafia)...)
	roles = append(roles, s.drawTiers(neutralTiers, neutral)...)
	village := s.drawTiers(villageTiers, n-len(roles))
	for len(roles)+len(village) < n {
		village = append(village, domain.RoleVillager)
	}
	return append(roles, village...), nil
}

func (s *Service) drawTiers(tiers [][]domain.Role, count int) []domain.Role {
	out := make([]domain.Role, 0, count)
	for _, tier := range tiers {
		pool := append([]domain.Role(nil), tier...)
		s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		for _, r := range pool {
			if len(out) == count {
				return out
			}
			out = append(out, r)
		}
	}
	return out
}

// AssignRoles draws and commits roles, then delivers every role card
// concurrently. If any player cannot be reached the whole assignment is
// reverted and a *SetupError lists the unreachable players.
func (s *Service) AssignRoles(ctx context.Context, session *domain.GameSession, settings domain.Settings, notifier ports.RoleNotifier) ([]Event, error) {
	if session.Phase != domain.PhaseLobby {
		return nil, ErrNotInSetup
	}
	n := len(session.Order)
	roles, err := s.DrawRoles(n)
	if err != nil {
		return nil, err
	}

	session.Phase = domain.PhaseSetup
	seats := append([]string(nil), session.Order...)
	s.shuffle(seats)
	for i, id := range seats {
		session.Assign(id, roles[i])
	}
	if exe := session.Roles.Executioner.Holder; exe != "" && len(session.VillageIDs) > 0 {
		session.Roles.Executioner.Target = session.VillageIDs[s.rng.Intn(len(session.VillageIDs))]
	}

	cards := s.roleCards(session, settings)

	var (
		mu          sync.Mutex
		unreachable []string
		g           errgroup.Group
	)
	for _, card := range cards {
		card := card
		g.Go(func() error {
			if err := notifier.NotifyRole(ctx, card); err != nil {
				mu.Lock()
				unreachable = append(unreachable, card.PlayerID)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(unreachable) > 0 {
		sort.Strings(unreachable)
		session.ResetAssignments(settings.JailerExecutions)
		return []Event{{
			Kind:    EventSetupFailed,
			Payload: SetupFailedPayload{Unreachable: unreachable},
		}}, &SetupError{Unreachable: unreachable}
	}

	session.GameReady = true
	return []Event{{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			GameID:  session.ID,
			Players: append([]string(nil), session.Order...),
			Mafia:   len(session.MafiaIDs),
			Village: len(session.VillageIDs),
			Neutral: len(session.NeutralIDs),
		},
	}}, nil
}

func (s *Service) roleCards(session *domain.GameSession, settings domain.Settings) []ports.RoleCard {
	showTeam := len(session.Order) >= settings.MafiaVisibilityThreshold
	cards := make([]ports.RoleCard, 0, len(session.Order))
	for _, id := range session.Order {
		p := session.Players[id]
		card := ports.RoleCard{PlayerID: id, Role: p.Role, Alignment: p.Alignment}
		if showTeam && p.Alignment == domain.AlignmentMafia {
			card.Teammates = session.Teammates(id)
		}
		if p.Role == domain.RoleExecutioner {
			card.ExecutionerTarget = session.Roles.Executioner.Target
		}
		cards = append(cards, card)
	}
	return cards
}
