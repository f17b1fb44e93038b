package domain

import (
	"fmt"
	"time"
)

// Phase represents the lifecycle stage of a Mafiaville game.
type Phase string

const (
	// PhaseLobby is the pre-game state where players can join.
	PhaseLobby Phase = "lobby"
	// PhaseSetup is the window in which roles are drawn and delivered.
	PhaseSetup Phase = "setup"
	// PhaseNight is the phase in which night actions are collected and resolved.
	PhaseNight Phase = "night"
	// PhaseDay is the discussion and voting phase.
	PhaseDay Phase = "day"
	// PhaseEnded is the state after a win condition was met.
	PhaseEnded Phase = "ended"
)

// Player holds the per-game state of a participant.
type Player struct {
	ID          string
	DisplayName string
	Role        Role
	Alignment   Alignment
	Alive       bool

	// Per-round flags, reset by BeginNight.
	Distracted        bool
	Framed            bool
	SilencedThisRound bool
	SilencedLastRound bool
	JailedTonight     bool

	LastWill []string
}

// Settings is the read-only configuration consumed by the round engine.
type Settings struct {
	NightDuration            time.Duration
	DayDuration              time.Duration
	VotingDuration           time.Duration
	JailDuration             time.Duration
	MafiaVisibilityThreshold int
	JailerExecutions         int
}

// InconsistentStateError reports a broken engine invariant. It is raised with
// panic since it always points to an upstream defect.
type InconsistentStateError struct {
	Reason string
}

func (e *InconsistentStateError) Error() string {
	return "inconsistent game state: " + e.Reason
}

func inconsistent(format string, args ...any) {
	panic(&InconsistentStateError{Reason: fmt.Sprintf(format, args...)})
}

// GameSession is the single owned aggregate for one game instance.
type GameSession struct {
	ID    string
	Phase Phase
	Round int

	Players map[string]*Player
	Order   []string // seat order

	Roles RoleStates

	MafiaIDs   []string
	VillageIDs []string
	NeutralIDs []string

	GameReady bool

	Current *RoundRecord
	Outcome *Outcome

	alive map[string]struct{}
}

// NewGameSession creates a lobby-stage session for the given players in seat order.
func NewGameSession(id string, players []*Player, jailerExecutions int) *GameSession {
	s := &GameSession{
		ID:      id,
		Phase:   PhaseLobby,
		Players: make(map[string]*Player, len(players)),
		Order:   make([]string, 0, len(players)),
		Roles:   NewRoleStates(jailerExecutions),
		alive:   make(map[string]struct{}, len(players)),
	}
	for _, p := range players {
		p.Alive = true
		s.Players[p.ID] = p
		s.Order = append(s.Order, p.ID)
		s.alive[p.ID] = struct{}{}
	}
	return s
}

// Player returns the player with the given id.
func (s *GameSession) Player(id string) (*Player, bool) {
	p, ok := s.Players[id]
	return p, ok
}

// IsAlive reports whether id names a living player.
func (s *GameSession) IsAlive(id string) bool {
	_, ok := s.alive[id]
	return ok
}

// AliveCount is the size of the living set.
func (s *GameSession) AliveCount() int {
	return len(s.alive)
}

// AliveIDs returns the living players in seat order.
func (s *GameSession) AliveIDs() []string {
	out := make([]string, 0, len(s.alive))
	for _, id := range s.Order {
		if s.IsAlive(id) {
			out = append(out, id)
		}
	}
	return out
}

// CountAlive counts living players with the given alignment.
func (s *GameSession) CountAlive(a Alignment) int {
	n := 0
	for id := range s.alive {
		if s.Players[id].Alignment == a {
			n++
		}
	}
	return n
}

// Kill marks a player dead. It reports false when the player was not alive.
// The living set and the player's Alive flag only change together here.
func (s *GameSession) Kill(id string) bool {
	p, ok := s.Players[id]
	if !ok || !p.Alive {
		return false
	}
	if _, ok := s.alive[id]; !ok {
		inconsistent("player %s flagged alive but missing from living set", id)
	}
	p.Alive = false
	delete(s.alive, id)
	return true
}

// HolderOf returns the player assigned the given unique role, living or dead.
// It returns "" when the role is vacant.
func (s *GameSession) HolderOf(role Role) string {
	holder := ""
	for _, id := range s.Order {
		if s.Players[id].Role != role {
			continue
		}
		if holder != "" && role.Unique() {
			inconsistent("role %s held by both %s and %s", role, holder, id)
		}
		if holder == "" {
			holder = id
		}
	}
	return holder
}

// LivingHolderOf returns the holder of role if they are alive, else "".
func (s *GameSession) LivingHolderOf(role Role) string {
	id := s.HolderOf(role)
	if id == "" || !s.IsAlive(id) {
		return ""
	}
	return id
}

// Assign gives a player a role and records them in the alignment tracking list.
func (s *GameSession) Assign(id string, role Role) {
	p, ok := s.Players[id]
	if !ok {
		inconsistent("assigning %s to unknown player %s", role, id)
	}
	if !role.Valid() {
		inconsistent("assigning unknown role %q to %s", role, id)
	}
	p.Role = role
	p.Alignment = role.Alignment()
	switch p.Alignment {
	case AlignmentMafia:
		s.MafiaIDs = append(s.MafiaIDs, id)
	case AlignmentVillage:
		s.VillageIDs = append(s.VillageIDs, id)
	case AlignmentNeutral:
		s.NeutralIDs = append(s.NeutralIDs, id)
	}
	s.Roles.bindHolder(role, id)
}

// ResetAssignments reverts every role assignment made during setup.
func (s *GameSession) ResetAssignments(jailerExecutions int) {
	for _, p := range s.Players {
		p.Role = RoleNone
		p.Alignment = AlignmentNone
	}
	s.MafiaIDs = nil
	s.VillageIDs = nil
	s.NeutralIDs = nil
	s.Roles = NewRoleStates(jailerExecutions)
	s.GameReady = false
	s.Phase = PhaseLobby
}

// Teammates returns the other members of the player's alignment list.
func (s *GameSession) Teammates(id string) []string {
	var list []string
	switch s.Players[id].Alignment {
	case AlignmentMafia:
		list = s.MafiaIDs
	default:
		return nil
	}
	out := make([]string, 0, len(list))
	for _, other := range list {
		if other != id {
			out = append(out, other)
		}
	}
	return out
}

// BeginNight opens a new round: transient flags are cleared, silence rotates
// into SilencedLastRound and a fresh RoundRecord replaces the previous one.
func (s *GameSession) BeginNight() *RoundRecord {
	s.Round++
	s.Phase = PhaseNight
	for _, p := range s.Players {
		p.SilencedLastRound = p.SilencedThisRound
		p.SilencedThisRound = false
		p.Distracted = false
		p.Framed = false
		p.JailedTonight = false
	}
	s.Roles.Jailer.Previous = s.Roles.Jailer.Current
	s.Roles.Jailer.Current = ""
	s.Current = NewRoundRecord(s.Round)
	return s.Current
}

// Jail marks tonight's prisoner.
func (s *GameSession) Jail(id string) {
	p, ok := s.Players[id]
	if !ok || !p.Alive {
		return
	}
	p.JailedTonight = true
	s.Roles.Jailer.Current = id
}

// Jailed reports whether id is tonight's prisoner.
func (s *GameSession) Jailed(id string) bool {
	p, ok := s.Players[id]
	return ok && p.JailedTonight
}

// Silenced reports whether id is barred from speaking and voting today.
func (s *GameSession) Silenced(id string) bool {
	p, ok := s.Players[id]
	return ok && p.SilencedThisRound
}

// AliveUnsilenced returns living players allowed to vote, in seat order.
func (s *GameSession) AliveUnsilenced() []string {
	out := make([]string, 0, len(s.alive))
	for _, id := range s.AliveIDs() {
		if !s.Players[id].SilencedThisRound {
			out = append(out, id)
		}
	}
	return out
}

// RevealedMayor returns the revealed, living Mayor or "".
func (s *GameSession) RevealedMayor() string {
	m := s.Roles.Mayor
	if m.Revealed && m.Holder != "" && s.IsAlive(m.Holder) {
		return m.Holder
	}
	return ""
}
