package brain

import (
	"mafiaville/internal/domain"
)

// Standing is what a bot believes about another player.
type Standing int

const (
	StandingUnknown   Standing = iota // no evidence either way
	StandingTrusted                   // read innocent or publicly confirmed
	StandingSuspected                 // read suspicious or caught near a kill
	StandingAlly                      // known teammate
)

// GameMemory stores the bot's private view of the game.
type GameMemory struct {
	Self              string
	Role              domain.Role
	Alignment         domain.Alignment
	ExecutionerTarget string

	// Order is the Mafia kill target received from the Godfather tonight.
	Order string

	profiles map[string]*SuspectProfile
	dead     map[string]bool
	// pendingVisits holds spy reports until the night summary names the victims.
	pendingVisits map[string][]string
}

// NewMemory initializes a fresh memory for the given player.
func NewMemory(self string) *GameMemory {
	m := &GameMemory{Self: self}
	m.Reset()
	return m
}

// Reset clears everything learned during a game.
func (m *GameMemory) Reset() {
	m.Role = domain.RoleNone
	m.Alignment = domain.AlignmentNone
	m.ExecutionerTarget = ""
	m.Order = ""
	m.profiles = make(map[string]*SuspectProfile)
	m.dead = make(map[string]bool)
	m.pendingVisits = make(map[string][]string)
}

// Learn records the bot's own role card.
func (m *GameMemory) Learn(role domain.Role, alignment domain.Alignment, teammates []string, exeTarget string) {
	m.Role = role
	m.Alignment = alignment
	m.ExecutionerTarget = exeTarget
	for _, id := range teammates {
		m.Profile(id).Standing = StandingAlly
	}
}

// Profile returns the profile of id, creating it on first use.
func (m *GameMemory) Profile(id string) *SuspectProfile {
	p, ok := m.profiles[id]
	if !ok {
		p = NewSuspectProfile(id)
		m.profiles[id] = p
	}
	return p
}

// StandingOf returns the current belief about id.
func (m *GameMemory) StandingOf(id string) Standing {
	if p, ok := m.profiles[id]; ok {
		return p.Standing
	}
	return StandingUnknown
}

// IsAlly reports whether id is a known teammate.
func (m *GameMemory) IsAlly(id string) bool {
	return m.StandingOf(id) == StandingAlly
}

// MarkSuspicious raises suspicion on id unless it is a teammate.
func (m *GameMemory) MarkSuspicious(id string, weight int) {
	m.Profile(id).RecordSuspicious(weight)
}

// MarkTrusted clears id of suspicion unless it is a teammate.
func (m *GameMemory) MarkTrusted(id string) {
	m.Profile(id).RecordCleared()
}

// MarkDead removes id from future consideration.
func (m *GameMemory) MarkDead(id string) {
	m.dead[id] = true
	delete(m.pendingVisits, id)
}

// IsDead reports whether id is known to be dead.
func (m *GameMemory) IsDead(id string) bool {
	return m.dead[id]
}

// RecordVisits stores a spy report until the night's victims are known.
func (m *GameMemory) RecordVisits(target string, visited []string) {
	m.pendingVisits[target] = append([]string(nil), visited...)
}

// SettleVisits flags every watched player that visited one of the victims.
func (m *GameMemory) SettleVisits(victims []string) {
	for target, visited := range m.pendingVisits {
		for _, house := range visited {
			for _, v := range victims {
				if house == v {
					m.MarkSuspicious(target, 2)
				}
			}
		}
	}
	m.pendingVisits = make(map[string][]string)
}

// Suspicion is the accumulated suspicion score of id. Teammates and trusted players score zero.
func (m *GameMemory) Suspicion(id string) int {
	p, ok := m.profiles[id]
	if !ok || p.Standing == StandingAlly || p.Standing == StandingTrusted {
		return 0
	}
	return p.Score
}

// MostSuspicious returns the candidate with the highest positive suspicion.
// Ties keep the earlier candidate.
func (m *GameMemory) MostSuspicious(candidates []string) (string, bool) {
	best, bestScore := "", 0
	for _, id := range candidates {
		if id == m.Self || m.dead[id] {
			continue
		}
		if s := m.Suspicion(id); s > bestScore {
			best, bestScore = id, s
		}
	}
	return best, best != ""
}

// MostTrusted returns the first living trusted candidate other than the bot itself.
func (m *GameMemory) MostTrusted(candidates []string) (string, bool) {
	for _, id := range candidates {
		if id != m.Self && !m.dead[id] && m.StandingOf(id) == StandingTrusted {
			return id, true
		}
	}
	return "", false
}
