package domain

// GameName is advertised in the match label so quick match only finds Mafiaville matches.
const GameName = "mafiaville"

// LabelPayload produces the values needed for match label advertisement.
type LabelPayload struct {
	Open    int    `json:"open"`
	Game    string `json:"game"`
	Phase   string `json:"phase"`
	Players int    `json:"players"`
}

// ComputeLabel derives the advertised label from the lobby and phase.
// Seats are only advertised as open while the lobby accepts players.
func ComputeLabel(l *Lobby, phase Phase) LabelPayload {
	open := 0
	if phase == PhaseLobby {
		open = l.OpenSeats()
	}
	return LabelPayload{
		Open:    open,
		Game:    GameName,
		Phase:   string(phase),
		Players: len(l.Occupied()),
	}
}

// Snapshot is the public view of a game broadcast after each phase.
type Snapshot struct {
	Round         int
	Phase         Phase
	Alive         []string
	Dead          []string
	Silenced      []string
	RevealedMayor string
}

// PublicSnapshot builds the view every player may see.
func (s *GameSession) PublicSnapshot() Snapshot {
	snap := Snapshot{Round: s.Round, Phase: s.Phase, RevealedMayor: s.RevealedMayor()}
	for _, id := range s.Order {
		p := s.Players[id]
		if !p.Alive {
			snap.Dead = append(snap.Dead, id)
			continue
		}
		snap.Alive = append(snap.Alive, id)
		if p.SilencedThisRound {
			snap.Silenced = append(snap.Silenced, id)
		}
	}
	return snap
}
