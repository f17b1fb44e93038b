package app

import (
	"slices"

	"mafiaville/internal/domain"
)

// EvaluateWin checks the end conditions after a death-producing event.
// lynched is the player just executed by vote, or "".
// Neutral exclusive wins are checked first, then Mafia parity and Village elimination.
// It returns nil while the game continues.
func (s *Service) EvaluateWin(session *domain.GameSession, lynched string) *domain.Outcome {
	if session.Outcome != nil {
		return session.Outcome
	}
	out := exclusiveWin(session, lynched)
	if out == nil {
		out = factionWin(session)
	}
	if out == nil {
		return nil
	}
	if !out.Winner.Exclusive() {
		b := session.Roles.Baiter
		if b.Holder != "" && session.IsAlive(b.Holder) && b.Baits >= domain.BaiterWinThreshold {
			out.CoWinners = append(out.CoWinners, b.Holder)
		}
	}
	session.Outcome = out
	session.Phase = domain.PhaseEnded
	return out
}

func exclusiveWin(session *domain.GameSession, lynched string) *domain.Outcome {
	if lynched != "" {
		if p, ok := session.Player(lynched); ok && p.Role == domain.RoleJester {
			return &domain.Outcome{Winner: domain.WinnerJester, WinnerIDs: []string{lynched}}
		}
		exe := session.Roles.Executioner
		if exe.Holder != "" && !exe.BecameJester && exe.Target == lynched && session.IsAlive(exe.Holder) {
			return &domain.Outcome{Winner: domain.WinnerExecutioner, WinnerIDs: []string{exe.Holder}}
		}
	}
	if arsonist := session.Roles.Arsonist.Holder; arsonist != "" {
		alive := session.AliveIDs()
		if len(alive) == 1 && alive[0] == arsonist {
			return &domain.Outcome{Winner: domain.WinnerArsonist, WinnerIDs: alive}
		}
	}
	return nil
}

func factionWin(session *domain.GameSession) *domain.Outcome {
	if session.AliveCount() == 0 {
		return &domain.Outcome{Winner: domain.WinnerDraw}
	}
	mafia := session.CountAlive(domain.AlignmentMafia)
	nonMafia := session.AliveCount() - mafia
	switch {
	case mafia == 0:
		return &domain.Outcome{Winner: domain.WinnerVillage, WinnerIDs: slices.Clone(session.VillageIDs)}
	case mafia >= nonMafia:
		return &domain.Outcome{Winner: domain.WinnerMafia, WinnerIDs: slices.Clone(session.MafiaIDs)}
	}
	return nil
}

func gameEndedEvent(session *domain.GameSession, out *domain.Outcome) Event {
	roles := make(map[string]domain.Role, len(session.Players))
	for id, p := range session.Players {
		roles[id] = p.Role
	}
	return Event{
		Kind: EventGameEnded,
		Payload: GameEndedPayload{
			Winner:    out.Winner,
			WinnerIDs: slices.Clone(out.WinnerIDs),
			CoWinners: slices.Clone(out.CoWinners),
			Roles:     roles,
		},
	}
}
