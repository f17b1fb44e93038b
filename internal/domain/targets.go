package domain

// DuskPrompt offers the living Jailer tonight's prisoner choice.
func (s *GameSession) DuskPrompt() (ActionPrompt, bool) {
	j := s.Roles.Jailer
	if j.Holder == "" || !s.IsAlive(j.Holder) {
		return ActionPrompt{}, false
	}
	targets := s.aliveExcept(func(p *Player) bool {
		return p.ID == j.Holder || p.ID == j.Previous
	})
	if len(targets) == 0 {
		return ActionPrompt{}, false
	}
	return ActionPrompt{
		PlayerID: j.Holder,
		Role:     RoleJailer,
		Options:  []ActionKind{ActionJail},
		Targets:  targets,
	}, true
}

// NightPrompt builds the night choice for a living, unjailed player.
// ok is false when the player has nothing to do tonight.
func (s *GameSession) NightPrompt(id string) (ActionPrompt, bool) {
	p, ok := s.Players[id]
	if !ok || !p.Alive || p.JailedTonight {
		return ActionPrompt{}, false
	}
	prompt := ActionPrompt{PlayerID: id, Role: p.Role}
	notSelf := func(o *Player) bool { return o.ID == id }
	notMafia := func(o *Player) bool { return o.ID == id || o.Alignment == AlignmentMafia }

	switch p.Role {
	case RoleDistractor:
		prompt.Options = []ActionKind{ActionDistract}
		prompt.Targets = s.aliveExcept(notSelf)
	case RoleJailer:
		j := s.Roles.Jailer
		if !j.CanExecute || j.Current == "" || !s.IsAlive(j.Current) {
			return ActionPrompt{}, false
		}
		prompt.Options = []ActionKind{ActionExecute}
		prompt.Targets = []string{j.Current}
	case RoleFramer:
		prompt.Options = []ActionKind{ActionFrame}
		prompt.Targets = s.aliveExcept(notMafia)
	case RoleSilencer:
		if s.Roles.Silencer.WorkedLastNight {
			return ActionPrompt{}, false
		}
		prompt.Options = []ActionKind{ActionSilence}
		prompt.Targets = s.aliveExcept(notMafia)
	case RoleGodfather, RoleMafioso:
		prompt.Options = []ActionKind{ActionKill}
		prompt.Targets = s.aliveExcept(notMafia)
	case RoleDoctor:
		last := s.Roles.Doctor.LastHealTarget
		prompt.Options = []ActionKind{ActionHeal}
		prompt.Targets = s.aliveExcept(func(o *Player) bool {
			return o.ID == id && last == id
		})
	case RoleArsonist:
		doused := s.Roles.Arsonist.Doused
		prompt.Targets = s.aliveExcept(func(o *Player) bool {
			return o.ID == id || doused[o.ID]
		})
		if len(prompt.Targets) > 0 {
			prompt.Options = append(prompt.Options, ActionDouse)
		}
		if len(doused) > 0 {
			prompt.Options = append(prompt.Options, ActionIgnite)
		}
	case RoleVigilante:
		prompt.Options = []ActionKind{ActionKill}
		prompt.Targets = s.aliveExcept(notSelf)
	case RoleDetective:
		prompt.Options = []ActionKind{ActionInvestigate}
		prompt.Targets = s.aliveExcept(notSelf)
	case RolePI:
		prompt.Options = []ActionKind{ActionCompare}
		prompt.Targets = s.aliveExcept(notSelf)
		if len(prompt.Targets) < 2 {
			return ActionPrompt{}, false
		}
	case RoleSpy:
		prompt.Options = []ActionKind{ActionWatch}
		prompt.Targets = s.aliveExcept(notSelf)
	case RoleMayor:
		if s.Roles.Mayor.Revealed {
			return ActionPrompt{}, false
		}
		prompt.Options = []ActionKind{ActionReveal}
	default:
		return ActionPrompt{}, false
	}

	if len(prompt.Options) == 0 {
		return ActionPrompt{}, false
	}
	return prompt, true
}

func (s *GameSession) aliveExcept(skip func(*Player) bool) []string {
	out := make([]string, 0, len(s.alive))
	for _, id := range s.AliveIDs() {
		if !skip(s.Players[id]) {
			out = append(out, id)
		}
	}
	return out
}
