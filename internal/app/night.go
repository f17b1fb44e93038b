package app

import (
	"slices"

	"mafiaville/internal/domain"
)

// nightPass is a single synchronous resolution of one night over the session.
type nightPass struct {
	session *domain.GameSession
	rec     *domain.RoundRecord
	actions map[domain.Role]domain.NightAction
	events  []Event
}

// ResolveNight applies the collected actions in domain.NightOrder and commits
// every death and role state change of the night. Invalid or stale targets
// degrade to actor-facing notices.
func (s *Service) ResolveNight(session *domain.GameSession, actions map[domain.Role]domain.NightAction) []Event {
	rec := session.Current
	if rec == nil {
		rec = session.BeginNight()
	}
	p := &nightPass{session: session, rec: rec, actions: make(map[domain.Role]domain.NightAction, len(actions))}

	for role, act := range actions {
		if act == nil {
			continue
		}
		actor, ok := session.Player(act.Actor())
		if !ok {
			continue
		}
		if actor.Role != role {
			panic(&domain.InconsistentStateError{Reason: "action for " + string(role) + " submitted by " + actor.ID + " holding " + string(actor.Role)})
		}
		p.actions[role] = act
		rec.Actions[role] = act
	}

	p.applyJail()
	p.dropJailedActors()

	p.distract()
	p.jailer()
	p.frame()
	p.silence()
	p.mafiaKill()
	p.doctor()
	p.arsonist()
	p.vigilante()
	p.detective()
	p.privateInvestigator()
	p.spy()
	p.mayor()
	p.baiter()

	p.events = append(p.events, Event{
		Kind:    EventNightSummary,
		Payload: NightSummaryPayload{Round: rec.Number, Deaths: deathReports(session, rec.Deaths)},
	})
	return p.events
}

// applyJail covers a Jail action that did not go through the dusk prompt.
func (p *nightPass) applyJail() {
	j, ok := p.actions[domain.RoleJailer].(domain.Jail)
	if !ok || !p.session.IsAlive(j.By) || p.session.Jailed(j.Target) {
		return
	}
	if j.Target == j.By || j.Target == p.session.Roles.Jailer.Previous {
		return
	}
	p.session.Jail(j.Target)
}

// dropJailedActors discards prisoners' actions without a notice; they were told at collection.
func (p *nightPass) dropJailedActors() {
	for role, act := range p.actions {
		if p.session.Jailed(act.Actor()) {
			delete(p.actions, role)
		}
	}
}

// ready returns the role's action when its actor is alive and not distracted.
func (p *nightPass) ready(role domain.Role) (domain.NightAction, bool) {
	act, ok := p.actions[role]
	if !ok {
		return nil, false
	}
	actor, ok := p.session.Player(act.Actor())
	if !ok || !actor.Alive {
		return nil, false
	}
	if actor.Distracted {
		p.emit(notice(actor.ID, NoticeDistracted, role, ""))
		return nil, false
	}
	return act, true
}

// reachable validates a target for the actor, emitting the matching notice when it is not.
func (p *nightPass) reachable(actorID string, role domain.Role, target string) bool {
	t, ok := p.session.Player(target)
	if !ok || !t.Alive {
		p.emit(notice(actorID, NoticeTargetGone, role, target))
		return false
	}
	if t.JailedTonight {
		p.emit(notice(actorID, NoticeTargetUnavailable, role, target))
		return false
	}
	return true
}

func (p *nightPass) emit(ev Event) {
	p.events = append(p.events, ev)
}

func (p *nightPass) distract() {
	act, ok := p.ready(domain.RoleDistractor)
	if !ok {
		return
	}
	d := act.(domain.Distract)
	t, ok := p.session.Player(d.Target)
	if !ok || !t.Alive {
		p.emit(notice(d.By, NoticeTargetGone, domain.RoleDistractor, d.Target))
		return
	}
	if t.JailedTonight {
		p.emit(notice(d.By, NoticeDistractionFailed, domain.RoleDistractor, d.Target))
		if jailer := p.session.LivingHolderOf(domain.RoleJailer); jailer != "" {
			p.emit(notice(jailer, NoticePrisonerVisited, domain.RoleJailer, d.Target))
		}
		return
	}
	t.Distracted = true
	p.rec.Visit(d.By, d.Target)
}

func (p *nightPass) jailer() {
	act, ok := p.ready(domain.RoleJailer)
	if !ok {
		return
	}
	j := act.(domain.Jail)
	state := &p.session.Roles.Jailer
	if !j.Execute || !state.CanExecute || j.Target != state.Current {
		return
	}
	victim, ok := p.session.Player(j.Target)
	if !ok || !victim.Alive {
		return
	}
	p.kill(domain.Death{Cause: domain.CauseJailer, ActorID: j.By, Victims: []string{j.Target}})
	state.SpendExecution(victim.Alignment)
	if !state.CanExecute {
		p.emit(notice(j.By, NoticeExecutionsRevoked, domain.RoleJailer, j.Target))
	}
}

func (p *nightPass) frame() {
	act, ok := p.ready(domain.RoleFramer)
	if !ok {
		return
	}
	f := act.(domain.Frame)
	if !p.reachable(f.By, domain.RoleFramer, f.Target) {
		return
	}
	p.session.Players[f.Target].Framed = true
	p.rec.Visit(f.By, f.Target)
}

func (p *nightPass) silence() {
	state := &p.session.Roles.Silencer
	worked := false
	defer func() { state.WorkedLastNight = worked }()

	if state.WorkedLastNight {
		delete(p.actions, domain.RoleSilencer)
		return
	}
	act, ok := p.ready(domain.RoleSilencer)
	if !ok {
		return
	}
	sl := act.(domain.Silence)
	if !p.reachable(sl.By, domain.RoleSilencer, sl.Target) {
		return
	}
	p.session.Players[sl.Target].SilencedThisRound = true
	p.rec.Record(domain.Death{Cause: domain.CauseSilencer, ActorID: sl.By, Victims: []string{sl.Target}})
	p.rec.Visit(sl.By, sl.Target)
	state.LastTarget = sl.Target
	worked = true
}

// mafiaKill covers the Godfather and Mafioso steps. The kill stays pending
// until the Doctor has acted.
func (p *nightPass) mafiaKill() {
	gf := p.session.Roles.Godfather
	orderer := gf.Acting
	if orderer == "" || !p.session.IsAlive(orderer) {
		orderer = ""
	}

	var executor, target string
	switch {
	case orderer != "" && orderer == gf.Holder:
		act, ok := p.ready(domain.RoleGodfather)
		if !ok {
			return
		}
		target = act.(domain.Kill).Target
		executor = gf.Holder
		if mafioso := p.session.LivingHolderOf(domain.RoleMafioso); mafioso != "" {
			m := p.session.Players[mafioso]
			if m.JailedTonight || m.Distracted {
				if m.Distracted {
					p.emit(notice(mafioso, NoticeDistracted, domain.RoleMafioso, ""))
				}
				p.emit(notice(gf.Holder, NoticeKillFailed, domain.RoleGodfather, target))
				return
			}
			executor = mafioso
		}
	default:
		act, ok := p.ready(domain.RoleMafioso)
		if !ok {
			return
		}
		executor = act.Actor()
		target = act.(domain.Kill).Target
	}

	if !p.reachable(executor, p.session.Players[executor].Role, target) {
		if executor != gf.Holder && orderer == gf.Holder && gf.Holder != "" {
			p.emit(notice(gf.Holder, NoticeTargetUnavailable, domain.RoleGodfather, target))
		}
		return
	}
	p.rec.MafiaTarget = target
	p.rec.MafiaActor = executor
	p.rec.Visit(executor, target)
}

func (p *nightPass) doctor() {
	state := &p.session.Roles.Doctor
	healed := ""
	if act, ok := p.ready(domain.RoleDoctor); ok {
		h := act.(domain.Heal)
		if p.reachable(h.By, domain.RoleDoctor, h.Target) {
			healed = h.Target
			if h.Target != h.By {
				p.rec.Visit(h.By, h.Target)
			}
		}
	}
	state.LastHealTarget = healed

	target := p.rec.MafiaTarget
	if target == "" {
		return
	}
	if healed == target {
		p.rec.Healed = true
		p.emit(notice(state.Holder, NoticeHealSaved, domain.RoleDoctor, target))
		p.emit(notice(target, NoticeAttackedButHealed, p.session.Players[target].Role, ""))
		p.emit(notice(p.rec.MafiaActor, NoticeKillFailed, p.session.Players[p.rec.MafiaActor].Role, target))
		return
	}
	p.kill(domain.Death{Cause: domain.CauseMafia, ActorID: p.rec.MafiaActor, Victims: []string{target}})
}

func (p *nightPass) arsonist() {
	act, ok := p.ready(domain.RoleArsonist)
	if !ok {
		return
	}
	state := &p.session.Roles.Arsonist
	switch a := act.(type) {
	case domain.Douse:
		if !p.reachable(a.By, domain.RoleArsonist, a.Target) {
			return
		}
		state.Doused[a.Target] = true
		p.rec.Visit(a.By, a.Target)
	case domain.Ignite:
		var victims []string
		for _, id := range p.session.Order {
			if !state.Doused[id] {
				continue
			}
			if p.session.Jailed(id) && p.session.IsAlive(id) {
				continue
			}
			delete(state.Doused, id)
			if p.session.IsAlive(id) {
				victims = append(victims, id)
			}
		}
		if len(victims) > 0 {
			p.kill(domain.Death{Cause: domain.CauseArsonist, ActorID: a.By, Victims: victims})
		}
	}
}

func (p *nightPass) vigilante() {
	act, ok := p.ready(domain.RoleVigilante)
	if !ok {
		return
	}
	k := act.(domain.Kill)
	if !p.reachable(k.By, domain.RoleVigilante, k.Target) {
		return
	}
	p.rec.Visit(k.By, k.Target)
	death := domain.Death{Cause: domain.CauseVigilante, ActorID: k.By, Victims: []string{k.Target}}
	if p.session.Players[k.Target].Alignment == domain.AlignmentVillage {
		death.Victims = append(death.Victims, k.By)
		death.SelfInflicted = true
	}
	p.kill(death)
}

func (p *nightPass) detective() {
	act, ok := p.ready(domain.RoleDetective)
	if !ok {
		return
	}
	inv := act.(domain.Investigate)
	if !p.reachable(inv.By, domain.RoleDetective, inv.Target) {
		return
	}
	p.rec.Visit(inv.By, inv.Target)
	p.emit(Event{
		Kind: EventInvestigation,
		Payload: InvestigationPayload{
			Target:     inv.Target,
			Suspicious: domain.IsSuspicious(p.session.Players[inv.Target]),
		},
		Recipients: []string{inv.By},
	})
}

func (p *nightPass) privateInvestigator() {
	act, ok := p.ready(domain.RolePI)
	if !ok {
		return
	}
	c := act.(domain.Compare)
	if !p.reachable(c.By, domain.RolePI, c.First) || !p.reachable(c.By, domain.RolePI, c.Second) {
		return
	}
	p.rec.Visit(c.By, c.First)
	p.rec.Visit(c.By, c.Second)
	first, second := p.session.Players[c.First], p.session.Players[c.Second]
	p.emit(Event{
		Kind: EventComparison,
		Payload: ComparisonPayload{
			First:    c.First,
			Second:   c.Second,
			SameSide: domain.IsSuspicious(first) == domain.IsSuspicious(second),
		},
		Recipients: []string{c.By},
	})
}

// spy reports the houses the target actually visited after everything above resolved.
func (p *nightPass) spy() {
	act, ok := p.ready(domain.RoleSpy)
	if !ok {
		return
	}
	w := act.(domain.Watch)
	if w.Target == w.By {
		p.emit(notice(w.By, NoticeInvalidChoice, domain.RoleSpy, w.Target))
		return
	}
	if !p.reachable(w.By, domain.RoleSpy, w.Target) {
		return
	}
	visited := slices.Clone(p.rec.Visits[w.Target])
	p.rec.Visit(w.By, w.Target)
	p.emit(Event{
		Kind:       EventSpyReport,
		Payload:    SpyReportPayload{Target: w.Target, Visited: visited},
		Recipients: []string{w.By},
	})
}

func (p *nightPass) mayor() {
	act, ok := p.ready(domain.RoleMayor)
	if !ok {
		return
	}
	state := &p.session.Roles.Mayor
	if state.Revealed {
		return
	}
	if p.session.Silenced(act.Actor()) {
		p.emit(notice(act.Actor(), NoticeRevealBlocked, domain.RoleMayor, ""))
		return
	}
	state.Revealed = true
	p.rec.Record(domain.Death{Cause: domain.CauseMayor, ActorID: act.Actor(), Victims: []string{act.Actor()}})
}

// baiter kills every living visitor of the Baiter's house.
func (p *nightPass) baiter() {
	state := &p.session.Roles.Baiter
	if state.Holder == "" {
		return
	}
	var victims []string
	for _, id := range p.session.Order {
		if id == state.Holder || !p.session.IsAlive(id) {
			continue
		}
		if slices.Contains(p.rec.Visits[id], state.Holder) {
			victims = append(victims, id)
		}
	}
	if len(victims) == 0 {
		return
	}
	state.Baits += len(victims)
	p.kill(domain.Death{Cause: domain.CauseBaiter, ActorID: state.Holder, Victims: victims})
}

// kill commits a hard ledger entry and applies death side effects.
func (p *nightPass) kill(d domain.Death) {
	victims := d.Victims[:0:0]
	for _, id := range d.Victims {
		if p.session.Kill(id) {
			victims = append(victims, id)
		}
	}
	if len(victims) == 0 {
		return
	}
	d.Victims = victims
	p.rec.Record(d)
	for _, id := range victims {
		p.events = append(p.events, onDeath(p.session, id, d.Cause)...)
	}
}

// onDeath applies the follow-on effects of a death: Godfather succession and
// Executioner conversion.
func onDeath(session *domain.GameSession, victim string, cause domain.Cause) []Event {
	var events []Event
	gf := &session.Roles.Godfather
	if victim == gf.Acting {
		gf.Acting = session.LivingHolderOf(domain.RoleMafioso)
		if gf.Acting != "" && gf.Acting != victim {
			events = append(events, Event{
				Kind:       EventRoleChanged,
				Payload:    RoleChangedPayload{From: domain.RoleMafioso, To: domain.RoleGodfather},
				Recipients: []string{gf.Acting},
			})
		}
	}

	exe := &session.Roles.Executioner
	if cause != domain.CauseVote && exe.Target == victim && !exe.BecameJester && session.IsAlive(exe.Holder) {
		exe.BecameJester = true
		session.Players[exe.Holder].Role = domain.RoleJester
		events = append(events, Event{
			Kind:       EventRoleChanged,
			Payload:    RoleChangedPayload{From: domain.RoleExecutioner, To: domain.RoleJester},
			Recipients: []string{exe.Holder},
		})
	}
	return events
}

func deathReports(session *domain.GameSession, deaths []domain.Death) []DeathReport {
	out := make([]DeathReport, 0, len(deaths))
	for _, d := range deaths {
		r := DeathReport{Cause: d.Cause, Victims: slices.Clone(d.Victims), SelfInflicted: d.SelfInflicted}
		if !d.Cause.Soft() {
			r.Wills = make(map[string][]string, len(d.Victims))
			for _, id := range d.Victims {
				r.Wills[id] = slices.Clone(session.Players[id].LastWill)
			}
		}
		out = append(out, r)
	}
	return out
}
