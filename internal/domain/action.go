package domain

import (
	"errors"
	"slices"
)

// ActionKind names the choice a player is asked to make.
type ActionKind string

const (
	ActionDistract    ActionKind = "distract"
	ActionJail        ActionKind = "jail"
	ActionExecute     ActionKind = "execute"
	ActionFrame       ActionKind = "frame"
	ActionSilence     ActionKind = "silence"
	ActionKill        ActionKind = "kill"
	ActionHeal        ActionKind = "heal"
	ActionDouse       ActionKind = "douse"
	ActionIgnite      ActionKind = "ignite"
	ActionInvestigate ActionKind = "investigate"
	ActionCompare     ActionKind = "compare"
	ActionWatch       ActionKind = "watch"
	ActionReveal      ActionKind = "reveal"
)

// Picks is the number of targets the kind requires.
func (k ActionKind) Picks() int {
	switch k {
	case ActionIgnite, ActionReveal:
		return 0
	case ActionCompare:
		return 2
	default:
		return 1
	}
}

// NightAction is one submitted night ability. The concrete variants below form a closed set.
type NightAction interface {
	Actor() string
	Kind() ActionKind
	nightAction()
}

// Distract blocks the target's action for the night.
type Distract struct{ By, Target string }

// Jail locks up Target. Execute asks for the prisoner to be executed.
type Jail struct {
	By      string
	Target  string
	Execute bool
}

// Frame makes Target read as suspicious tonight.
type Frame struct{ By, Target string }

// Silence mutes Target for the next day.
type Silence struct{ By, Target string }

// Kill is a Mafia kill order or a Vigilante shot depending on the actor's role.
type Kill struct{ By, Target string }

// Heal protects Target from the Mafia kill.
type Heal struct{ By, Target string }

// Douse adds Target to the Arsonist's doused set.
type Douse struct{ By, Target string }

// Ignite burns every doused player.
type Ignite struct{ By string }

// Investigate asks whether Target reads as suspicious.
type Investigate struct{ By, Target string }

// Compare asks whether two players read the same.
type Compare struct{ By, First, Second string }

// Watch reports who Target visited.
type Watch struct{ By, Target string }

// Reveal publicly reveals the Mayor.
type Reveal struct{ By string }

func (a Distract) Actor() string    { return a.By }
func (a Jail) Actor() string        { return a.By }
func (a Frame) Actor() string       { return a.By }
func (a Silence) Actor() string     { return a.By }
func (a Kill) Actor() string        { return a.By }
func (a Heal) Actor() string        { return a.By }
func (a Douse) Actor() string       { return a.By }
func (a Ignite) Actor() string      { return a.By }
func (a Investigate) Actor() string { return a.By }
func (a Compare) Actor() string     { return a.By }
func (a Watch) Actor() string       { return a.By }
func (a Reveal) Actor() string      { return a.By }

func (Distract) Kind() ActionKind    { return ActionDistract }
func (Frame) Kind() ActionKind       { return ActionFrame }
func (Silence) Kind() ActionKind     { return ActionSilence }
func (Kill) Kind() ActionKind        { return ActionKill }
func (Heal) Kind() ActionKind        { return ActionHeal }
func (Douse) Kind() ActionKind       { return ActionDouse }
func (Ignite) Kind() ActionKind      { return ActionIgnite }
func (Investigate) Kind() ActionKind { return ActionInvestigate }
func (Compare) Kind() ActionKind     { return ActionCompare }
func (Watch) Kind() ActionKind       { return ActionWatch }
func (Reveal) Kind() ActionKind      { return ActionReveal }

func (a Jail) Kind() ActionKind {
	if a.Execute {
		return ActionExecute
	}
	return ActionJail
}

func (Distract) nightAction()    {}
func (Jail) nightAction()        {}
func (Frame) nightAction()       {}
func (Silence) nightAction()     {}
func (Kill) nightAction()        {}
func (Heal) nightAction()        {}
func (Douse) nightAction()       {}
func (Ignite) nightAction()      {}
func (Investigate) nightAction() {}
func (Compare) nightAction()     {}
func (Watch) nightAction()       {}
func (Reveal) nightAction()      {}

// Targets lists every player the action points at.
func Targets(a NightAction) []string {
	switch v := a.(type) {
	case Distract:
		return []string{v.Target}
	case Jail:
		return []string{v.Target}
	case Frame:
		return []string{v.Target}
	case Silence:
		return []string{v.Target}
	case Kill:
		return []string{v.Target}
	case Heal:
		return []string{v.Target}
	case Douse:
		return []string{v.Target}
	case Investigate:
		return []string{v.Target}
	case Compare:
		return []string{v.First, v.Second}
	case Watch:
		return []string{v.Target}
	}
	return nil
}

// ActionPrompt describes the choice offered to one player.
type ActionPrompt struct {
	PlayerID string
	Role     Role
	Options  []ActionKind
	Targets  []string // legal targets, seat order
	Note     string   // extra context such as the Godfather's order
}

// Answer is a player's response to an ActionPrompt.
type Answer struct {
	Kind    ActionKind
	Targets []string
}

var (
	ErrOptionNotOffered = errors.New("action kind not offered")
	ErrWrongTargetCount = errors.New("wrong number of targets")
	ErrIllegalTarget    = errors.New("target not allowed")
)

// Bind validates an answer against the prompt and builds the typed action.
func (p ActionPrompt) Bind(ans Answer) (NightAction, error) {
	if !slices.Contains(p.Options, ans.Kind) {
		return nil, ErrOptionNotOffered
	}
	if len(ans.Targets) != ans.Kind.Picks() {
		return nil, ErrWrongTargetCount
	}
	for _, t := range ans.Targets {
		if !slices.Contains(p.Targets, t) {
			return nil, ErrIllegalTarget
		}
	}
	by := p.PlayerID
	switch ans.Kind {
	case ActionDistract:
		return Distract{By: by, Target: ans.Targets[0]}, nil
	case ActionJail:
		return Jail{By: by, Target: ans.Targets[0]}, nil
	case ActionExecute:
		return Jail{By: by, Target: ans.Targets[0], Execute: true}, nil
	case ActionFrame:
		return Frame{By: by, Target: ans.Targets[0]}, nil
	case ActionSilence:
		return Silence{By: by, Target: ans.Targets[0]}, nil
	case ActionKill:
		return Kill{By: by, Target: ans.Targets[0]}, nil
	case ActionHeal:
		return Heal{By: by, Target: ans.Targets[0]}, nil
	case ActionDouse:
		return Douse{By: by, Target: ans.Targets[0]}, nil
	case ActionIgnite:
		return Ignite{By: by}, nil
	case ActionInvestigate:
		return Investigate{By: by, Target: ans.Targets[0]}, nil
	case ActionCompare:
		if ans.Targets[0] == ans.Targets[1] {
			return nil, ErrIllegalTarget
		}
		return Compare{By: by, First: ans.Targets[0], Second: ans.Targets[1]}, nil
	case ActionWatch:
		return Watch{By: by, Target: ans.Targets[0]}, nil
	case ActionReveal:
		return Reveal{By: by}, nil
	}
	return nil, ErrOptionNotOffered
}
