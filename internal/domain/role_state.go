package domain

// DoctorState tracks heal history. The Doctor may not heal themselves on two consecutive nights.
type DoctorState struct {
	Holder         string
	LastHealTarget string
}

// JailerState tracks the execution budget and prisoners.
type JailerState struct {
	Holder     string
	KillsLeft  int
	CanExecute bool
	Current    string
	Previous   string
}

// SilencerState enforces the alternate-night cooldown.
type SilencerState struct {
	Holder          string
	WorkedLastNight bool
	LastTarget      string
}

// MayorState records whether the Mayor has revealed.
type MayorState struct {
	Holder   string
	Revealed bool
}

// ExecutionerState holds the Executioner's assigned target.
type ExecutionerState struct {
	Holder       string
	Target       string
	BecameJester bool
}

// ArsonistState is the set of doused players.
type ArsonistState struct {
	Holder string
	Doused map[string]bool
}

// DousedIDs returns doused players in no particular order.
func (a *ArsonistState) DousedIDs() []string {
	out := make([]string, 0, len(a.Doused))
	for id := range a.Doused {
		out = append(out, id)
	}
	return out
}

// BaiterState counts successful baits.
type BaiterState struct {
	Holder string
	Baits  int
}

// GodfatherState points at the player currently giving the Mafia kill order.
// Acting follows the Godfather while alive and moves to the Mafioso on their death.
type GodfatherState struct {
	Holder string
	Acting string
}

// RoleStates aggregates every stateful role record of a game.
type RoleStates struct {
	Godfather   GodfatherState
	Doctor      DoctorState
	Jailer      JailerState
	Silencer    SilencerState
	Mayor       MayorState
	Executioner ExecutionerState
	Arsonist    ArsonistState
	Baiter      BaiterState
}

// NewRoleStates returns default records for a new game.
func NewRoleStates(jailerExecutions int) RoleStates {
	return RoleStates{
		Jailer: JailerState{
			KillsLeft:  jailerExecutions,
			CanExecute: jailerExecutions > 0,
		},
		Arsonist: ArsonistState{Doused: make(map[string]bool)},
	}
}

func (rs *RoleStates) bindHolder(role Role, id string) {
	switch role {
	case RoleGodfather:
		rs.Godfather.Holder = id
		rs.Godfather.Acting = id
	case RoleMafioso:
		if rs.Godfather.Acting == "" {
			rs.Godfather.Acting = id
		}
	case RoleDoctor:
		rs.Doctor.Holder = id
	case RoleJailer:
		rs.Jailer.Holder = id
	case RoleSilencer:
		rs.Silencer.Holder = id
	case RoleMayor:
		rs.Mayor.Holder = id
	case RoleExecutioner:
		rs.Executioner.Holder = id
	case RoleArsonist:
		rs.Arsonist.Holder = id
	case RoleBaiter:
		rs.Baiter.Holder = id
	}
}

// SpendExecution consumes one execution. A Village victim revokes the ability for good.
func (j *JailerState) SpendExecution(victim Alignment) {
	if j.KillsLeft > 0 {
		j.KillsLeft--
	}
	if victim == AlignmentVillage {
		j.KillsLeft = 0
	}
	j.CanExecute = j.KillsLeft > 0
}
