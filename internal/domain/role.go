package domain

// Alignment is the team a role plays for.
type Alignment string

const (
	// AlignmentNone marks a player whose role has not been assigned yet.
	AlignmentNone Alignment = ""
	// AlignmentMafia wins on parity with everyone else.
	AlignmentMafia Alignment = "mafia"
	// AlignmentVillage wins once no Mafia member is alive.
	AlignmentVillage Alignment = "village"
	// AlignmentNeutral roles carry individual win conditions.
	AlignmentNeutral Alignment = "neutral"
)

// Role names a game role. The zero value means unassigned.
type Role string

const (
	RoleNone Role = ""

	RoleGodfather Role = "godfather"
	RoleMafioso   Role = "mafioso"
	RoleFramer    Role = "framer"
	RoleSilencer  Role = "silencer"

	RoleDoctor     Role = "doctor"
	RoleDetective  Role = "detective"
	RoleJailer     Role = "jailer"
	RoleVigilante  Role = "vigilante"
	RoleMayor      Role = "mayor"
	RoleDistractor Role = "distractor"
	RolePI         Role = "pi"
	RoleSpy        Role = "spy"
	RoleVillager   Role = "villager"

	RoleJester      Role = "jester"
	RoleExecutioner Role = "executioner"
	RoleArsonist    Role = "arsonist"
	RoleBaiter      Role = "baiter"
)

var roleAlignment = map[Role]Alignment{
	RoleGodfather: AlignmentMafia,
	RoleMafioso:   AlignmentMafia,
	RoleFramer:    AlignmentMafia,
	RoleSilencer:  AlignmentMafia,

	RoleDoctor:     AlignmentVillage,
	RoleDetective:  AlignmentVillage,
	RoleJailer:     AlignmentVillage,
	RoleVigilante:  AlignmentVillage,
	RoleMayor:      AlignmentVillage,
	RoleDistractor: AlignmentVillage,
	RolePI:         AlignmentVillage,
	RoleSpy:        AlignmentVillage,
	RoleVillager:   AlignmentVillage,

	RoleJester:      AlignmentNeutral,
	RoleExecutioner: AlignmentNeutral,
	RoleArsonist:    AlignmentNeutral,
	RoleBaiter:      AlignmentNeutral,
}

// Alignment returns the team of the role. Unknown roles have no alignment.
func (r Role) Alignment() Alignment {
	return roleAlignment[r]
}

// Valid reports whether r is a known, assignable role.
func (r Role) Valid() bool {
	_, ok := roleAlignment[r]
	return ok
}

// Unique reports whether at most one player may hold the role.
// Villager is the filler role, and a converted Executioner joins the Jester.
func (r Role) Unique() bool {
	return r.Valid() && r != RoleVillager && r != RoleJester
}

// NightOrder is the fixed resolution priority of night abilities.
// Blocking and support roles resolve before the roles that depend on their effects.
var NightOrder = []Role{
	RoleDistractor,
	RoleJailer,
	RoleFramer,
	RoleSilencer,
	RoleGodfather,
	RoleMafioso,
	RoleDoctor,
	RoleArsonist,
	RoleVigilante,
	RoleDetective,
	RolePI,
	RoleSpy,
	RoleMayor,
	RoleBaiter,
}

// AllRoles lists every assignable role.
func AllRoles() []Role {
	roles := make([]Role, 0, len(roleAlignment))
	for _, r := range NightOrder {
		roles = append(roles, r)
	}
	return append(roles, RoleVillager, RoleJester, RoleExecutioner)
}
