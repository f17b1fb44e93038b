package domain

// Cause names what produced a ledger entry.
type Cause string

const (
	CauseJailer    Cause = "jailer"
	CauseMafia     Cause = "mafia"
	CauseArsonist  Cause = "arsonist"
	CauseVigilante Cause = "vigilante"
	CauseBaiter    Cause = "baiter"
	CauseVote      Cause = "vote"

	// Soft causes change presentation without killing anyone.
	CauseSilencer Cause = "silencer"
	CauseMayor    Cause = "mayor"
)

// Soft reports whether the cause leaves its subjects alive.
func (c Cause) Soft() bool {
	return c == CauseSilencer || c == CauseMayor
}

// Death is one entry of the round ledger. Simultaneous victims of a single
// ability share an entry. A Vigilante who shot a Village player is listed as
// the last victim of their own entry with SelfInflicted set.
type Death struct {
	Cause         Cause
	ActorID       string
	Victims       []string
	SelfInflicted bool
}

// RoundRecord accumulates everything that happened in one round.
type RoundRecord struct {
	Number  int
	Actions map[Role]NightAction
	Deaths  []Death

	// Visits maps an actor to the houses they actually visited tonight.
	Visits map[string][]string

	// MafiaTarget is the pending victim between the Mafia and Doctor steps.
	MafiaTarget string
	MafiaActor  string
	Healed      bool

	Nominee  string
	Executed string
}

// NewRoundRecord returns an empty record for round n.
func NewRoundRecord(n int) *RoundRecord {
	return &RoundRecord{
		Number:  n,
		Actions: make(map[Role]NightAction),
		Visits:  make(map[string][]string),
	}
}

// Record appends a ledger entry.
func (r *RoundRecord) Record(d Death) {
	r.Deaths = append(r.Deaths, d)
}

// Visit records that actor went to target's house.
func (r *RoundRecord) Visit(actor, target string) {
	r.Visits[actor] = append(r.Visits[actor], target)
}

// Kills returns the entries that removed players from the game.
func (r *RoundRecord) Kills() []Death {
	out := make([]Death, 0, len(r.Deaths))
	for _, d := range r.Deaths {
		if !d.Cause.Soft() {
			out = append(out, d)
		}
	}
	return out
}

// Victims flattens the hard deaths into a victim list in ledger order.
func (r *RoundRecord) Victims() []string {
	var out []string
	for _, d := range r.Kills() {
		out = append(out, d.Victims...)
	}
	return out
}

// Winner identifies the faction or neutral role that won.
type Winner string

const (
	WinnerNone        Winner = ""
	WinnerMafia       Winner = "mafia"
	WinnerVillage     Winner = "village"
	WinnerJester      Winner = "jester"
	WinnerExecutioner Winner = "executioner"
	WinnerArsonist    Winner = "arsonist"
	WinnerDraw        Winner = "draw"
)

// Exclusive reports whether the winner preempts Mafia and Village.
func (w Winner) Exclusive() bool {
	return w == WinnerJester || w == WinnerExecutioner || w == WinnerArsonist
}

// Outcome is the final result of a game.
type Outcome struct {
	Winner    Winner
	WinnerIDs []string
	CoWinners []string
}
