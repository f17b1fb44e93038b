package bot

import (
	"testing"

	"mafiaville/internal/app"
	"mafiaville/internal/bot/brain"
	"mafiaville/internal/domain"
	"mafiaville/internal/ports"
)

func newSmartAgent(t *testing.T, id string, card ports.RoleCard) *Agent {
	t.Helper()
	a, err := NewAgent(id, id, BotLevelSmart, 7)
	if err != nil {
		t.Fatalf("NewAgent error: %v", err)
	}
	card.PlayerID = id
	a.Learn(card)
	return a
}

func TestAgentFollowsGodfatherOrder(t *testing.T) {
	a := newSmartAgent(t, "maf", ports.RoleCard{Role: domain.RoleMafioso, Alignment: domain.AlignmentMafia, Teammates: []string{"gf"}})
	a.OnGameEvent(app.Event{Kind: app.EventMafiaOrder, Payload: app.MafiaOrderPayload{OrderedBy: "gf", Target: "v3"}})

	prompt := domain.ActionPrompt{PlayerID: "maf", Role: domain.RoleMafioso, Options: []domain.ActionKind{domain.ActionKill}, Targets: []string{"v1", "v2", "v3"}}
	ans, ok := a.Act(prompt)
	if !ok || ans.Targets[0] != "v3" {
		t.Fatalf("answer = %+v, %v; want kill v3", ans, ok)
	}
	if _, err := prompt.Bind(ans); err != nil {
		t.Fatalf("answer does not bind: %v", err)
	}
}

func TestAgentLearnsFromReports(t *testing.T) {
	a := newSmartAgent(t, "det", ports.RoleCard{Role: domain.RoleDetective, Alignment: domain.AlignmentVillage})

	a.OnGameEvent(app.Event{Kind: app.EventInvestigation, Payload: app.InvestigationPayload{Target: "x", Suspicious: true}})
	a.OnGameEvent(app.Event{Kind: app.EventInvestigation, Payload: app.InvestigationPayload{Target: "y"}})
	a.OnGameEvent(app.Event{Kind: app.EventComparison, Payload: app.ComparisonPayload{First: "y", Second: "z", SameSide: false}})

	if a.Standing("x") != brain.StandingSuspected || a.Standing("y") != brain.StandingTrusted || a.Standing("z") != brain.StandingSuspected {
		t.Fatalf("x=%v y=%v z=%v", a.Standing("x"), a.Standing("y"), a.Standing("z"))
	}

	a.OnGameEvent(app.Event{Kind: app.EventNightSummary, Payload: app.NightSummaryPayload{Deaths: []app.DeathReport{
		{Cause: domain.CauseMayor, Victims: []string{"m"}},
	}}})
	if a.Standing("m") != brain.StandingTrusted {
		t.Fatal("revealed mayor not trusted")
	}
}

func TestAgentSpyReportSettlesOnDeaths(t *testing.T) {
	a := newSmartAgent(t, "spy", ports.RoleCard{Role: domain.RoleSpy, Alignment: domain.AlignmentVillage})
	a.OnGameEvent(app.Event{Kind: app.EventSpyReport, Payload: app.SpyReportPayload{Target: "k", Visited: []string{"v1"}}})
	a.OnGameEvent(app.Event{Kind: app.EventNightSummary, Payload: app.NightSummaryPayload{Deaths: []app.DeathReport{
		{Cause: domain.CauseMafia, Victims: []string{"v1"}},
	}}})
	if a.Standing("k") != brain.StandingSuspected {
		t.Fatalf("standing = %v, want suspected", a.Standing("k"))
	}
}

func TestAgentBecomesJester(t *testing.T) {
	a := newSmartAgent(t, "exe", ports.RoleCard{Role: domain.RoleExecutioner, Alignment: domain.AlignmentNeutral, ExecutionerTarget: "t"})
	ballot := ports.Ballot{Kind: ports.BallotNomination, Choices: []string{"exe", "t", "u"}}
	if got, _ := a.Vote(ballot); got != "t" {
		t.Fatalf("executioner voted %q, want t", got)
	}
	a.OnGameEvent(app.Event{Kind: app.EventRoleChanged, Payload: app.RoleChangedPayload{From: domain.RoleExecutioner, To: domain.RoleJester}})
	if got, _ := a.Vote(ballot); got != "exe" {
		t.Fatalf("jester voted %q, want itself", got)
	}
}
