package bot

import (
	"math/rand"
	"testing"

	"mafiaville/internal/bot/brain"
	"mafiaville/internal/domain"
	"mafiaville/internal/ports"
)

func TestRandomBotAnswersBind(t *testing.T) {
	prompts := []domain.ActionPrompt{
		{PlayerID: "pi", Role: domain.RolePI, Options: []domain.ActionKind{domain.ActionCompare}, Targets: []string{"a", "b", "c"}},
		{PlayerID: "ar", Role: domain.RoleArsonist, Options: []domain.ActionKind{domain.ActionDouse, domain.ActionIgnite}, Targets: []string{"a"}},
		{PlayerID: "m", Role: domain.RoleMayor, Options: []domain.ActionKind{domain.ActionReveal}},
		{PlayerID: "d", Role: domain.RoleDoctor, Options: []domain.ActionKind{domain.ActionHeal}, Targets: []string{"d", "a"}},
	}
	rng := rand.New(rand.NewSource(3))
	for _, p := range prompts {
		for i := 0; i < 20; i++ {
			ans, ok := RandomBot{}.Act(brain.NewMemory(p.PlayerID), p, rng)
			if !ok {
				t.Fatalf("%s: no answer", p.Role)
			}
			if _, err := p.Bind(ans); err != nil {
				t.Fatalf("%s: answer %+v does not bind: %v", p.Role, ans, err)
			}
		}
	}
}

func TestRandomBotNeedsEnoughTargets(t *testing.T) {
	p := domain.ActionPrompt{PlayerID: "pi", Role: domain.RolePI, Options: []domain.ActionKind{domain.ActionCompare}, Targets: []string{"a"}}
	if _, ok := (RandomBot{}).Act(brain.NewMemory("pi"), p, rand.New(rand.NewSource(1))); ok {
		t.Fatal("compare answered with a single target")
	}
}

func TestSmartBotVerdicts(t *testing.T) {
	cases := []struct {
		name    string
		setup   func(m *brain.GameMemory)
		nominee string
		want    string
	}{
		{"village on suspect", func(m *brain.GameMemory) {
			m.Learn(domain.RoleVillager, domain.AlignmentVillage, nil, "")
			m.MarkSuspicious("n", 3)
		}, "n", ports.VoteGuilty},
		{"village on trusted", func(m *brain.GameMemory) {
			m.Learn(domain.RoleDoctor, domain.AlignmentVillage, nil, "")
			m.MarkTrusted("n")
		}, "n", ports.VoteInnocent},
		{"mafia saves teammate", func(m *brain.GameMemory) {
			m.Learn(domain.RoleGodfather, domain.AlignmentMafia, []string{"n"}, "")
		}, "n", ports.VoteInnocent},
		{"mafia lynches town", func(m *brain.GameMemory) {
			m.Learn(domain.RoleFramer, domain.AlignmentMafia, nil, "")
		}, "n", ports.VoteGuilty},
		{"executioner target", func(m *brain.GameMemory) {
			m.Learn(domain.RoleExecutioner, domain.AlignmentNeutral, nil, "n")
		}, "n", ports.VoteGuilty},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := brain.NewMemory("me")
			tc.setup(m)
			ballot := ports.Ballot{Kind: ports.BallotVerdict, Nominee: tc.nominee, Choices: []string{ports.VoteGuilty, ports.VoteInnocent}}
			got, ok := SmartBot{}.Vote(m, ballot, rand.New(rand.NewSource(1)))
			if !ok || got != tc.want {
				t.Fatalf("vote = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSmartBotVigilanteHoldsFireWithoutEvidence(t *testing.T) {
	m := brain.NewMemory("vig")
	m.Learn(domain.RoleVigilante, domain.AlignmentVillage, nil, "")
	p := domain.ActionPrompt{PlayerID: "vig", Role: domain.RoleVigilante, Options: []domain.ActionKind{domain.ActionKill}, Targets: []string{"a", "b"}}
	rng := rand.New(rand.NewSource(1))
	if _, ok := (SmartBot{}).Act(m, p, rng); ok {
		t.Fatal("vigilante fired without a suspect")
	}
	m.MarkSuspicious("b", 3)
	ans, ok := SmartBot{}.Act(m, p, rng)
	if !ok || ans.Targets[0] != "b" {
		t.Fatalf("answer = %+v, want kill b", ans)
	}
}

func TestNewBrainRejectsUnknownLevel(t *testing.T) {
	if _, err := NewBrain(BotLevel(42)); err == nil {
		t.Fatal("expected an error")
	}
	if ParseLevel("easy") != BotLevelRandom || ParseLevel("hard") != BotLevelSmart {
		t.Fatal("unexpected level mapping")
	}
}
