package domain

import (
	"slices"
	"testing"
)

func TestNightPrompts(t *testing.T) {
	// a=godfather b=framer c=doctor d=jailer e=arsonist f=pi g=mayor h=villager
	s := newSession(t, RoleGodfather, RoleFramer, RoleDoctor, RoleJailer, RoleArsonist, RolePI, RoleMayor, RoleVillager)
	s.BeginNight()

	cases := []struct {
		id          string
		wantOK      bool
		wantOptions []ActionKind
		wantTargets []string
	}{
		{"a", true, []ActionKind{ActionKill}, []string{"c", "d", "e", "f", "g", "h"}},
		{"b", true, []ActionKind{ActionFrame}, []string{"c", "d", "e", "f", "g", "h"}},
		{"c", true, []ActionKind{ActionHeal}, []string{"a", "b", "c", "d", "e", "f", "g", "h"}},
		{"d", false, nil, nil},
		{"e", true, []ActionKind{ActionDouse}, []string{"a", "b", "c", "d", "f", "g", "h"}},
		{"f", true, []ActionKind{ActionCompare}, []string{"a", "b", "c", "d", "e", "g", "h"}},
		{"g", true, []ActionKind{ActionReveal}, nil},
		{"h", false, nil, nil},
	}
	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			p, ok := s.NightPrompt(tc.id)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if !slices.Equal(p.Options, tc.wantOptions) || !slices.Equal(p.Targets, tc.wantTargets) {
				t.Fatalf("prompt = %+v", p)
			}
		})
	}
}

func TestNightPromptStateful(t *testing.T) {
	s := newSession(t, RoleDoctor, RoleJailer, RoleArsonist, RoleSilencer, RoleVillager)
	s.BeginNight()
	s.Roles.Doctor.LastHealTarget = "a"
	s.Roles.Arsonist.Doused["a"] = true
	s.Roles.Silencer.WorkedLastNight = true
	s.Jail("e")

	if p, _ := s.NightPrompt("a"); slices.Contains(p.Targets, "a") {
		t.Fatal("doctor offered a second self-heal")
	}
	if p, ok := s.NightPrompt("b"); !ok || !slices.Equal(p.Targets, []string{"e"}) || p.Options[0] != ActionExecute {
		t.Fatalf("jailer prompt = %+v", p)
	}
	p, _ := s.NightPrompt("c")
	if !slices.Equal(p.Options, []ActionKind{ActionDouse, ActionIgnite}) || slices.Contains(p.Targets, "a") {
		t.Fatalf("arsonist prompt = %+v", p)
	}
	if _, ok := s.NightPrompt("d"); ok {
		t.Fatal("silencer prompted during cooldown")
	}
	if _, ok := s.NightPrompt("e"); ok {
		t.Fatal("prisoner prompted")
	}

	s.Roles.Jailer.CanExecute = false
	if _, ok := s.NightPrompt("b"); ok {
		t.Fatal("jailer without executions prompted")
	}
}

func TestDuskPromptSkipsPreviousPrisoner(t *testing.T) {
	s := newSession(t, RoleJailer, RoleVillager, RoleVillager)
	s.BeginNight()
	s.Jail("b")
	s.BeginNight()
	p, ok := s.DuskPrompt()
	if !ok || !slices.Equal(p.Targets, []string{"c"}) {
		t.Fatalf("dusk prompt = %+v", p)
	}
	s.Kill("a")
	if _, ok := s.DuskPrompt(); ok {
		t.Fatal("dead jailer prompted")
	}
}
