package config

import (
	"testing"
	"time"
)

func TestParseGameConfigFillsDefaults(t *testing.T) {
	c, err := ParseGameConfig([]byte(`{"night_duration_seconds": 45, "max_players": 40, "min_players": 2}`))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	def := DefaultGameConfig()
	if c.NightDurationSeconds != 45 {
		t.Fatalf("night = %d, want 45", c.NightDurationSeconds)
	}
	if c.DayDurationSeconds != def.DayDurationSeconds || c.JailerExecutions != def.JailerExecutions {
		t.Fatalf("defaults not applied: %+v", c)
	}
	if c.MaxPlayers != 16 || c.MinPlayers != 5 {
		t.Fatalf("player bounds = %d..%d, want 5..16", c.MinPlayers, c.MaxPlayers)
	}
}

func TestParseGameConfigRejectsBadJSON(t *testing.T) {
	if _, err := ParseGameConfig([]byte(`{"night_duration_seconds": "soon"}`)); err == nil {
		t.Fatal("expected an error for a string duration")
	}
}

func TestGameConfigSettings(t *testing.T) {
	st := DefaultGameConfig().Settings()
	if st.NightDuration != time.Minute || st.JailDuration != 20*time.Second {
		t.Fatalf("settings = %+v", st)
	}
	if st.MafiaVisibilityThreshold != 7 || st.JailerExecutions != 3 {
		t.Fatalf("settings = %+v", st)
	}
}

func TestLoadRunnerConfig(t *testing.T) {
	t.Setenv("MAFIAVILLE_PLAYERS", "6")
	t.Setenv("MAFIAVILLE_NIGHT_DURATION", "1s")
	c, err := LoadRunnerConfig()
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if c.Players != 6 || c.Night != time.Second || c.MaxRounds != 30 {
		t.Fatalf("runner config = %+v", c)
	}

	t.Setenv("MAFIAVILLE_PLAYERS", "0")
	if _, err := LoadRunnerConfig(); err == nil {
		t.Fatal("zero players accepted")
	}
}
