package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"mafiaville/internal/domain"
)

// GameConfig is the static game configuration shipped with the module.
type GameConfig struct {
	NightDurationSeconds     int `json:"night_duration_seconds"`
	DayDurationSeconds       int `json:"day_duration_seconds"`
	VotingDurationSeconds    int `json:"voting_duration_seconds"`
	JailDurationSeconds      int `json:"jail_duration_seconds"`
	MafiaVisibilityThreshold int `json:"mafia_visibility_threshold"`
	JailerExecutions         int `json:"jailer_executions"`
	MinPlayers               int `json:"min_players"`
	MaxPlayers               int `json:"max_players"`
	// BotAutoFillDelaySeconds configures how long a short lobby waits before bots take the empty seats.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
}

// DefaultGameConfig is used when no config file could be loaded.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		NightDurationSeconds:     60,
		DayDurationSeconds:       90,
		VotingDurationSeconds:    30,
		JailDurationSeconds:      20,
		MafiaVisibilityThreshold: 7,
		JailerExecutions:         domain.DefaultJailerExecutions,
		MinPlayers:               domain.MinPlayers,
		MaxPlayers:               12,
		BotAutoFillDelaySeconds:  15,
	}
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
// Zero fields fall back to DefaultGameConfig.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c, err := ParseGameConfig(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = &c
	})
	return loadErr
}

// ParseGameConfig decodes a JSON config and fills unset fields with defaults.
func ParseGameConfig(data []byte) (GameConfig, error) {
	var c GameConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return GameConfig{}, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	def := DefaultGameConfig()
	fill := func(v *int, d int) {
		if *v <= 0 {
			*v = d
		}
	}
	fill(&c.NightDurationSeconds, def.NightDurationSeconds)
	fill(&c.DayDurationSeconds, def.DayDurationSeconds)
	fill(&c.VotingDurationSeconds, def.VotingDurationSeconds)
	fill(&c.JailDurationSeconds, def.JailDurationSeconds)
	fill(&c.MafiaVisibilityThreshold, def.MafiaVisibilityThreshold)
	fill(&c.JailerExecutions, def.JailerExecutions)
	fill(&c.MinPlayers, def.MinPlayers)
	fill(&c.MaxPlayers, def.MaxPlayers)
	fill(&c.BotAutoFillDelaySeconds, def.BotAutoFillDelaySeconds)
	if c.MaxPlayers > domain.MaxPlayers {
		c.MaxPlayers = domain.MaxPlayers
	}
	if c.MinPlayers < domain.MinPlayers {
		c.MinPlayers = domain.MinPlayers
	}
	return c, nil
}

// GetGameConfig returns the loaded configuration or the defaults.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return DefaultGameConfig()
	}
	return *cfg
}

// Settings converts the config into the engine's per-round settings.
func (c GameConfig) Settings() domain.Settings {
	return domain.Settings{
		NightDuration:            time.Duration(c.NightDurationSeconds) * time.Second,
		DayDuration:              time.Duration(c.DayDurationSeconds) * time.Second,
		VotingDuration:           time.Duration(c.VotingDurationSeconds) * time.Second,
		JailDuration:             time.Duration(c.JailDurationSeconds) * time.Second,
		MafiaVisibilityThreshold: c.MafiaVisibilityThreshold,
		JailerExecutions:         c.JailerExecutions,
	}
}
