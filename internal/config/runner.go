package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// RunnerConfig configures the local simulation runner.
type RunnerConfig struct {
	Players     int           `envconfig:"PLAYERS" default:"8"`
	Seed        int64         `envconfig:"SEED" default:"0"`
	Night       time.Duration `envconfig:"NIGHT_DURATION" default:"200ms"`
	Jail        time.Duration `envconfig:"JAIL_DURATION" default:"100ms"`
	Day         time.Duration `envconfig:"DAY_DURATION" default:"100ms"`
	Voting      time.Duration `envconfig:"VOTING_DURATION" default:"200ms"`
	MaxRounds   int           `envconfig:"MAX_ROUNDS" default:"30"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string        `envconfig:"LOG_ENCODING" default:"console"`
	ConfigPath  string        `envconfig:"GAME_CONFIG" default:"data/game_config.json"`
}

// LoadRunnerConfig reads MAFIAVILLE_* variables, loading a .env file first when present.
func LoadRunnerConfig() (*RunnerConfig, error) {
	_ = godotenv.Load()

	var c RunnerConfig
	if err := envconfig.Process("MAFIAVILLE", &c); err != nil {
		return nil, fmt.Errorf("failed to load runner config: %w", err)
	}
	if c.Players < 1 {
		return nil, fmt.Errorf("runner needs at least one player, got %d", c.Players)
	}
	return &c, nil
}
