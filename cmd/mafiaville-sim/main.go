// Command mafiaville-sim plays one all-bot game locally and logs how it went.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	"mafiaville/internal/app"
	"mafiaville/internal/bot"
	"mafiaville/internal/config"
	"mafiaville/internal/platform/zaplog"
	"mafiaville/internal/sim"
)

const botIdentitiesPath = "data/bot_identities.json"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	rc, err := config.LoadRunnerConfig()
	if err != nil {
		return err
	}
	zl, err := zaplog.New(zaplog.Config{Level: rc.LogLevel, Encoding: rc.LogEncoding})
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()
	logger := zaplog.NewRuntimeLogger(zl)

	if err := config.LoadGameConfig(rc.ConfigPath); err != nil {
		logger.Warn("Game config unavailable, using defaults: %v", err)
	}
	if err := bot.LoadIdentities(botIdentitiesPath); err != nil {
		logger.Warn("Bot identities unavailable, using generated names: %v", err)
	}

	settings := config.GetGameConfig().Settings()
	settings.NightDuration = rc.Night
	settings.JailDuration = rc.Jail
	settings.DayDuration = rc.Day
	settings.VotingDuration = rc.Voting

	seed := rc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.WithField("seed", seed).Info("Starting simulated game with %d players", rc.Players)
	res, err := sim.Run(ctx, sim.Options{
		Players:   rc.Players,
		Seed:      seed,
		Settings:  settings,
		MaxRounds: rc.MaxRounds,
	}, logger)
	if errors.Is(err, app.ErrRoundLimit) {
		logger.Warn("Game stopped after %d rounds without a winner", res.Rounds)
		return nil
	}
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	ids := make([]string, 0, len(res.Roles))
	for id := range res.Roles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return res.Names[ids[i]] < res.Names[ids[j]] })
	for _, id := range ids {
		logger.Info("%-20s %s", res.Names[id], res.Roles[id])
	}
	logger.Info("Game %s: %s won after %d rounds", res.GameID, res.Outcome.Winner, res.Rounds)
	return nil
}
