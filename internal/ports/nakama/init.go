package nakama

import (
	"context"
	"database/sql"

	"mafiaville/internal/bot"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs, hooks and the match handler for the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	voiceService = newVoiceServiceFromEnv(env)

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}
	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}
	if err := initializer.RegisterMatch(MatchNameMafiaville, NewMatch); err != nil {
		return err
	}

	if err := bot.LoadIdentities(botIdentitiesPath); err != nil {
		logger.Warn("InitModule: Could not load bot identities: %v", err)
	} else {
		bot.ProvisionBots(ctx, nk, logger)
	}

	logger.Info("Mafiaville Go module loaded.")
	return nil
}
