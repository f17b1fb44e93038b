package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Identity is one entry of the bot pool.
type Identity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Difficulty  string `json:"difficulty"` // "easy", "medium", "hard"
}

// Level is the play level of the identity.
func (i Identity) Level() BotLevel {
	return ParseLevel(i.Difficulty)
}

type identityPool struct {
	mu      sync.RWMutex
	list    []Identity
	byID    map[string]Identity
	loaded  sync.Once
	loadErr error
}

var pool = &identityPool{byID: map[string]Identity{}}

// LoadIdentities loads the bot profiles from the given path. Only the first call reads the file.
func LoadIdentities(path string) error {
	pool.loaded.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			pool.loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}
		var list []Identity
		if err := json.Unmarshal(data, &list); err != nil {
			pool.loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}
		pool.mu.Lock()
		defer pool.mu.Unlock()
		pool.list = list
		for _, identity := range list {
			if identity.UserID != "" {
				pool.byID[identity.UserID] = identity
			}
		}
	})
	return pool.loadErr
}

// ProvisionBots makes sure every pooled bot has a Nakama account tagged with is_bot metadata.
// Identities are updated with the user ids Nakama assigned.
func ProvisionBots(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	for i := range pool.list {
		identity := &pool.list[i]
		if identity.DeviceID == "" {
			continue
		}
		userID, username, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
		if err != nil {
			logger.Error("ProvisionBots: Failed to authenticate bot %s: %v", identity.Username, err)
			continue
		}
		identity.UserID, identity.Username = userID, username

		metadata := map[string]interface{}{"is_bot": true, "difficulty": identity.Difficulty}
		if err := nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
			logger.Warn("ProvisionBots: Failed to update bot account %s: %v", userID, err)
		}
		pool.byID[userID] = *identity
		logger.Debug("ProvisionBots: Bot %s (%s) ready", identity.DisplayName, userID)
	}
}

// GetBotIdentity returns the pool entry at index (mod pool size). Entries without a
// provisioned account, or an empty pool, yield a local bot id that IsBot still recognizes.
func GetBotIdentity(index int) Identity {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	var identity Identity
	if len(pool.list) == 0 {
		identity = Identity{
			Username:    fmt.Sprintf("bot%d", index),
			DisplayName: fmt.Sprintf("Townsperson %d", index+1),
		}
	} else {
		identity = pool.list[index%len(pool.list)]
	}
	if identity.UserID == "" {
		identity.UserID = "bot-" + identity.Username
	}
	pool.byID[identity.UserID] = identity
	return identity
}

// IsBot reports whether the given user id belongs to the bot pool.
func IsBot(userID string) bool {
	pool.mu.RLock()
	defer pool.mu.RUnlock()
	_, ok := pool.byID[userID]
	return ok
}

// GetBotDisplayName returns the display name of a pooled bot, or "" for other users.
func GetBotDisplayName(userID string) string {
	pool.mu.RLock()
	defer pool.mu.RUnlock()
	identity, ok := pool.byID[userID]
	if !ok {
		return ""
	}
	if identity.DisplayName == "" {
		return identity.Username
	}
	return identity.DisplayName
}
