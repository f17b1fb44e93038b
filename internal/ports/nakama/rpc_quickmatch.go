package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"mafiaville/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickMatchResponse is the payload returned to clients when requesting a lobby-capable match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

const quickMatchQuery = "+label.open:>=1 +label.game:" + domain.GameName + " +label.phase:lobby"

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcVoiceToken, RpcVoiceTokenHandler)
}

// rpcQuickMatch returns a lobby with open seats, creating one when none is listed.
func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	limit := 10
	authoritative := true
	minSize := 1
	maxSize := domain.MaxPlayers - 1

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, quickMatchQuery)
	if err != nil {
		logger.Error("QuickMatch [User:%s]: Failed to list matches: %v", userID, err)
		return "", err
	}

	resp := QuickMatchResponse{}
	if len(matches) > 0 {
		resp.MatchID = matches[0].MatchId
		logger.Info("QuickMatch [User:%s]: Found existing match %s", userID, resp.MatchID)
	} else {
		// Seat and owner assignment happen in MatchJoin.
		matchID, err := nk.MatchCreate(ctx, MatchNameMafiaville, map[string]interface{}{})
		if err != nil {
			logger.Error("QuickMatch [User:%s]: Failed to create match: %v", userID, err)
			return "", err
		}
		resp = QuickMatchResponse{MatchID: matchID, IsNew: true}
		logger.Info("QuickMatch [User:%s]: Created new match %s", userID, matchID)
	}

	b, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
