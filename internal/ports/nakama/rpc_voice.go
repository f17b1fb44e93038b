package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"mafiaville/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Error codes follow gRPC status codes.
const (
	codeInvalidArgument  = 3
	codePermissionDenied = 7
	codeInternal         = 13
)

var voiceService *app.VoiceService

type voiceTokenRequest struct {
	Action  string `json:"action"`
	MatchID string `json:"match_id"`
	Channel string `json:"channel"`
}

// VoiceTokenResponse is returned by the voice_token RPC.
type VoiceTokenResponse struct {
	Token   string `json:"token"`
	Channel string `json:"channel,omitempty"`
}

// newVoiceServiceFromEnv reads the Vivox credentials from the runtime environment.
func newVoiceServiceFromEnv(env map[string]string) *app.VoiceService {
	return app.NewVoiceService(env[envVivoxSecret], env[envVivoxIssuer], env[envVivoxDomain])
}

// RpcVoiceTokenHandler signs a Vivox login token, or a join token for one of
// the match's voice channels once the match confirms the caller may use it.
//
// Payload: {"action": "login" | "join", "match_id": "...", "channel": "town" | "mafia"}
func RpcVoiceTokenHandler(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("authentication required", codePermissionDenied)
	}
	if voiceService == nil {
		logger.Error("RpcVoiceToken: voice service not configured")
		return "", runtime.NewError("voice chat unavailable", codeInternal)
	}

	var req voiceTokenRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("invalid payload", codeInvalidArgument)
	}
	if req.Action == "" {
		req.Action = app.VoiceActionLogin
	}

	var resp VoiceTokenResponse
	switch req.Action {
	case app.VoiceActionLogin:
		token, err := voiceService.GenerateToken(userID, req.Action, "")
		if err != nil {
			return "", voiceError(logger, userID, err)
		}
		resp.Token = token
	case app.VoiceActionJoin:
		if req.MatchID == "" {
			return "", runtime.NewError("match_id required for join", codeInvalidArgument)
		}
		channel := app.VoiceChannel(req.Channel)
		standing, err := queryStanding(ctx, nk, req.MatchID, userID)
		if err != nil {
			logger.Warn("RpcVoiceToken [User:%s]: standing query for match %s failed: %v", userID, req.MatchID, err)
			return "", runtime.NewError("match not available", codeInvalidArgument)
		}
		if err := app.Authorize(standing, channel); err != nil {
			return "", voiceError(logger, userID, err)
		}
		name := app.ChannelName(req.MatchID, channel)
		token, err := voiceService.GenerateToken(userID, req.Action, name)
		if err != nil {
			return "", voiceError(logger, userID, err)
		}
		resp.Token, resp.Channel = token, name
	default:
		return "", runtime.NewError("unsupported action", codeInvalidArgument)
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return "", runtime.NewError("internal error", codeInternal)
	}
	return string(out), nil
}

func queryStanding(ctx context.Context, nk runtime.NakamaModule, matchID, userID string) (app.VoiceStanding, error) {
	req, err := encodeStandingRequest(userID)
	if err != nil {
		return app.VoiceStanding{}, err
	}
	reply, err := nk.MatchSignal(ctx, matchID, req)
	if err != nil {
		return app.VoiceStanding{}, err
	}
	return decodeStanding(reply)
}

func voiceError(logger runtime.Logger, userID string, err error) error {
	switch {
	case errors.Is(err, app.ErrVoiceDenied):
		return runtime.NewError(err.Error(), codePermissionDenied)
	case errors.Is(err, app.ErrUnknownChannel), errors.Is(err, app.ErrUnsupportedVerb):
		return runtime.NewError(err.Error(), codeInvalidArgument)
	}
	logger.Error("RpcVoiceToken [User:%s]: failed to sign token: %v", userID, err)
	return runtime.NewError("internal error", codeInternal)
}
