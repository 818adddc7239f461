package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"guesswho/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// VoiceTokenRequest is the payload for the voice_token RPC.
// Action is "login" or "join"; RoomID is required for join tokens.
type VoiceTokenRequest struct {
	Action string `json:"action"`
	RoomID string `json:"roomId"`
}

type VoiceTokenResponse struct {
	Token string `json:"token"`
}

// rpcVoiceToken issues a voice channel access token for the calling user.
// Credentials come from the runtime environment; without them the RPC is
// unavailable rather than silently signing with a test key.
func rpcVoiceToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req VoiceTokenRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
	}

	userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if !ok || userID == "" {
		return "", runtime.NewError("User id required", 3)
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	secret := env["voice_secret"]
	issuer := env["voice_issuer"]
	domain := env["voice_domain"]
	if secret == "" || issuer == "" || domain == "" {
		logger.Warn("rpcVoiceToken: Voice credentials missing from env.")
		return "", runtime.NewError("Voice chat not configured", 13) // INTERNAL
	}

	svc := app.NewVoiceService(secret, issuer, domain, 0)
	token, err := svc.Token(userID, req.Action, req.RoomID)
	if err != nil {
		logger.Warn("rpcVoiceToken: %v", err)
		return "", runtime.NewError("Invalid voice token request", 3)
	}

	b, _ := json.Marshal(VoiceTokenResponse{Token: token})
	return string(b), nil
}
