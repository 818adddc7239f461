package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"guesswho/internal/domain"
	"guesswho/internal/roster"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RoomRequest is the payload for room-creating RPCs.
type RoomRequest struct {
	Variant string `json:"variant"`
	Mode    string `json:"mode"`
}

// RoomResponse is the payload returned to clients for both room RPCs.
type RoomResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

func parseRoomRequest(payload string) (RoomRequest, error) {
	req := RoomRequest{
		Variant: roster.DefaultVariant,
		Mode:    string(domain.ModeMultiplayer),
	}
	if payload == "" {
		return req, nil
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return req, err
	}
	if req.Variant == "" {
		req.Variant = roster.DefaultVariant
	}
	switch domain.Mode(req.Mode) {
	case domain.ModeMultiplayer, domain.ModeSolo:
	case "":
		req.Mode = string(domain.ModeMultiplayer)
	default:
		return req, fmt.Errorf("unknown mode: %s", req.Mode)
	}
	return req, nil
}

// rpcCreateRoom always creates a fresh room, for inviting a specific
// opponent or starting a solo session.
func rpcCreateRoom(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	req, err := parseRoomRequest(payload)
	if err != nil {
		return "", runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameGuessWho, map[string]interface{}{
		"variant": req.Variant,
		"mode":    req.Mode,
	})
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", runtime.NewError("Internal error", 13) // INTERNAL
	}

	b, _ := json.Marshal(RoomResponse{MatchID: matchID, IsNew: true})
	return string(b), nil
}

// rpcFindRoom returns an open multiplayer room for the requested variant, or
// creates one when none is listed. Solo requests always get a fresh room.
func rpcFindRoom(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	req, err := parseRoomRequest(payload)
	if err != nil {
		return "", runtime.NewError("Invalid payload", 3)
	}

	if domain.Mode(req.Mode) == domain.ModeMultiplayer {
		query := fmt.Sprintf("+label.game:guesswho +label.mode:multiplayer +label.variant:%s +label.open:>=1", req.Variant)

		limit := 10
		authoritative := true
		minSize := 1
		maxSize := 1 // exactly one human waiting

		matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
		if err != nil {
			logger.Error("MatchList error: %v", err)
			return "", runtime.NewError("Internal error", 13)
		}
		if len(matches) > 0 {
			b, _ := json.Marshal(RoomResponse{MatchID: matches[0].MatchId, IsNew: false})
			return string(b), nil
		}
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameGuessWho, map[string]interface{}{
		"variant": req.Variant,
		"mode":    req.Mode,
	})
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", runtime.NewError("Internal error", 13)
	}

	b, _ := json.Marshal(RoomResponse{MatchID: matchID, IsNew: true})
	return string(b), nil
}
