package nakama

import (
	"context"
	"database/sql"
	"time"

	"guesswho/internal/app"
	"guesswho/internal/config"
	"guesswho/internal/roster"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("InitModule: Could not load game config: %v", err)
	}

	rosterURL := config.RosterURL()
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if url, ok := env["guesswho_roster_url"]; ok && url != "" {
		rosterURL = url
	}

	var provider roster.Provider
	if rosterURL != "" {
		provider = roster.NewHTTPProvider(rosterURL, 10*time.Second)
		logger.Info("InitModule: Roster served from %s", rosterURL)
	} else {
		provider = roster.NewDefaultProvider()
		logger.Info("InitModule: Roster served from the built-in catalog.")
	}

	// The registry's Service is only ever used under the registry lock; each
	// match loop gets its own Service in MatchInit.
	registry := app.NewRegistry(provider, app.NewService(nil), config.RosterSize())

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameGuessWho, NewMatch(registry)); err != nil {
		return err
	}

	logger.Info("GuessWho Go module loaded.")
	return nil
}
