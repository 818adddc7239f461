package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"

	"guesswho/internal/app"
	"guesswho/internal/bot"
	"guesswho/internal/config"
	"guesswho/internal/domain"
	"guesswho/internal/roster"

	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	RoomID           string                      `json:"room_id"`           // Registry key, taken from the Nakama match id
	Variant          string                      `json:"variant"`           // Roster variant requested at creation
	Mode             domain.Mode                 `json:"mode"`              // multiplayer or solo
	Tick             int64                       `json:"tick"`              // Current tick of the match for stand-in pacing
	StandinDelay     int                         `json:"standin_delay"`     // Ticks the stand-in waits before acting
	StandinWaitUntil int64                       `json:"standin_wait_until"` // Tick when the stand-in should act
	Completed        bool                        `json:"completed"`         // Set once rematch teardown ran
	Presences        map[string]runtime.Presence `json:"-"`                 // Map UserId -> Presence for targeted messaging
	App              *app.Service                `json:"-"`                 // Gameplay use-cases, owned by this match goroutine
	Session          *domain.Session             `json:"-"`                 // Live session shared through the registry
	Standin          *bot.Agent                  `json:"-"`                 // Solo-mode opponent agent
}

// maxHumans returns the human capacity for the configured mode.
func (ms *MatchState) maxHumans() int {
	if ms.Mode == domain.ModeSolo {
		return 1
	}
	return app.MaxHumanParticipants
}

func (ms *MatchState) openSeats() int {
	open := ms.maxHumans() - len(ms.Presences)
	if open < 0 {
		open = 0
	}
	return open
}

// matchLabel is the JSON label queried by the find_room RPC.
type matchLabel struct {
	Game    string `json:"game"`
	Variant string `json:"variant"`
	Mode    string `json:"mode"`
	Open    int    `json:"open"`
}

// NewMatch returns the factory function registered with Nakama. The registry
// is process-wide; each match gets its own handler and Service.
func NewMatch(registry *app.Registry) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return &matchHandler{registry: registry}, nil
	}
}

type matchHandler struct {
	registry *app.Registry
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	// Load stand-in identities from data folder
	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("MatchInit: Could not load stand-in identities: %v", err)
	}

	// Load game configuration
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	state := &MatchState{
		Variant:      roster.DefaultVariant,
		Mode:         domain.ModeMultiplayer,
		Presences:    make(map[string]runtime.Presence),
		App:          app.NewService(nil),
		StandinDelay: config.StandinDelayTicks(),
	}

	if variant, ok := params["variant"].(string); ok && variant != "" {
		state.Variant = variant
	}
	if mode, ok := params["mode"].(string); ok && domain.Mode(mode) == domain.ModeSolo {
		state.Mode = domain.ModeSolo
	}

	if matchID, ok := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string); ok {
		state.RoomID = matchID
	}

	// Environment variables override the config file
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["guesswho_standin_delay_ticks"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.StandinDelay = i
		}
	}
	if state.StandinDelay <= 0 {
		state.StandinDelay = 2
	}

	labelBytes, err := json.Marshal(matchLabel{
		Game:    "guesswho",
		Variant: state.Variant,
		Mode:    string(state.Mode),
		Open:    state.maxHumans(),
	})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Reconnects by a known participant are always allowed.
	if matchState.Session != nil && matchState.Session.HasParticipant(presence.GetUserId()) {
		return matchState, true, ""
	}

	if len(matchState.Presences) >= matchState.maxHumans() {
		return matchState, false, "room_full"
	}

	return matchState, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		sess, err := mh.registry.Obtain(ctx, matchState.RoomID, p.GetUserId(), matchState.Variant, matchState.Mode)
		if err != nil {
			logger.Error("MatchJoin: Could not obtain session for %s: %v", p.GetUserId(), err)
			mh.sendError(matchState, dispatcher, logger, p.GetUserId(), 500, err.Error())
			delete(matchState.Presences, p.GetUserId())
			if kickErr := dispatcher.MatchKick([]runtime.Presence{p}); kickErr != nil {
				logger.Error("MatchJoin: Failed to kick %s: %v", p.GetUserId(), kickErr)
			}
			continue
		}
		matchState.Session = sess

		if matchState.Mode == domain.ModeSolo && matchState.Standin == nil && sess.StandinID != "" {
			agent, err := bot.NewAgent(sess.StandinID)
			if err != nil {
				logger.Error("MatchJoin: Failed to create stand-in agent: %v", err)
			} else {
				matchState.Standin = agent
				logger.Info("MatchJoin: Stand-in %s (%s) active.", agent.Name, agent.ID)
			}
		}

		// Private view: the joiner learns their own secret and nothing else.
		mh.broadcastJSON(matchState, dispatcher, logger, OpSessionInit, SessionInitEvent{
			RoomID:     matchState.RoomID,
			Variant:    sess.Variant,
			Mode:       string(sess.Mode),
			Roster:     sess.Roster,
			Secret:     sess.Secrets[p.GetUserId()],
			Eliminated: sess.Ledger(p.GetUserId()).Indices(),
			TurnHolder: sess.TurnHolder,
			Phase:      string(sess.Phase),
		}, []string{p.GetUserId()})
	}

	if matchState.Session != nil {
		mh.broadcastJSON(matchState, dispatcher, logger, OpTurn, TurnEvent{
			TurnHolder: matchState.Session.TurnHolder,
			Phase:      string(matchState.Session.Phase),
		}, nil)
	}
	mh.broadcastPlayerCount(matchState, dispatcher, logger)
	mh.updateLabel(matchState, dispatcher, logger)

	return matchState
}

// MatchLeave is called when one or more participants leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		logger.Debug("MatchLeave: User %s left.", p.GetUserId())
	}

	if len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		mh.registry.Remove(matchState.RoomID)
		return nil
	}

	mh.broadcastPlayerCount(matchState, dispatcher, logger)
	mh.updateLabel(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpAsk:
			mh.handleAsk(matchState, dispatcher, logger, msg)
		case OpAnswer:
			mh.handleAnswer(matchState, dispatcher, logger, msg)
		case OpGuess:
			mh.handleGuess(matchState, dispatcher, logger, msg)
		case OpEliminate:
			mh.handleEliminate(matchState, dispatcher, logger, msg)
		case OpRevive:
			mh.handleRevive(matchState, dispatcher, logger, msg)
		case OpReady:
			mh.handleReady(ctx, nk, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.Completed {
		return nil
	}

	mh.processStandin(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) handleAsk(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if state.Session == nil {
		logger.Warn("handleAsk: Session not started.")
		return
	}

	var request AskRequest
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("handleAsk: Invalid AskRequest from %s: %v", msg.GetUserId(), err)
		return
	}

	events, err := state.App.Ask(state.Session, msg.GetUserId(), request.Question)
	if err != nil {
		logger.Warn("handleAsk: User %s failed to ask: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, err.Error())
		return
	}

	mh.dispatchEvents(state, dispatcher, logger, events)
}

func (mh *matchHandler) handleAnswer(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if state.Session == nil {
		logger.Warn("handleAnswer: Session not started.")
		return
	}

	var request AnswerRequest
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("handleAnswer: Invalid AnswerRequest from %s: %v", msg.GetUserId(), err)
		return
	}

	events, err := state.App.Answer(state.Session, msg.GetUserId(), request.Answer)
	if err != nil {
		logger.Warn("handleAnswer: User %s failed to answer: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, err.Error())
		return
	}

	mh.dispatchEvents(state, dispatcher, logger, events)

	// In solo mode the stand-in reviews the exchange it just heard the answer
	// to and prunes its own board.
	if state.Standin != nil {
		question, answer, ok := state.Session.LastExchange()
		if ok && question.SpeakerID == state.Standin.ID {
			fresh := state.Standin.ReviewAnswer(state.Session, question.Text, answer.Text)
			if len(fresh) > 0 {
				events, err := state.App.MergeEliminations(state.Session, state.Standin.ID, fresh)
				if err != nil {
					logger.Error("handleAnswer: Stand-in elimination merge failed: %v", err)
					return
				}
				mh.dispatchEvents(state, dispatcher, logger, events)
			}
		}
	}
}

func (mh *matchHandler) handleGuess(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if state.Session == nil {
		logger.Warn("handleGuess: Session not started.")
		return
	}

	var request GuessRequest
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("handleGuess: Invalid GuessRequest from %s: %v", msg.GetUserId(), err)
		return
	}

	events, err := state.App.Guess(state.Session, msg.GetUserId(), request.Character)
	if err != nil {
		logger.Warn("handleGuess: User %s failed to guess: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, err.Error())
		return
	}

	mh.dispatchEvents(state, dispatcher, logger, events)
}

func (mh *matchHandler) handleEliminate(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if state.Session == nil {
		logger.Warn("handleEliminate: Session not started.")
		return
	}

	var request EliminateRequest
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("handleEliminate: Invalid EliminateRequest from %s: %v", msg.GetUserId(), err)
		return
	}

	events, err := state.App.Eliminate(state.Session, msg.GetUserId(), request.Index)
	if err != nil {
		logger.Warn("handleEliminate: User %s failed to eliminate index %d: %v", msg.GetUserId(), request.Index, err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, err.Error())
		return
	}

	mh.dispatchEvents(state, dispatcher, logger, events)
}

func (mh *matchHandler) handleRevive(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if state.Session == nil {
		logger.Warn("handleRevive: Session not started.")
		return
	}

	var request ReviveRequest
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("handleRevive: Invalid ReviveRequest from %s: %v", msg.GetUserId(), err)
		return
	}

	events, err := state.App.Revive(state.Session, msg.GetUserId(), request.Index)
	if err != nil {
		logger.Warn("handleRevive: User %s failed to revive index %d: %v", msg.GetUserId(), request.Index, err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, err.Error())
		return
	}

	mh.dispatchEvents(state, dispatcher, logger, events)
}

func (mh *matchHandler) handleReady(ctx context.Context, nk runtime.NakamaModule, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if state.Session == nil {
		logger.Warn("handleReady: Session not started.")
		return
	}

	events, err := state.App.Ready(state.Session, msg.GetUserId())
	if err != nil {
		logger.Warn("handleReady: User %s failed to vote: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, err.Error())
		return
	}

	for _, ev := range events {
		if ev.Kind == app.EventSessionComplete {
			mh.completeSession(ctx, nk, state, dispatcher, logger)
			return
		}
	}

	mh.dispatchEvents(state, dispatcher, logger, events)
}

// completeSession tears the room down after a unanimous rematch vote: the old
// room id is retired, a fresh match is created with the same variant and mode
// and its id handed to the participants.
func (mh *matchHandler) completeSession(ctx context.Context, nk runtime.NakamaModule, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	mh.registry.Remove(state.RoomID)

	matchID, err := nk.MatchCreate(ctx, MatchNameGuessWho, map[string]interface{}{
		"variant": state.Variant,
		"mode":    string(state.Mode),
	})
	if err != nil {
		logger.Error("completeSession: Failed to create rematch: %v", err)
		mh.broadcastJSON(state, dispatcher, logger, OpGameError, GameErrorEvent{
			Code:    500,
			Message: "rematch unavailable",
		}, nil)
		state.Completed = true
		return
	}

	logger.Info("completeSession: Room %s retired, rematch at %s.", state.RoomID, matchID)
	mh.broadcastJSON(state, dispatcher, logger, OpRematch, RematchEvent{MatchID: matchID}, nil)
	state.Completed = true
}

// processStandin advances the stand-in when it holds the turn. Every action
// waits StandinDelay ticks so the opponent does not feel instantaneous.
func (mh *matchHandler) processStandin(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	sess := state.Session
	if sess == nil || state.Standin == nil || sess.Terminal() {
		state.StandinWaitUntil = 0
		return
	}
	if sess.TurnHolder != state.Standin.ID {
		state.StandinWaitUntil = 0
		return
	}

	if state.StandinWaitUntil == 0 {
		state.StandinWaitUntil = state.Tick + int64(state.StandinDelay)
		logger.Debug("processStandin: Stand-in %s will act at tick %d (current %d)", state.Standin.ID, state.StandinWaitUntil, state.Tick)
		return
	}
	if state.Tick < state.StandinWaitUntil {
		return
	}
	state.StandinWaitUntil = 0

	switch sess.Phase {
	case domain.PhaseAwaitingAnswer:
		question := ""
		if n := len(sess.Dialogue); n > 0 {
			question = sess.Dialogue[n-1].Text
		}
		answer := state.Standin.AnswerQuestion(sess, question)
		events, err := state.App.Answer(sess, state.Standin.ID, answer)
		if err != nil {
			logger.Error("processStandin: Stand-in failed to answer: %v", err)
			return
		}
		mh.dispatchEvents(state, dispatcher, logger, events)
	case domain.PhaseAsking:
		question := state.Standin.NextQuestion(sess)
		events, err := state.App.Ask(sess, state.Standin.ID, question)
		if err != nil {
			logger.Error("processStandin: Stand-in failed to ask: %v", err)
			return
		}
		mh.dispatchEvents(state, dispatcher, logger, events)
	}
}

// dispatchEvents converts app events to wire messages and sends them out.
func (mh *matchHandler) dispatchEvents(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		var secrets map[string]string
		if ev.Kind == app.EventWinner && state.Session != nil {
			secrets = state.Session.Secrets
		}

		opCode, payload, ok := toWireEvent(ev, secrets)
		if !ok {
			logger.Warn("dispatchEvents: Unknown event kind: %v", ev.Kind)
			continue
		}

		mh.broadcastJSON(state, dispatcher, logger, opCode, payload, ev.Recipients)
	}
}

// broadcastJSON marshals and sends a payload. Targeted sends resolve user ids
// to live presences; if every intended recipient is offline (or the stand-in)
// nothing is sent rather than leaking to everyone.
func (mh *matchHandler) broadcastJSON(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, opCode int64, payload any, recipientIDs []string) {
	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("broadcastJSON: Failed to marshal payload for op %d: %v", opCode, err)
		return
	}

	var recipients []runtime.Presence
	if len(recipientIDs) > 0 {
		for _, uid := range recipientIDs {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

// sendError sends a GameErrorEvent to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	bytes, err := json.Marshal(GameErrorEvent{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal GameErrorEvent: %v", err)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) broadcastPlayerCount(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	mh.broadcastJSON(state, dispatcher, logger, OpPlayerCount, PlayerCountEvent{
		Humans:  len(state.Presences),
		Standin: state.Standin != nil,
	}, nil)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	labelBytes, err := json.Marshal(matchLabel{
		Game:    "guesswho",
		Variant: state.Variant,
		Mode:    string(state.Mode),
		Open:    state.openSeats(),
	})
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	if matchState, ok := state.(*MatchState); ok {
		mh.registry.Remove(matchState.RoomID)
	}
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
