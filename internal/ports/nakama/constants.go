package nakama

const (
	// RpcCreateRoom is the Nakama RPC id clients call to create a fresh room.
	RpcCreateRoom = "create_room"
	// RpcFindRoom is the Nakama RPC id clients call to find an open room or
	// create one when none is listed.
	RpcFindRoom = "find_room"
	// RpcVoiceToken is the Nakama RPC id clients call for a voice channel
	// access token.
	RpcVoiceToken = "voice_token"

	// MatchNameGuessWho is the authoritative match handler name registered
	// with Nakama.
	MatchNameGuessWho = "guesswho_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpAsk       int64 = 1
	OpAnswer    int64 = 2
	OpGuess     int64 = 3
	OpEliminate int64 = 4
	OpRevive    int64 = 5
	OpReady     int64 = 6

	// Server -> Client events
	OpSessionInit      int64 = 101 // send privately
	OpTurn             int64 = 102
	OpQuestionAsked    int64 = 103
	OpAnswerGiven      int64 = 104
	OpEliminationSet   int64 = 105 // send privately
	OpEliminationCount int64 = 106
	OpWinner           int64 = 107
	OpBadGuess         int64 = 108
	OpReadyWait        int64 = 109
	OpRematch          int64 = 110
	OpPlayerCount      int64 = 111
	OpGameError        int64 = 120
)
