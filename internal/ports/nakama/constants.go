package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"
	// RpcVoiceToken signs Vivox tokens for the town and mafia voice channels.
	RpcVoiceToken = "voice_token"

	// MatchNameMafiaville is the authoritative match handler name registered with Nakama.
	MatchNameMafiaville = "mafiaville_match"

	// StorageCollection holds server-side documents such as the settings override.
	StorageCollection = "mafiaville"
	// StorageKeySettings is the system-owned settings document read at the start of each round.
	StorageKeySettings = "settings"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame   int64 = 1
	OpNightAction int64 = 2
	OpVote        int64 = 3
	OpLastWill    int64 = 4

	// Server -> Client events
	OpLobbyState       int64 = 100
	OpPlayerJoined     int64 = 101
	OpPlayerLeft       int64 = 102
	OpGameStarted      int64 = 103
	OpSetupFailed      int64 = 104
	OpRoleAssigned     int64 = 105 // send privately
	OpPhaseChanged     int64 = 106
	OpJailed           int64 = 107 // send privately
	OpMafiaOrder       int64 = 108 // send privately
	OpNotice           int64 = 109 // send privately
	OpInvestigation    int64 = 110 // send privately
	OpComparison       int64 = 111 // send privately
	OpSpyReport        int64 = 112 // send privately
	OpRoleChanged      int64 = 113 // send privately
	OpNightSummary     int64 = 114
	OpNominationResult int64 = 115
	OpVerdictResult    int64 = 116
	OpSnapshot         int64 = 117
	OpGameEnded        int64 = 118
	OpActionPrompt     int64 = 119 // send privately
	OpBallotOpened     int64 = 120
	OpGameError        int64 = 121 // send privately
)

// Env keys read from the Nakama runtime environment.
const (
	envBotsEnabled      = "mafiaville_bots_enabled"
	envBotMinThinkMs    = "mafiaville_bot_min_think_ms"
	envBotMaxThinkMs    = "mafiaville_bot_max_think_ms"
	envBotAutoFillDelay = "mafiaville_bot_auto_fill_delay_sec"
	envVivoxSecret      = "vivox_secret"
	envVivoxIssuer      = "vivox_issuer"
	envVivoxDomain      = "vivox_domain"
)
