package nakama

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"mafiaville/internal/app"
	"mafiaville/internal/bot"
	"mafiaville/internal/config"
	"mafiaville/internal/domain"
	"mafiaville/internal/ports"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	botIdentitiesPath = "data/bot_identities.json"
	gameConfigPath    = "data/game_config.json"
	tickRate          = 1
)

// maxGameRounds stops games that stall without a winner.
const maxGameRounds = 40

// MatchState holds the authoritative runtime state for the Nakama match handler.
// Once a game runs, the session belongs to the game goroutine; the loop only
// talks to it through the bridge.
type MatchState struct {
	Lobby                *domain.Lobby               `json:"lobby"`
	Tick                 int64                       `json:"tick"`
	Presences            map[string]runtime.Presence `json:"-"` // Map UserId -> Presence for targeted messaging
	Config               config.GameConfig           `json:"config"`
	BotsEnabled          bool                        `json:"bots_enabled"`
	BotMinThink          time.Duration               `json:"bot_min_think"`
	BotMaxThink          time.Duration               `json:"bot_max_think"`
	BotAutoFillDelay     int64                       `json:"bot_auto_fill_delay"`     // Ticks a short lobby waits before bots take seats
	LastSinglePlayerTick int64                       `json:"last_single_player_tick"` // Tick when the lobby started waiting
	Bots                 *bot.Table                  `json:"-"`
	Bridge               *matchBridge                `json:"-"`
	Settings             ports.SettingsPort          `json:"-"`
	App                  *app.Service                `json:"-"`
	GameID               string                      `json:"game_id"`
	StartedAt            time.Time                   `json:"started_at"`
	Label                string                      `json:"label"`

	running bool
	cancel  context.CancelFunc
}

// humanCount counts seats held by players.
func (ms *MatchState) humanCount() int {
	n := 0
	for _, id := range ms.Lobby.Occupied() {
		if !ms.Bots.Has(id) {
			n++
		}
	}
	return n
}

// firstHumanSeat returns the first seat held by a player or -1.
func (ms *MatchState) firstHumanSeat() int {
	for i, id := range ms.Lobby.Seats {
		if id != "" && !ms.Bots.Has(id) {
			return i
		}
	}
	return -1
}

func (ms *MatchState) ensureOwner(logger runtime.Logger) {
	owner := ms.Lobby.Owner()
	if owner != "" && !ms.Bots.Has(owner) {
		return
	}
	ms.Lobby.OwnerSeat = ms.firstHumanSeat()
	if ms.Lobby.OwnerSeat >= 0 {
		logger.Debug("Owner set to human seat %d.", ms.Lobby.OwnerSeat)
	}
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	if err := bot.LoadIdentities(botIdentitiesPath); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}
	if err := config.LoadGameConfig(gameConfigPath); err != nil {
		logger.Warn("MatchInit: Could not load game config, using defaults: %v", err)
	}
	cfg := config.GetGameConfig()

	state := newMatchState(logger, cfg, time.Now().UnixNano())
	state.Settings = NewStorageSettings(nk, logger, cfg)

	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		applyEnv(state, env)
	}

	label, err := encodeLabel(domain.ComputeLabel(state.Lobby, domain.PhaseLobby))
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	state.Label = label
	return state, tickRate, label
}

func newMatchState(logger runtime.Logger, cfg config.GameConfig, seed int64) *MatchState {
	bots := bot.NewTable(time.Second, 3*time.Second, seed)
	return &MatchState{
		Lobby:            domain.NewLobby(cfg.MaxPlayers),
		Presences:        make(map[string]runtime.Presence),
		Config:           cfg,
		BotMinThink:      time.Second,
		BotMaxThink:      3 * time.Second,
		BotAutoFillDelay: int64(cfg.BotAutoFillDelaySeconds * tickRate),
		Bots:             bots,
		Bridge:           newMatchBridge(logger, bots),
		Settings:         ports.StaticSettings(cfg.Settings()),
		App:              app.NewService(nil),
	}
}

// applyEnv reads bot overrides from the runtime environment.
func applyEnv(state *MatchState, env map[string]string) {
	if val, ok := env[envBotsEnabled]; ok {
		state.BotsEnabled = val == "true"
	}
	if ms, ok := envInt(env, envBotMinThinkMs); ok {
		state.BotMinThink = time.Duration(ms) * time.Millisecond
	}
	if ms, ok := envInt(env, envBotMaxThinkMs); ok {
		state.BotMaxThink = time.Duration(ms) * time.Millisecond
	}
	if sec, ok := envInt(env, envBotAutoFillDelay); ok {
		state.BotAutoFillDelay = int64(sec * tickRate)
	}
	state.Bots = bot.NewTable(state.BotMinThink, state.BotMaxThink, time.Now().UnixNano())
	state.Bridge.bots = state.Bots
}

func envInt(env map[string]string, key string) (int, bool) {
	val, ok := env[key]
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Seated players may always come back, even mid-game.
	if matchState.Lobby.SeatOf(presence.GetUserId()) >= 0 {
		return state, true, ""
	}
	if matchState.running {
		return state, false, "Game in progress"
	}
	if matchState.Lobby.OpenSeats() <= 0 && !hasBotSeat(matchState) {
		return state, false, "Match full"
	}
	return state, true, ""
}

func hasBotSeat(state *MatchState) bool {
	for _, id := range state.Lobby.Occupied() {
		if state.Bots.Has(id) {
			return true
		}
	}
	return false
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	var events []app.Event
	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p
		matchState.Bridge.setConnected(userID, true)

		if seat := matchState.Lobby.SeatOf(userID); seat >= 0 {
			logger.Info("MatchJoin: User %s reconnected to seat %d.", userID, seat)
			continue
		}
		if matchState.running {
			logger.Warn("MatchJoin: User %s joined a running game without a seat.", userID)
			continue
		}

		seat := matchState.Lobby.LowestAvailableSeat()
		if seat < 0 {
			for i, id := range matchState.Lobby.Seats {
				if matchState.Bots.Has(id) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", id, userID, i)
					matchState.Bots.Remove(id)
					events = append(events, app.Event{Kind: app.EventPlayerLeft, Payload: app.PlayerLeftPayload{UserID: id}})
					seat = i
					break
				}
			}
		}
		if seat < 0 {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", userID)
			continue
		}
		matchState.Lobby.Seats[seat] = userID
		matchState.ensureOwner(logger)
		events = append(events, app.Event{
			Kind:    app.EventPlayerJoined,
			Payload: app.PlayerJoinedPayload{UserID: userID, Seat: seat, Owner: seat == matchState.Lobby.OwnerSeat},
		})
	}

	matchState.Bridge.Publish(ctx, events)
	mh.queueLobbyState(matchState, logger)
	mh.updateLabel(matchState, dispatcher, logger)
	matchState.Bridge.flush(dispatcher, matchState.Presences)
	return matchState
}

// MatchLeave is called when one or more players leave the match. Seats are
// released only in the lobby; in a running game the player stops answering.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	var events []app.Event
	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)
		matchState.Bridge.setConnected(userID, false)

		if matchState.running {
			logger.Info("MatchLeave: User %s disconnected during game %s.", userID, matchState.GameID)
			continue
		}
		if seat := matchState.Lobby.SeatOf(userID); seat >= 0 {
			matchState.Lobby.Seats[seat] = ""
			events = append(events, app.Event{Kind: app.EventPlayerLeft, Payload: app.PlayerLeftPayload{UserID: userID}})
			logger.Debug("MatchLeave: User %s left, seat %d freed.", userID, seat)
		}
	}

	if len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		mh.stopGame(matchState)
		return nil
	}

	matchState.ensureOwner(logger)
	matchState.Bridge.Publish(ctx, events)
	mh.queueLobbyState(matchState, logger)
	mh.updateLabel(matchState, dispatcher, logger)
	matchState.Bridge.flush(dispatcher, matchState.Presences)
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
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, logger, msg)
		case OpNightAction:
			mh.handleNightAction(matchState, logger, msg)
		case OpVote:
			mh.handleVote(matchState, logger, msg)
		case OpLastWill:
			mh.handleLastWill(matchState, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.BotsEnabled && !matchState.running {
		mh.autoFillBots(ctx, matchState, logger)
	}

	if res := matchState.Bridge.takeResult(); res != nil {
		mh.handleResult(ctx, matchState, nk, logger, res)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	matchState.Bridge.flush(dispatcher, matchState.Presences)
	return matchState
}

// autoFillBots seats bots once the lobby has stayed short of the minimum for the configured delay.
func (mh *matchHandler) autoFillBots(ctx context.Context, state *MatchState, logger runtime.Logger) {
	occupied := len(state.Lobby.Occupied())
	if state.humanCount() == 0 || occupied >= state.Config.MinPlayers {
		state.LastSinglePlayerTick = 0
		return
	}
	if state.LastSinglePlayerTick == 0 {
		state.LastSinglePlayerTick = state.Tick
		logger.Debug("autoFillBots: Lobby short of %d players, starting auto-fill timer.", state.Config.MinPlayers)
		return
	}
	if state.Tick-state.LastSinglePlayerTick < state.BotAutoFillDelay {
		return
	}
	state.LastSinglePlayerTick = 0

	var events []app.Event
	for occupied < state.Config.MinPlayers {
		seat := state.Lobby.LowestAvailableSeat()
		if seat < 0 {
			break
		}
		identity, ok := pickBotIdentity(state.Lobby)
		if !ok {
			logger.Warn("autoFillBots: No free bot identity left.")
			break
		}
		agent, err := bot.NewAgent(identity.UserID, identity.DisplayName, identity.Level(), time.Now().UnixNano()+int64(seat))
		if err != nil {
			logger.Error("autoFillBots: Failed to create bot agent for %s: %v", identity.UserID, err)
			break
		}
		state.Bots.Seat(agent)
		state.Lobby.Seats[seat] = identity.UserID
		occupied++
		events = append(events, app.Event{Kind: app.EventPlayerJoined, Payload: app.PlayerJoinedPayload{UserID: identity.UserID, Seat: seat}})
		logger.Info("autoFillBots: Added bot %s (%s) to seat %d", identity.Username, identity.UserID, seat)
	}
	if len(events) > 0 {
		state.Bridge.Publish(ctx, events)
		mh.queueLobbyState(state, logger)
	}
}

func pickBotIdentity(lobby *domain.Lobby) (bot.Identity, bool) {
	for i := 0; i < 4*domain.MaxPlayers; i++ {
		identity := bot.GetBotIdentity(i)
		if lobby.SeatOf(identity.UserID) < 0 {
			return identity, true
		}
	}
	return bot.Identity{}, false
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := state.Lobby.SeatOf(senderID)
	occupied := state.Lobby.Occupied()

	logger.Info("StartGame: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.Lobby.OwnerSeat, len(occupied))

	if state.running {
		state.Bridge.sendError(senderID, 409, "game already running")
		return
	}
	if senderSeat < 0 || senderSeat != state.Lobby.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.Lobby.OwnerSeat)
		state.Bridge.sendError(senderID, 403, "only the owner can start the game")
		return
	}
	if len(occupied) < state.Config.MinPlayers {
		logger.Warn("StartGame: Cannot start with %d players. Need at least %d.", len(occupied), state.Config.MinPlayers)
		state.Bridge.sendError(senderID, 400, fmt.Sprintf("need at least %d players", state.Config.MinPlayers))
		return
	}

	settings, err := state.Settings.Settings(ctx)
	if err != nil {
		logger.Warn("StartGame: Settings unavailable, using config: %v", err)
		settings = state.Config.Settings()
	}

	players := make([]*domain.Player, 0, len(occupied))
	for _, id := range occupied {
		players = append(players, &domain.Player{ID: id, DisplayName: displayName(state, id)})
	}
	session := domain.NewGameSession(uuid.NewString(), players, settings.JailerExecutions)

	gameCtx, cancel := context.WithCancel(context.Background())
	state.GameID = session.ID
	state.StartedAt = time.Now()
	state.running = true
	state.cancel = cancel
	state.Bridge.reset()

	gameLogger := logger.WithField("game_id", session.ID)
	go runGame(gameCtx, gameLogger, state.App, state.Bridge, state.Settings, settings, session)

	logger.Info("StartGame: Game %s started with %d players.", session.ID, len(players))
}

// runGame owns the session for the whole game. Panics from broken invariants
// end the game with an error instead of taking down the match.
func runGame(ctx context.Context, logger runtime.Logger, svc *app.Service, bridge *matchBridge, settingsPort ports.SettingsPort, settings domain.Settings, session *domain.GameSession) {
	var (
		outcome *domain.Outcome
		err     error
	)
	defer func() {
		if r := recover(); r != nil {
			var ise *domain.InconsistentStateError
			if e, ok := r.(error); ok && errors.As(e, &ise) {
				err = ise
			} else {
				err = fmt.Errorf("game panicked: %v", r)
			}
			logger.Error("runGame: %v", err)
		}
		bridge.finish(outcome, err)
	}()

	events, err := svc.AssignRoles(ctx, session, settings, bridge)
	bridge.Publish(ctx, events)
	if err != nil {
		return
	}

	orchestrator := app.NewOrchestrator(svc, app.OrchestratorDeps{
		Prompts:   bridge,
		Votes:     bridge,
		Settings:  settingsPort,
		Sink:      bridge,
		Wills:     bridge,
		Logger:    logger,
		Fallback:  settings,
		MaxRounds: maxGameRounds,
	})
	outcome, err = orchestrator.Run(ctx, session)
}

func (mh *matchHandler) handleResult(ctx context.Context, state *MatchState, nk runtime.NakamaModule, logger runtime.Logger, res *gameResult) {
	state.running = false
	mh.stopGame(state)

	switch {
	case res.outcome != nil:
		logger.Info("MatchLoop: Game %s ended, winner %s.", state.GameID, res.outcome.Winner)
		if nk != nil {
			nk.MetricsCounterAdd("mafiaville_games_completed", map[string]string{"winner": string(res.outcome.Winner)}, 1)
			nk.MetricsTimerRecord("mafiaville_game_duration", nil, time.Since(state.StartedAt))
		}
	case errors.Is(res.err, app.ErrSetupRolledBack):
		logger.Warn("MatchLoop: Setup of game %s rolled back: %v", state.GameID, res.err)
		if nk != nil {
			nk.MetricsCounterAdd("mafiaville_setup_rollbacks", nil, 1)
		}
	default:
		logger.Error("MatchLoop: Game %s aborted: %v", state.GameID, res.err)
		if nk != nil {
			nk.MetricsCounterAdd("mafiaville_games_aborted", nil, 1)
		}
	}

	// Players who dropped out during the game lose their seats now.
	var events []app.Event
	for i, id := range state.Lobby.Seats {
		if id == "" || state.Bots.Has(id) {
			continue
		}
		if _, ok := state.Presences[id]; !ok {
			state.Lobby.Seats[i] = ""
			events = append(events, app.Event{Kind: app.EventPlayerLeft, Payload: app.PlayerLeftPayload{UserID: id}})
		}
	}
	state.ensureOwner(logger)
	state.Bridge.Publish(ctx, events)
	state.Bridge.setPhase(domain.PhaseLobby)
	state.GameID = ""
	mh.queueLobbyState(state, logger)
}

func (mh *matchHandler) handleNightAction(state *MatchState, logger runtime.Logger, msg runtime.MatchData) {
	ans, err := decodeAnswer(msg.GetData())
	if err == nil {
		err = state.Bridge.submitAnswer(msg.GetUserId(), ans)
	}
	if err != nil {
		logger.Warn("handleNightAction: User %s: %v", msg.GetUserId(), err)
		state.Bridge.sendError(msg.GetUserId(), 400, err.Error())
	}
}

func (mh *matchHandler) handleVote(state *MatchState, logger runtime.Logger, msg runtime.MatchData) {
	choice, err := decodeVote(msg.GetData())
	if err == nil {
		err = state.Bridge.submitVote(msg.GetUserId(), choice)
	}
	if err != nil {
		logger.Warn("handleVote: User %s: %v", msg.GetUserId(), err)
		state.Bridge.sendError(msg.GetUserId(), 400, err.Error())
	}
}

func (mh *matchHandler) handleLastWill(state *MatchState, logger runtime.Logger, msg runtime.MatchData) {
	if !state.running {
		state.Bridge.sendError(msg.GetUserId(), 400, "no game running")
		return
	}
	line, err := decodeWill(msg.GetData())
	if err == nil {
		err = state.Bridge.appendWill(msg.GetUserId(), line)
	}
	if err != nil {
		logger.Warn("handleLastWill: User %s: %v", msg.GetUserId(), err)
		state.Bridge.sendError(msg.GetUserId(), 400, err.Error())
	}
}

func displayName(state *MatchState, userID string) string {
	if p, ok := state.Presences[userID]; ok && p.GetUsername() != "" {
		return p.GetUsername()
	}
	if name := bot.GetBotDisplayName(userID); name != "" {
		return name
	}
	return userID
}

// queueLobbyState sends every presence the current seating.
func (mh *matchHandler) queueLobbyState(state *MatchState, logger runtime.Logger) {
	seats := make([]seatView, 0, len(state.Lobby.Seats))
	for i, id := range state.Lobby.Seats {
		if id == "" {
			continue
		}
		_, connected := state.Presences[id]
		isBot := state.Bots.Has(id)
		seats = append(seats, seatView{
			UserID:      id,
			Seat:        i,
			DisplayName: displayName(state, id),
			Bot:         isBot,
			Connected:   connected || isBot,
		})
	}
	data, err := encodeLobby(seats, state.Lobby.OwnerSeat, state.Bridge.currentPhase())
	if err != nil {
		logger.Error("Failed to encode lobby state: %v", err)
		return
	}
	state.Bridge.enqueue(OpLobbyState, data)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	phase := state.Bridge.currentPhase()
	if state.running && phase == domain.PhaseLobby {
		phase = domain.PhaseSetup
	}
	label, err := encodeLabel(domain.ComputeLabel(state.Lobby, phase))
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if label == state.Label {
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
		return
	}
	state.Label = label
}

func (mh *matchHandler) stopGame(state *MatchState) {
	if state.cancel != nil {
		state.cancel()
		state.cancel = nil
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminating in %d seconds", graceSeconds)
	if matchState, ok := state.(*MatchState); ok {
		mh.stopGame(matchState)
	}
	return state
}

// MatchSignal answers voice standing queries from the voice token RPC.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, ""
	}
	userID, err := decodeStandingRequest(data)
	if err != nil {
		logger.Warn("MatchSignal: %v", err)
		return state, ""
	}
	standing := matchState.Bridge.standing(userID, matchState.Lobby.SeatOf(userID) >= 0)
	reply, err := encodeStanding(standing)
	if err != nil {
		logger.Error("MatchSignal: Failed to encode standing: %v", err)
		return state, ""
	}
	return state, reply
}
