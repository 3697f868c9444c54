package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shithead-online/server/internal/apperrors"
	"github.com/shithead-online/server/internal/game/state"
	"github.com/shithead-online/server/internal/protocol"
	"github.com/shithead-online/server/internal/protocol/convert"
	"github.com/shithead-online/server/internal/storage"
)

// Conn is a live subscriber of a session's broadcasts. The websocket layer
// implements it; tests use capturing fakes.
type Conn interface {
	SendMessage(msg *protocol.Message)
}

// Session owns exactly one game instance and its connections. Every
// state-mutating request — client plays, take-pile, timer expiry — goes
// through mu, so exactly one mutation is in flight at a time and every
// broadcast reflects a whole mutation.
type Session struct {
	GameID string

	mu    sync.Mutex
	lobby []state.Seat
	conns map[Conn]struct{}
	game  *state.Game

	maxPlayers int

	turnTimeout  time.Duration
	timerMu      sync.Mutex
	turnTimer    *time.Timer
	tickerStop   chan struct{}
	turnDeadline time.Time
	timerGen     uint64 // bumped on every arm/cancel to invalidate stale expiries

	store *storage.Store
}

func newSession(gameID string, turnTimeout time.Duration, maxPlayers int, store *storage.Store) *Session {
	return &Session{
		GameID:      gameID,
		conns:       make(map[Conn]struct{}),
		maxPlayers:  maxPlayers,
		turnTimeout: turnTimeout,
		store:       store,
	}
}

// AddPlayer seats a new player in the lobby and announces them to every
// connected client.
func (s *Session) AddPlayer(name string) (protocol.PlayerInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game != nil {
		return protocol.PlayerInfo{}, apperrors.ErrGameStarted
	}
	if len(s.lobby) >= s.maxPlayers {
		return protocol.PlayerInfo{}, apperrors.ErrGameFull
	}

	seat := s.addLobbyPlayerLocked(name)
	info := protocol.PlayerInfo{ID: seat.ID, Name: seat.Name}

	s.broadcastLocked(protocol.MustNewMessage(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{
		Player: info,
	}))
	s.saveSnapshotLocked()

	log.Printf("👤 player %s joined game %s", name, s.GameID)
	return info, nil
}

// addLobbyPlayerLocked seats a player without broadcasting. Caller holds mu
// or owns the session exclusively (registry construction).
func (s *Session) addLobbyPlayerLocked(name string) state.Seat {
	seat := state.Seat{ID: uuid.NewString(), Name: name}
	s.lobby = append(s.lobby, seat)
	return seat
}

// Join validates that the player belongs to this session's lobby, registers
// the connection, and pushes the latest snapshot to it alone.
func (s *Session) Join(conn Conn, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasPlayerLocked(playerID) {
		return apperrors.ErrNotInLobby
	}

	s.conns[conn] = struct{}{}

	conn.SendMessage(protocol.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		GameID:   s.GameID,
		PlayerID: playerID,
	}))
	if s.game != nil {
		conn.SendMessage(protocol.MustNewMessage(protocol.MsgGameStateUpdate, protocol.GameStateUpdatePayload{
			GameID: s.GameID,
			State:  convert.StateToDTO(s.game),
		}))
	}
	return nil
}

// Leave removes a connection from the broadcast set. The player stays in
// the game and can still time out normally.
func (s *Session) Leave(conn Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

func (s *Session) hasPlayerLocked(playerID string) bool {
	if s.game != nil {
		p, _ := s.game.PlayerByID(playerID)
		return p != nil
	}
	for _, seat := range s.lobby {
		if seat.ID == playerID {
			return true
		}
	}
	return false
}

// Start deals the game, broadcasts the opening state and arms the first
// turn countdown.
func (s *Session) Start() (*protocol.GameStateDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game != nil {
		return nil, apperrors.ErrGameStarted
	}
	if len(s.lobby) == 0 {
		return nil, apperrors.ErrNoPlayers
	}

	s.game = state.New(s.lobby)
	log.Printf("🎮 game %s started, %s plays first", s.GameID, s.game.CurrentPlayer().Name)

	s.broadcastStateLocked()
	s.saveSnapshotLocked()
	s.startTurnTimer()
	return convert.StateToDTO(s.game), nil
}

// ApplyPlay runs one PLAY_CARDS request. The false/nil result is a rejected
// move: nothing changed, no broadcast, the requester is told to try again.
func (s *Session) ApplyPlay(playerID string, cardIDs []string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireTurnLocked(playerID); err != nil {
		return false, err
	}

	ok, err := s.game.PlayCards(playerID, cardIDs)
	if err != nil || !ok {
		return ok, err
	}

	s.afterMutationLocked()
	return true, nil
}

// ApplyTakePile runs one TAKE_PILE request (or the 8-constraint skip).
func (s *Session) ApplyTakePile(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireTurnLocked(playerID); err != nil {
		return err
	}
	if err := s.game.TakePile(playerID); err != nil {
		return err
	}

	s.afterMutationLocked()
	return nil
}

// CheckPlayable answers whether the player has any legal move. Read-only;
// still serialized with mutations for a consistent answer.
func (s *Session) CheckPlayable(playerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game == nil {
		return false, apperrors.ErrGameNotStarted
	}
	return s.game.CheckPlayable(playerID)
}

func (s *Session) requireTurnLocked(playerID string) error {
	if s.game == nil || s.game.Status != state.StatusPlaying {
		return apperrors.ErrGameNotStarted
	}
	if s.game.CurrentPlayer().ID != playerID {
		return apperrors.ErrNotYourTurn
	}
	return nil
}

// afterMutationLocked is the common tail of every successful mutation:
// broadcast the whole new state, persist a snapshot, and re-arm or retire
// the countdown.
func (s *Session) afterMutationLocked() {
	s.broadcastStateLocked()
	s.saveSnapshotLocked()

	if s.game.Status == state.StatusPlaying {
		s.startTurnTimer()
		return
	}

	s.stopTurnTimer()
	if s.game.Status == state.StatusFinished {
		s.recordResultLocked()
	}
}

// handleTurnTimeout is the timer's entry point. It competes for the same
// per-session lock as client requests, so expiry is just another mutation.
// A fired timer that lost the race against a play (its countdown was
// replaced while it waited for the lock) sees a newer generation and backs
// off.
func (s *Session) handleTurnTimeout(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timerMu.Lock()
	stale := gen != s.timerGen
	s.timerMu.Unlock()
	if stale {
		return
	}

	if s.game == nil || s.game.Status != state.StatusPlaying {
		return
	}

	player := s.game.CurrentPlayer()
	log.Printf("⏰ turn timer expired for %s in game %s", player.Name, s.GameID)

	if err := s.game.TakePile(player.ID); err != nil {
		log.Printf("timeout forfeit failed for %s: %v", player.ID, err)
		return
	}

	s.broadcastLocked(protocol.MustNewMessage(protocol.MsgTurnTimerExpired, protocol.TurnTimerExpiredPayload{
		PlayerID: player.ID,
	}))
	s.afterMutationLocked()
}

// Snapshot returns what GET /games/{id}/state serves: the lobby summary
// while waiting, the full state after.
func (s *Session) Snapshot() (status string, players []protocol.PlayerInfo, dto *protocol.GameStateDTO) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game == nil {
		players = make([]protocol.PlayerInfo, len(s.lobby))
		for i, seat := range s.lobby {
			players[i] = protocol.PlayerInfo{ID: seat.ID, Name: seat.Name}
		}
		return state.StatusWaiting.String(), players, nil
	}
	return s.game.Status.String(), nil, convert.StateToDTO(s.game)
}

// broadcastStateLocked fans the full state out to every connection.
func (s *Session) broadcastStateLocked() {
	s.broadcastLocked(protocol.MustNewMessage(protocol.MsgGameStateUpdate, protocol.GameStateUpdatePayload{
		GameID: s.GameID,
		State:  convert.StateToDTO(s.game),
	}))
}

func (s *Session) broadcastLocked(msg *protocol.Message) {
	for conn := range s.conns {
		conn.SendMessage(msg)
	}
}

// saveSnapshotLocked persists the session best-effort. Snapshots are ops
// data; a missing store or a failed write never affects gameplay.
func (s *Session) saveSnapshotLocked() {
	if s.store == nil {
		return
	}
	snap := storage.GameSnapshot{
		GameID:  s.GameID,
		Status:  state.StatusWaiting.String(),
		SavedAt: time.Now().Unix(),
	}
	for _, seat := range s.lobby {
		snap.Players = append(snap.Players, storage.SnapshotPlayer{ID: seat.ID, Name: seat.Name})
	}
	if s.game != nil {
		snap.Status = s.game.Status.String()
		snap.Players = snap.Players[:0]
		for _, p := range s.game.Players {
			snap.Players = append(snap.Players, storage.SnapshotPlayer{
				ID: p.ID, Name: p.Name, CardsLeft: len(p.Hand) + len(p.FaceUp) + len(p.FaceDown), IsOut: p.IsOut,
			})
		}
		snap.WinnerID = s.game.WinnerID
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.store.SaveGame(ctx, s.GameID, &snap); err != nil {
			log.Printf("snapshot save failed for game %s: %v", s.GameID, err)
		}
	}()
}

// recordResultLocked bumps the winner on the wins board, best-effort.
func (s *Session) recordResultLocked() {
	if s.store == nil || s.game.WinnerID == "" {
		return
	}
	winner, _ := s.game.PlayerByID(s.game.WinnerID)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.store.RecordWin(ctx, winner.ID, winner.Name); err != nil {
			log.Printf("win record failed for game %s: %v", s.GameID, err)
		}
	}()
}
