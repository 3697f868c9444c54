package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shithead-online/server/internal/apperrors"
	"github.com/shithead-online/server/internal/game/card"
	"github.com/shithead-online/server/internal/game/state"
	"github.com/shithead-online/server/internal/protocol"
)

// fakeConn captures everything a session broadcasts to it.
type fakeConn struct {
	mu   sync.Mutex
	msgs []*protocol.Message
}

func (c *fakeConn) SendMessage(msg *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
}

func (c *fakeConn) types() []protocol.MessageType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]protocol.MessageType, len(c.msgs))
	for i, m := range c.msgs {
		out[i] = m.Type
	}
	return out
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

func cards(ranks ...card.Rank) []card.Card {
	out := make([]card.Card, len(ranks))
	for i, r := range ranks {
		out[i] = card.New(card.Suit(i%4), r)
	}
	return out
}

// startedSession wires a deterministic two-player game into a session with
// one connected subscriber. Seat 0 ("p1") is to act.
func startedSession(t *testing.T) (*Session, *fakeConn) {
	t.Helper()
	s := newSession("TEST42", time.Hour, 4, nil)
	s.game = &state.Game{
		Players: []*state.Player{
			{ID: "p1", Name: "Alice", Hand: cards(card.RankQ, card.Rank4), FaceDown: cards(card.Rank6)},
			{ID: "p2", Name: "Bob", Hand: cards(card.RankK), FaceDown: cards(card.Rank7)},
		},
		Status: state.StatusPlaying,
	}
	conn := &fakeConn{}
	s.conns[conn] = struct{}{}
	t.Cleanup(s.stopTurnTimer)
	return s, conn
}

func TestRegistryCreateGame(t *testing.T) {
	t.Parallel()

	r := NewRegistry(time.Hour, 4, nil)

	s, err := r.CreateGame("", []string{"Alice", "Bob"})
	require.NoError(t, err)
	assert.Len(t, s.GameID, gameIDLength)
	for _, ch := range s.GameID {
		assert.Contains(t, gameIDChars, string(ch))
	}

	got, err := r.Get(s.GameID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, r.Count())

	_, err = r.Get("NOSUCH")
	assert.ErrorIs(t, err, apperrors.ErrGameNotFound)

	_, err = r.CreateGame(s.GameID, nil)
	assert.ErrorIs(t, err, apperrors.ErrGameExists)
}

func TestRegistryCreateGameCapsPlayers(t *testing.T) {
	t.Parallel()

	r := NewRegistry(time.Hour, 4, nil)

	// Seating more than maxPlayers up front must fail like AddPlayer does;
	// an oversized table would exhaust the deck at deal time.
	_, err := r.CreateGame("", []string{"A", "B", "C", "D", "E"})
	assert.ErrorIs(t, err, apperrors.ErrGameFull)
	assert.Equal(t, 0, r.Count())

	s, err := r.CreateGame("", []string{"A", "B", "C", "D"})
	require.NoError(t, err)

	t.Cleanup(s.stopTurnTimer)
	dto, err := s.Start()
	require.NoError(t, err)
	assert.Len(t, dto.Players, 4)
}

func TestAddPlayerAndJoin(t *testing.T) {
	t.Parallel()

	s := newSession("TEST42", time.Hour, 2, nil)

	alice, err := s.AddPlayer("Alice")
	require.NoError(t, err)
	assert.NotEmpty(t, alice.ID)
	assert.Equal(t, "Alice", alice.Name)

	conn := &fakeConn{}
	require.NoError(t, s.Join(conn, alice.ID))
	assert.Equal(t, []protocol.MessageType{protocol.MsgConnected}, conn.types())

	assert.ErrorIs(t, s.Join(&fakeConn{}, "stranger"), apperrors.ErrNotInLobby)

	// The second seat fills the table; the subscriber hears about it.
	_, err = s.AddPlayer("Bob")
	require.NoError(t, err)
	assert.Contains(t, conn.types(), protocol.MsgPlayerJoined)

	_, err = s.AddPlayer("Cara")
	assert.ErrorIs(t, err, apperrors.ErrGameFull)
}

func TestStart(t *testing.T) {
	t.Parallel()

	s := newSession("TEST42", time.Hour, 4, nil)
	t.Cleanup(s.stopTurnTimer)

	_, err := s.Start()
	assert.ErrorIs(t, err, apperrors.ErrNoPlayers)

	alice, err := s.AddPlayer("Alice")
	require.NoError(t, err)
	_, err = s.AddPlayer("Bob")
	require.NoError(t, err)

	conn := &fakeConn{}
	require.NoError(t, s.Join(conn, alice.ID))

	dto, err := s.Start()
	require.NoError(t, err)
	assert.Len(t, dto.Players, 2)
	assert.Equal(t, "playing", dto.Status)
	assert.Contains(t, conn.types(), protocol.MsgGameStateUpdate)

	_, err = s.Start()
	assert.ErrorIs(t, err, apperrors.ErrGameStarted)

	_, err = s.AddPlayer("Cara")
	assert.ErrorIs(t, err, apperrors.ErrGameStarted)

	// A late joiner gets the running state pushed immediately.
	late := &fakeConn{}
	require.NoError(t, s.Join(late, alice.ID))
	assert.Equal(t, []protocol.MessageType{protocol.MsgConnected, protocol.MsgGameStateUpdate}, late.types())
}

func TestApplyPlayBroadcastsState(t *testing.T) {
	t.Parallel()

	s, conn := startedSession(t)

	ok, err := s.ApplyPlay("p1", []string{s.game.Players[0].Hand[0].ID})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []protocol.MessageType{protocol.MsgGameStateUpdate}, conn.types())
	assert.Equal(t, 1, s.game.CurrentPlayerIndex)
}

func TestApplyPlayRejectedMoveIsSilent(t *testing.T) {
	t.Parallel()

	s, conn := startedSession(t)
	s.game.Pile = cards(card.RankA)

	// A 4 on an ace is invalid: no broadcast, the turn stays with p1.
	ok, err := s.ApplyPlay("p1", []string{s.game.Players[0].Hand[1].ID})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, conn.count())
	assert.Equal(t, 0, s.game.CurrentPlayerIndex)
}

func TestApplyPlayTurnOrder(t *testing.T) {
	t.Parallel()

	s, _ := startedSession(t)

	_, err := s.ApplyPlay("p2", []string{s.game.Players[1].Hand[0].ID})
	assert.ErrorIs(t, err, apperrors.ErrNotYourTurn)

	notStarted := newSession("EMPTY1", time.Hour, 4, nil)
	_, err = notStarted.ApplyPlay("p1", nil)
	assert.ErrorIs(t, err, apperrors.ErrGameNotStarted)
}

func TestApplyTakePile(t *testing.T) {
	t.Parallel()

	s, conn := startedSession(t)
	s.game.Pile = cards(card.RankA, card.RankK)

	require.NoError(t, s.ApplyTakePile("p1"))
	assert.Len(t, s.game.Players[0].Hand, 4)
	assert.Empty(t, s.game.Pile)
	assert.Equal(t, 1, s.game.CurrentPlayerIndex)
	assert.Equal(t, []protocol.MessageType{protocol.MsgGameStateUpdate}, conn.types())

	assert.ErrorIs(t, s.ApplyTakePile("p1"), apperrors.ErrNotYourTurn)
}

func TestCheckPlayable(t *testing.T) {
	t.Parallel()

	s, _ := startedSession(t)
	s.game.Pile = cards(card.Rank9)

	ok, err := s.CheckPlayable("p1")
	require.NoError(t, err)
	assert.True(t, ok, "the queen beats the 9")

	notStarted := newSession("EMPTY1", time.Hour, 4, nil)
	_, err = notStarted.CheckPlayable("p1")
	assert.ErrorIs(t, err, apperrors.ErrGameNotStarted)
}

func TestTurnTimeoutForfeits(t *testing.T) {
	t.Parallel()

	s, conn := startedSession(t)
	s.game.Pile = cards(card.RankA)

	s.mu.Lock()
	s.startTurnTimer()
	s.mu.Unlock()

	s.timerMu.Lock()
	gen := s.timerGen
	s.timerMu.Unlock()

	s.handleTurnTimeout(gen)

	// The expiry forfeits the turn as a pile take.
	assert.Len(t, s.game.Players[0].Hand, 3)
	assert.Empty(t, s.game.Pile)
	assert.Equal(t, 1, s.game.CurrentPlayerIndex)
	assert.Contains(t, conn.types(), protocol.MsgTurnTimerExpired)
	assert.Contains(t, conn.types(), protocol.MsgGameStateUpdate)
}

func TestTurnTimeoutStaleGenerationBacksOff(t *testing.T) {
	t.Parallel()

	s, conn := startedSession(t)

	s.mu.Lock()
	s.startTurnTimer()
	s.mu.Unlock()

	s.timerMu.Lock()
	gen := s.timerGen
	s.timerMu.Unlock()

	// A play lands first and re-arms the countdown under a new generation.
	ok, err := s.ApplyPlay("p1", []string{s.game.Players[0].Hand[0].ID})
	require.NoError(t, err)
	require.True(t, ok)
	before := conn.count()

	// The old expiry fires late and must not forfeit p2's fresh turn.
	s.handleTurnTimeout(gen)
	assert.Equal(t, before, conn.count())
	assert.Equal(t, 1, s.game.CurrentPlayerIndex)
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	s := newSession("TEST42", time.Hour, 4, nil)
	alice, err := s.AddPlayer("Alice")
	require.NoError(t, err)

	status, players, dto := s.Snapshot()
	assert.Equal(t, "waiting", status)
	require.Len(t, players, 1)
	assert.Equal(t, alice.ID, players[0].ID)
	assert.Nil(t, dto)

	t.Cleanup(s.stopTurnTimer)
	_, err = s.Start()
	require.NoError(t, err)

	status, players, dto = s.Snapshot()
	assert.Equal(t, "playing", status)
	assert.Nil(t, players)
	require.NotNil(t, dto)
	assert.Len(t, dto.Players, 1)
}

func TestLeaveStopsBroadcasts(t *testing.T) {
	t.Parallel()

	s, conn := startedSession(t)
	s.Leave(conn)

	ok, err := s.ApplyPlay("p1", []string{s.game.Players[0].Hand[0].ID})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, conn.count())
}
