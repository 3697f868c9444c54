package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shithead-online/server/internal/config"
	"github.com/shithead-online/server/internal/protocol"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Redis.Disabled = true

	s, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(s.Shutdown)
	return s
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestLobbyFlow(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	h := s.Handler()

	// Create a game seating two players up front.
	rec := postJSON(t, h, "/games", `{"player_names": ["Alice", "Bob"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created createGameResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Len(t, created.GameID, 6)
	require.Len(t, created.Players, 2)

	// A third player joins over the API.
	rec = postJSON(t, h, "/games/"+created.GameID+"/join", `{"name": "Cara"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var joined joinGameResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &joined))
	assert.Equal(t, "Cara", joined.Player.Name)
	assert.NotEmpty(t, joined.Player.ID)

	// Waiting state lists the lobby.
	req := httptest.NewRequest(http.MethodGet, "/games/"+created.GameID+"/state", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var waiting gameStateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &waiting))
	assert.Equal(t, "waiting", waiting.Status)
	assert.Len(t, waiting.Players, 3)
	assert.Nil(t, waiting.State)

	// Start deals and returns the opening state.
	rec = postJSON(t, h, "/games/"+created.GameID+"/start", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var started gameStateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))
	assert.Equal(t, "playing", started.Status)
	require.NotNil(t, started.State)
	assert.Len(t, started.State.Players, 3)
	assert.Equal(t, 54-3*9, started.State.DeckCount)

	// Joining or restarting a running game fails.
	rec = postJSON(t, h, "/games/"+created.GameID+"/join", `{"name": "Dave"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = postJSON(t, h, "/games/"+created.GameID+"/start", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateGameValidation(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	h := s.Handler()

	// An empty body creates an empty game.
	rec := postJSON(t, h, "/games", "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Malformed JSON does not.
	rec = postJSON(t, h, "/games", "{broken")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Duplicate explicit game IDs are rejected.
	rec = postJSON(t, h, "/games", `{"game_id": "DUPE42"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = postJSON(t, h, "/games", `{"game_id": "DUPE42"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGameNotFound(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	h := s.Handler()

	rec := postJSON(t, h, "/games/NOSUCH/join", `{"name": "Alice"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = postJSON(t, h, "/games/NOSUCH/start", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/games/NOSUCH/state", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestBoardUnavailableWithoutRedis(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/board", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// dialWS connects a real websocket client to a running test server.
func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) *protocol.Message {
	t.Helper()
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	msg, err := protocol.Decode(data)
	require.NoError(t, err)
	return msg
}

func TestWebSocketJoinAndPing(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	sess, err := s.Registry().CreateGame("", []string{"Alice"})
	require.NoError(t, err)
	_, players, _ := sess.Snapshot()
	require.Len(t, players, 1)

	conn := dialWS(t, ts)

	join := protocol.MustNewMessage(protocol.MsgJoinGame, protocol.JoinGamePayload{
		GameID:   sess.GameID,
		PlayerID: players[0].ID,
	})
	data, err := join.Encode()
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))

	msg := readMessage(t, conn)
	require.Equal(t, protocol.MsgConnected, msg.Type)

	connected, err := protocol.ParsePayload[protocol.ConnectedPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, sess.GameID, connected.GameID)
	assert.Equal(t, players[0].ID, connected.PlayerID)

	ping := protocol.MustNewMessage(protocol.MsgPing, nil)
	data, err = ping.Encode()
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))

	msg = readMessage(t, conn)
	assert.Equal(t, protocol.MsgPong, msg.Type)
}

func TestWebSocketJoinUnknownGame(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	conn := dialWS(t, ts)

	join := protocol.MustNewMessage(protocol.MsgJoinGame, protocol.JoinGamePayload{
		GameID:   "NOSUCH",
		PlayerID: "nobody",
	})
	data, err := join.Encode()
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))

	msg := readMessage(t, conn)
	require.Equal(t, protocol.MsgError, msg.Type)

	payload, err := protocol.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeGameNotFound, payload.Code)
}
