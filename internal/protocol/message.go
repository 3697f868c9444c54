package protocol

import "encoding/json"

// Message is the envelope for every frame on the wire.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType tags a message variant.
type MessageType string

// Client → server message types.
const (
	MsgJoinGame      MessageType = "JOIN_GAME"
	MsgPlayCards     MessageType = "PLAY_CARDS"
	MsgTakePile      MessageType = "TAKE_PILE"
	MsgCheckPlayable MessageType = "CHECK_PLAYABLE"
	MsgPing          MessageType = "PING"
)

// Server → client message types.
const (
	MsgConnected           MessageType = "CONNECTED"
	MsgGameStateUpdate     MessageType = "GAME_STATE_UPDATE"
	MsgTurnTimerUpdate     MessageType = "TURN_TIMER_UPDATE"
	MsgTurnTimerExpired    MessageType = "TURN_TIMER_EXPIRED"
	MsgPlayerJoined        MessageType = "PLAYER_JOINED"
	MsgCheckPlayableResult MessageType = "CHECK_PLAYABLE_RESULT"
	MsgError               MessageType = "ERROR"
	MsgPong                MessageType = "PONG"
)
