package apperrors

import (
	"github.com/shithead-online/server/internal/protocol"
)

// GameError is a domain violation surfaced to the offending connection
// only. It never terminates a session.
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// Predefined errors. A rejected move is not among them: rejection is a
// normal negative outcome reported as a boolean, not an error.
var (
	ErrGameNotFound   = &GameError{Code: protocol.ErrCodeGameNotFound, Message: "game not found"}
	ErrGameFull       = &GameError{Code: protocol.ErrCodeGameFull, Message: "game is full (max 4 players)"}
	ErrGameStarted    = &GameError{Code: protocol.ErrCodeGameStarted, Message: "game already started"}
	ErrGameExists     = &GameError{Code: protocol.ErrCodeGameExists, Message: "game ID already exists"}
	ErrGameNotStarted = &GameError{Code: protocol.ErrCodeGameNotStarted, Message: "game not started"}
	ErrNoPlayers      = &GameError{Code: protocol.ErrCodeNoPlayers, Message: "need at least 1 player to start"}
	ErrNotYourTurn    = &GameError{Code: protocol.ErrCodeNotYourTurn, Message: "not your turn"}
	ErrInvalidPlayer  = &GameError{Code: protocol.ErrCodeInvalidPlayer, Message: "invalid player"}
	ErrCardNotInHand  = &GameError{Code: protocol.ErrCodeCardNotInHand, Message: "card not in hand"}
	ErrNotInLobby     = &GameError{Code: protocol.ErrCodeInvalidPlayer, Message: "player not in game"}
)
