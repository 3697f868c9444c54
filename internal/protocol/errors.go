package protocol

// Error codes carried by ErrorPayload.
const (
	ErrCodeUnknown        = 1000
	ErrCodeInvalidMsg     = 1001
	ErrCodeGameNotFound   = 2001
	ErrCodeGameFull       = 2002
	ErrCodeGameStarted    = 2003
	ErrCodeGameNotStarted = 2004
	ErrCodeNoPlayers      = 2005
	ErrCodeGameExists     = 2006
	ErrCodeNotYourTurn    = 3001
	ErrCodeInvalidPlayer  = 3002
	ErrCodeCardNotInHand  = 3003
	ErrCodeInvalidMove    = 3004
)

// errorMessages maps error codes to their default text.
var errorMessages = map[int]string{
	ErrCodeUnknown:        "unknown error",
	ErrCodeInvalidMsg:     "malformed message",
	ErrCodeGameNotFound:   "game not found",
	ErrCodeGameFull:       "game is full (max 4 players)",
	ErrCodeGameStarted:    "game already started",
	ErrCodeGameNotStarted: "game not started",
	ErrCodeNoPlayers:      "need at least 1 player to start",
	ErrCodeGameExists:     "game ID already exists",
	ErrCodeNotYourTurn:    "not your turn",
	ErrCodeInvalidPlayer:  "invalid player",
	ErrCodeCardNotInHand:  "card not in hand",
	ErrCodeInvalidMove:    "invalid move",
}

// ErrorText returns the default text for a code.
func ErrorText(code int) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return errorMessages[ErrCodeUnknown]
}
