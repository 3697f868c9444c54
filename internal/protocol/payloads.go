package protocol

// --- Client request payloads ---

// JoinGamePayload subscribes a connection to a game's broadcasts.
type JoinGamePayload struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
}

// PlayCardsPayload plays a same-rank group of cards from the hand.
type PlayCardsPayload struct {
	GameID   string   `json:"game_id"`
	PlayerID string   `json:"player_id"`
	CardIDs  []string `json:"card_ids"`
}

// TakePilePayload picks up the pile (or skips, under the 8-constraint).
type TakePilePayload struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
}

// CheckPlayablePayload asks whether the player has any legal move.
type CheckPlayablePayload struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
}

// --- Server response payloads ---

// ConnectedPayload confirms a successful join.
type ConnectedPayload struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
}

// GameStateUpdatePayload carries the full authoritative state.
type GameStateUpdatePayload struct {
	GameID string        `json:"game_id"`
	State  *GameStateDTO `json:"state"`
}

// TurnTimerUpdatePayload is the once-a-second countdown heartbeat.
type TurnTimerUpdatePayload struct {
	PlayerID        string `json:"player_id"`
	TimeRemainingMs int64  `json:"time_remaining_ms"`
}

// TurnTimerExpiredPayload announces a forfeited turn.
type TurnTimerExpiredPayload struct {
	PlayerID string `json:"player_id"`
}

// PlayerJoinedPayload announces a new lobby player.
type PlayerJoinedPayload struct {
	Player PlayerInfo `json:"player"`
}

// CheckPlayableResultPayload answers a CHECK_PLAYABLE request.
type CheckPlayableResultPayload struct {
	GameID     string `json:"game_id"`
	IsPlayable bool   `json:"is_playable"`
}

// ErrorPayload reports a failed request to the offending connection only.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// --- Data transfer objects ---

// PlayerInfo identifies a lobby player.
type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CardInfo is a card on the wire.
type CardInfo struct {
	Suit string `json:"suit"`
	Rank string `json:"rank"`
	ID   string `json:"id"`
}

// PlayerDTO is a player's full zone view.
type PlayerDTO struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Hand     []CardInfo `json:"hand"`
	FaceUp   []CardInfo `json:"face_up"`
	FaceDown []CardInfo `json:"face_down"`
	IsOut    bool       `json:"is_out"`
}

// GameStateDTO is the broadcast form of a game state.
type GameStateDTO struct {
	Players            []PlayerDTO `json:"players"`
	DeckCount          int         `json:"deck_count"`
	Pile               []CardInfo  `json:"pile"`
	DiscardCount       int         `json:"discard_count"`
	CurrentPlayerIndex int         `json:"current_player_index"`
	LastPlayedPlayerID string      `json:"last_played_player_id"`
	LastPlayedRank     string      `json:"last_played_rank,omitempty"`
	Status             string      `json:"status"`
	WinnerID           string      `json:"winner_id,omitempty"`
	IsAnotherTurn      bool        `json:"is_another_turn"`
}
