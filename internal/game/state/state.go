package state

import (
	"math/rand/v2"

	"github.com/shithead-online/server/internal/game/card"
	"github.com/shithead-online/server/internal/game/rule"
)

// Status is the lifecycle phase of a game. It only ever moves forward.
type Status int

const (
	StatusWaiting Status = iota
	StatusPlaying
	StatusFinished
)

// statusNames maps statuses to their wire names.
var statusNames = map[Status]string{
	StatusWaiting:  "waiting",
	StatusPlaying:  "playing",
	StatusFinished: "finished",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "waiting"
}

// Seat is a lobby player placed at the table, in turn order.
type Seat struct {
	ID   string
	Name string
}

// Player holds one player's three card zones. Once IsOut becomes true it
// never reverts.
type Player struct {
	ID       string
	Name     string
	Hand     []card.Card
	FaceUp   []card.Card
	FaceDown []card.Card
	IsOut    bool
}

// hasCards reports whether any of the player's three zones is non-empty.
func (p *Player) hasCards() bool {
	return len(p.Hand) > 0 || len(p.FaceUp) > 0 || len(p.FaceDown) > 0
}

// Game is the full authoritative state of one game. All mutation goes
// through PlayCards and TakePile; the session layer serializes callers.
type Game struct {
	Players            []*Player
	Deck               card.Deck
	Pile               []card.Card
	Discards           []card.Card // burned piles and absorbed 3s, out of play
	CurrentPlayerIndex int
	LastPlayedPlayerID string
	LastPlayedRank     card.Rank // zero while no rank is on record
	Status             Status
	WinnerID           string
	IsAnotherTurn      bool
}

// New deals a fresh game for the given seats: per seat 3 face-down, 3
// face-up and 3 hand cards off the deck head, remainder as draw pile, and
// a uniformly random starting player.
func New(seats []Seat) *Game {
	deck := card.NewDeck()
	deck.Shuffle()

	players := make([]*Player, len(seats))
	for i, seat := range seats {
		p := &Player{ID: seat.ID, Name: seat.Name}
		p.FaceDown, deck = deck[:3:3], deck[3:]
		p.FaceUp, deck = deck[:3:3], deck[3:]
		p.Hand, deck = deck[:3:3], deck[3:]
		players[i] = p
	}

	return &Game{
		Players:            players,
		Deck:               deck,
		CurrentPlayerIndex: rand.IntN(len(players)),
		Status:             StatusPlaying,
	}
}

// PlayerByID returns the player and seat index, or (nil, -1).
func (g *Game) PlayerByID(id string) (*Player, int) {
	for i, p := range g.Players {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

// CurrentPlayer returns the player whose turn it is.
func (g *Game) CurrentPlayer() *Player {
	return g.Players[g.CurrentPlayerIndex]
}

// TopCard returns the pile's top card, if any.
func (g *Game) TopCard() (card.Card, bool) {
	return card.Top(g.Pile)
}

// AllCardIDs collects every card ID across deck, pile, discards and all
// player zones. For any reachable state this is a permutation of the 54 IDs
// the game was dealt with.
func (g *Game) AllCardIDs() []string {
	ids := make([]string, 0, 54)
	ids = append(ids, card.IDs(g.Deck)...)
	ids = append(ids, card.IDs(g.Pile)...)
	ids = append(ids, card.IDs(g.Discards)...)
	for _, p := range g.Players {
		ids = append(ids, card.IDs(p.Hand)...)
		ids = append(ids, card.IDs(p.FaceUp)...)
		ids = append(ids, card.IDs(p.FaceDown)...)
	}
	return ids
}

// ruleContext assembles the legality context for a given acting seat.
func (g *Game) ruleContext(actingSeat int) rule.Context {
	seatIDs := make([]string, len(g.Players))
	for i, p := range g.Players {
		seatIDs[i] = p.ID
	}
	return rule.Context{
		Pile:         g.Pile,
		SeatIDs:      seatIDs,
		ActingSeat:   actingSeat,
		LastPlayerID: g.LastPlayedPlayerID,
	}
}
