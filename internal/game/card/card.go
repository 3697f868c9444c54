package card

import (
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"
)

// Suit identifies a card's suit.
type Suit int

// Rank identifies a card's face value.
type Rank int

const (
	Spade Suit = iota
	Heart
	Club
	Diamond
	JokerSuit
)

// suitSymbols maps suits to their display symbols.
var suitSymbols = map[Suit]string{
	Spade:     "♠",
	Heart:     "♥",
	Club:      "♣",
	Diamond:   "♦",
	JokerSuit: "🃏",
}

func (s Suit) String() string {
	if symbol, ok := suitSymbols[s]; ok {
		return symbol
	}
	return ""
}

// Rank strength for the generic "higher or equal" comparison:
// 2 < 3 < ... < 10 < J < Q < K < A < JOKER. Special-card rules in the
// rule package take precedence over this ordering.
const (
	Rank2 Rank = iota + 2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJ
	RankQ
	RankK
	RankA
	RankJoker
)

// rankNames maps ranks to their wire/display names.
var rankNames = map[Rank]string{
	Rank2:     "2",
	Rank3:     "3",
	Rank4:     "4",
	Rank5:     "5",
	Rank6:     "6",
	Rank7:     "7",
	Rank8:     "8",
	Rank9:     "9",
	Rank10:    "10",
	RankJ:     "J",
	RankQ:     "Q",
	RankK:     "K",
	RankA:     "A",
	RankJoker: "JOKER",
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return strconv.Itoa(int(r))
}

// Value returns the numeric strength used by the generic comparison rule.
func (r Rank) Value() int { return int(r) }

// Card is a single card. ID is process-unique, so two cards are never
// interchangeable even when suit and rank match.
type Card struct {
	Suit Suit
	Rank Rank
	ID   string
}

func (c Card) String() string {
	return c.Suit.String() + c.Rank.String()
}

// New creates a card with a fresh unique ID.
func New(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank, ID: uuid.NewString()}
}

// Deck is an ordered run of cards; index 0 is the head, drawn first.
type Deck []Card

// NewDeck builds the full 54-card deck: 4 suits × 13 ranks plus 2 jokers.
func NewDeck() Deck {
	deck := make(Deck, 0, 54)
	for s := Spade; s <= Diamond; s++ {
		for r := Rank2; r <= RankA; r++ {
			deck = append(deck, New(s, r))
		}
	}
	deck = append(deck, New(JokerSuit, RankJoker), New(JokerSuit, RankJoker))
	return deck
}

// Shuffle permutes the deck in place.
func (d Deck) Shuffle() {
	rand.Shuffle(len(d), func(i, j int) {
		d[i], d[j] = d[j], d[i]
	})
}
