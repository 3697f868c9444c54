package rule

import (
	"github.com/shithead-online/server/internal/game/card"
)

// Context carries the slice of game state the legality predicates read.
// The rule package stays a pure leaf: no I/O, no timers, no mutation.
type Context struct {
	Pile         []card.Card // ordered, last element is the top
	SeatIDs      []string    // player IDs in seat order
	ActingSeat   int         // seat index of the acting player
	LastPlayerID string      // player who most recently played onto the pile
}

// Top returns the pile's top card, if any.
func (ctx Context) Top() (card.Card, bool) {
	return card.Top(ctx.Pile)
}

// EightConstraintActive reports whether the acting player is bound by the
// 8-constraint: the pile top is an 8 and the seat immediately before the
// acting player is the one who most recently played. While active, the
// player may only answer with an 8 or 9, and must skip instead of taking
// the pile.
func (ctx Context) EightConstraintActive() bool {
	top, ok := ctx.Top()
	if !ok || top.Rank != card.Rank8 {
		return false
	}
	n := len(ctx.SeatIDs)
	if n == 0 || ctx.LastPlayerID == "" {
		return false
	}
	prev := ctx.SeatIDs[(ctx.ActingSeat-1+n)%n]
	return ctx.LastPlayerID == prev
}

// TopRunLength counts the consecutive same-rank cards on top of the pile.
func TopRunLength(pile []card.Card) int {
	top, ok := card.Top(pile)
	if !ok {
		return 0
	}
	run := 0
	for i := len(pile) - 1; i >= 0; i-- {
		if pile[i].Rank != top.Rank {
			break
		}
		run++
	}
	return run
}

// ShouldBurnPile reports whether the top 4 cards of the pile share a rank.
func ShouldBurnPile(pile []card.Card) bool {
	return TopRunLength(pile) >= 4
}

// IsValidMove reports whether this specific group of cards is a legal play
// right now. All cards must share a rank. Rules are evaluated in priority
// order; each special case overrides the generic "higher or equal" fallback:
//
//  1. the after-five window permits any rank and count
//  2. on an empty pile only a single card or an instant 4-card burn is legal
//  3. a multi-card play must complete a 4-of-a-kind burn on the current top
//  4. under the 8-constraint only rank 8 or 9 answers
//  5. on a 7 only rank ≤7 or a joker
//  6. on a 3 only a joker
//  7. 2, 3, 5, 10 and jokers are wild against anything else
//  8. on a joker anything goes
//  9. otherwise the played rank must be ≥ the top rank
func IsValidMove(cards []card.Card, ctx Context, isAfterFive bool) bool {
	if len(cards) == 0 {
		return false
	}
	rank := cards[0].Rank
	for _, c := range cards[1:] {
		if c.Rank != rank {
			return false
		}
	}

	if isAfterFive {
		return true
	}

	top, ok := ctx.Top()
	if !ok {
		return len(cards) == 1 || len(cards) == 4
	}

	if len(cards) > 1 {
		// Only burn completions: the play must bring the top run to
		// exactly four of the pile's current top rank.
		need := 4 - TopRunLength(ctx.Pile)
		return len(cards) == need && rank == top.Rank
	}

	if ctx.EightConstraintActive() {
		return rank == card.Rank8 || rank == card.Rank9
	}
	if top.Rank == card.Rank7 {
		return rank == card.RankJoker || rank.Value() <= card.Rank7.Value()
	}
	if top.Rank == card.Rank3 {
		return rank == card.RankJoker
	}
	if isWild(rank) {
		return true
	}
	if top.Rank == card.RankJoker {
		return true
	}
	return rank.Value() >= top.Rank.Value()
}

// IsPlayable reports whether the player holding this hand has any legal move
// right now: some single card would be a valid move, or the hand can complete
// a multi-card burn. Under an active 8-constraint it is false exactly when
// the hand holds neither an 8 nor a 9, in which case the caller must skip
// the turn rather than take the pile.
func IsPlayable(hand []card.Card, ctx Context) bool {
	if len(hand) == 0 {
		return false
	}
	top, ok := ctx.Top()
	if !ok {
		return true
	}

	if ctx.EightConstraintActive() {
		for _, c := range hand {
			if c.Rank == card.Rank8 || c.Rank == card.Rank9 {
				return true
			}
		}
		return false
	}

	for _, c := range hand {
		if IsValidMove([]card.Card{c}, ctx, false) {
			return true
		}
	}

	if need := 4 - TopRunLength(ctx.Pile); need > 1 {
		if card.CountRanks(hand)[top.Rank] >= need {
			return true
		}
	}
	return false
}

// isWild reports whether the rank plays on any non-special top card.
func isWild(rank card.Rank) bool {
	switch rank {
	case card.Rank2, card.Rank3, card.Rank5, card.Rank10, card.RankJoker:
		return true
	}
	return false
}
