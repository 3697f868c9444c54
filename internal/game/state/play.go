package state

import (
	"log"

	"github.com/shithead-online/server/internal/apperrors"
	"github.com/shithead-online/server/internal/game/card"
	"github.com/shithead-online/server/internal/game/rule"
)

// PlayCards applies one play attempt. A false result with a nil error is a
// rejected move: the state is untouched and the player keeps the turn to
// choose differently. Errors are domain violations (unknown or eliminated
// player, card not in hand).
func (g *Game) PlayCards(playerID string, cardIDs []string) (bool, error) {
	// The extra turn granted by a 5, 10 or burn is consumed by this play.
	g.IsAnotherTurn = false

	player, seat := g.PlayerByID(playerID)
	if player == nil || player.IsOut {
		return false, apperrors.ErrInvalidPlayer
	}

	// Each ID must resolve to a distinct hand card: a repeated ID would
	// validate as a same-rank pair and duplicate the card onto the pile.
	cards := make([]card.Card, 0, len(cardIDs))
	seen := make(map[string]struct{}, len(cardIDs))
	for _, id := range cardIDs {
		if _, dup := seen[id]; dup {
			return false, apperrors.ErrCardNotInHand
		}
		seen[id] = struct{}{}
		idx := card.FindByID(player.Hand, id)
		if idx == -1 {
			return false, apperrors.ErrCardNotInHand
		}
		cards = append(cards, player.Hand[idx])
	}

	isAfterFive := g.LastPlayedRank == card.Rank5 && g.LastPlayedPlayerID == playerID
	if !rule.IsValidMove(cards, g.ruleContext(seat), isAfterFive) {
		return false, nil
	}

	for _, c := range cards {
		player.Hand, _, _ = card.RemoveByID(player.Hand, c.ID)
		g.Pile = append(g.Pile, c)
	}
	g.LastPlayedPlayerID = playerID
	g.LastPlayedRank = cards[0].Rank

	// Special-rank effects, mutually exclusive and in this order.
	switch {
	case cards[0].Rank == card.Rank5:
		// Keeps LastPlayedRank so the after-five window opens.
		g.IsAnotherTurn = true

	case cards[0].Rank == card.Rank10:
		g.burnPile()
		g.IsAnotherTurn = true

	case rule.ShouldBurnPile(g.Pile):
		g.burnPile()
		g.IsAnotherTurn = true
	}

	g.refillHand(player)

	// Shedding the last card wins even when the play earned an extra turn.
	if !player.hasCards() {
		g.Status = StatusFinished
		g.WinnerID = player.ID
		log.Printf("🏁 player %s has shed all cards and wins", player.Name)
		return true, nil
	}

	g.advanceTurn()
	return true, nil
}

// TakePile is the player's decline path. Under an active 8-constraint the
// pile stays put and the turn is skipped instead; otherwise a top 3 is
// discarded from play and the rest of the pile joins the player's hand.
func (g *Game) TakePile(playerID string) error {
	player, seat := g.PlayerByID(playerID)
	if player == nil || player.IsOut {
		return apperrors.ErrInvalidPlayer
	}

	ctx := g.ruleContext(seat)
	if ctx.EightConstraintActive() {
		log.Printf("🚷 8-constraint holds for %s, skipping turn instead of taking pile", player.Name)
		g.advanceTurn()
		return nil
	}

	if top, ok := g.TopCard(); ok && top.Rank == card.Rank3 {
		g.Pile = g.Pile[:len(g.Pile)-1]
		g.Discards = append(g.Discards, top)
	}

	player.Hand = append(player.Hand, g.Pile...)
	g.Pile = nil
	g.LastPlayedRank = 0

	g.refillHand(player)
	g.advanceTurn()
	return nil
}

// CheckPlayable reports whether the player has any legal move right now.
func (g *Game) CheckPlayable(playerID string) (bool, error) {
	player, seat := g.PlayerByID(playerID)
	if player == nil {
		return false, apperrors.ErrInvalidPlayer
	}
	return rule.IsPlayable(player.Hand, g.ruleContext(seat)), nil
}

// burnPile moves the whole pile out of play and clears the rank record.
func (g *Game) burnPile() {
	g.Discards = append(g.Discards, g.Pile...)
	g.Pile = nil
	g.LastPlayedRank = 0
}

// refillHand draws the hand back up to 3 while the deck lasts, then falls
// through the reserve zones: the whole faceUp set becomes the hand, then
// faceDown cards are drawn blind one at a time. A player left with nothing
// anywhere is out for good.
func (g *Game) refillHand(p *Player) {
	for len(p.Hand) < 3 && len(g.Deck) > 0 {
		p.Hand = append(p.Hand, g.Deck[0])
		g.Deck = g.Deck[1:]
	}

	if len(p.Hand) == 0 && len(p.FaceUp) > 0 {
		p.Hand = p.FaceUp
		p.FaceUp = nil
	}

	if len(p.Hand) == 0 && len(p.FaceDown) > 0 {
		p.Hand = append(p.Hand, p.FaceDown[0])
		p.FaceDown = p.FaceDown[1:]
	}

	if !p.hasCards() {
		p.IsOut = true
	}
}

// advanceTurn moves to the next seat that still has cards, unless the
// current player earned another turn. Callers guarantee at least one
// player is still in.
func (g *Game) advanceTurn() {
	if g.IsAnotherTurn {
		return
	}
	n := len(g.Players)
	next := (g.CurrentPlayerIndex + 1) % n
	for g.Players[next].IsOut {
		next = (next + 1) % n
	}
	g.CurrentPlayerIndex = next
}
