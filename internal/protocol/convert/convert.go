// Package convert maps engine types to their wire representations.
package convert

import (
	"github.com/shithead-online/server/internal/game/card"
	"github.com/shithead-online/server/internal/game/state"
	"github.com/shithead-online/server/internal/protocol"
)

// CardToInfo converts a card to its wire form.
func CardToInfo(c card.Card) protocol.CardInfo {
	return protocol.CardInfo{
		Suit: c.Suit.String(),
		Rank: c.Rank.String(),
		ID:   c.ID,
	}
}

// CardsToInfos converts a card slice to its wire form.
func CardsToInfos(cards []card.Card) []protocol.CardInfo {
	infos := make([]protocol.CardInfo, len(cards))
	for i, c := range cards {
		infos[i] = CardToInfo(c)
	}
	return infos
}

// StateToDTO builds the broadcast form of a game state.
func StateToDTO(g *state.Game) *protocol.GameStateDTO {
	players := make([]protocol.PlayerDTO, len(g.Players))
	for i, p := range g.Players {
		players[i] = protocol.PlayerDTO{
			ID:       p.ID,
			Name:     p.Name,
			Hand:     CardsToInfos(p.Hand),
			FaceUp:   CardsToInfos(p.FaceUp),
			FaceDown: CardsToInfos(p.FaceDown),
			IsOut:    p.IsOut,
		}
	}

	lastRank := ""
	if g.LastPlayedRank != 0 {
		lastRank = g.LastPlayedRank.String()
	}

	return &protocol.GameStateDTO{
		Players:            players,
		DeckCount:          len(g.Deck),
		Pile:               CardsToInfos(g.Pile),
		DiscardCount:       len(g.Discards),
		CurrentPlayerIndex: g.CurrentPlayerIndex,
		LastPlayedPlayerID: g.LastPlayedPlayerID,
		LastPlayedRank:     lastRank,
		Status:             g.Status.String(),
		WinnerID:           g.WinnerID,
		IsAnotherTurn:      g.IsAnotherTurn,
	}
}
