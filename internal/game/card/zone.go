package card

import "slices"

// Cards are moved between zones (deck, pile, hand, faceUp, faceDown) only
// through the helpers below, so conservation of the 54 card IDs can be
// checked structurally.

// FindByID returns the index of the card with the given ID, or -1.
func FindByID(zone []Card, id string) int {
	return slices.IndexFunc(zone, func(c Card) bool { return c.ID == id })
}

// RemoveByID removes the card with the given ID from the zone and returns
// the shortened zone, the removed card, and whether it was present.
func RemoveByID(zone []Card, id string) ([]Card, Card, bool) {
	idx := FindByID(zone, id)
	if idx == -1 {
		return zone, Card{}, false
	}
	c := zone[idx]
	return slices.Delete(zone, idx, idx+1), c, true
}

// Top returns the last card of the zone and whether the zone is non-empty.
func Top(zone []Card) (Card, bool) {
	if len(zone) == 0 {
		return Card{}, false
	}
	return zone[len(zone)-1], true
}

// CountRanks tallies how many cards of each rank the zone holds.
func CountRanks(zone []Card) map[Rank]int {
	counts := make(map[Rank]int)
	for _, c := range zone {
		counts[c.Rank]++
	}
	return counts
}

// IDs returns the IDs of all cards in the zone, in order.
func IDs(zone []Card) []string {
	ids := make([]string, len(zone))
	for i, c := range zone {
		ids[i] = c.ID
	}
	return ids
}
