package game

import (
	"estates/internal/estate"
	"estates/internal/store"
)

// matchBuyers pairs each active buyer with the first for-sale listing that
// matches their county, type and safety at or below their offer. The listing
// leaves the market (an NPC sale, no money reaches the player) and the buyer
// is consumed.
func (s *Service) matchBuyers(w *store.World) int {
	matches := 0
	for _, person := range w.PeopleWhere(func(p *estate.Person) bool { return p.Active && p.Role == estate.Buyer }) {
		var hit *estate.Property
		for _, prop := range w.Properties {
			if prop.Status == estate.ForSale && !prop.OwnedByPlayer && person.Wants(prop) && prop.PriceMicros <= person.OfferMicros {
				hit = prop
				break
			}
		}
		if hit == nil {
			continue
		}
		id := hit.ID
		w.RemovePropertiesWhere(func(p *estate.Property) bool { return p.ID == id })
		person.Active = false
		matches++
	}
	return matches
}
