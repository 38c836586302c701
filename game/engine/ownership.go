package engine

import "github.com/wricardo/monopolio-paisa/game/board"

// GetPropertyOwner returns the owner of a space, if it has one
func GetPropertyOwner(propertyID int, ownerships []Ownership) (int, bool) {
	for _, o := range ownerships {
		if o.PropertyID == propertyID {
			return o.OwnerID, true
		}
	}
	return 0, false
}

// IsPropertyBuyable reports whether a space is a purchasable type with a
// price and is not owned yet
func IsPropertyBuyable(propertyID int, ownerships []Ownership, b *board.Board) bool {
	space, ok := b.Get(propertyID)
	if !ok || !space.Purchasable() || !space.HasPrice() {
		return false
	}
	_, owned := GetPropertyOwner(propertyID, ownerships)
	return !owned
}

// PropertiesOf returns the ids of every space held by the owner, in
// purchase order
func PropertiesOf(ownerID int, ownerships []Ownership) []int {
	var ids []int
	for _, o := range ownerships {
		if o.OwnerID == ownerID {
			ids = append(ids, o.PropertyID)
		}
	}
	return ids
}

// countOwnedOfType counts the spaces of one type held by the owner
func countOwnedOfType(ownerID int, t board.SpaceType, ownerships []Ownership, b *board.Board) int {
	count := 0
	for _, o := range ownerships {
		if o.OwnerID != ownerID {
			continue
		}
		if s, ok := b.Get(o.PropertyID); ok && s.Type == t {
			count++
		}
	}
	return count
}
