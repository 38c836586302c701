package engine

import "github.com/wricardo/monopolio-paisa/game/board"

// RailroadRents is indexed by the number of railroads the owner holds, minus one
var RailroadRents = [...]int{25000, 50000, 100000, 200000}

// Fixed utility rents, by how many utilities the owner holds
const (
	UtilityRentSingle = 4000
	UtilityRentBoth   = 10000
)

// CalculateRent returns the rent a space charges. Ordinary properties
// always report their base tier; railroads and utilities depend on what
// their owner holds and charge nothing while unowned. Every other space
// charges nothing.
func CalculateRent(propertyID int, ownerships []Ownership, b *board.Board) int {
	space, ok := b.Get(propertyID)
	if !ok {
		return 0
	}

	switch space.Type {
	case board.Property:
		return space.BaseRent()
	case board.Railroad:
		ownerID, owned := GetPropertyOwner(propertyID, ownerships)
		if !owned {
			return 0
		}
		n := countOwnedOfType(ownerID, board.Railroad, ownerships, b)
		if n < 1 || n > len(RailroadRents) {
			return 0
		}
		return RailroadRents[n-1]
	case board.Utility:
		ownerID, owned := GetPropertyOwner(propertyID, ownerships)
		if !owned {
			return 0
		}
		if countOwnedOfType(ownerID, board.Utility, ownerships, b) >= 2 {
			return UtilityRentBoth
		}
		return UtilityRentSingle
	default:
		return 0
	}
}
