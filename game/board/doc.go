// Package board provides the static board model for Monopolio Paisa.
//
// The board is a ring of 40 spaces identified by ids 0..39. Each space has a
// type that decides which attributes it carries:
//   - property: color group, price and six ascending rent tiers
//   - railroad and utility: price only
//   - tax: tax amount only
//   - corner, chance, community-chest, jail: no economic attributes
//
// The catalog is immutable. Lookups return copies so callers can never
// mutate the shared board:
//
//	b := board.Default()
//	space, ok := b.Get(5)
//	if ok && space.Purchasable() {
//		fmt.Println(space.Name, space.Price)
//	}
//
// Side only drives layout in a renderer and has no gameplay effect.
package board
