package engine

import (
	"sort"

	"github.com/wricardo/monopolio-paisa/game/board"
)

// Standing summarizes one player's position in the game
type Standing struct {
	PlayerID   int    `json:"player_id"`
	Name       string `json:"name"`
	Cash       int    `json:"cash"`
	Properties int    `json:"properties"`
	NetWorth   int    `json:"net_worth"`
	Eliminated bool   `json:"eliminated"`
}

// NetWorth is a player's cash plus the purchase price of everything they own
func NetWorth(player Player, ownerships []Ownership, b *board.Board) int {
	total := player.Cash
	for _, id := range PropertiesOf(player.ID, ownerships) {
		if s, ok := b.Get(id); ok {
			total += s.Price
		}
	}
	return total
}

// Standings ranks players by net worth, eliminated players last
func Standings(state *GameState, b *board.Board) []Standing {
	if state == nil {
		return nil
	}
	out := make([]Standing, 0, len(state.Players))
	for _, p := range state.Players {
		out = append(out, Standing{
			PlayerID:   p.ID,
			Name:       p.Name,
			Cash:       p.Cash,
			Properties: len(PropertiesOf(p.ID, state.Ownerships)),
			NetWorth:   NetWorth(p, state.Ownerships, b),
			Eliminated: p.Eliminated,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Eliminated != out[j].Eliminated {
			return !out[i].Eliminated
		}
		return out[i].NetWorth > out[j].NetWorth
	})
	return out
}
