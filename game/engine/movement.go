package engine

import "github.com/wricardo/monopolio-paisa/game/board"

// MovePlayer advances a player around the ring by steps spaces.
// Reaching or crossing the start space credits StartBonus. The input
// player is not modified.
func MovePlayer(player Player, steps int) Player {
	moved := player
	moved.Position = (player.Position + steps) % board.SpaceCount
	if PassedStart(player.Position, steps) {
		moved.Cash += StartBonus
	}
	return moved
}

// PassedStart reports whether moving steps spaces from position reaches
// or wraps past the start space
func PassedStart(position, steps int) bool {
	return position+steps >= board.SpaceCount
}
