package engine

import "math/rand/v2"

// Roller produces uniform integers in [0, n)
type Roller interface {
	IntN(n int) int
}

type defaultRoller struct{}

func (defaultRoller) IntN(n int) int {
	return rand.IntN(n)
}

// DefaultRoller returns the process-wide random source
func DefaultRoller() Roller {
	return defaultRoller{}
}

// RollDice throws two independent six-sided dice
func RollDice() DiceRoll {
	return RollDiceWith(defaultRoller{})
}

// RollDiceWith throws two dice using the given source
func RollDiceWith(r Roller) DiceRoll {
	return DiceRoll{r.IntN(DieFaces) + 1, r.IntN(DieFaces) + 1}
}

// GetDiceTotal returns the sum of both faces
func GetDiceTotal(d DiceRoll) int {
	return d.Total()
}

// IsDouble reports whether both faces of the roll match
func IsDouble(d DiceRoll) bool {
	return d.IsDouble()
}
