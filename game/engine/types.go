package engine

import "slices"

const (
	// StartBonus is credited when a move crosses or lands on the start space
	StartBonus = 200000

	// DieFaces is the number of faces on each die
	DieFaces = 6

	// Validation constants
	MinPlayers      = 2
	MaxPlayers      = 8
	MinStartingCash = 1
	MaxStartingCash = 100000000
)

// Player represents a participant and their holdings in cash
type Player struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Position   int    `json:"position"`
	Color      string `json:"color"`
	Token      string `json:"token"`
	Cash       int    `json:"cash"`
	Eliminated bool   `json:"eliminated"`
}

// Ownership binds a purchasable space to the player who bought it
type Ownership struct {
	PropertyID int `json:"property_id"`
	OwnerID    int `json:"owner_id"`
}

// DiceRoll is the pair of faces from a single throw
type DiceRoll [2]int

// Total returns the sum of both faces
func (d DiceRoll) Total() int {
	return d[0] + d[1]
}

// IsDouble reports whether both faces match
func (d DiceRoll) IsDouble() bool {
	return d[0] == d[1]
}

// PendingRent is rent owed by the current player
type PendingRent struct {
	PropertyID int `json:"property_id"`
	OwnerID    int `json:"owner_id"`
	Amount     int `json:"amount"`
}

// PendingTax is a tax owed by the current player
type PendingTax struct {
	SpaceID int `json:"space_id"`
	Amount  int `json:"amount"`
}

// GameState represents the complete game state
type GameState struct {
	ConfigName    string      `json:"config_name"`
	Players       []Player    `json:"players"`
	CurrentPlayer int         `json:"current_player"`
	LastRoll      *DiceRoll   `json:"last_roll"`
	HasRolled     bool        `json:"has_rolled"`
	Log           []string    `json:"game_log"`
	Ownerships    []Ownership `json:"owned_properties"`

	// At most one of these is set; it blocks the end of the turn.
	PendingPurchase *int         `json:"pending_purchase"`
	PendingRent     *PendingRent `json:"pending_rent"`
	PendingTax      *PendingTax  `json:"pending_tax"`

	IsAnimating     bool   `json:"is_animating"`
	AnimatingPlayer *int   `json:"animating_player"`
	GameEnded       bool   `json:"game_ended"`
	Winner          *int   `json:"winner"`
	TurnNumber      int    `json:"turn_number"`
	Message         string `json:"message"`
}

// Player returns the player with the given id
func (gs *GameState) Player(id int) (Player, bool) {
	if i := gs.playerIndex(id); i >= 0 {
		return gs.Players[i], true
	}
	return Player{}, false
}

// ActivePlayers returns the players that are not eliminated
func (gs *GameState) ActivePlayers() []Player {
	var active []Player
	for _, p := range gs.Players {
		if !p.Eliminated {
			active = append(active, p)
		}
	}
	return active
}

// HasPendingDecision reports whether a purchase, rent or tax is outstanding
func (gs *GameState) HasPendingDecision() bool {
	return gs.PendingPurchase != nil || gs.PendingRent != nil || gs.PendingTax != nil
}

// Clone returns a deep copy of the state
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	c := *gs
	c.Players = slices.Clone(gs.Players)
	c.Log = slices.Clone(gs.Log)
	c.Ownerships = slices.Clone(gs.Ownerships)
	c.LastRoll = clonePtr(gs.LastRoll)
	c.PendingPurchase = clonePtr(gs.PendingPurchase)
	c.PendingRent = clonePtr(gs.PendingRent)
	c.PendingTax = clonePtr(gs.PendingTax)
	c.AnimatingPlayer = clonePtr(gs.AnimatingPlayer)
	c.Winner = clonePtr(gs.Winner)
	return &c
}

func (gs *GameState) playerIndex(id int) int {
	for i, p := range gs.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// nextActivePlayer returns the id of the first non-eliminated player after
// the given one in seating order, wrapping around
func (gs *GameState) nextActivePlayer(afterID int) (int, bool) {
	start := gs.playerIndex(afterID)
	n := len(gs.Players)
	for step := 1; step <= n; step++ {
		p := gs.Players[(start+step+n)%n]
		if !p.Eliminated {
			return p.ID, true
		}
	}
	return 0, false
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
