package engine

import (
	"errors"
	"fmt"

	"github.com/wricardo/monopolio-paisa/game/board"
)

// Rule violations returned by GameEngine actions
var (
	ErrGameOver          = errors.New("game is over")
	ErrAnimating         = errors.New("a token is still moving")
	ErrAlreadyRolled     = errors.New("player already rolled this turn")
	ErrNotRolled         = errors.New("player has not rolled yet")
	ErrPendingDecision   = errors.New("a pending decision must be resolved first")
	ErrNoPendingPurchase = errors.New("no purchase is pending")
	ErrNoPendingRent     = errors.New("no rent is pending")
	ErrNoPendingTax      = errors.New("no tax is pending")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotBuyable        = errors.New("space is not buyable")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrPlayerEliminated  = errors.New("player is eliminated")
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsGameOver() bool
	Winner() (Player, bool)
	CurrentPlayer() (Player, bool)

	// Turn actions
	Roll() (DiceRoll, error)
	BuyProperty() error
	DeclinePurchase() error
	PayRent() error
	PayTax() error
	EndTurn() error

	// Animation
	StartAnimation(playerID int) error
	FinishAnimation()

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error
	GetBoard() *board.Board
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state    *GameState
	config   *GameConfig
	messages Messages
	board    *board.Board
	dice     Roller
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	engine := &GameEngine{
		config:   config,
		messages: config.Messages.withDefaults(),
		board:    board.Default(),
		dice:     DefaultRoller(),
		state:    InitGameStateFromConfig(config),
	}

	return engine, nil
}

// NewEngineWithDefaults creates a new game engine with default configuration
func NewEngineWithDefaults() *GameEngine {
	config := DefaultConfig()
	return &GameEngine{
		config:   config,
		messages: config.Messages.withDefaults(),
		board:    board.Default(),
		dice:     DefaultRoller(),
		state:    InitGameStateFromConfig(config),
	}
}

// SetDice replaces the dice source, e.g. with a seeded generator
func (e *GameEngine) SetDice(r Roller) {
	if r == nil {
		r = DefaultRoller()
	}
	e.dice = r
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState sets the game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if len(state.Players) == 0 {
		return fmt.Errorf("state has no players")
	}
	if state.playerIndex(state.CurrentPlayer) < 0 {
		return fmt.Errorf("current player %d is not seated", state.CurrentPlayer)
	}
	pending := 0
	for _, set := range []bool{state.PendingPurchase != nil, state.PendingRent != nil, state.PendingTax != nil} {
		if set {
			pending++
		}
	}
	if pending > 1 {
		return fmt.Errorf("state has %d pending decisions, at most one is allowed", pending)
	}
	if state.Log == nil {
		state.Log = []string{}
	}
	if state.Ownerships == nil {
		state.Ownerships = []Ownership{}
	}
	e.state = state
	return nil
}

// Reset resets the game to initial state
func (e *GameEngine) Reset() *GameState {
	e.state = InitGameStateFromConfig(e.config)
	return e.state
}

// IsGameOver returns whether the game has ended
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameEnded
}

// Winner returns the winning player once the game has ended
func (e *GameEngine) Winner() (Player, bool) {
	if !e.state.GameEnded || e.state.Winner == nil {
		return Player{}, false
	}
	return e.state.Player(*e.state.Winner)
}

// CurrentPlayer returns the player whose turn it is
func (e *GameEngine) CurrentPlayer() (Player, bool) {
	return e.state.Player(e.state.CurrentPlayer)
}

// GetConfig returns the current configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new configuration and resets the game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}
	e.config = config
	e.messages = config.Messages.withDefaults()
	e.Reset()
	return nil
}

// GetBoard returns the board the game is played on
func (e *GameEngine) GetBoard() *board.Board {
	return e.board
}

// Roll throws the dice for the current player, moves their token and
// resolves the space they land on
func (e *GameEngine) Roll() (DiceRoll, error) {
	if err := e.checkCanAct(); err != nil {
		return DiceRoll{}, err
	}
	if e.state.HasPendingDecision() {
		return DiceRoll{}, ErrPendingDecision
	}
	if e.state.HasRolled {
		return DiceRoll{}, ErrAlreadyRolled
	}

	idx, err := e.currentIndex()
	if err != nil {
		return DiceRoll{}, err
	}
	player := e.state.Players[idx]
	if player.Eliminated {
		return DiceRoll{}, ErrPlayerEliminated
	}

	roll := RollDiceWith(e.dice)
	e.state.LastRoll = &roll
	e.logf(e.messages.Rolled, player.Name, roll[0], roll[1], roll.Total())

	moved := MovePlayer(player, roll.Total())
	e.state.Players[idx] = moved
	if PassedStart(player.Position, roll.Total()) {
		e.logf(e.messages.PassedStart, player.Name, StartBonus)
	}

	e.state.HasRolled = !roll.IsDouble()
	e.resolveLanding(moved)
	if roll.IsDouble() {
		e.logf(e.messages.Doubles, player.Name)
	}

	return roll, nil
}

// resolveLanding opens the decision matching the space the player landed on
func (e *GameEngine) resolveLanding(player Player) {
	space, ok := e.board.Get(player.Position)
	if !ok {
		return
	}
	e.logf(e.messages.Landed, player.Name, space.Name)

	switch {
	case space.Type == board.Tax:
		e.state.PendingTax = &PendingTax{SpaceID: space.ID, Amount: space.TaxAmount}

	case space.Purchasable():
		ownerID, owned := GetPropertyOwner(space.ID, e.state.Ownerships)
		if !owned {
			if IsPropertyBuyable(space.ID, e.state.Ownerships, e.board) {
				id := space.ID
				e.state.PendingPurchase = &id
			}
			return
		}
		if ownerID == player.ID {
			return
		}
		owner, ok := e.state.Player(ownerID)
		if !ok || owner.Eliminated {
			return
		}
		if rent := CalculateRent(space.ID, e.state.Ownerships, e.board); rent > 0 {
			e.state.PendingRent = &PendingRent{PropertyID: space.ID, OwnerID: ownerID, Amount: rent}
		}
	}
}

// BuyProperty buys the pending purchase for the current player
func (e *GameEngine) BuyProperty() error {
	if err := e.checkCanAct(); err != nil {
		return err
	}
	if e.state.PendingPurchase == nil {
		return ErrNoPendingPurchase
	}

	idx, err := e.currentIndex()
	if err != nil {
		return err
	}
	propertyID := *e.state.PendingPurchase
	if !IsPropertyBuyable(propertyID, e.state.Ownerships, e.board) {
		e.state.PendingPurchase = nil
		return fmt.Errorf("%w: space %d", ErrNotBuyable, propertyID)
	}
	space, _ := e.board.Get(propertyID)

	player := e.state.Players[idx]
	if player.Cash < space.Price {
		return fmt.Errorf("%w: %s costs %d, %s has %d", ErrInsufficientFunds, space.Name, space.Price, player.Name, player.Cash)
	}

	player.Cash -= space.Price
	e.state.Players[idx] = player
	e.state.Ownerships = append(e.state.Ownerships, Ownership{PropertyID: propertyID, OwnerID: player.ID})
	e.state.PendingPurchase = nil
	e.logf(e.messages.Purchased, player.Name, space.Name, space.Price)
	return nil
}

// DeclinePurchase leaves the pending space unowned
func (e *GameEngine) DeclinePurchase() error {
	if err := e.checkCanAct(); err != nil {
		return err
	}
	if e.state.PendingPurchase == nil {
		return ErrNoPendingPurchase
	}

	player, ok := e.CurrentPlayer()
	if !ok {
		return ErrPlayerNotFound
	}
	space, _ := e.board.Get(*e.state.PendingPurchase)
	e.state.PendingPurchase = nil
	e.logf(e.messages.Declined, player.Name, space.Name)
	return nil
}

// PayRent settles the pending rent. A player who cannot cover it pays
// everything they have and is eliminated.
func (e *GameEngine) PayRent() error {
	if err := e.checkCanAct(); err != nil {
		return err
	}
	pending := e.state.PendingRent
	if pending == nil {
		return ErrNoPendingRent
	}

	idx, err := e.currentIndex()
	if err != nil {
		return err
	}
	ownerIdx := e.state.playerIndex(pending.OwnerID)
	if ownerIdx < 0 {
		return fmt.Errorf("%w: owner %d", ErrPlayerNotFound, pending.OwnerID)
	}

	payer := e.state.Players[idx]
	paid := e.charge(idx, pending.Amount)
	owner := e.state.Players[ownerIdx]
	owner.Cash += paid
	e.state.Players[ownerIdx] = owner

	space, _ := e.board.Get(pending.PropertyID)
	e.state.PendingRent = nil
	e.logf(e.messages.RentPaid, payer.Name, paid, owner.Name, space.Name)
	e.afterCharge(idx)
	return nil
}

// PayTax settles the pending tax with the same bankruptcy rule as rent
func (e *GameEngine) PayTax() error {
	if err := e.checkCanAct(); err != nil {
		return err
	}
	pending := e.state.PendingTax
	if pending == nil {
		return ErrNoPendingTax
	}

	idx, err := e.currentIndex()
	if err != nil {
		return err
	}
	payer := e.state.Players[idx]
	paid := e.charge(idx, pending.Amount)

	space, _ := e.board.Get(pending.SpaceID)
	e.state.PendingTax = nil
	e.logf(e.messages.TaxPaid, payer.Name, paid, space.Name)
	e.afterCharge(idx)
	return nil
}

// EndTurn passes the turn to the next player still in the game
func (e *GameEngine) EndTurn() error {
	if err := e.checkCanAct(); err != nil {
		return err
	}

	current, ok := e.CurrentPlayer()
	if !ok {
		return fmt.Errorf("%w: current player %d", ErrPlayerNotFound, e.state.CurrentPlayer)
	}
	if !current.Eliminated {
		if e.state.HasPendingDecision() {
			return ErrPendingDecision
		}
		if !e.state.HasRolled {
			return ErrNotRolled
		}
	}

	next, ok := e.state.nextActivePlayer(current.ID)
	if !ok {
		return ErrGameOver
	}
	e.state.PendingPurchase = nil
	e.state.CurrentPlayer = next
	e.state.HasRolled = false
	e.state.TurnNumber++
	if p, ok := e.state.Player(next); ok {
		e.logf(e.messages.TurnStarted, p.Name)
	}
	return nil
}

// StartAnimation marks a token as moving; actions are refused until
// FinishAnimation is called
func (e *GameEngine) StartAnimation(playerID int) error {
	if _, ok := e.state.Player(playerID); !ok {
		return fmt.Errorf("%w: %d", ErrPlayerNotFound, playerID)
	}
	e.state.IsAnimating = true
	e.state.AnimatingPlayer = &playerID
	return nil
}

// FinishAnimation clears the animation flags
func (e *GameEngine) FinishAnimation() {
	e.state.IsAnimating = false
	e.state.AnimatingPlayer = nil
}

// charge takes up to amount from a player and returns what was collected.
// A player who cannot cover the amount is left at zero and eliminated.
func (e *GameEngine) charge(idx, amount int) int {
	player := e.state.Players[idx]
	if player.Cash >= amount {
		player.Cash -= amount
		e.state.Players[idx] = player
		return amount
	}

	paid := player.Cash
	player.Cash = 0
	player.Eliminated = true
	e.state.Players[idx] = player
	return paid
}

// afterCharge logs an elimination and declares a winner when only one
// player is left
func (e *GameEngine) afterCharge(idx int) {
	player := e.state.Players[idx]
	if !player.Eliminated {
		return
	}
	e.logf(e.messages.Eliminated, player.Name)

	active := e.state.ActivePlayers()
	if len(active) != 1 {
		return
	}
	winner := active[0].ID
	e.state.GameEnded = true
	e.state.Winner = &winner
	e.logf(e.messages.Victory, active[0].Name)
}

func (e *GameEngine) checkCanAct() error {
	if e.state.GameEnded {
		return ErrGameOver
	}
	if e.state.IsAnimating {
		return ErrAnimating
	}
	return nil
}

func (e *GameEngine) currentIndex() (int, error) {
	idx := e.state.playerIndex(e.state.CurrentPlayer)
	if idx < 0 {
		return -1, fmt.Errorf("%w: current player %d", ErrPlayerNotFound, e.state.CurrentPlayer)
	}
	return idx, nil
}

// logf appends a formatted entry to the game log and mirrors it in Message
func (e *GameEngine) logf(template string, args ...any) {
	msg := formatMessage(template, args...)
	e.state.Log = append(e.state.Log, msg)
	e.state.Message = msg
}
