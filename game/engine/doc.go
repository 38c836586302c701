// Package engine provides the rules and state engine for Monopolio Paisa.
//
// The engine package implements the game mechanics including:
//   - Dice rolls and the doubles predicate
//   - Ring movement with the pass-start bonus
//   - Purchase eligibility and ownership lookup
//   - Rent calculation per space type
//   - Turn orchestration, payments, bankruptcy and victory
//   - Configuration validation and initial state construction
//
// Rules:
//
// The rule functions (RollDice, MovePlayer, IsPropertyBuyable,
// GetPropertyOwner, CalculateRent) are pure: they never mutate their
// inputs and never fail. Missing owners are reported as (0, false), unknown
// spaces have no rent and are never buyable.
//
// Core Types:
//
// GameEngine drives a single game. It calls the rule functions in response
// to player actions (roll, buy, decline, pay rent, pay tax, end turn) and
// folds their results into GameState. GameConfig defines the roster,
// starting cash and log messages loaded from JSON files.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	roll, err := gameEngine.Roll()
//	if err != nil {
//		log.Fatal(err)
//	}
//	state := gameEngine.GetState()
//	if state.PendingPurchase != nil {
//		err = gameEngine.BuyProperty()
//	}
//
// At most one decision (purchase, rent or tax) is pending at a time and it
// blocks the end of the turn until it is resolved.
package engine
