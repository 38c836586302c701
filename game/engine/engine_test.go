package engine

import (
	"encoding/json"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/monopolio-paisa/game/board"
)

// scriptedDice returns the queued faces in order
type scriptedDice struct {
	faces []int
}

func (s *scriptedDice) IntN(n int) int {
	if len(s.faces) == 0 {
		panic("scriptedDice: no faces left")
	}
	f := s.faces[0]
	s.faces = s.faces[1:]
	return f - 1
}

func newTestEngine(t *testing.T, faces ...int) *GameEngine {
	t.Helper()
	e, err := NewEngine(DefaultConfig())
	require.NoError(t, err)
	e.SetDice(&scriptedDice{faces: faces})
	return e
}

func cashOf(t *testing.T, e *GameEngine, id int) int {
	t.Helper()
	p, ok := e.GetState().Player(id)
	require.True(t, ok)
	return p.Cash
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.Players = config.Players[:1]
	_, err := NewEngine(config)
	assert.Error(t, err)
}

func TestRoll_LandsOnUnownedProperty(t *testing.T) {
	e := newTestEngine(t, 1, 2)

	roll, err := e.Roll()
	require.NoError(t, err)
	assert.Equal(t, DiceRoll{1, 2}, roll)

	state := e.GetState()
	p, _ := state.Player(1)
	assert.Equal(t, 3, p.Position)
	assert.True(t, state.HasRolled)
	require.NotNil(t, state.PendingPurchase)
	assert.Equal(t, 3, *state.PendingPurchase)
	assert.Nil(t, state.PendingRent)
	assert.Nil(t, state.PendingTax)
	require.NotNil(t, state.LastRoll)
	assert.Equal(t, 3, state.LastRoll.Total())
}

func TestBuyProperty(t *testing.T) {
	e := newTestEngine(t, 1, 2)
	_, err := e.Roll()
	require.NoError(t, err)

	require.NoError(t, e.BuyProperty())

	state := e.GetState()
	assert.Nil(t, state.PendingPurchase)
	assert.Equal(t, 1500000-60000, cashOf(t, e, 1))
	owner, ok := GetPropertyOwner(3, state.Ownerships)
	assert.True(t, ok)
	assert.Equal(t, 1, owner)

	assert.ErrorIs(t, e.BuyProperty(), ErrNoPendingPurchase)
}

func TestBuyProperty_InsufficientFunds(t *testing.T) {
	e := newTestEngine(t, 1, 2)
	e.GetState().Players[0].Cash = 100

	_, err := e.Roll()
	require.NoError(t, err)

	assert.ErrorIs(t, e.BuyProperty(), ErrInsufficientFunds)
	assert.NotNil(t, e.GetState().PendingPurchase, "purchase stays open")
	assert.Equal(t, 100, cashOf(t, e, 1))

	require.NoError(t, e.DeclinePurchase())
	assert.Nil(t, e.GetState().PendingPurchase)
	assert.Empty(t, e.GetState().Ownerships)
	require.NoError(t, e.EndTurn())
}

func TestEndTurn(t *testing.T) {
	e := newTestEngine(t, 1, 2)

	assert.ErrorIs(t, e.EndTurn(), ErrNotRolled)

	_, err := e.Roll()
	require.NoError(t, err)
	assert.ErrorIs(t, e.EndTurn(), ErrPendingDecision)

	require.NoError(t, e.DeclinePurchase())
	require.NoError(t, e.EndTurn())

	state := e.GetState()
	assert.Equal(t, 2, state.CurrentPlayer)
	assert.False(t, state.HasRolled)
	assert.Equal(t, 2, state.TurnNumber)
}

func TestRoll_TwiceWithoutDoubles(t *testing.T) {
	e := newTestEngine(t, 3, 4, 1, 2)
	_, err := e.Roll()
	require.NoError(t, err)

	_, err = e.Roll()
	assert.ErrorIs(t, err, ErrAlreadyRolled)
}

func TestRoll_DoublesRollAgain(t *testing.T) {
	// 2+2 lands on the DIAN tax, then 3+4 reaches Itagüí Centro
	e := newTestEngine(t, 2, 2, 3, 4)

	_, err := e.Roll()
	require.NoError(t, err)

	state := e.GetState()
	assert.False(t, state.HasRolled, "doubles grant another roll")
	require.NotNil(t, state.PendingTax)
	assert.Equal(t, 200000, state.PendingTax.Amount)

	_, err = e.Roll()
	assert.ErrorIs(t, err, ErrPendingDecision)

	require.NoError(t, e.PayTax())
	assert.Equal(t, 1300000, cashOf(t, e, 1))
	assert.ErrorIs(t, e.EndTurn(), ErrNotRolled)

	_, err = e.Roll()
	require.NoError(t, err)
	p, _ := e.GetState().Player(1)
	assert.Equal(t, 11, p.Position)
	assert.True(t, e.GetState().HasRolled)
}

func TestRoll_PassingStartPaysBonus(t *testing.T) {
	e := newTestEngine(t, 1, 2)
	e.GetState().Players[0].Position = 38

	_, err := e.Roll()
	require.NoError(t, err)

	p, _ := e.GetState().Player(1)
	assert.Equal(t, 1, p.Position)
	assert.Equal(t, 1500000+StartBonus, p.Cash)
	require.NotNil(t, e.GetState().PendingPurchase)
	assert.Equal(t, 1, *e.GetState().PendingPurchase)
}

func TestPayRent(t *testing.T) {
	e := newTestEngine(t, 1, 2, 1, 2)

	_, err := e.Roll()
	require.NoError(t, err)
	require.NoError(t, e.BuyProperty())
	require.NoError(t, e.EndTurn())

	_, err = e.Roll()
	require.NoError(t, err)

	state := e.GetState()
	require.NotNil(t, state.PendingRent)
	assert.Equal(t, PendingRent{PropertyID: 3, OwnerID: 1, Amount: 4000}, *state.PendingRent)
	assert.Nil(t, state.PendingPurchase)
	assert.ErrorIs(t, e.EndTurn(), ErrPendingDecision)

	require.NoError(t, e.PayRent())
	assert.Equal(t, 1500000-4000, cashOf(t, e, 2))
	assert.Equal(t, 1500000-60000+4000, cashOf(t, e, 1))
	assert.ErrorIs(t, e.PayRent(), ErrNoPendingRent)
	require.NoError(t, e.EndTurn())
}

func TestRoll_OwnPropertyOpensNothing(t *testing.T) {
	e := newTestEngine(t, 1, 2)
	state := e.GetState()
	state.Ownerships = append(state.Ownerships, Ownership{PropertyID: 3, OwnerID: 1})

	_, err := e.Roll()
	require.NoError(t, err)
	assert.False(t, e.GetState().HasPendingDecision())
}

func TestRoll_ChanceOpensNothing(t *testing.T) {
	e := newTestEngine(t, 3, 4)
	_, err := e.Roll()
	require.NoError(t, err)

	p, _ := e.GetState().Player(1)
	assert.Equal(t, 7, p.Position)
	assert.False(t, e.GetState().HasPendingDecision())
	require.NoError(t, e.EndTurn())
}

func TestRoll_RailroadRentScalesWithHoldings(t *testing.T) {
	e := newTestEngine(t, 1, 2)
	state := e.GetState()
	state.Players[0].Position = 2
	state.Ownerships = []Ownership{{PropertyID: 5, OwnerID: 2}, {PropertyID: 15, OwnerID: 2}}

	_, err := e.Roll()
	require.NoError(t, err)
	require.NotNil(t, e.GetState().PendingRent)
	assert.Equal(t, 50000, e.GetState().PendingRent.Amount)
}

func TestRoll_EliminatedOwnerCollectsNothing(t *testing.T) {
	e := newTestEngine(t, 1, 2)
	state := e.GetState()
	state.Players[2].Eliminated = true
	state.Ownerships = []Ownership{{PropertyID: 3, OwnerID: 3}}

	_, err := e.Roll()
	require.NoError(t, err)
	assert.False(t, e.GetState().HasPendingDecision())
}

func TestPayRent_BankruptcyEndsGame(t *testing.T) {
	config := DefaultConfig()
	config.Players = config.Players[:2]
	e, err := NewEngine(config)
	require.NoError(t, err)
	e.SetDice(&scriptedDice{faces: []int{1, 2}})

	state := e.GetState()
	state.CurrentPlayer = 2
	state.Players[1].Position = 36
	state.Players[1].Cash = 100
	state.Ownerships = []Ownership{{PropertyID: 39, OwnerID: 1}}

	_, err = e.Roll()
	require.NoError(t, err)
	require.NotNil(t, e.GetState().PendingRent)
	assert.Equal(t, 50000, e.GetState().PendingRent.Amount)

	require.NoError(t, e.PayRent())

	state = e.GetState()
	loser, _ := state.Player(2)
	assert.True(t, loser.Eliminated)
	assert.Equal(t, 0, loser.Cash)
	assert.Equal(t, 1500000+100, cashOf(t, e, 1))

	assert.True(t, state.GameEnded)
	require.NotNil(t, state.Winner)
	assert.Equal(t, 1, *state.Winner)
	winner, ok := e.Winner()
	require.True(t, ok)
	assert.Equal(t, "Andres", winner.Name)
	assert.Contains(t, state.Message, "Andres")

	_, err = e.Roll()
	assert.ErrorIs(t, err, ErrGameOver)
	assert.ErrorIs(t, e.EndTurn(), ErrGameOver)
}

func TestPayTax_BankruptcySkipsPlayerNextTurn(t *testing.T) {
	e := newTestEngine(t, 1, 3)
	state := e.GetState()
	state.Players[0].Cash = 1000

	_, err := e.Roll()
	require.NoError(t, err)
	require.NotNil(t, e.GetState().PendingTax)

	require.NoError(t, e.PayTax())
	p, _ := e.GetState().Player(1)
	assert.True(t, p.Eliminated)
	assert.False(t, e.GetState().GameEnded, "three players remain")

	require.NoError(t, e.EndTurn())
	assert.Equal(t, 2, e.GetState().CurrentPlayer)

	// Seats 2, 3 and 4 pass; seat 1 is skipped on the way round
	e.GetState().HasRolled = true
	require.NoError(t, e.EndTurn())
	e.GetState().HasRolled = true
	require.NoError(t, e.EndTurn())
	e.GetState().HasRolled = true
	require.NoError(t, e.EndTurn())
	assert.Equal(t, 2, e.GetState().CurrentPlayer)
}

func TestEliminatedPlayerCannotRoll(t *testing.T) {
	e := newTestEngine(t)
	e.GetState().Players[0].Eliminated = true

	_, err := e.Roll()
	assert.ErrorIs(t, err, ErrPlayerEliminated)
	require.NoError(t, e.EndTurn(), "an eliminated player may always pass")
}

func TestAnimationBlocksActions(t *testing.T) {
	e := newTestEngine(t, 1, 2)

	require.NoError(t, e.StartAnimation(1))
	state := e.GetState()
	assert.True(t, state.IsAnimating)
	require.NotNil(t, state.AnimatingPlayer)
	assert.Equal(t, 1, *state.AnimatingPlayer)

	_, err := e.Roll()
	assert.ErrorIs(t, err, ErrAnimating)

	e.FinishAnimation()
	assert.False(t, e.GetState().IsAnimating)
	assert.Nil(t, e.GetState().AnimatingPlayer)

	_, err = e.Roll()
	assert.NoError(t, err)

	assert.ErrorIs(t, e.StartAnimation(99), ErrPlayerNotFound)
}

func TestNoPendingDecisionErrors(t *testing.T) {
	e := newTestEngine(t)
	assert.ErrorIs(t, e.BuyProperty(), ErrNoPendingPurchase)
	assert.ErrorIs(t, e.DeclinePurchase(), ErrNoPendingPurchase)
	assert.ErrorIs(t, e.PayRent(), ErrNoPendingRent)
	assert.ErrorIs(t, e.PayTax(), ErrNoPendingTax)
}

func TestReset(t *testing.T) {
	e := newTestEngine(t, 1, 2)
	_, err := e.Roll()
	require.NoError(t, err)
	require.NoError(t, e.BuyProperty())

	state := e.Reset()
	assert.Empty(t, state.Ownerships)
	assert.Nil(t, state.LastRoll)
	assert.Equal(t, 1, state.CurrentPlayer)
	assert.Equal(t, 1500000, cashOf(t, e, 1))
}

func TestSetState(t *testing.T) {
	e := NewEngineWithDefaults()

	assert.Error(t, e.SetState(nil))
	assert.Error(t, e.SetState(&GameState{}))

	broken := InitGameStateFromConfig(nil)
	broken.CurrentPlayer = 9
	assert.Error(t, e.SetState(broken))

	twoPending := InitGameStateFromConfig(nil)
	id := 1
	twoPending.PendingPurchase = &id
	twoPending.PendingTax = &PendingTax{SpaceID: 4, Amount: 200000}
	assert.Error(t, e.SetState(twoPending))

	restored := InitGameStateFromConfig(nil)
	restored.Log = nil
	restored.Players[0].Position = 12
	require.NoError(t, e.SetState(restored))
	assert.Equal(t, 12, e.GetState().Players[0].Position)
	assert.NotNil(t, e.GetState().Log)
}

func TestSetConfig(t *testing.T) {
	e := NewEngineWithDefaults()

	config := DefaultConfig()
	config.Name = "Duelo"
	config.Players = config.Players[:2]
	config.StartingCash = 700000
	require.NoError(t, e.SetConfig(config))

	state := e.GetState()
	assert.Equal(t, "Duelo", state.ConfigName)
	assert.Len(t, state.Players, 2)
	assert.Equal(t, 700000, state.Players[1].Cash)

	config = DefaultConfig()
	config.StartingCash = 0
	assert.Error(t, e.SetConfig(config))
}

func TestGameStateJSON(t *testing.T) {
	e := newTestEngine(t, 5, 6)
	_, err := e.Roll()
	require.NoError(t, err)

	data, err := json.Marshal(e.GetState())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, []any{5.0, 6.0}, raw["last_roll"])
	assert.Contains(t, raw, "game_log")
	assert.Contains(t, raw, "owned_properties")
	assert.Contains(t, raw, "pending_purchase")

	var decoded GameState
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, e.GetState(), &decoded)
}

// Plays full games with a simple policy and checks the state invariants
// after every action.
func TestRandomGames_KeepInvariants(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		e := NewEngineWithDefaults()
		e.SetDice(rand.New(rand.NewPCG(seed, seed*31)))

		for step := 0; step < 3000 && !e.IsGameOver(); step++ {
			state := e.GetState()
			current, ok := state.Player(state.CurrentPlayer)
			require.True(t, ok)

			var err error
			switch {
			case state.PendingPurchase != nil:
				space, _ := board.Default().Get(*state.PendingPurchase)
				if current.Cash-space.Price >= 300000 {
					err = e.BuyProperty()
				} else {
					err = e.DeclinePurchase()
				}
			case state.PendingRent != nil:
				err = e.PayRent()
			case state.PendingTax != nil:
				err = e.PayTax()
			case !state.HasRolled && !current.Eliminated:
				_, err = e.Roll()
			default:
				err = e.EndTurn()
			}
			require.NoError(t, err, "seed %d step %d", seed, step)

			assertInvariants(t, e.GetState())
		}
	}
}

func assertInvariants(t *testing.T, state *GameState) {
	t.Helper()

	pending := 0
	for _, set := range []bool{state.PendingPurchase != nil, state.PendingRent != nil, state.PendingTax != nil} {
		if set {
			pending++
		}
	}
	require.LessOrEqual(t, pending, 1, "pending decisions must be exclusive")

	for _, p := range state.Players {
		require.GreaterOrEqual(t, p.Position, 0)
		require.Less(t, p.Position, board.SpaceCount)
		require.GreaterOrEqual(t, p.Cash, 0)
	}

	seen := make(map[int]bool)
	for _, o := range state.Ownerships {
		require.False(t, seen[o.PropertyID], "space %d owned twice", o.PropertyID)
		seen[o.PropertyID] = true
		space, ok := board.Default().Get(o.PropertyID)
		require.True(t, ok)
		require.True(t, space.Purchasable())
	}

	if state.GameEnded {
		require.NotNil(t, state.Winner)
		require.Len(t, state.ActivePlayers(), 1)
	} else {
		require.Nil(t, state.Winner)
	}
}
