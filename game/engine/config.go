package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// PlayerSetup describes one seat in a configured game
type PlayerSetup struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Token string `json:"token"`
}

// Messages holds the log templates of a game configuration.
// Empty templates fall back to the built-in Spanish defaults.
type Messages struct {
	Welcome     string `json:"welcome"`
	Rolled      string `json:"rolled"`       // name, die 1, die 2, total
	Doubles     string `json:"doubles"`      // name
	PassedStart string `json:"passed_start"` // name, bonus
	Landed      string `json:"landed"`       // name, space
	Purchased   string `json:"purchased"`    // name, space, price
	Declined    string `json:"declined"`     // name, space
	RentPaid    string `json:"rent_paid"`    // name, amount, owner, space
	TaxPaid     string `json:"tax_paid"`     // name, amount, space
	Eliminated  string `json:"eliminated"`   // name
	TurnStarted string `json:"turn_started"` // name
	Victory     string `json:"victory"`      // name
}

// GameConfig represents a game configuration loaded from JSON
type GameConfig struct {
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	StartingCash int           `json:"starting_cash"`
	Players      []PlayerSetup `json:"players"`
	Messages     Messages      `json:"messages"`
}

var defaultMessages = Messages{
	Welcome:     "¡Bienvenidos a Monopolio Paisa! Arranca %s.",
	Rolled:      "%s sacó %d y %d (%d)",
	Doubles:     "¡%s sacó pares y vuelve a tirar!",
	PassedStart: "%s pasó por la salida y cobró $%d",
	Landed:      "%s cayó en %s",
	Purchased:   "%s compró %s por $%d",
	Declined:    "%s no compró %s",
	RentPaid:    "%s pagó $%d de arriendo a %s por %s",
	TaxPaid:     "%s pagó $%d de %s",
	Eliminated:  "%s quedó en la quiebra",
	TurnStarted: "Turno de %s",
	Victory:     "¡%s ganó el Monopolio Paisa!",
}

// withDefaults returns the messages with every empty template filled in
func (m Messages) withDefaults() Messages {
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&m.Welcome, defaultMessages.Welcome)
	fill(&m.Rolled, defaultMessages.Rolled)
	fill(&m.Doubles, defaultMessages.Doubles)
	fill(&m.PassedStart, defaultMessages.PassedStart)
	fill(&m.Landed, defaultMessages.Landed)
	fill(&m.Purchased, defaultMessages.Purchased)
	fill(&m.Declined, defaultMessages.Declined)
	fill(&m.RentPaid, defaultMessages.RentPaid)
	fill(&m.TaxPaid, defaultMessages.TaxPaid)
	fill(&m.Eliminated, defaultMessages.Eliminated)
	fill(&m.TurnStarted, defaultMessages.TurnStarted)
	fill(&m.Victory, defaultMessages.Victory)
	return m
}

// DefaultConfig returns the classic four-player Medellín game
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:         "Monopolio Paisa",
		Description:  "Classic four player game on the Medellín board",
		StartingCash: 1500000,
		Players: []PlayerSetup{
			{Name: "Andres", Color: "#ff4444", Token: "🚗"},
			{Name: "El Brayan", Color: "#4444ff", Token: "🎩"},
			{Name: "Petro", Color: "#44ff44", Token: "🐀"},
			{Name: "Uribe", Color: "#ff8800", Token: "⛵"},
		},
		Messages: defaultMessages,
	}
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	if config.StartingCash < MinStartingCash || config.StartingCash > MaxStartingCash {
		return fmt.Errorf("config validation: starting_cash must be between %d and %d, got %d",
			MinStartingCash, MaxStartingCash, config.StartingCash)
	}

	// Validate roster
	if len(config.Players) < MinPlayers || len(config.Players) > MaxPlayers {
		return fmt.Errorf("config validation: players must have between %d and %d entries, got %d",
			MinPlayers, MaxPlayers, len(config.Players))
	}
	names := make(map[string]bool, len(config.Players))
	for i, p := range config.Players {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return fmt.Errorf("config validation: player %d has no name", i+1)
		}
		key := strings.ToLower(name)
		if names[key] {
			return fmt.Errorf("config validation: duplicate player name %q", p.Name)
		}
		names[key] = true
		if p.Color == "" {
			return fmt.Errorf("config validation: player %q has no color", p.Name)
		}
		if p.Token == "" {
			return fmt.Errorf("config validation: player %q has no token", p.Name)
		}
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Victory == "" {
		return fmt.Errorf("config validation: messages.victory is required")
	}
	if !strings.Contains(config.Messages.Victory, "%s") {
		return fmt.Errorf("config validation: messages.victory must contain %%s for the winner's name")
	}

	return nil
}

// LoadGameConfig loads and validates a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// InitGameStateFromConfig creates a new game state using the provided configuration
func InitGameStateFromConfig(config *GameConfig) *GameState {
	if config == nil {
		config = DefaultConfig()
	}

	players := make([]Player, len(config.Players))
	for i, p := range config.Players {
		players[i] = Player{
			ID:       i + 1,
			Name:     p.Name,
			Position: 0,
			Color:    p.Color,
			Token:    p.Token,
			Cash:     config.StartingCash,
		}
	}

	state := &GameState{
		ConfigName: config.Name,
		Players:    players,
		LastRoll:   nil,
		Log:        []string{},
		Ownerships: []Ownership{},
		TurnNumber: 1,
	}
	if len(players) > 0 {
		state.CurrentPlayer = players[0].ID
		state.Message = formatMessage(config.Messages.withDefaults().Welcome, players[0].Name)
		state.Log = append(state.Log, state.Message)
	}
	return state
}

// formatMessage fills a template, tolerating templates that use fewer verbs
// than there are arguments
func formatMessage(template string, args ...any) string {
	n := strings.Count(template, "%") - 2*strings.Count(template, "%%")
	if n < 0 {
		n = 0
	}
	if n < len(args) {
		args = args[:n]
	}
	return fmt.Sprintf(template, args...)
}
