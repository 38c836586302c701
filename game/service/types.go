package service

import (
	"time"

	"github.com/wricardo/monopolio-paisa/game/board"
	"github.com/wricardo/monopolio-paisa/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
	Standings      []engine.Standing  `json:"standings,omitempty"`
}

// ActionResult contains the result of a turn action
type ActionResult struct {
	Action    string            `json:"action"`
	Success   bool              `json:"success"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events"`

	// Roll is set for roll actions only
	Roll *engine.DiceRoll `json:"roll,omitempty"`

	// Player is the acting player after the action, Space is where they stand
	Player *engine.Player `json:"player,omitempty"`
	Space  *board.Space   `json:"space,omitempty"`
}

// GameEvent is one game log entry produced by an action
type GameEvent struct {
	Type      string    `json:"type"` // the action that produced it: "roll", "buy", "pay_rent", ...
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// LogOptions configures game log retrieval
type LogOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// LogEntry is a game log line with its position in the full log
type LogEntry struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// LogResponse contains a page of the game log
type LogResponse struct {
	Entries     []LogEntry `json:"entries"`
	Total       int        `json:"total"`
	Page        int        `json:"page"`
	PageSize    int        `json:"page_size"`
	TotalPages  int        `json:"total_pages"`
	HasNext     bool       `json:"has_next"`
	HasPrevious bool       `json:"has_previous"`
}

// SpaceInfo describes a board space within a running game
type SpaceInfo struct {
	Space     board.Space     `json:"space"`
	Owner     *engine.Player  `json:"owner,omitempty"`
	Rent      int             `json:"rent"`
	Buyable   bool            `json:"buyable"`
	Occupants []engine.Player `json:"occupants"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename     string `json:"filename"`
	ConfigID     string `json:"config_id"` // The identifier to use for session creation
	Name         string `json:"name"`      // Display name
	Description  string `json:"description"`
	Players      int    `json:"players"`
	StartingCash int    `json:"starting_cash"`
}
