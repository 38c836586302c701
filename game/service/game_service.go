package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/monopolio-paisa/game/board"
	"github.com/wricardo/monopolio-paisa/game/engine"
)

// Lookup failures shared by the session and config layers
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrSpaceNotFound   = errors.New("space not found")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Turn Actions
	Roll(ctx context.Context, sessionID string) (*ActionResult, error)
	BuyProperty(ctx context.Context, sessionID string) (*ActionResult, error)
	DeclinePurchase(ctx context.Context, sessionID string) (*ActionResult, error)
	PayRent(ctx context.Context, sessionID string) (*ActionResult, error)
	PayTax(ctx context.Context, sessionID string) (*ActionResult, error)
	EndTurn(ctx context.Context, sessionID string) (*ActionResult, error)
	SetAnimating(ctx context.Context, sessionID string, active bool, playerID int) (*engine.GameState, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetGameLog(ctx context.Context, sessionID string, opts LogOptions) (*LogResponse, error)
	DescribeSpace(ctx context.Context, sessionID string, spaceID int) (*SpaceInfo, error)
	GetBoard(ctx context.Context) []board.Space

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
