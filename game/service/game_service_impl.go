package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/monopolio-paisa/game/board"
	"github.com/wricardo/monopolio-paisa/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   *zap.Logger
	mu       sync.RWMutex
}

// Option customizes the game service
type Option func(*gameServiceImpl)

// WithLogger sets the logger used for persistence warnings
func WithLogger(logger *zap.Logger) Option {
	return func(s *gameServiceImpl) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// getSession looks a session up and marks it as accessed
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	state := sess.Engine.GetState().Clone()
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      state,
		GameConfig:     sess.Config,
		Standings:      engine.Standings(state, sess.Engine.GetBoard()),
	}
}

// save persists a session, logging instead of failing the request
func (s *gameServiceImpl) save(sessionID, action string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.logger.Warn("failed to persist session",
			zap.String("session", sessionID),
			zap.String("action", action),
			zap.Error(err))
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load configuration
	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s', available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s', use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	return s.sessionInfo(session, configID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return s.sessionInfo(session, s.getConfigID(session.Config.Name)), nil
}

// ListSessions returns all active sessions, oldest first
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, s.getConfigID(sess.Config.Name)))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sessions.Get(sessionID); err != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return s.sessions.Delete(sessionID)
}

// Roll throws the dice for the current player
func (s *gameServiceImpl) Roll(ctx context.Context, sessionID string) (*ActionResult, error) {
	var roll engine.DiceRoll
	result, err := s.runAction(sessionID, "roll", func(e *engine.GameEngine) error {
		var err error
		roll, err = e.Roll()
		return err
	})
	if err != nil {
		return nil, err
	}
	result.Roll = &roll
	return result, nil
}

// BuyProperty buys the pending space for the current player
func (s *gameServiceImpl) BuyProperty(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.runAction(sessionID, "buy", (*engine.GameEngine).BuyProperty)
}

// DeclinePurchase leaves the pending space unowned
func (s *gameServiceImpl) DeclinePurchase(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.runAction(sessionID, "decline", (*engine.GameEngine).DeclinePurchase)
}

// PayRent settles the pending rent
func (s *gameServiceImpl) PayRent(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.runAction(sessionID, "pay_rent", (*engine.GameEngine).PayRent)
}

// PayTax settles the pending tax
func (s *gameServiceImpl) PayTax(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.runAction(sessionID, "pay_tax", (*engine.GameEngine).PayTax)
}

// EndTurn passes the turn to the next player
func (s *gameServiceImpl) EndTurn(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.runAction(sessionID, "end_turn", (*engine.GameEngine).EndTurn)
}

// runAction applies one engine action to a session and reports what changed
func (s *gameServiceImpl) runAction(sessionID, action string, fn func(*engine.GameEngine) error) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	before := sess.Engine.GetState()
	actorID := before.CurrentPlayer
	logStart := len(before.Log)

	if err := fn(sess.Engine); err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	state := sess.Engine.GetState().Clone()
	result := &ActionResult{
		Action:    action,
		Success:   true,
		GameState: state,
		Message:   state.Message,
		Events:    newEvents(action, state.Log, logStart),
	}
	if p, ok := state.Player(actorID); ok {
		result.Player = &p
		if space, ok := sess.Engine.GetBoard().Get(p.Position); ok {
			result.Space = &space
		}
	}

	s.save(sessionID, action)
	return result, nil
}

// newEvents turns the log lines appended since start into events
func newEvents(action string, log []string, start int) []GameEvent {
	events := []GameEvent{}
	if start < 0 || start > len(log) {
		start = 0
	}
	now := time.Now()
	for _, line := range log[start:] {
		events = append(events, GameEvent{Type: action, Message: line, Timestamp: now})
	}
	return events
}

// SetAnimating raises or clears the animation flags of a session
func (s *gameServiceImpl) SetAnimating(ctx context.Context, sessionID string, active bool, playerID int) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if active {
		if err := sess.Engine.StartAnimation(playerID); err != nil {
			return nil, err
		}
	} else {
		sess.Engine.FinishAnimation()
	}

	s.save(sessionID, "animation")
	return sess.Engine.GetState().Clone(), nil
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.Reset().Clone()
	s.save(sessionID, "reset")
	return state, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState().Clone(), nil
}

// GetGameLog returns a page of the game log
func (s *gameServiceImpl) GetGameLog(ctx context.Context, sessionID string, opts LogOptions) (*LogResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	log := sess.Engine.GetState().Log
	total := len(log)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	entries := []LogEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			entries = append(entries, LogEntry{Index: i, Message: log[i]})
		}
	} else if start < total {
		for i := start; i < end; i++ {
			entries = append(entries, LogEntry{Index: i, Message: log[i]})
		}
	}

	return &LogResponse{
		Entries:     entries,
		Total:       total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// DescribeSpace reports a space together with its ownership in a session
func (s *gameServiceImpl) DescribeSpace(ctx context.Context, sessionID string, spaceID int) (*SpaceInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	b := sess.Engine.GetBoard()
	space, ok := b.Get(spaceID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrSpaceNotFound, spaceID)
	}

	state := sess.Engine.GetState()
	info := &SpaceInfo{
		Space:     space,
		Rent:      engine.CalculateRent(spaceID, state.Ownerships, b),
		Buyable:   engine.IsPropertyBuyable(spaceID, state.Ownerships, b),
		Occupants: []engine.Player{},
	}
	if ownerID, owned := engine.GetPropertyOwner(spaceID, state.Ownerships); owned {
		if owner, ok := state.Player(ownerID); ok {
			info.Owner = &owner
		}
	}
	for _, p := range state.Players {
		if p.Position == spaceID && !p.Eliminated {
			info.Occupants = append(info.Occupants, p)
		}
	}
	return info, nil
}

// GetBoard returns every space of the board in ring order
func (s *gameServiceImpl) GetBoard(ctx context.Context) []board.Space {
	return board.Default().Spaces()
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}
