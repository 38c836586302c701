// Package service provides the business logic layer for Monopolio Paisa.
//
// The service package implements:
//   - Multi-session game management
//   - Configuration management and loading
//   - Turn actions (roll, buy, decline, pay rent, pay tax, end turn)
//   - Game log paging and space descriptions
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine, providing session isolation, configuration management, and
// business logic orchestration. Each session maintains its own game engine
// instance with independent state. Mutations are serialized by the service and
// every returned GameState is a copy.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr, service.WithLogger(logger))
//
//	// Create a new session
//	sessionInfo, err := gameService.CreateSession(ctx, "medellin")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Take a turn
//	result, err := gameService.Roll(ctx, sessionInfo.ID)
//
// Errors:
//
// Rule violations come back wrapping the engine sentinels (engine.ErrNotRolled,
// engine.ErrPendingDecision, ...). Lookups fail with ErrSessionNotFound,
// ErrConfigNotFound or ErrSpaceNotFound.
package service
