// Package config provides configuration management for Monopolio Paisa.
//
// The config package handles:
//   - Loading game configurations from JSON files
//   - Configuration validation through engine.ValidateGameConfig
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Game configurations are stored as JSON files in the configs directory.
// Each configuration defines:
//   - The player roster (name, color, token) in seating order
//   - The starting cash of every player
//   - Log message templates for game events
//
// Available Configurations:
//   - medellin: the classic four player game (default)
//   - duelo: a two player game with less starting cash
//
// Usage:
//
//	manager, err := config.NewManager("configs", config.WithLogger(logger))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load specific configuration
//	gameConfig, err := manager.LoadConfig("duelo")
//
//	// Get default configuration
//	defaultConfig := manager.GetDefault()
//
//	// List available configurations
//	configs, err := manager.ListConfigs()
//
// When no medellin.json exists the first valid file becomes the default,
// and an empty directory falls back to engine.DefaultConfig.
package config
