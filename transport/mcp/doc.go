// Package mcp exposes Monopolio Paisa to AI agents over the Model Context
// Protocol.
//
// Client is a thin proxy: every tool call becomes a request against the REST
// API at the configured base URL and the JSON response is rendered as text.
//
// MCP Tools:
//   - create_session, list_sessions, get_session: session management
//   - game_state, game_log, describe_space: inspection
//   - roll_dice, buy_property, decline_purchase, pay_rent, pay_tax, end_turn: turn actions
//   - reset_game: restart a session
//   - list_configs, game_instructions: setup and rules
//
// Transport Modes:
//
// The server binary serves the tools over stdio (stdio-mcp mode) or through
// POST /mcp on the HTTP server.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080", mcp.WithLogger(logger))
//	server.ServeStdio(client.GetMCPServer())
package mcp
