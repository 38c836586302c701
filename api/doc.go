// Package api provides HTTP REST API handlers for Monopolio Paisa.
//
// The api package implements:
//   - RESTful endpoints for sessions and turn actions
//   - Game log paging and space inspection
//   - Configuration listing and creation
//   - WebSocket upgrade handling
//   - Static file serving
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "medellin"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=n)
//   - GET /api/sessions/{id} - Get session details with standings
//   - DELETE /api/sessions/{id} - Delete a session
//
// Turn Actions (POST, no body):
//   - /api/sessions/{id}/roll
//   - /api/sessions/{id}/buy
//   - /api/sessions/{id}/decline
//   - /api/sessions/{id}/pay-rent
//   - /api/sessions/{id}/pay-tax
//   - /api/sessions/{id}/end-turn
//   - /api/sessions/{id}/reset
//   - /api/sessions/{id}/animation ({"active": true, "player_id": 1})
//
// Game State:
//   - GET /api/sessions/{id}/state - Current game state
//   - GET /api/sessions/{id}/log - Game log (?page=1&limit=20&order=desc)
//   - GET /api/sessions/{id}/spaces/{spaceId} - Owner, rent and occupants of a space
//   - GET /api/board - The 40 board spaces
//
// Configuration:
//   - GET /api/configs - List available configurations
//   - POST /api/configs - Save a configuration
//   - GET /api/configs/{name} - Get one configuration
//
// Error Handling:
//
// Errors are returned as JSON with an HTTP status derived from the error:
// 404 for unknown sessions, configs and spaces, 409 for rule violations,
// 400 for malformed input.
//
//	{"error": "buy: insufficient funds: ..."}
//
// Usage:
//
//	server := api.NewServer(gameService, hub, api.WithLogger(logger))
//	http.ListenAndServe(":8080", server)
package api
