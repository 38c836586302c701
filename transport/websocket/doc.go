// Package websocket pushes game state updates to browsers watching a session.
//
// A single Hub goroutine owns the client registry. Clients connect to
// /ws?session=<id>, receive a "connected" event carrying their client id and
// then a "state_update" event with the full GameState after every action on
// that session. Inbound frames are ignored apart from keeping the
// connection alive.
//
// Usage:
//
//	hub := websocket.NewHub(websocket.WithLogger(logger))
//	go hub.Run(ctx)
//
//	hub.ServeWS(w, r, sessionID)
//	hub.BroadcastToSession(sessionID, state)
//
// Slow clients whose send buffer fills up are dropped. Cancelling the
// context passed to Run closes every connection.
package websocket
