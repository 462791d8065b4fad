// Package websocket provides the real-time transport for the battleship server.
//
// The websocket package implements:
//   - One identity per connection, announced with a "connected" event
//   - Decoding of inbound command frames
//   - Delivery of addressed events to the connections they name
//   - Disconnect handling as a forfeit of the connection's room
//   - Optional periodic expiry of idle rooms
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each connection has a reader goroutine that only
// decodes frames and a writer goroutine that drains its send queue. The
// Hub's Run loop is the single place where commands reach the game service,
// so commands and disconnects are applied in the order the hub receives them.
//
// Message Protocol:
//
// Every frame is one JSON object:
//   - Incoming: {"type": "shoot", "payload": {"roomCode": "123456", "x": 3, "y": 7}}
//   - Outgoing: {"type": "shotResult", "payload": {"shooter": "...", "x": 3, "y": 7, "hit": true, "nextTurn": "..."}}
//
// A client whose send queue is full is dropped and treated as disconnected.
//
// Usage:
//
//	hub := websocket.NewHub(gameService, logger, websocket.Options{})
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", hub.ServeWS)
package websocket
