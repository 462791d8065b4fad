// Package service provides the command layer of the game server.
//
// The service package implements:
//   - The inbound command set: create, join, ready, shoot, leave, disconnect
//   - Addressed outbound events for every command
//   - The error policy: user-visible errors go to the requester only, while
//     out-of-turn, duplicate and stale commands are dropped silently
//   - Read-only room inspection and statistics
//   - Optional expiry of idle rooms
//
// Architecture:
//
// The service sits between the transport layer (WebSocket, REST, MCP) and
// the session package. Transports translate wire frames into method calls
// and deliver the returned Delivery values to the addressed connections.
// The service never talks to the network itself.
//
// Every command method takes the service lock for its whole duration, so a
// command reads, mutates and produces its events before any other command
// can observe the room.
//
// Usage:
//
//	rooms := session.NewRegistry()
//	svc := service.NewGameService(rooms, logger)
//
//	deliveries, err := svc.CreateGame(ctx, "conn-1")
//	for _, d := range deliveries {
//		// send d.Event to every connection in d.To
//	}
package service
