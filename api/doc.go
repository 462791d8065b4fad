// Package api provides the HTTP surface of the battleship server.
//
// The api package implements:
//   - Read-only room inspection endpoints
//   - Server statistics
//   - The WebSocket upgrade route
//
// Endpoints:
//
//   - GET /api/health - Liveness probe
//   - GET /api/rooms - List live rooms (query: phase, sort=created|activity, order=asc|desc, limit)
//   - GET /api/rooms/{code} - One room including masked boards
//   - GET /api/stats - Room counts per phase and connected clients
//   - GET /ws - WebSocket endpoint for players
//
// All game mutations travel over the WebSocket; the REST surface never
// changes a room. Boards returned by the API never reveal ship cells that
// have not been hit.
//
// Errors are returned as JSON with an appropriate HTTP status code:
//
//	{"error": "room not found"}
package api
