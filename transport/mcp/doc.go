// Package mcp exposes the battleship server to AI agents over the Model
// Context Protocol.
//
// The Client is a thin proxy: inspection tools call the REST API over HTTP,
// while board tools run locally.
//
// MCP Tools:
//   - list_rooms: List live rooms, optionally filtered by phase
//   - get_room: One room with masked boards
//   - server_stats: Room counts per phase and connected clients
//   - game_rules: Fleet, placement and turn rules
//   - validate_board: Check a fleet layout
//   - random_board: Generate a valid fleet layout
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: the Client is an http.Handler answering POSTed JSON-RPC messages
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	apiServer.Mount("/mcp", client)
package mcp
