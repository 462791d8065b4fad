// Package bot is an automated player that speaks the WebSocket protocol.
//
// A Bot either creates a room or joins one by code, submits a random legal
// fleet and fires until the match ends. Shots are chosen by Strategy, a
// hunt-and-target search over a checkerboard. The bot is useful for smoke
// testing a deployed server and as an opponent while developing clients:
//
//	b := bot.New(bot.Options{URL: "ws://localhost:8080/ws", RoomCode: "123456"}, log)
//	result, err := b.Play(ctx)
package bot
