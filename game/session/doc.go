// Package session provides room management for two-player matches.
//
// The session package implements:
//   - The per-room state machine (awaiting opponent, setup, battle, finished)
//   - Turn arbitration and shot resolution against the opponent's board
//   - A registry mapping room codes to rooms and players to their room
//   - 6-digit room code generation
//
// Core Types:
//
// Session is one room. It seats the creator and the joiner in two explicit
// slots, so finding the opponent is a total lookup rather than a search.
// Registry is the process-wide table of live rooms. Removing a room drops
// every membership that points at it in the same critical section.
//
// Concurrency:
//
// Registry is safe for concurrent use. Session is not: every mutation of a
// room must be serialized by the caller. The service layer does this with a
// single lock, and the WebSocket hub feeds it from one goroutine.
//
// Usage:
//
//	reg := session.NewRegistry()
//
//	room, err := reg.Create("alice")
//	if err != nil {
//		log.Fatal(err)
//	}
//	_, err = reg.Join(room.Code, "bob")
//
//	started, err := room.SubmitBoard("alice", aliceBoard, time.Now())
//	started, err = room.SubmitBoard("bob", bobBoard, time.Now())
//
//	outcome, err := room.Shoot("alice", 3, 3, time.Now())
//	if outcome.GameOver {
//		reg.Remove(room.Code)
//	}
package session
