package service

import (
	"context"
	"time"

	"github.com/wricardo/mcp-training/seabattle/game/session"
)

// GameService defines all game-related operations. Command methods return
// the events to deliver; a non-nil error classifies why a command had no or
// only a partial effect.
type GameService interface {
	// Commands
	CreateGame(ctx context.Context, player session.PlayerID) ([]Delivery, error)
	JoinGame(ctx context.Context, player session.PlayerID, roomCode string) ([]Delivery, error)
	PlayerReady(ctx context.Context, player session.PlayerID, roomCode string, rows [][]int) ([]Delivery, error)
	Shoot(ctx context.Context, player session.PlayerID, roomCode string, x, y int) ([]Delivery, error)
	LeaveGame(ctx context.Context, player session.PlayerID, roomCode string) ([]Delivery, error)
	Disconnect(ctx context.Context, player session.PlayerID) ([]Delivery, error)

	// Housekeeping
	ExpireIdle(ctx context.Context, maxAge time.Duration) []Delivery

	// Inspection
	ListRooms(ctx context.Context) ([]session.Snapshot, error)
	GetRoom(ctx context.Context, roomCode string) (*session.Snapshot, error)
	Stats(ctx context.Context) (*Stats, error)
}

// RoomStore defines room storage operations
type RoomStore interface {
	Create(creator session.PlayerID) (*session.Session, error)
	Join(code string, id session.PlayerID) (*session.Session, error)
	Get(code string) (*session.Session, error)
	RoomOf(id session.PlayerID) (*session.Session, bool)
	Remove(code string) (*session.Session, error)
	List() []*session.Session
	Count() int
	Members() int
	ExpireIdle(maxAge time.Duration) []*session.Session
	Now() time.Time
}
