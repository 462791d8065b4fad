package service

import (
	"github.com/wricardo/mcp-training/seabattle/game/board"
	"github.com/wricardo/mcp-training/seabattle/game/session"
)

// Outbound event names.
const (
	EventConnected    = "connected"
	EventGameCreated  = "gameCreated"
	EventPlayerJoined = "playerJoined"
	EventError        = "error"
	EventGameStart    = "gameStart"
	EventShotResult   = "shotResult"
	EventShipSunk     = "shipSunk"
	EventGameOver     = "gameOver"
)

// Game over reasons.
const (
	ReasonVictory    = "victory"
	ReasonDisconnect = "disconnect"
	ReasonTimeout    = "timeout"
)

// User-visible error messages.
const (
	MsgRoomNotFoundOrFull = "room not found or full"
	MsgAlreadyInRoom      = "already in a room"
	MsgInvalidBoard       = "invalid board"
	MsgNotInSetup         = "room is not accepting boards"
	MsgAlreadyReady       = "board already submitted"
	MsgServerBusy         = "could not create room, try again"
)

// Event is a message sent to clients.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Delivery addresses an event to one or more participants.
type Delivery struct {
	To    []session.PlayerID
	Event Event
}

// ConnectedPayload tells a client its own identity.
type ConnectedPayload struct {
	ID session.PlayerID `json:"id"`
}

// GameCreatedPayload carries the code of a freshly created room.
type GameCreatedPayload struct {
	RoomCode string `json:"roomCode"`
}

// PlayerJoinedPayload announces the second participant.
type PlayerJoinedPayload struct {
	RoomCode string             `json:"roomCode"`
	Players  []session.PlayerID `json:"players"`
}

// ErrorPayload is a user-visible error for the requesting connection only.
type ErrorPayload struct {
	Message string `json:"message"`
}

// GameStartPayload names who shoots first.
type GameStartPayload struct {
	Turn session.PlayerID `json:"turn"`
}

// ShotResultPayload reports a resolved shot.
type ShotResultPayload struct {
	Shooter  session.PlayerID `json:"shooter"`
	X        int              `json:"x"`
	Y        int              `json:"y"`
	Hit      bool             `json:"hit"`
	NextTurn session.PlayerID `json:"nextTurn"`
}

// ShipSunkPayload reports a destroyed ship and the halo closed around it.
type ShipSunkPayload struct {
	Victim         session.PlayerID `json:"victim"`
	ShipCoords     []board.Coord    `json:"shipCoords"`
	SurroundCoords []board.Coord    `json:"surroundCoords"`
}

// GameOverPayload ends the match. Winner is empty for expired rooms.
type GameOverPayload struct {
	Winner session.PlayerID `json:"winner"`
	Reason string           `json:"reason"`
}

// Stats summarizes the live rooms.
type Stats struct {
	Rooms   int                   `json:"rooms"`
	Players int                   `json:"players"`
	ByPhase map[session.Phase]int `json:"by_phase"`
}
