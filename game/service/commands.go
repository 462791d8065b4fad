package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wricardo/mcp-training/seabattle/game/session"
)

var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrMalformedCommand = errors.New("malformed command")
)

// Inbound command names.
const (
	CmdCreateGame  = "createGame"
	CmdJoinGame    = "joinGame"
	CmdPlayerReady = "playerReady"
	CmdShoot       = "shoot"
	CmdLeaveGame   = "leaveGame"
)

// Command is an inbound client frame.
type Command struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinGamePayload struct {
	RoomCode string `json:"roomCode"`
}

type PlayerReadyPayload struct {
	RoomCode string  `json:"roomCode"`
	Board    [][]int `json:"board"`
}

// ShootPayload uses pointers so a missing coordinate is malformed rather
// than a shot at zero.
type ShootPayload struct {
	RoomCode string `json:"roomCode"`
	X        *int   `json:"x"`
	Y        *int   `json:"y"`
}

type LeaveGamePayload struct {
	RoomCode string `json:"roomCode"`
}

// DecodeCommand parses a raw frame into a Command.
func DecodeCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}
	if cmd.Type == "" {
		return Command{}, fmt.Errorf("%w: missing type", ErrMalformedCommand)
	}
	return cmd, nil
}

// Dispatch routes a decoded command to the matching GameService method.
// Unknown or malformed commands answer the sender with an error event.
func Dispatch(ctx context.Context, svc GameService, player session.PlayerID, cmd Command) ([]Delivery, error) {
	switch cmd.Type {
	case CmdCreateGame:
		return svc.CreateGame(ctx, player)

	case CmdJoinGame:
		var p JoinGamePayload
		if err := decodePayload(cmd, &p); err != nil || p.RoomCode == "" {
			return malformed(player, cmd.Type, err)
		}
		return svc.JoinGame(ctx, player, p.RoomCode)

	case CmdPlayerReady:
		var p PlayerReadyPayload
		if err := decodePayload(cmd, &p); err != nil || p.RoomCode == "" {
			return malformed(player, cmd.Type, err)
		}
		return svc.PlayerReady(ctx, player, p.RoomCode, p.Board)

	case CmdShoot:
		var p ShootPayload
		if err := decodePayload(cmd, &p); err != nil || p.RoomCode == "" || p.X == nil || p.Y == nil {
			return malformed(player, cmd.Type, err)
		}
		return svc.Shoot(ctx, player, p.RoomCode, *p.X, *p.Y)

	case CmdLeaveGame:
		var p LeaveGamePayload
		if err := decodePayload(cmd, &p); err != nil || p.RoomCode == "" {
			return malformed(player, cmd.Type, err)
		}
		return svc.LeaveGame(ctx, player, p.RoomCode)
	}

	return []Delivery{errorTo(player, fmt.Sprintf("unknown command: %s", cmd.Type))},
		fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
}

func decodePayload(cmd Command, v any) error {
	if len(cmd.Payload) == 0 {
		return errors.New("missing payload")
	}
	return json.Unmarshal(cmd.Payload, v)
}

func malformed(player session.PlayerID, cmdType string, cause error) ([]Delivery, error) {
	if cause == nil {
		cause = errors.New("missing field")
	}
	return []Delivery{errorTo(player, fmt.Sprintf("malformed %s command", cmdType))},
		fmt.Errorf("%w: %s: %v", ErrMalformedCommand, cmdType, cause)
}

// MalformedFrame builds the error event for a frame that could not be
// decoded at all.
func MalformedFrame(player session.PlayerID) Delivery {
	return errorTo(player, "malformed message")
}
