package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/seabattle/game/board"
	"github.com/wricardo/mcp-training/seabattle/game/session"
)

// gameServiceImpl implements the GameService interface. A single lock
// serializes every command so each one runs to completion before the next.
type gameServiceImpl struct {
	rooms RoomStore
	log   *zap.Logger
	mu    sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(rooms RoomStore, log *zap.Logger) GameService {
	if log == nil {
		log = zap.NewNop()
	}
	return &gameServiceImpl{
		rooms: rooms,
		log:   log,
	}
}

func to(ids ...session.PlayerID) []session.PlayerID {
	return ids
}

func errorTo(player session.PlayerID, message string) Delivery {
	return Delivery{
		To:    to(player),
		Event: Event{Type: EventError, Payload: ErrorPayload{Message: message}},
	}
}

// CreateGame opens a room with the caller as creator
func (s *gameServiceImpl) CreateGame(ctx context.Context, player session.PlayerID) ([]Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.rooms.Create(player)
	if err != nil {
		s.log.Debug("create rejected", zap.String("player", string(player)), zap.Error(err))
		if errors.Is(err, session.ErrAlreadyInRoom) {
			return []Delivery{errorTo(player, MsgAlreadyInRoom)}, err
		}
		return []Delivery{errorTo(player, MsgServerBusy)}, err
	}

	s.log.Info("room created", zap.String("room", sess.Code), zap.String("creator", string(player)))
	return []Delivery{{
		To:    to(player),
		Event: Event{Type: EventGameCreated, Payload: GameCreatedPayload{RoomCode: sess.Code}},
	}}, nil
}

// JoinGame seats the caller as the second participant
func (s *gameServiceImpl) JoinGame(ctx context.Context, player session.PlayerID, roomCode string) ([]Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.rooms.Join(roomCode, player)
	if err != nil {
		s.log.Debug("join rejected",
			zap.String("room", roomCode), zap.String("player", string(player)), zap.Error(err))
		if errors.Is(err, session.ErrAlreadyInRoom) {
			return []Delivery{errorTo(player, MsgAlreadyInRoom)}, err
		}
		return []Delivery{errorTo(player, MsgRoomNotFoundOrFull)}, err
	}

	s.log.Info("player joined", zap.String("room", sess.Code), zap.String("player", string(player)))
	players := sess.Players()
	return []Delivery{{
		To:    players,
		Event: Event{Type: EventPlayerJoined, Payload: PlayerJoinedPayload{RoomCode: sess.Code, Players: players}},
	}}, nil
}

// PlayerReady stores the caller's fleet and starts the battle once both
// fleets are in
func (s *gameServiceImpl) PlayerReady(ctx context.Context, player session.PlayerID, roomCode string, rows [][]int) ([]Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.rooms.Get(roomCode)
	if err != nil {
		s.log.Debug("ready for stale room", zap.String("room", roomCode), zap.String("player", string(player)))
		return nil, err
	}
	// Phase and readiness are checked before the board is even decoded.
	if err := sess.CanSubmit(player); err != nil {
		return readyRejected(player, err)
	}

	b, err := board.FromRows(rows)
	if err != nil {
		s.log.Warn("malformed board", zap.String("room", roomCode), zap.String("player", string(player)), zap.Error(err))
		return []Delivery{errorTo(player, fmt.Sprintf("%s: %v", MsgInvalidBoard, err))}, err
	}

	started, err := sess.SubmitBoard(player, b, s.rooms.Now())
	if errors.Is(err, board.ErrInvalidPlacement) {
		s.log.Info("fleet rejected", zap.String("room", roomCode), zap.String("player", string(player)), zap.Error(err))
		return []Delivery{errorTo(player, fmt.Sprintf("%s: %v", MsgInvalidBoard, err))}, err
	}
	if err != nil {
		return readyRejected(player, err)
	}

	s.log.Info("fleet accepted", zap.String("room", roomCode), zap.String("player", string(player)))
	if !started {
		return nil, nil
	}

	s.log.Info("battle started", zap.String("room", roomCode), zap.String("turn", string(sess.Turn())))
	return []Delivery{{
		To:    sess.Players(),
		Event: Event{Type: EventGameStart, Payload: GameStartPayload{Turn: sess.Turn()}},
	}}, nil
}

// Shoot resolves the caller's shot. Out-of-turn, duplicate and stale shots
// produce no events.
func (s *gameServiceImpl) Shoot(ctx context.Context, player session.PlayerID, roomCode string, x, y int) ([]Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.rooms.Get(roomCode)
	if err != nil {
		s.log.Debug("shot at stale room", zap.String("room", roomCode), zap.String("player", string(player)))
		return nil, err
	}

	out, err := sess.Shoot(player, x, y, s.rooms.Now())
	if err != nil {
		s.log.Debug("shot ignored",
			zap.String("room", roomCode), zap.String("player", string(player)),
			zap.Int("x", x), zap.Int("y", y), zap.Error(err))
		return nil, err
	}

	players := sess.Players()
	deliveries := []Delivery{{
		To: players,
		Event: Event{Type: EventShotResult, Payload: ShotResultPayload{
			Shooter:  out.Shooter,
			X:        out.Target.X,
			Y:        out.Target.Y,
			Hit:      out.Hit,
			NextTurn: out.NextTurn,
		}},
	}}

	if out.Sunk.IsSunk {
		s.log.Info("ship sunk",
			zap.String("room", roomCode), zap.String("victim", string(out.Victim)), zap.Int("length", len(out.Sunk.ShipCells)))
		deliveries = append(deliveries, Delivery{
			To: players,
			Event: Event{Type: EventShipSunk, Payload: ShipSunkPayload{
				Victim:         out.Victim,
				ShipCoords:     out.Sunk.ShipCells,
				SurroundCoords: out.Sunk.HaloCells,
			}},
		})
	}

	if out.GameOver {
		s.removeRoom(sess.Code)
		s.log.Info("game over", zap.String("room", roomCode), zap.String("winner", string(out.Winner)), zap.String("reason", ReasonVictory))
		deliveries = append(deliveries, gameOver(players, out.Winner, ReasonVictory))
	}
	return deliveries, nil
}

// LeaveGame forfeits the match for the caller
func (s *gameServiceImpl) LeaveGame(ctx context.Context, player session.PlayerID, roomCode string) ([]Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.rooms.Get(roomCode)
	if err != nil {
		return nil, err
	}
	return s.forfeitLocked(sess, player)
}

// Disconnect handles a dropped connection exactly like leaving its room
func (s *gameServiceImpl) Disconnect(ctx context.Context, player session.PlayerID) ([]Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.rooms.RoomOf(player)
	if !ok {
		return nil, nil
	}
	return s.forfeitLocked(sess, player)
}

func (s *gameServiceImpl) forfeitLocked(sess *session.Session, player session.PlayerID) ([]Delivery, error) {
	players := sess.Players()
	winner, hasWinner, err := sess.Leave(player, s.rooms.Now())
	if err != nil {
		return nil, err
	}
	s.removeRoom(sess.Code)

	if !hasWinner {
		s.log.Info("room closed", zap.String("room", sess.Code), zap.String("player", string(player)))
		return nil, nil
	}
	s.log.Info("game over",
		zap.String("room", sess.Code), zap.String("winner", string(winner)),
		zap.String("leaver", string(player)), zap.String("reason", ReasonDisconnect))
	return []Delivery{gameOver(players, winner, ReasonDisconnect)}, nil
}

// ExpireIdle tears down rooms idle for longer than maxAge
func (s *gameServiceImpl) ExpireIdle(ctx context.Context, maxAge time.Duration) []Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deliveries []Delivery
	for _, sess := range s.rooms.ExpireIdle(maxAge) {
		s.log.Info("room expired", zap.String("room", sess.Code), zap.Duration("max_idle", maxAge))
		deliveries = append(deliveries, gameOver(sess.Players(), "", ReasonTimeout))
	}
	return deliveries
}

func (s *gameServiceImpl) removeRoom(code string) {
	if _, err := s.rooms.Remove(code); err != nil {
		s.log.Debug("room already removed", zap.String("room", code), zap.Error(err))
	}
}

// readyRejected maps a refused submission onto the reply the sender sees.
func readyRejected(player session.PlayerID, err error) ([]Delivery, error) {
	switch {
	case errors.Is(err, session.ErrWrongPhase):
		return []Delivery{errorTo(player, MsgNotInSetup)}, err
	case errors.Is(err, session.ErrAlreadyReady):
		return []Delivery{errorTo(player, MsgAlreadyReady)}, err
	}
	return nil, err
}

func gameOver(players []session.PlayerID, winner session.PlayerID, reason string) Delivery {
	return Delivery{
		To:    players,
		Event: Event{Type: EventGameOver, Payload: GameOverPayload{Winner: winner, Reason: reason}},
	}
}

// ListRooms returns snapshots of all live rooms
func (s *gameServiceImpl) ListRooms(ctx context.Context) ([]session.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := s.rooms.List()
	result := make([]session.Snapshot, 0, len(rooms))
	for _, sess := range rooms {
		result = append(result, sess.Snapshot(false))
	}
	return result, nil
}

// GetRoom returns one room including its masked boards
func (s *gameServiceImpl) GetRoom(ctx context.Context, roomCode string) (*session.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.rooms.Get(roomCode)
	if err != nil {
		return nil, err
	}
	snap := sess.Snapshot(true)
	return &snap, nil
}

// Stats counts rooms per phase
func (s *gameServiceImpl) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{
		Rooms:   s.rooms.Count(),
		Players: s.rooms.Members(),
		ByPhase: make(map[session.Phase]int),
	}
	for _, sess := range s.rooms.List() {
		stats.ByPhase[sess.Phase()]++
	}
	return stats, nil
}
