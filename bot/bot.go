package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/seabattle/game/board"
	"github.com/wricardo/mcp-training/seabattle/game/service"
	"github.com/wricardo/mcp-training/seabattle/game/session"
)

const (
	defaultSettle = 50 * time.Millisecond
	defaultRetry  = 2 * time.Second
)

// ErrRejected is returned when the server refuses the bot before the match
// starts, e.g. an unknown room code.
var ErrRejected = errors.New("rejected by server")

// Options configure a Bot.
type Options struct {
	// URL of the WebSocket endpoint, e.g. ws://localhost:8080/ws.
	URL string
	// RoomCode to join. Empty creates a new room.
	RoomCode string
	// Seed for fleet placement and hunting. 0 picks one.
	Seed uint64
	// Settle is how long the bot waits on its turn before firing, so that a
	// shipSunk trailing a shotResult is seen first.
	Settle time.Duration
	// Retry is how long to wait for an answer before firing elsewhere.
	Retry time.Duration
	// OnRoom is called with the room code once the server creates it.
	OnRoom func(code string)
}

// Result summarizes a finished match from the bot's point of view.
type Result struct {
	RoomCode string
	Won      bool
	Winner   session.PlayerID
	Reason   string
	Shots    int
	Hits     int
}

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Bot plays one match over the WebSocket protocol.
type Bot struct {
	opts     Options
	log      *zap.Logger
	rng      *rand.Rand
	strategy *Strategy

	conn    *websocket.Conn
	id      session.PlayerID
	started bool
	myTurn  bool
	pending *board.Coord
	result  Result
}

// New creates a bot. A nil logger discards output.
func New(opts Options, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Seed == 0 {
		opts.Seed = rand.Uint64()
	}
	if opts.Settle <= 0 {
		opts.Settle = defaultSettle
	}
	if opts.Retry <= 0 {
		opts.Retry = defaultRetry
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x5eab))
	return &Bot{
		opts:     opts,
		log:      log,
		rng:      rng,
		strategy: NewStrategy(rng),
	}
}

// Play connects, plays until gameOver and returns the outcome.
func (b *Bot) Play(ctx context.Context) (Result, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, b.opts.URL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("dial %s: %w", b.opts.URL, err)
	}
	defer conn.Close()
	b.conn = conn

	done := make(chan struct{})
	defer close(done)
	events := make(chan frame)
	readErr := make(chan error, 1)
	go func() {
		for {
			var f frame
			if err := conn.ReadJSON(&f); err != nil {
				readErr <- err
				return
			}
			select {
			case events <- f:
			case <-done:
				return
			}
		}
	}()

	fire := time.NewTimer(time.Hour)
	fire.Stop()
	defer fire.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			return b.result, ctx.Err()

		case err := <-readErr:
			return b.result, fmt.Errorf("connection lost: %w", err)

		case f := <-events:
			finished, err := b.handle(f)
			if err != nil || finished {
				return b.result, err
			}
			switch {
			case !b.myTurn:
				fire.Stop()
			case b.pending == nil:
				fire.Reset(b.opts.Settle)
			}

		case <-fire.C:
			if !b.myTurn {
				continue
			}
			if b.pending != nil {
				b.log.Debug("shot drew no answer, firing elsewhere", zap.Int("x", b.pending.X), zap.Int("y", b.pending.Y))
				b.strategy.Skip(*b.pending)
				b.pending = nil
			}
			if err := b.shoot(); err != nil {
				return b.result, err
			}
			fire.Reset(b.opts.Retry)
		}
	}
}

func (b *Bot) handle(f frame) (finished bool, err error) {
	switch f.Type {
	case service.EventConnected:
		var p service.ConnectedPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			return false, fmt.Errorf("decode %s: %w", f.Type, err)
		}
		b.id = p.ID
		if b.opts.RoomCode == "" {
			return false, b.send(service.CmdCreateGame, nil)
		}
		return false, b.send(service.CmdJoinGame, service.JoinGamePayload{RoomCode: b.opts.RoomCode})

	case service.EventGameCreated:
		var p service.GameCreatedPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			return false, fmt.Errorf("decode %s: %w", f.Type, err)
		}
		b.result.RoomCode = p.RoomCode
		b.log.Info("room created", zap.String("room", p.RoomCode))
		if b.opts.OnRoom != nil {
			b.opts.OnRoom(p.RoomCode)
		}

	case service.EventPlayerJoined:
		var p service.PlayerJoinedPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			return false, fmt.Errorf("decode %s: %w", f.Type, err)
		}
		b.result.RoomCode = p.RoomCode
		fleet := board.RandomFleet(b.rng)
		b.log.Debug("submitting fleet", zap.String("room", p.RoomCode))
		return false, b.send(service.CmdPlayerReady, service.PlayerReadyPayload{RoomCode: p.RoomCode, Board: fleet.Rows()})

	case service.EventGameStart:
		var p service.GameStartPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			return false, fmt.Errorf("decode %s: %w", f.Type, err)
		}
		b.started = true
		b.myTurn = p.Turn == b.id
		b.log.Info("battle started", zap.Bool("first", b.myTurn))

	case service.EventShotResult:
		var p service.ShotResultPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			return false, fmt.Errorf("decode %s: %w", f.Type, err)
		}
		if p.Shooter == b.id {
			b.pending = nil
			b.result.Shots++
			if p.Hit {
				b.result.Hits++
			}
			b.strategy.Record(board.Coord{X: p.X, Y: p.Y}, p.Hit)
		}
		b.myTurn = p.NextTurn == b.id

	case service.EventShipSunk:
		var p service.ShipSunkPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			return false, fmt.Errorf("decode %s: %w", f.Type, err)
		}
		if p.Victim != b.id {
			b.strategy.Sunk(p.ShipCoords, p.SurroundCoords)
		}

	case service.EventGameOver:
		var p service.GameOverPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			return false, fmt.Errorf("decode %s: %w", f.Type, err)
		}
		b.result.Winner = p.Winner
		b.result.Reason = p.Reason
		b.result.Won = p.Winner == b.id
		b.log.Info("game over",
			zap.Bool("won", b.result.Won),
			zap.String("reason", p.Reason),
			zap.Int("shots", b.result.Shots),
			zap.Int("hits", b.result.Hits))
		return true, nil

	case service.EventError:
		var p service.ErrorPayload
		json.Unmarshal(f.Payload, &p)
		if !b.started {
			return false, fmt.Errorf("%w: %s", ErrRejected, p.Message)
		}
		b.log.Warn("server error", zap.String("message", p.Message))

	default:
		b.log.Debug("ignoring event", zap.String("type", f.Type))
	}
	return false, nil
}

func (b *Bot) shoot() error {
	at, ok := b.strategy.Next()
	if !ok {
		return errors.New("no cells left to fire at")
	}
	b.pending = &at
	x, y := at.X, at.Y
	return b.send(service.CmdShoot, service.ShootPayload{RoomCode: b.result.RoomCode, X: &x, Y: &y})
}

func (b *Bot) send(cmdType string, payload any) error {
	cmd := service.Command{Type: cmdType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s: %w", cmdType, err)
		}
		cmd.Payload = raw
	}
	b.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := b.conn.WriteJSON(cmd); err != nil {
		return fmt.Errorf("send %s: %w", cmdType, err)
	}
	return nil
}
