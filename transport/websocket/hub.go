package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/seabattle/game/service"
	"github.com/wricardo/mcp-training/seabattle/game/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	defaultMaxMessageSize = 4096
	defaultSendBuffer     = 256
	defaultSweepInterval  = time.Minute
)

// Options tunes the hub. Zero values fall back to defaults.
type Options struct {
	AllowedOrigins  []string
	MaxMessageSize  int64
	SendBuffer      int
	IdleRoomTimeout time.Duration // 0 disables the idle sweep
	SweepInterval   time.Duration
}

// Client represents a WebSocket client
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   session.PlayerID
}

// ID returns the identity the client plays under.
func (c *Client) ID() session.PlayerID {
	return c.id
}

type inboundFrame struct {
	client *Client
	cmd    service.Command
	err    error
}

// Hub owns every connection and is the only goroutine that dispatches
// commands into the game service.
type Hub struct {
	service  service.GameService
	log      *zap.Logger
	opts     Options
	upgrader websocket.Upgrader

	// Registered clients by identity. Owned by Run.
	clients map[session.PlayerID]*Client

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundFrame
	done       chan struct{}

	connected atomic.Int64
}

// NewHub creates a new WebSocket hub
func NewHub(svc service.GameService, log *zap.Logger, opts Options) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = defaultMaxMessageSize
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaultSendBuffer
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = defaultSweepInterval
	}

	h := &Hub{
		service:    svc,
		log:        log,
		opts:       opts,
		clients:    make(map[session.PlayerID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundFrame),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// ConnectedClients returns the number of live connections.
func (h *Hub) ConnectedClients() int {
	return int(h.connected.Load())
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.opts.AllowedOrigins) == 0 || slices.Contains(h.opts.AllowedOrigins, "*") {
		return true
	}
	return slices.Contains(h.opts.AllowedOrigins, origin)
}

// Run starts the hub's event loop and blocks until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	var sweep <-chan time.Time
	if h.opts.IdleRoomTimeout > 0 {
		ticker := time.NewTicker(h.opts.SweepInterval)
		defer ticker.Stop()
		sweep = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.deliver(h.disconnect(ctx, client))

		case frame := <-h.inbound:
			h.handleFrame(ctx, frame)

		case <-sweep:
			h.deliver(h.service.ExpireIdle(ctx, h.opts.IdleRoomTimeout))
		}
	}
}

// ServeWS handles WebSocket requests from clients
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, h.opts.SendBuffer),
		id:   session.PlayerID(uuid.NewString()),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (h *Hub) registerClient(client *Client) {
	h.clients[client.id] = client
	h.connected.Add(1)
	h.log.Info("client connected", zap.String("client", string(client.id)), zap.Int("clients", len(h.clients)))

	h.deliver([]service.Delivery{{
		To:    []session.PlayerID{client.id},
		Event: service.Event{Type: service.EventConnected, Payload: service.ConnectedPayload{ID: client.id}},
	}})
}

// removeClient forgets a client and closes its send queue. It reports
// whether the client was still registered.
func (h *Hub) removeClient(client *Client) bool {
	if h.clients[client.id] != client {
		return false
	}
	delete(h.clients, client.id)
	close(client.send)
	h.connected.Add(-1)
	return true
}

// disconnect unregisters a client and forfeits its room, if any.
func (h *Hub) disconnect(ctx context.Context, client *Client) []service.Delivery {
	if !h.removeClient(client) {
		return nil
	}
	h.log.Info("client disconnected", zap.String("client", string(client.id)), zap.Int("clients", len(h.clients)))

	deliveries, err := h.service.Disconnect(ctx, client.id)
	if err != nil {
		h.log.Debug("disconnect", zap.String("client", string(client.id)), zap.Error(err))
	}
	return deliveries
}

func (h *Hub) handleFrame(ctx context.Context, frame inboundFrame) {
	client := frame.client
	if h.clients[client.id] != client {
		return
	}

	if frame.err != nil {
		h.log.Warn("malformed frame", zap.String("client", string(client.id)), zap.Error(frame.err))
		h.deliver([]service.Delivery{service.MalformedFrame(client.id)})
		return
	}

	deliveries, err := service.Dispatch(ctx, h.service, client.id, frame.cmd)
	if err != nil {
		h.log.Debug("command rejected",
			zap.String("client", string(client.id)), zap.String("command", frame.cmd.Type), zap.Error(err))
	}
	h.deliver(deliveries)
}

// deliver sends every event to its addressed clients. Clients whose queue
// is full are dropped and their disconnect is delivered in turn.
func (h *Hub) deliver(deliveries []service.Delivery) {
	for len(deliveries) > 0 {
		var dropped []*Client
		for _, d := range deliveries {
			data, err := json.Marshal(d.Event)
			if err != nil {
				h.log.Error("failed to marshal event", zap.String("event", d.Event.Type), zap.Error(err))
				continue
			}
			for _, id := range d.To {
				client, ok := h.clients[id]
				if !ok || slices.Contains(dropped, client) {
					continue
				}
				select {
				case client.send <- data:
				default:
					h.log.Warn("dropping slow client", zap.String("client", string(id)))
					dropped = append(dropped, client)
				}
			}
		}

		deliveries = nil
		for _, client := range dropped {
			deliveries = append(deliveries, h.disconnect(context.Background(), client)...)
		}
	}
}

func (h *Hub) shutdown() {
	for _, client := range h.clients {
		h.removeClient(client)
	}
	h.log.Info("hub stopped")
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.hub.opts.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("websocket read error", zap.String("client", string(c.id)), zap.Error(err))
			}
			return
		}

		cmd, err := service.DecodeCommand(message)
		select {
		case c.hub.inbound <- inboundFrame{client: c, cmd: cmd, err: err}:
		case <-c.hub.done:
			return
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One event per frame; clients parse each frame as a single JSON object.
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
