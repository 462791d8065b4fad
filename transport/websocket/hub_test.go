package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/wricardo/mcp-training/seabattle/game/board"
	"github.com/wricardo/mcp-training/seabattle/game/service"
	"github.com/wricardo/mcp-training/seabattle/game/session"
)

const testRoom = "111111"

var testLayout = []string{
	"####.###.#",
	"..........",
	"###.##.##.",
	"..........",
	"##.#.#.#..",
	"..........",
	"..........",
	"..........",
	"..........",
	"..........",
}

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newTestService(t *testing.T) service.GameService {
	t.Helper()
	reg := session.NewRegistry(session.WithCodeGenerator(func() string { return testRoom }))
	return service.NewGameService(reg, zap.NewNop())
}

func startHub(t *testing.T, opts Options) (*Hub, *httptest.Server) {
	t.Helper()
	// Connections outlive the test body, so the hub logs nowhere.
	hub := NewHub(newTestService(t), zap.NewNop(), opts)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(func() {
		server.Close()
		cancel()
		<-stopped
	})
	return hub, server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("Failed to read frame: %v", err)
	}
	return f
}

func expectFrame(t *testing.T, conn *websocket.Conn, eventType string, payload any) {
	t.Helper()
	f := readFrame(t, conn)
	if f.Type != eventType {
		t.Fatalf("Expected %s event, got %s (%s)", eventType, f.Type, f.Payload)
	}
	if payload != nil {
		if err := json.Unmarshal(f.Payload, payload); err != nil {
			t.Fatalf("Failed to decode %s payload: %v", eventType, err)
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, cmdType string, payload any) {
	t.Helper()
	msg := map[string]any{"type": cmdType}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("Failed to send %s: %v", cmdType, err)
	}
}

func connect(t *testing.T, server *httptest.Server) (*websocket.Conn, session.PlayerID) {
	t.Helper()
	conn := dial(t, server)
	var hello service.ConnectedPayload
	expectFrame(t, conn, service.EventConnected, &hello)
	if hello.ID == "" {
		t.Fatal("Expected a non-empty connection id")
	}
	return conn, hello.ID
}

func TestHubGameOverWebSocket(t *testing.T) {
	_, server := startHub(t, Options{})

	alice, aliceID := connect(t, server)
	bob, bobID := connect(t, server)
	if aliceID == bobID {
		t.Fatal("Expected distinct connection ids")
	}

	send(t, alice, service.CmdCreateGame, nil)
	var created service.GameCreatedPayload
	expectFrame(t, alice, service.EventGameCreated, &created)
	if created.RoomCode != testRoom {
		t.Fatalf("Expected room %s, got %s", testRoom, created.RoomCode)
	}

	send(t, bob, service.CmdJoinGame, map[string]any{"roomCode": created.RoomCode})
	expectFrame(t, alice, service.EventPlayerJoined, nil)
	expectFrame(t, bob, service.EventPlayerJoined, nil)

	b, err := board.Parse(testLayout...)
	if err != nil {
		t.Fatalf("Failed to parse board: %v", err)
	}
	ready := map[string]any{"roomCode": created.RoomCode, "board": b.Rows()}
	send(t, alice, service.CmdPlayerReady, ready)
	send(t, bob, service.CmdPlayerReady, ready)

	var start service.GameStartPayload
	expectFrame(t, alice, service.EventGameStart, &start)
	expectFrame(t, bob, service.EventGameStart, nil)
	if start.Turn != aliceID {
		t.Errorf("Expected creator to shoot first, got %s", start.Turn)
	}

	send(t, alice, service.CmdShoot, map[string]any{"roomCode": created.RoomCode, "x": 9, "y": 0})
	var shot service.ShotResultPayload
	expectFrame(t, bob, service.EventShotResult, &shot)
	if !shot.Hit || shot.Shooter != aliceID || shot.NextTurn != aliceID {
		t.Errorf("Unexpected shot result %+v", shot)
	}
	var sunk service.ShipSunkPayload
	expectFrame(t, bob, service.EventShipSunk, &sunk)
	if sunk.Victim != bobID || len(sunk.SurroundCoords) != 3 {
		t.Errorf("Unexpected sunk payload %+v", sunk)
	}
	expectFrame(t, alice, service.EventShotResult, nil)
	expectFrame(t, alice, service.EventShipSunk, nil)

	bob.Close()

	var over service.GameOverPayload
	expectFrame(t, alice, service.EventGameOver, &over)
	if over.Winner != aliceID || over.Reason != service.ReasonDisconnect {
		t.Errorf("Expected alice to win by disconnect, got %+v", over)
	}
}

func TestHubMalformedFrames(t *testing.T) {
	_, server := startHub(t, Options{})
	conn, _ := connect(t, server)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	var msg service.ErrorPayload
	expectFrame(t, conn, service.EventError, &msg)
	if msg.Message == "" {
		t.Error("Expected an error message")
	}

	send(t, conn, "teleport", nil)
	expectFrame(t, conn, service.EventError, &msg)
	if !strings.Contains(msg.Message, "teleport") {
		t.Errorf("Expected message to name the command, got %q", msg.Message)
	}

	send(t, conn, service.CmdJoinGame, map[string]any{"roomCode": "999999"})
	expectFrame(t, conn, service.EventError, &msg)
	if msg.Message != service.MsgRoomNotFoundOrFull {
		t.Errorf("Expected %q, got %q", service.MsgRoomNotFoundOrFull, msg.Message)
	}
}

func TestHubConnectedClients(t *testing.T) {
	hub, server := startHub(t, Options{})
	conn, _ := connect(t, server)
	connect(t, server)

	if got := hub.ConnectedClients(); got != 2 {
		t.Fatalf("Expected 2 connected clients, got %d", got)
	}

	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ConnectedClients() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("Expected 1 connected client, got %d", hub.ConnectedClients())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	svc := newTestService(t)
	hub := NewHub(svc, zaptest.NewLogger(t), Options{})
	ctx := context.Background()

	alice := &Client{hub: hub, id: "alice", send: make(chan []byte, 8)}
	slow := &Client{hub: hub, id: "slow", send: make(chan []byte)}
	hub.clients[alice.id] = alice
	hub.clients[slow.id] = slow

	svc.CreateGame(ctx, "slow")
	deliveries, err := svc.JoinGame(ctx, "alice", testRoom)
	if err != nil {
		t.Fatalf("JoinGame failed: %v", err)
	}

	hub.deliver(deliveries)

	if _, ok := hub.clients["slow"]; ok {
		t.Error("Expected slow client to be dropped")
	}
	if _, ok := <-slow.send; ok {
		t.Error("Expected slow client's queue to be closed")
	}

	var got []string
	for len(alice.send) > 0 {
		var f frame
		if err := json.Unmarshal(<-alice.send, &f); err != nil {
			t.Fatalf("Failed to decode: %v", err)
		}
		got = append(got, f.Type)
	}
	if len(got) != 2 || got[0] != service.EventPlayerJoined || got[1] != service.EventGameOver {
		t.Errorf("Expected playerJoined then gameOver, got %v", got)
	}
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"no restriction", nil, "http://evil.example", true},
		{"wildcard", []string{"*"}, "http://evil.example", true},
		{"allowed", []string{"http://localhost:8080"}, "http://localhost:8080", true},
		{"rejected", []string{"http://localhost:8080"}, "http://evil.example", false},
		{"no origin header", []string{"http://localhost:8080"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub(nil, nil, Options{AllowedOrigins: tt.allowed})
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := hub.checkOrigin(req); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNewHubDefaults(t *testing.T) {
	hub := NewHub(nil, nil, Options{})
	if hub.opts.MaxMessageSize != defaultMaxMessageSize {
		t.Errorf("Expected max message size %d, got %d", defaultMaxMessageSize, hub.opts.MaxMessageSize)
	}
	if hub.opts.SendBuffer != defaultSendBuffer {
		t.Errorf("Expected send buffer %d, got %d", defaultSendBuffer, hub.opts.SendBuffer)
	}
	if hub.clients == nil || hub.register == nil || hub.unregister == nil || hub.inbound == nil {
		t.Error("Hub channels and maps must be initialized")
	}
}
