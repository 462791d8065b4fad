package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap/zaptest"

	"github.com/wricardo/mcp-training/seabattle/api"
	"github.com/wricardo/mcp-training/seabattle/game/board"
	"github.com/wricardo/mcp-training/seabattle/game/service"
	"github.com/wricardo/mcp-training/seabattle/game/session"
)

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

// newAPIServer starts a REST server holding one battle room, 424242,
// where alice already hit bob at (0,0).
func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := session.NewRegistry(session.WithCodeGenerator(func() string { return "424242" }))
	log := zaptest.NewLogger(t)
	svc := service.NewGameService(reg, log)
	ctx := context.Background()

	b, err := board.Parse(testLayout...)
	if err != nil {
		t.Fatalf("Failed to parse board: %v", err)
	}
	svc.CreateGame(ctx, "alice")
	svc.JoinGame(ctx, "bob", "424242")
	svc.PlayerReady(ctx, "alice", "424242", b.Rows())
	svc.PlayerReady(ctx, "bob", "424242", b.Rows())
	svc.Shoot(ctx, "alice", "424242", 0, 0)

	server := httptest.NewServer(api.NewServer(svc, nil, log))
	t.Cleanup(server.Close)
	return server
}

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := newAPIServer(t)
	client := NewClient(server.URL)

	err := client.apiCall(context.Background(), "GET", "/api/rooms/000000", nil, nil)
	if err == nil {
		t.Fatal("Expected error for missing room")
	}
	if !strings.Contains(err.Error(), "room not found") {
		t.Errorf("Expected API error message, got %v", err)
	}
}

func TestClient_apiCall_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	if err := client.apiCall(context.Background(), "GET", "/api/health", nil, nil); err == nil {
		t.Error("Expected error for unreachable server")
	}
}

func TestClient_handleListRooms(t *testing.T) {
	client := NewClient(newAPIServer(t).URL)
	ctx := context.Background()

	result, err := client.handleListRooms(ctx, callTool("list_rooms", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("list_rooms failed: %v", err)
	}
	text := resultText(t, result)
	for _, want := range []string{"Rooms (1 of 1)", "424242", "[battle]", "alice (ready)"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}

	result, _ = client.handleListRooms(ctx, callTool("list_rooms", map[string]interface{}{"phase": "setup"}))
	if text := resultText(t, result); !strings.Contains(text, "Rooms (0 of 1)") {
		t.Errorf("Expected phase filter to apply, got: %s", text)
	}
}

func TestClient_handleGetRoom(t *testing.T) {
	client := NewClient(newAPIServer(t).URL)
	ctx := context.Background()

	result, err := client.handleGetRoom(ctx, callTool("get_room", map[string]interface{}{"room_code": "424242"}))
	if err != nil {
		t.Fatalf("get_room failed: %v", err)
	}
	text := resultText(t, result)
	for _, want := range []string{"Room: 424242", "Phase: battle", "Turn: alice", "ship cells left: 19", "x........."} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
	if strings.Contains(text, "#") {
		t.Errorf("Room view leaked ship cells: %s", text)
	}

	result, _ = client.handleGetRoom(ctx, callTool("get_room", map[string]interface{}{"room_code": "000000"}))
	if !result.IsError {
		t.Error("Expected error result for unknown room")
	}

	result, _ = client.handleGetRoom(ctx, callTool("get_room", nil))
	if !result.IsError {
		t.Error("Expected error result without room_code")
	}
}

func TestClient_handleServerStats(t *testing.T) {
	client := NewClient(newAPIServer(t).URL)

	result, err := client.handleServerStats(context.Background(), callTool("server_stats", nil))
	if err != nil {
		t.Fatalf("server_stats failed: %v", err)
	}
	text := resultText(t, result)
	for _, want := range []string{"Rooms: 1", "Players seated: 2", "battle: 1"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestClient_handleGameRules(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameRules(context.Background(), callTool("game_rules", nil))
	if err != nil {
		t.Fatalf("game_rules failed: %v", err)
	}
	text := resultText(t, result)
	for _, want := range []string{"10x10", "four 1-cell", "creator shoots first", "not even at a corner"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected '%s' in rules, got: %s", want, text)
		}
	}
}

func TestClient_handleValidateBoard(t *testing.T) {
	client := NewClient("http://localhost:8080")
	ctx := context.Background()

	lines := make([]interface{}, len(testLayout))
	for i, l := range testLayout {
		lines[i] = l
	}
	result, err := client.handleValidateBoard(ctx, callTool("validate_board", map[string]interface{}{"board": lines}))
	if err != nil {
		t.Fatalf("validate_board failed: %v", err)
	}
	if text := resultText(t, result); !strings.HasPrefix(text, "VALID") {
		t.Errorf("Expected VALID, got: %s", text)
	}

	lines[9] = "#........."
	result, _ = client.handleValidateBoard(ctx, callTool("validate_board", map[string]interface{}{"board": lines}))
	if text := resultText(t, result); !strings.HasPrefix(text, "INVALID") {
		t.Errorf("Expected INVALID, got: %s", text)
	}

	result, _ = client.handleValidateBoard(ctx, callTool("validate_board", map[string]interface{}{"board": "nope"}))
	if !result.IsError {
		t.Error("Expected error result for a non-array board")
	}
}

func TestClient_handleRandomBoard(t *testing.T) {
	client := NewClient("http://localhost:8080")
	ctx := context.Background()

	args := map[string]interface{}{"seed": float64(42)}
	first, err := client.handleRandomBoard(ctx, callTool("random_board", args))
	if err != nil {
		t.Fatalf("random_board failed: %v", err)
	}
	second, _ := client.handleRandomBoard(ctx, callTool("random_board", args))

	a, b := resultText(t, first), resultText(t, second)
	if a != b {
		t.Error("Expected the same seed to produce the same board")
	}
	if !strings.Contains(a, "Seed: 42") || strings.Count(a, "#") != board.FleetCells {
		t.Errorf("Unexpected random board output: %s", a)
	}
}

func TestClient_ServeHTTP(t *testing.T) {
	client := NewClient("http://localhost:8080")

	rr := httptest.NewRecorder()
	client.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/mcp", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", rr.Code)
	}

	body := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	rr = httptest.NewRecorder()
	client.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/mcp", body))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	for _, tool := range []string{"list_rooms", "get_room", "server_stats", "game_rules", "validate_board", "random_board"} {
		if !strings.Contains(rr.Body.String(), tool) {
			t.Errorf("Expected tool %s in tools/list response", tool)
		}
	}
}
