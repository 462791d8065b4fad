package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/seabattle/game/board"
	"github.com/wricardo/mcp-training/seabattle/game/service"
	"github.com/wricardo/mcp-training/seabattle/game/session"
	"github.com/wricardo/mcp-training/seabattle/validate"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Sea Battle",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Sea Battle - MCP Interface

Read-only window into a two-player battleship server. Matches are played by
clients over the WebSocket endpoint; these tools inspect them.

AVAILABLE TOOLS:
- list_rooms: List live rooms, optionally filtered by phase
- get_room: Show one room with both boards (unhit ships stay hidden)
- server_stats: Room counts per phase and connected clients
- game_rules: Fleet, placement and turn rules
- validate_board: Check a fleet layout before submitting it
- random_board: Generate a valid random fleet layout`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List live game rooms",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"phase": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"awaiting_opponent", "setup", "battle", "finished"},
					"description": "Only return rooms in this phase",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of rooms to return",
				},
			},
		},
	}, c.handleListRooms)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_room",
		Description: "Get details of a specific room, including both boards with unhit ships hidden",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_code": map[string]interface{}{
					"type":        "string",
					"description": "Six digit room code",
				},
			},
			Required: []string{"room_code"},
		},
	}, c.handleGetRoom)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "server_stats",
		Description: "Get room counts per phase and the number of connected clients",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleServerStats)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_rules",
		Description: "Get the rules of the game",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameRules)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "validate_board",
		Description: "Validate a fleet layout. The board is either ten strings using '#' for ship and '.' for water, or a 10x10 array of numbers (0 water, 1 ship).",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"board": map[string]interface{}{
					"type":        "array",
					"description": "Board rows, top to bottom",
				},
			},
			Required: []string{"board"},
		},
	}, c.handleValidateBoard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "random_board",
		Description: "Generate a valid random fleet layout",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Seed for a reproducible layout (optional)",
				},
			},
		},
	}, c.handleRandomBoard)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeHTTP answers single JSON-RPC messages posted to the MCP endpoint.
func (c *Client) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	response := c.mcpServer.HandleMessage(r.Context(), body)

	w.Header().Set("Content-Type", "application/json")
	responseData, err := json.Marshal(response)
	if err != nil {
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Write(responseData)
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

func (c *Client) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	query := url.Values{}
	if phase, _ := args["phase"].(string); phase != "" {
		query.Set("phase", phase)
	}
	if limit, ok := args["limit"].(float64); ok && limit > 0 {
		query.Set("limit", fmt.Sprintf("%d", int(limit)))
	}

	path := "/api/rooms"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var response struct {
		Count int                `json:"count"`
		Total int                `json:"total"`
		Rooms []session.Snapshot `json:"rooms"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRoomList(response.Rooms, response.Total)), nil
}

func (c *Client) handleGetRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, _ := arguments(request)["room_code"].(string)
	if code == "" {
		return mcp.NewToolResultError("room_code is required"), nil
	}

	var room session.Snapshot
	if err := c.apiCall(ctx, "GET", "/api/rooms/"+url.PathEscape(code), nil, &room); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRoom(&room)), nil
}

func (c *Client) handleServerStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var stats struct {
		service.Stats
		ConnectedClients int `json:"connected_clients"`
	}
	if err := c.apiCall(ctx, "GET", "/api/stats", nil, &stats); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Rooms: %d\n", stats.Rooms)
	fmt.Fprintf(&sb, "Players seated: %d\n", stats.Players)
	fmt.Fprintf(&sb, "Connected clients: %d\n", stats.ConnectedClients)
	for _, phase := range []session.Phase{session.PhaseAwaitingOpponent, session.PhaseSetup, session.PhaseBattle} {
		fmt.Fprintf(&sb, "  %s: %d\n", phase, stats.ByPhase[phase])
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGameRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(gameRules), nil
}

func (c *Client) handleValidateBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := arguments(request)["board"]
	if !ok {
		return mcp.NewToolResultError("board is required"), nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	b, err := validate.Decode(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid board: %v", err)), nil
	}

	result := validate.ValidateBoard(&b)
	var sb strings.Builder
	if result.Valid {
		sb.WriteString("VALID\n")
	} else {
		sb.WriteString("INVALID\n")
	}
	for _, msg := range result.Errors {
		sb.WriteString("  " + msg + "\n")
	}
	sb.WriteString("\n" + b.String())
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleRandomBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var seed uint64
	if s, ok := arguments(request)["seed"].(float64); ok {
		seed = uint64(s)
	} else {
		seed = rand.Uint64()
	}

	b := board.RandomFleet(rand.New(rand.NewPCG(seed, seed)))
	rows, _ := json.Marshal(b.Rows())
	result := fmt.Sprintf("Seed: %d\n\n%s\nRows: %s\n", seed, b.String(), rows)
	return mcp.NewToolResultText(result), nil
}

const gameRules = `SEA BATTLE RULES

BOARD:
- 10x10 grid, x is the column and y the row, both 0-based.
- Cells: '.' water, '#' ship, 'o' miss, 'x' hit, '*' sunk.

FLEET:
- One 4-cell ship, two 3-cell, three 2-cell and four 1-cell ships (20 cells).
- Ships are straight lines and may not touch each other, not even at a corner.

FLOW:
1. A player creates a room and receives a six digit code.
2. The second player joins with that code.
3. Both players submit their fleet. The battle starts when both are in.
4. The room creator shoots first.
5. A hit lets the shooter fire again; a miss passes the turn.
6. When a ship is sunk every cell around it is marked as a miss.
7. The first player to sink the whole opposing fleet wins.

Leaving or disconnecting during a match hands the win to the opponent.`

func formatRoomList(rooms []session.Snapshot, total int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Rooms (%d of %d):\n\n", len(rooms), total)
	for _, r := range rooms {
		players := make([]string, 0, len(r.Players))
		for _, p := range r.Players {
			mark := ""
			if p.Ready {
				mark = " (ready)"
			}
			players = append(players, string(p.ID)+mark)
		}
		fmt.Fprintf(&sb, "- %s [%s] players: %s, last activity %s\n",
			r.Code, r.Phase, strings.Join(players, ", "), r.LastActivityAt.Format("15:04:05"))
	}
	return sb.String()
}

func formatRoom(room *session.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Room: %s\n", room.Code)
	fmt.Fprintf(&sb, "Phase: %s\n", room.Phase)
	if room.Turn != "" {
		fmt.Fprintf(&sb, "Turn: %s\n", room.Turn)
	}
	fmt.Fprintf(&sb, "Created: %s\n", room.CreatedAt.Format(time.RFC3339))

	for _, p := range room.Players {
		role := "guest"
		if p.Creator {
			role = "creator"
		}
		fmt.Fprintf(&sb, "\nPlayer %s (%s), ready: %v, ship cells left: %d\n", p.ID, role, p.Ready, p.Remaining)
		if p.Board == nil {
			continue
		}
		b, err := board.FromRows(p.Board)
		if err != nil {
			fmt.Fprintf(&sb, "  board unavailable: %v\n", err)
			continue
		}
		sb.WriteString(b.String() + "\n")
	}
	return sb.String()
}
