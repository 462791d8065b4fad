package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/seabattle/game/service"
	"github.com/wricardo/mcp-training/seabattle/game/session"
	"github.com/wricardo/mcp-training/seabattle/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
	log     *zap.Logger
}

// NewServer creates a new API server
func NewServer(gameService service.GameService, hub *websocket.Hub, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
		log:     log,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// Routes live on the root router so a wrong method answers 405; mux
	// subrouters report method mismatches as 404.
	s.router.HandleFunc("/api/health", s.handleHealth).Methods("GET")

	// Read-only room inspection. Mutations only happen over the WebSocket.
	s.router.HandleFunc("/api/rooms", s.handleListRooms).Methods("GET")
	s.router.HandleFunc("/api/rooms/{code}", s.handleGetRoom).Methods("GET")
	s.router.HandleFunc("/api/stats", s.handleStats).Methods("GET")

	if s.hub != nil {
		s.router.HandleFunc("/ws", s.hub.ServeWS)
	}
}

// Mount attaches an extra handler, such as the MCP endpoint, to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.router.Handle(path, h)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.service.ListRooms(r.Context())
	if err != nil {
		s.log.Error("list rooms", zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total := len(rooms)

	query := r.URL.Query()
	phase := query.Get("phase")
	sortBy := query.Get("sort")    // "created", "activity" (default)
	order := query.Get("order")    // "asc", "desc" (default)
	limitStr := query.Get("limit") // number of rooms to return

	if phase != "" {
		if !session.ValidPhase(session.Phase(phase)) {
			respondError(w, http.StatusBadRequest, "unknown phase: "+phase)
			return
		}
		filtered := rooms[:0]
		for _, room := range rooms {
			if room.Phase == session.Phase(phase) {
				filtered = append(filtered, room)
			}
		}
		rooms = filtered
	}

	if sortBy == "" {
		sortBy = "activity"
	}
	if order == "" {
		order = "desc"
	}

	sort.SliceStable(rooms, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = rooms[i].CreatedAt, rooms[j].CreatedAt
		} else {
			ti, tj = rooms[i].LastActivityAt, rooms[j].LastActivityAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(rooms) {
			rooms = rooms[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(rooms),
		"total": total,
		"rooms": rooms,
		"sort":  sortBy,
		"order": order,
	})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	room, err := s.service.GetRoom(r.Context(), code)
	if errors.Is(err, session.ErrRoomNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.log.Error("get room", zap.String("room", code), zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, room)
}

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
	service.Stats
	ConnectedClients int `json:"connected_clients"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		s.log.Error("stats", zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := StatsResponse{Stats: *stats}
	if s.hub != nil {
		resp.ConnectedClients = s.hub.ConnectedClients()
	}
	respondJSON(w, http.StatusOK, resp)
}
