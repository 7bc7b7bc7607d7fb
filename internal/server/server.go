// Package server is the HTTP boundary: request validation, error mapping,
// and the spectator websocket feed. Nothing in here touches simulation state
// directly; everything goes through the room's operations.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"wreckers/internal/game"
	"wreckers/internal/leaderboard"
	"wreckers/internal/responses"
)

// Server wires the room and leaderboard store to HTTP.
type Server struct {
	room  *game.Room
	board leaderboard.Store
}

func New(room *game.Room, board leaderboard.Store) *Server {
	return &Server{room: room, board: board}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/sync", s.handleSync).Methods("POST")
	r.HandleFunc("/api/lobby", s.handleLobby).Methods("POST")
	r.HandleFunc("/api/repair", s.handleRepair).Methods("POST")
	r.HandleFunc("/api/leaderboard", s.handleLeaderboard).Methods("GET")
	r.HandleFunc("/ws", s.handleSpectate)
	return r
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req game.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		responses.WriteError(w, responses.BadRequestError{Msg: "Invalid request body."})
		return
	}
	if req.PlayerID == "" {
		responses.WriteError(w, responses.BadRequestError{Msg: "playerId is required."})
		return
	}
	if req.Steer < -1 || req.Steer > 1 || req.Throttle < -1 || req.Throttle > 1 {
		responses.WriteError(w, responses.BadRequestError{Msg: "steer and throttle must be within [-1, 1]."})
		return
	}
	responses.WriteSuccess(w, s.room.Sync(req))
}

func (s *Server) handleLobby(w http.ResponseWriter, r *http.Request) {
	var req game.LobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		responses.WriteError(w, responses.BadRequestError{Msg: "Invalid request body."})
		return
	}
	if req.PlayerID == "" {
		responses.WriteError(w, responses.BadRequestError{Msg: "playerId is required."})
		return
	}
	responses.WriteSuccess(w, s.room.Lobby(req))
}

type repairRequest struct {
	PlayerID string  `json:"playerId"`
	Amount   float64 `json:"amount"`
}

func (s *Server) handleRepair(w http.ResponseWriter, r *http.Request) {
	var req repairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		responses.WriteError(w, responses.BadRequestError{Msg: "Invalid request body."})
		return
	}
	if req.PlayerID == "" || req.Amount <= 0 {
		responses.WriteError(w, responses.BadRequestError{Msg: "playerId and a positive amount are required."})
		return
	}
	if err := s.room.Repair(req.PlayerID, req.Amount); err != nil {
		if errors.Is(err, game.ErrPlayerNotFound) {
			responses.WriteError(w, responses.NotFoundError{Msg: "No such player."})
			return
		}
		responses.WriteError(w, err)
		return
	}
	responses.WriteSuccess(w, map[string]string{"status": "repaired"})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.board.Top(leaderboard.MaxEntries)
	if err != nil {
		slog.Error("reading leaderboard", "err", err)
		responses.WriteError(w, responses.InternalServerError{Msg: "Leaderboard unavailable."})
		return
	}
	responses.WriteSuccess(w, entries)
}
