package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/shithead-online/server/internal/apperrors"
	"github.com/shithead-online/server/internal/protocol"
)

// The lobby REST API. Thin plumbing: each handler resolves a session and
// delegates; all game semantics live behind the session layer.

type createGameRequest struct {
	PlayerNames []string `json:"player_names"`
	GameID      string   `json:"game_id"`
}

type createGameResponse struct {
	GameID  string                `json:"game_id"`
	Players []protocol.PlayerInfo `json:"players"`
}

type joinGameRequest struct {
	Name string `json:"name"`
}

type joinGameResponse struct {
	GameID string              `json:"game_id"`
	Player protocol.PlayerInfo `json:"player"`
}

type gameStateResponse struct {
	GameID  string                 `json:"game_id"`
	Status  string                 `json:"status"`
	Players []protocol.PlayerInfo  `json:"players,omitempty"`
	State   *protocol.GameStateDTO `json:"state,omitempty"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	// An empty body creates an empty game; malformed JSON does not.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	sess, err := s.registry.CreateGame(req.GameID, req.PlayerNames)
	if err != nil {
		writeGameError(w, err)
		return
	}

	_, players, _ := sess.Snapshot()
	writeJSON(w, http.StatusCreated, createGameResponse{
		GameID:  sess.GameID,
		Players: players,
	})
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.registry.Get(r.PathValue("id"))
	if err != nil {
		writeGameError(w, err)
		return
	}

	var req joinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	player, err := sess.AddPlayer(req.Name)
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, joinGameResponse{GameID: sess.GameID, Player: player})
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.registry.Get(r.PathValue("id"))
	if err != nil {
		writeGameError(w, err)
		return
	}

	dto, err := sess.Start()
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, gameStateResponse{
		GameID: sess.GameID,
		Status: dto.Status,
		State:  dto,
	})
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	sess, err := s.registry.Get(r.PathValue("id"))
	if err != nil {
		writeGameError(w, err)
		return
	}

	status, players, dto := sess.Snapshot()
	writeJSON(w, http.StatusOK, gameStateResponse{
		GameID:  sess.GameID,
		Status:  status,
		Players: players,
		State:   dto,
	})
}

// handleBoard serves the wins board, when Redis is around to keep one.
func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "board not available")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	winners, err := s.store.TopWinners(ctx, 10)
	if err != nil {
		log.Printf("board query failed: %v", err)
		writeError(w, http.StatusInternalServerError, "board query failed")
		return
	}
	writeJSON(w, http.StatusOK, winners)
}

// writeGameError maps domain errors onto HTTP statuses.
func writeGameError(w http.ResponseWriter, err error) {
	var gameErr *apperrors.GameError
	if !errors.As(err, &gameErr) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := http.StatusBadRequest
	if gameErr == apperrors.ErrGameNotFound {
		status = http.StatusNotFound
	}
	writeError(w, status, gameErr.Message)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("response encode failed: %v", err)
	}
}
