package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/shithead-online/server/internal/config"
	"github.com/shithead-online/server/internal/session"
	"github.com/shithead-online/server/internal/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // restrict in production
	},
}

// Server ties the websocket transport and the lobby HTTP API to the
// session registry.
type Server struct {
	config   *config.Config
	registry *session.Registry
	redis    *redis.Client
	store    *storage.Store

	clients   map[*Client]struct{}
	clientsMu sync.Mutex
}

// NewServer builds the server. Redis is optional: when unreachable or
// disabled the server runs without snapshots and the wins board.
func NewServer(cfg *config.Config) (*Server, error) {
	s := &Server{
		config:  cfg,
		clients: make(map[*Client]struct{}),
	}

	if !cfg.Redis.Disabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("⚠️ redis unreachable at %s, running without snapshots: %v", cfg.Redis.Addr, err)
			_ = rdb.Close()
		} else {
			s.redis = rdb
			s.store = storage.New(rdb)
		}
	}

	s.registry = session.NewRegistry(cfg.Game.TurnTimeoutDuration(), cfg.Game.MaxPlayers, s.store)
	return s, nil
}

// Registry exposes the session registry, mainly for tests.
func (s *Server) Registry() *session.Registry {
	return s.registry
}

// Handler builds the route table: the websocket endpoint, the lobby REST
// API and the ops endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /board", s.handleBoard)

	mux.HandleFunc("POST /games", s.handleCreateGame)
	mux.HandleFunc("POST /games/{id}/join", s.handleJoinGame)
	mux.HandleFunc("POST /games/{id}/start", s.handleStartGame)
	mux.HandleFunc("GET /games/{id}/state", s.handleGameState)
	return mux
}

// Start runs the HTTP server until it fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	log.Printf("🚀 server listening on http://%s (ws://%s/ws, CPU cores: %d)",
		addr, addr, runtime.NumCPU())

	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second, // Slowloris guard
		IdleTimeout:       60 * time.Second,
	}
	return server.ListenAndServe()
}

// handleWebSocket upgrades a connection and hands it to its pumps.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := NewClient(s, conn)
	s.registerClient(client)

	go client.ReadPump()
	go client.WritePump()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) registerClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client] = struct{}{}
}

func (s *Server) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.clients, client)
}

// Shutdown closes every client connection and the Redis client.
func (s *Server) Shutdown() {
	s.clientsMu.Lock()
	for client := range s.clients {
		client.Close()
	}
	s.clientsMu.Unlock()

	if s.redis != nil {
		_ = s.redis.Close()
	}
	log.Println("server stopped")
}
