package session

import (
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/shithead-online/server/internal/apperrors"
	"github.com/shithead-online/server/internal/storage"
)

const (
	// Short game ID alphabet: no I, O, 1, 0 for clarity.
	gameIDChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	gameIDLength = 6
)

// Registry is the process-scoped map of game IDs to sessions. It is
// constructed once at startup and passed by reference to the transport
// layer; insertion and lookup are safe under concurrent access.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	turnTimeout time.Duration
	maxPlayers  int
	store       *storage.Store // optional, best-effort snapshots
}

// NewRegistry creates an empty registry. store may be nil when Redis is
// not configured.
func NewRegistry(turnTimeout time.Duration, maxPlayers int, store *storage.Store) *Registry {
	return &Registry{
		sessions:    make(map[string]*Session),
		turnTimeout: turnTimeout,
		maxPlayers:  maxPlayers,
		store:       store,
	}
}

// CreateGame registers a new waiting session under the given ID, or under a
// freshly generated short ID when gameID is empty. The initial players are
// seated in the given order.
func (r *Registry) CreateGame(gameID string, playerNames []string) (*Session, error) {
	if len(playerNames) > r.maxPlayers {
		return nil, apperrors.ErrGameFull
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if gameID == "" {
		gameID = r.generateGameID()
	} else if _, exists := r.sessions[gameID]; exists {
		return nil, apperrors.ErrGameExists
	}

	s := newSession(gameID, r.turnTimeout, r.maxPlayers, r.store)
	for _, name := range playerNames {
		s.addLobbyPlayerLocked(name)
	}
	r.sessions[gameID] = s

	log.Printf("🏠 game %s created with %d players", gameID, len(playerNames))
	return s, nil
}

// Get looks up a session by game ID.
func (r *Registry) Get(gameID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[gameID]
	if !ok {
		return nil, apperrors.ErrGameNotFound
	}
	return s, nil
}

// Count returns the number of registered sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// generateGameID draws short IDs until one is free. Caller holds r.mu.
func (r *Registry) generateGameID() string {
	for {
		id := make([]byte, gameIDLength)
		for i := range id {
			id[i] = gameIDChars[rand.IntN(len(gameIDChars))]
		}
		if _, exists := r.sessions[string(id)]; !exists {
			return string(id)
		}
	}
}
