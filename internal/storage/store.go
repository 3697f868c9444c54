package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	gameKeyPrefix = "game:"
	winsKey       = "board:wins"
	namesKey      = "board:names"

	// Snapshots are ops data, not recovery state; let them age out.
	gameExpiration = 2 * time.Hour
)

// SnapshotPlayer is one player's line in a saved snapshot.
type SnapshotPlayer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CardsLeft int    `json:"cards_left"`
	IsOut     bool   `json:"is_out"`
}

// GameSnapshot is the coarse session summary persisted after each mutation.
type GameSnapshot struct {
	GameID   string           `json:"game_id"`
	Status   string           `json:"status"`
	Players  []SnapshotPlayer `json:"players"`
	WinnerID string           `json:"winner_id,omitempty"`
	SavedAt  int64            `json:"saved_at"`
}

// WinnerEntry is one row of the wins board.
type WinnerEntry struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Wins       int64  `json:"wins"`
}

// Store persists game snapshots and the wins board in Redis.
type Store struct {
	client *redis.Client
}

// New creates a store around an established Redis client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// SaveGame writes a session snapshot with a TTL.
func (s *Store) SaveGame(ctx context.Context, gameID string, snap *GameSnapshot) error {
	if snap == nil {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return s.client.Set(ctx, gameKeyPrefix+gameID, data, gameExpiration).Err()
}

// LoadGame reads a session snapshot; (nil, nil) when absent.
func (s *Store) LoadGame(ctx context.Context, gameID string) (*GameSnapshot, error) {
	data, err := s.client.Get(ctx, gameKeyPrefix+gameID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var snap GameSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// DeleteGame removes a session snapshot.
func (s *Store) DeleteGame(ctx context.Context, gameID string) error {
	return s.client.Del(ctx, gameKeyPrefix+gameID).Err()
}

// RecordWin bumps a player's win count and remembers their display name.
func (s *Store) RecordWin(ctx context.Context, playerID, playerName string) error {
	pipe := s.client.TxPipeline()
	pipe.ZIncrBy(ctx, winsKey, 1, playerID)
	pipe.HSet(ctx, namesKey, playerID, playerName)
	_, err := pipe.Exec(ctx)
	return err
}

// TopWinners returns the top n players by wins, most wins first.
func (s *Store) TopWinners(ctx context.Context, n int64) ([]WinnerEntry, error) {
	scores, err := s.client.ZRevRangeWithScores(ctx, winsKey, 0, n-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]WinnerEntry, 0, len(scores))
	for _, z := range scores {
		playerID, _ := z.Member.(string)
		name, err := s.client.HGet(ctx, namesKey, playerID).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, err
		}
		entries = append(entries, WinnerEntry{
			PlayerID:   playerID,
			PlayerName: name,
			Wins:       int64(z.Score),
		})
	}
	return entries, nil
}
