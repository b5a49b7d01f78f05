package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatimatanveer/ethical-hackers-journey/internal/leaderboard"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/model"
)

// Fixed document keys.
const (
	GameKey        = "ethical-hackers-journey-game-state"
	LeaderboardKey = "ethical-hackers-journey-leaderboard"
)

// Put stores body under key, replacing any previous document.
func (s *Store) Put(ctx context.Context, key string, body []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (key, body, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`, key, string(body), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Get returns the document stored under key, or ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE key = ?`, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(body), nil
}

// Delete removes the document under key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// SaveGame stores the play-through snapshot. It implements engine.Persister.
func (s *Store) SaveGame(ctx context.Context, snap model.Snapshot) error {
	body, err := marshalDocument(snap)
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	return s.Put(ctx, GameKey, body)
}

// LoadGame returns the stored play-through snapshot.
// Returns ErrNotFound when no game was saved and model.ErrInvalidSnapshot
// when the stored document cannot be decoded.
func (s *Store) LoadGame(ctx context.Context) (model.Snapshot, error) {
	body, err := s.Get(ctx, GameKey)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("load game: %w", err)
	}
	snap, err := model.UnmarshalSnapshot(body)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("load game: %w", err)
	}
	return snap, nil
}

// SaveLeaderboard stores the leaderboard. It implements leaderboard.Saver.
func (s *Store) SaveLeaderboard(ctx context.Context, snap leaderboard.Snapshot) error {
	if snap.Entries == nil {
		snap.Entries = []leaderboard.Entry{}
	}
	body, err := marshalDocument(snap)
	if err != nil {
		return fmt.Errorf("save leaderboard: %w", err)
	}
	return s.Put(ctx, LeaderboardKey, body)
}

// LoadLeaderboard returns the stored leaderboard. A missing document is an
// empty leaderboard; an undecodable one wraps leaderboard.ErrInvalidSnapshot.
func (s *Store) LoadLeaderboard(ctx context.Context) (leaderboard.Snapshot, error) {
	body, err := s.Get(ctx, LeaderboardKey)
	if errors.Is(err, ErrNotFound) {
		return leaderboard.Snapshot{Entries: []leaderboard.Entry{}}, nil
	}
	if err != nil {
		return leaderboard.Snapshot{}, fmt.Errorf("load leaderboard: %w", err)
	}
	var snap leaderboard.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return leaderboard.Snapshot{}, fmt.Errorf("load leaderboard: %w: %v", leaderboard.ErrInvalidSnapshot, err)
	}
	if snap.Entries == nil {
		snap.Entries = []leaderboard.Entry{}
	}
	return snap, nil
}
