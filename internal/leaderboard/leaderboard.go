// Package leaderboard keeps the persisted list of completed-run summaries.
//
// Storage is an unordered, append-only list. Ranking (score descending, then
// most recent first) is computed on read. Add never deduplicates; callers
// that want the near-duplicate check use AddUnique.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/fatimatanveer/ethical-hackers-journey/internal/model"
)

// ErrInvalidSnapshot is returned when a persisted leaderboard cannot be decoded.
var ErrInvalidSnapshot = errors.New("invalid leaderboard snapshot")

// DefaultWindow is the proximity under which AddUnique treats two identical
// entries as the same run.
const DefaultWindow = 5 * time.Minute

// Entry is one leaderboard line. It copies values from the run; it does not
// reference a mission instance.
type Entry struct {
	PlayerName  string     `json:"playerName"`
	Role        model.Role `json:"role"`
	Score       int        `json:"score"`
	CompletedAt int64      `json:"completedAt"` // Unix milliseconds
}

// Snapshot is the persisted leaderboard document.
type Snapshot struct {
	Entries []Entry `json:"entries"`
}

// Saver persists the leaderboard document after every change.
type Saver interface {
	SaveLeaderboard(ctx context.Context, snap Snapshot) error
}

// Board is a leaderboard safe for concurrent use.
type Board struct {
	mu      sync.Mutex
	entries []Entry
	saver   Saver
	window  time.Duration
	logger  *slog.Logger
}

// Option configures a Board.
type Option func(*Board)

// WithSaver persists every change through s.
func WithSaver(s Saver) Option {
	return func(b *Board) { b.saver = s }
}

// WithWindow sets the window RecordRun uses for AddUnique.
func WithWindow(d time.Duration) Option {
	return func(b *Board) { b.window = d }
}

// WithLogger sets the board's logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Board) { b.logger = l }
}

// New returns a board initialised from snap.
func New(snap Snapshot, opts ...Option) *Board {
	b := &Board{
		entries: append([]Entry{}, snap.Entries...),
		window:  DefaultWindow,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add appends e unconditionally.
func (b *Board) Add(ctx context.Context, e Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, e)
	return b.save(ctx)
}

// AddUnique appends e unless an entry with the same player, role and score
// completed within window of it already exists. It reports whether e was added.
func (b *Board) AddUnique(ctx context.Context, e Entry, window time.Duration) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, x := range b.entries {
		if x.PlayerName == e.PlayerName && x.Role == e.Role && x.Score == e.Score &&
			abs(x.CompletedAt-e.CompletedAt) < window.Milliseconds() {
			return false, nil
		}
	}
	b.entries = append(b.entries, e)
	return true, b.save(ctx)
}

// Clear empties the board.
func (b *Board) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = []Entry{}
	return b.save(ctx)
}

// Entries returns the entries in storage order.
func (b *Board) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Entry{}, b.entries...)
}

// Ranked returns the entries ordered for display.
func (b *Board) Ranked() []Entry {
	return Rank(b.Entries())
}

// Snapshot returns the persisted document.
func (b *Board) Snapshot() Snapshot {
	return Snapshot{Entries: b.Entries()}
}

// RecordRun adds a completed run with the near-duplicate check.
// An empty player name is recorded as model.AnonymousPlayer.
func (b *Board) RecordRun(ctx context.Context, run model.RunSummary) error {
	name := run.PlayerName
	if name == "" {
		name = model.AnonymousPlayer
	}
	added, err := b.AddUnique(ctx, Entry{
		PlayerName:  name,
		Role:        run.Role,
		Score:       run.Score,
		CompletedAt: run.CompletedAt,
	}, b.window)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.RunID, err)
	}
	if !added {
		b.logger.Debug("duplicate leaderboard entry skipped", "player", name, "score", run.Score)
	}
	return nil
}

func (b *Board) save(ctx context.Context) error {
	if b.saver == nil {
		return nil
	}
	snap := Snapshot{Entries: append([]Entry{}, b.entries...)}
	if err := b.saver.SaveLeaderboard(ctx, snap); err != nil {
		return fmt.Errorf("save leaderboard: %w", err)
	}
	return nil
}

// Rank sorts a copy of entries by score descending, then most recent first.
func Rank(entries []Entry) []Entry {
	out := append([]Entry{}, entries...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CompletedAt > out[j].CompletedAt
	})
	return out
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
