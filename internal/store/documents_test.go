package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatimatanveer/ethical-hackers-journey/internal/leaderboard"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/model"
)

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	s.now = func() time.Time { return time.UnixMilli(42) }

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "k", []byte(`{"a":1}`)))
	require.NoError(t, s.Put(ctx, "k", []byte(`{"a":2}`)))

	body, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(body))

	var updated int64
	require.NoError(t, s.db.QueryRow("SELECT updated_at FROM documents WHERE key = 'k'").Scan(&updated))
	assert.Equal(t, int64(42), updated)

	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"), "deleting a missing key is fine")
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func sampleSnapshot() model.Snapshot {
	st := model.NewPlayState([]model.Mission{{
		ID:         "red-1",
		Title:      "Web <App> Assessment",
		Role:       model.RoleRed,
		Difficulty: model.DifficultyBeginner,
		Objectives: []model.Objective{{ID: "o1", Description: "Perform reconnaissance", Completed: true}},
		Scenarios: []model.Scenario{{
			ID:      "s1",
			Title:   "Initial Access",
			Choices: []model.Choice{{ID: "c1", Text: "Scan", Selected: true}},
		}},
		InitialCommands: []string{"help"},
	}})
	st.PlayerName = "Ada"
	st.CurrentMissionID = "red-1"
	st.MissionStatus = model.StatusInProgress
	st.Metrics = model.Metrics{TechnicalScore: 55, EthicsScore: 50, DetectionRisk: 2, TimeElapsed: 12}
	st.TerminalHistory = append(st.TerminalHistory, model.TerminalEntry{Command: "scan <target>", Output: "ok", Timestamp: 1000})
	st.ScenarioHistory = append(st.ScenarioHistory, model.ScenarioHistoryItem{ScenarioID: "s1", ChoiceID: "c1", Timestamp: 2000})
	st.LastUnlockedScenarioID = "s1"
	return st.Snapshot()
}

func TestGame_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "game.db")
	s, err := Open(path)
	require.NoError(t, err)

	_, err = s.LoadGame(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	snap := sampleSnapshot()
	require.NoError(t, s.SaveGame(ctx, snap))
	require.NoError(t, s.Close())

	// Survives reopen.
	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.LoadGame(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	body, err := s.Get(ctx, GameKey)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"scan <target>"`, "html is not escaped")
}

func TestGame_Invalid(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	require.NoError(t, s.Put(ctx, GameKey, []byte("{not json")))

	_, err := s.LoadGame(ctx)
	assert.ErrorIs(t, err, model.ErrInvalidSnapshot)
}

func TestLeaderboard_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	empty, err := s.LoadLeaderboard(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty.Entries)
	assert.Empty(t, empty.Entries)

	snap := leaderboard.Snapshot{Entries: []leaderboard.Entry{
		{PlayerName: "Ada", Role: model.RoleRed, Score: 72, CompletedAt: 1000},
		{PlayerName: "Anonymous", Role: model.RoleBlue, Score: 90, CompletedAt: 2000},
	}}
	require.NoError(t, s.SaveLeaderboard(ctx, snap))

	got, err := s.LoadLeaderboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	require.NoError(t, s.SaveLeaderboard(ctx, leaderboard.Snapshot{}))
	body, err := s.Get(ctx, LeaderboardKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"entries":[]}`, string(body))
}

func TestLeaderboard_Invalid(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	require.NoError(t, s.Put(ctx, LeaderboardKey, []byte("{not json")))

	_, err := s.LoadLeaderboard(ctx)
	assert.ErrorIs(t, err, leaderboard.ErrInvalidSnapshot)
}

func TestLeaderboard_BoardPersistsThroughStore(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	b := leaderboard.New(leaderboard.Snapshot{}, leaderboard.WithSaver(s))
	require.NoError(t, b.RecordRun(ctx, model.RunSummary{RunID: "r1", Role: model.RoleRed, Score: 80, CompletedAt: 5}))

	got, err := s.LoadLeaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, model.AnonymousPlayer, got.Entries[0].PlayerName)
}
