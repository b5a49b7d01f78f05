package leaderboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatimatanveer/ethical-hackers-journey/internal/model"
)

type memorySaver struct {
	saved []Snapshot
	err   error
}

func (m *memorySaver) SaveLeaderboard(_ context.Context, snap Snapshot) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, snap)
	return nil
}

func TestAdd_IsUnconditional(t *testing.T) {
	ctx := context.Background()
	saver := &memorySaver{}
	b := New(Snapshot{}, WithSaver(saver))

	e := Entry{PlayerName: "Ada", Role: model.RoleRed, Score: 72, CompletedAt: 1000}
	require.NoError(t, b.Add(ctx, e))
	require.NoError(t, b.Add(ctx, e))

	assert.Len(t, b.Entries(), 2)
	require.Len(t, saver.saved, 2)
	assert.Len(t, saver.saved[1].Entries, 2)
}

func TestAddUnique(t *testing.T) {
	ctx := context.Background()
	b := New(Snapshot{})
	base := Entry{PlayerName: "Ada", Role: model.RoleRed, Score: 72, CompletedAt: 1_000_000}

	added, err := b.AddUnique(ctx, base, DefaultWindow)
	require.NoError(t, err)
	assert.True(t, added)

	dup := base
	dup.CompletedAt += (4 * time.Minute).Milliseconds()
	added, _ = b.AddUnique(ctx, dup, DefaultWindow)
	assert.False(t, added, "same run within the window")

	later := base
	later.CompletedAt += (5 * time.Minute).Milliseconds()
	added, _ = b.AddUnique(ctx, later, DefaultWindow)
	assert.True(t, added, "window is exclusive")

	otherRole := base
	otherRole.Role = model.RoleBlue
	added, _ = b.AddUnique(ctx, otherRole, DefaultWindow)
	assert.True(t, added)

	otherScore := base
	otherScore.Score = 73
	added, _ = b.AddUnique(ctx, otherScore, DefaultWindow)
	assert.True(t, added)

	assert.Len(t, b.Entries(), 4)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	saver := &memorySaver{}
	b := New(Snapshot{Entries: []Entry{{PlayerName: "Ada", Score: 1}}}, WithSaver(saver))

	require.NoError(t, b.Clear(ctx))
	assert.Empty(t, b.Entries())
	require.Len(t, saver.saved, 1)
	assert.NotNil(t, saver.saved[0].Entries)
	assert.Empty(t, saver.saved[0].Entries)
}

func TestRank(t *testing.T) {
	entries := []Entry{
		{PlayerName: "a", Score: 60, CompletedAt: 1},
		{PlayerName: "b", Score: 90, CompletedAt: 2},
		{PlayerName: "c", Score: 60, CompletedAt: 3},
		{PlayerName: "d", Score: 75, CompletedAt: 4},
	}

	var names []string
	for _, e := range Rank(entries) {
		names = append(names, e.PlayerName)
	}
	assert.Equal(t, []string{"b", "d", "c", "a"}, names)
	assert.Equal(t, "a", entries[0].PlayerName, "input is not reordered")
}

func TestRecordRun(t *testing.T) {
	ctx := context.Background()
	b := New(Snapshot{}, WithWindow(time.Minute))

	run := model.RunSummary{RunID: "r1", Role: model.RoleBlue, MissionID: "blue-1", Score: 80, CompletedAt: 10_000}
	require.NoError(t, b.RecordRun(ctx, run))
	require.NoError(t, b.RecordRun(ctx, run))

	entries := b.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, Entry{PlayerName: model.AnonymousPlayer, Role: model.RoleBlue, Score: 80, CompletedAt: 10_000}, entries[0])

	run.CompletedAt += time.Minute.Milliseconds()
	require.NoError(t, b.RecordRun(ctx, run))
	assert.Len(t, b.Entries(), 2)
}

func TestSaveError(t *testing.T) {
	b := New(Snapshot{}, WithSaver(&memorySaver{err: errors.New("disk full")}))

	err := b.Add(context.Background(), Entry{PlayerName: "Ada"})
	assert.ErrorContains(t, err, "disk full")
	assert.Len(t, b.Entries(), 1, "in-memory list still updated")
}

func TestSnapshot_IsCopy(t *testing.T) {
	b := New(Snapshot{Entries: []Entry{{PlayerName: "Ada"}}})
	snap := b.Snapshot()
	snap.Entries[0].PlayerName = "Eve"
	assert.Equal(t, "Ada", b.Entries()[0].PlayerName)
}
