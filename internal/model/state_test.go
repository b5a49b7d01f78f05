package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMission() Mission {
	return Mission{
		ID:         "m1",
		Title:      "Sample",
		Role:       RoleRed,
		Difficulty: DifficultyBeginner,
		Objectives: []Objective{
			{ID: "o1", Description: "Perform reconnaissance"},
			{ID: "o2", Description: "Document findings", EthicalImplications: "be kind"},
		},
		Scenarios: []Scenario{
			{
				ID:    "s1",
				Title: "First",
				Choices: []Choice{
					{ID: "c1", Text: "one", CompletesObjectives: []string{"o1"}},
					{ID: "c2", Text: "two", EndsMission: true, FailReason: "nope"},
				},
			},
			{ID: "s2", Title: "Second", RequiredObjectives: []string{"o1"}, Choices: []Choice{{ID: "c1", Text: "x"}}},
		},
		InitialCommands: []string{"help"},
	}
}

func TestMission_CloneIsIndependent(t *testing.T) {
	orig := sampleMission()
	clone := orig.Clone()

	clone.Objectives[0].Completed = true
	clone.Scenarios[0].Choices[0].Selected = true
	clone.Scenarios[0].Choices[0].CompletesObjectives[0] = "changed"
	clone.Scenarios[1].RequiredObjectives[0] = "changed"
	clone.InitialCommands[0] = "changed"

	assert.False(t, orig.Objectives[0].Completed)
	assert.False(t, orig.Scenarios[0].Choices[0].Selected)
	assert.Equal(t, "o1", orig.Scenarios[0].Choices[0].CompletesObjectives[0])
	assert.Equal(t, "o1", orig.Scenarios[1].RequiredObjectives[0])
	assert.Equal(t, "help", orig.InitialCommands[0])
}

func TestMission_CompleteObjectiveIsOneWay(t *testing.T) {
	m := sampleMission()

	assert.True(t, m.CompleteObjective("o1"))
	assert.False(t, m.CompleteObjective("o1"), "second completion is not new")
	assert.False(t, m.CompleteObjective("missing"))
	assert.True(t, m.ObjectiveCompleted("o1"))
	assert.Equal(t, []string{"o1"}, m.CompletedObjectiveIDs())
	assert.False(t, m.AllObjectivesComplete())

	m.CompleteObjective("o2")
	assert.True(t, m.AllObjectivesComplete())
}

func TestMission_AvailableScenarios(t *testing.T) {
	m := sampleMission()

	ids := func() []string {
		var out []string
		for _, s := range m.AvailableScenarios() {
			out = append(out, s.ID)
		}
		return out
	}

	assert.Equal(t, []string{"s1"}, ids())

	m.CompleteObjective("o1")
	assert.Equal(t, []string{"s1", "s2"}, ids())

	m.Scenario("s1").Completed = true
	assert.Equal(t, []string{"s2"}, ids())
}

func TestSnapshot_RoundTrip(t *testing.T) {
	st := NewPlayState([]Mission{sampleMission()})
	st.PlayerName = "Ada"
	st.CurrentMissionID = "m1"
	st.MissionStatus = StatusInProgress
	st.Metrics = Metrics{TechnicalScore: 60, EthicsScore: 40, DetectionRisk: 12, TimeElapsed: 30}
	st.TerminalHistory = append(st.TerminalHistory, TerminalEntry{Command: "help", Output: "...", Timestamp: 1000})
	st.ScenarioHistory = append(st.ScenarioHistory, ScenarioHistoryItem{ScenarioID: "s1", ChoiceID: "c1", Timestamp: 2000})
	st.LastUnlockedScenarioID = "s2"

	data, err := MarshalSnapshot(st.Snapshot())
	require.NoError(t, err)

	snap, err := UnmarshalSnapshot(data)
	require.NoError(t, err)
	restored, err := snap.PlayState()
	require.NoError(t, err)

	assert.Equal(t, st, restored)
}

func TestSnapshot_JSONShape(t *testing.T) {
	st := NewPlayState([]Mission{sampleMission()})

	data, err := MarshalSnapshot(st.Snapshot())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	for _, key := range []string{
		"playerName", "currentRole", "currentMissionId", "missionStatus", "metrics",
		"terminalHistory", "scenarioHistory", "lastUnlockedScenarioId", "missions",
	} {
		assert.Contains(t, doc, key)
	}
	assert.Nil(t, doc["currentMissionId"])
	assert.Nil(t, doc["lastUnlockedScenarioId"])
	assert.Equal(t, []any{}, doc["terminalHistory"])
	assert.Equal(t, "not_started", doc["missionStatus"])

	metrics := doc["metrics"].(map[string]any)
	assert.Equal(t, float64(50), metrics["technicalScore"])
	assert.Equal(t, float64(0), metrics["timeElapsed"])
}

func TestSnapshot_PlayStateRejectsInvalid(t *testing.T) {
	base := NewPlayState([]Mission{sampleMission()})

	badRole := base.Snapshot()
	badRole.CurrentRole = "purple"
	_, err := badRole.PlayState()
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	badStatus := base.Snapshot()
	badStatus.MissionStatus = "paused"
	_, err = badStatus.PlayState()
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	missing := "ghost"
	badMission := base.Snapshot()
	badMission.CurrentMissionID = &missing
	_, err = badMission.PlayState()
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	_, err = UnmarshalSnapshot([]byte("{not json"))
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestSnapshot_PlayStateClampsMetrics(t *testing.T) {
	base := NewPlayState(nil)
	snap := base.Snapshot()
	snap.Metrics = Metrics{TechnicalScore: 180, EthicsScore: -4, DetectionRisk: 101}

	st, err := snap.PlayState()
	require.NoError(t, err)
	assert.Equal(t, Metrics{TechnicalScore: 100, EthicsScore: 0, DetectionRisk: 100}, st.Metrics)
}
