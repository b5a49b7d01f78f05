package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatimatanveer/ethical-hackers-journey/internal/model"
)

const minimalMission = `id: m1
title: "Minimal"
description: "A tiny mission"
briefing: "Go."
role: red
difficulty: beginner
objectives:
  - id: o1
    description: "Perform reconnaissance"
scenarios:
  - id: s1
    title: "Only"
    description: "Pick one"
    choices:
      - id: c1
        text: "Do it"
        ethics_impact: 1
        detection_risk_impact: 0
        technical_score_impact: 2
        completes_objectives: [o1]
initial_commands: [help]
`

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	ids := func(ts []MissionTemplate) []string {
		var out []string
		for _, t := range ts {
			out = append(out, t.ID)
		}
		return out
	}

	assert.Equal(t, []string{"red-1", "red-2", "blue-1", "blue-2"}, ids(c.Missions()))
	assert.Equal(t, []string{"red-1", "red-2"}, ids(c.ByRole(model.RoleRed)))
	assert.Equal(t, []string{"blue-1", "blue-2"}, ids(c.ByRole(model.RoleBlue)))
	assert.Equal(t, []string{"red-1", "blue-1"}, ids(c.ByDifficulty(model.DifficultyBeginner)))
	assert.Empty(t, c.ByDifficulty(model.DifficultyAdvanced))
	assert.Equal(t, 4, c.Len())

	red1, ok := c.Mission("red-1")
	require.True(t, ok)
	assert.Equal(t, "Web Application Vulnerability Assessment", red1.Title)
	assert.Len(t, red1.Objectives, 4)
	assert.Equal(t, []string{"help", "scan target", "objectives"}, red1.InitialCommands)

	blue1, _ := c.Mission("blue-1")
	assert.Equal(t, "log-analysis", blue1.Scenarios[0].RequiresMiniGame)

	_, ok = c.Mission("nope")
	assert.False(t, ok)
}

func TestCatalog_IsReadOnly(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	m, _ := c.Mission("red-1")
	m.Title = "changed"
	m.Scenarios[0].Choices[0].CompletesObjectives[0] = "changed"

	roster := c.Instantiate()
	roster[0].Objectives[0].Completed = true
	roster[0].Scenarios[0].Completed = true

	again, _ := c.Mission("red-1")
	assert.Equal(t, "Web Application Vulnerability Assessment", again.Title)
	assert.Equal(t, "r1-obj1", again.Scenarios[0].Choices[0].CompletesObjectives[0])

	fresh := c.Instantiate()
	assert.False(t, fresh[0].Objectives[0].Completed)
	assert.False(t, fresh[0].Scenarios[0].Completed)
}

func TestInstance(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	red1, _ := c.Mission("red-1")
	m := red1.Instance()

	assert.Equal(t, model.RoleRed, m.Role)
	assert.Equal(t, "Proper documentation helps the organization fix vulnerabilities", m.Objectives[3].EthicalImplications)

	choice := m.Scenario("r1-s3").Choice("r1-s3-c1")
	require.NotNil(t, choice)
	assert.True(t, choice.EndsMission)
	assert.NotEmpty(t, choice.FailReason)
	assert.Equal(t, model.Delta{Technical: 2, Ethics: -7, DetectionRisk: 4}, choice.Delta())
	assert.Equal(t, []string{"r1-obj2"}, m.Scenario("r1-s2").RequiredObjectives)
}

func TestLoad_FallsBackToFileOrder(t *testing.T) {
	fsys := fstest.MapFS{
		"m1.yaml": {Data: []byte(minimalMission)},
	}

	c, err := Load(fsys)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "m1.yaml"), []byte(minimalMission), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, IndexFile), []byte("missions: [m1]\n"), 0o644))

	c, err := LoadDir(dir)
	require.NoError(t, err)
	m, ok := c.Mission("m1")
	require.True(t, ok)
	assert.Equal(t, "Minimal", m.Title)

	_, err = LoadDir(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestLoad_SchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown field", minimalMission + "reward: 10\n"},
		{"bad role", replace(minimalMission, "role: red", "role: purple")},
		{"bad difficulty", replace(minimalMission, "difficulty: beginner", "difficulty: easy")},
		{"non-integer impact", replace(minimalMission, "ethics_impact: 1", "ethics_impact: 1.5")},
		{"missing title", replace(minimalMission, "title: \"Minimal\"\n", "")},
		{"unknown mini game", replace(minimalMission, "    choices:", "    requires_mini_game: packet-capture\n    choices:")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(fstest.MapFS{"m1.yaml": {Data: []byte(tt.data)}})
			require.Error(t, err)

			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, ErrSchema, verrs[0].Code)
		})
	}
}

func TestLoad_FileNameMismatch(t *testing.T) {
	_, err := Load(fstest.MapFS{"other.yaml": {Data: []byte(minimalMission)}})

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, ErrMissionFileName, verrs[0].Code)
}

func TestLoad_BadIndex(t *testing.T) {
	_, err := Load(fstest.MapFS{
		IndexFile: {Data: []byte("missions: []\n")},
		"m1.yaml": {Data: []byte(minimalMission)},
	})
	assert.Error(t, err)

	_, err = Load(fstest.MapFS{
		IndexFile: {Data: []byte("missions: [m2]\n")},
	})
	assert.Error(t, err)
}

func replace(s, old, new string) string {
	return strings.Replace(s, old, new, 1)
}
