package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidSnapshot is returned when a persisted snapshot cannot be rehydrated.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// PlayState is the authoritative state of one play-through.
// An empty CurrentMissionID means no mission is active.
type PlayState struct {
	PlayerName             string
	CurrentRole            Role
	CurrentMissionID       string
	Missions               []Mission
	Metrics                Metrics
	MissionStatus          MissionStatus
	TerminalHistory        []TerminalEntry
	ScenarioHistory        []ScenarioHistoryItem
	LastUnlockedScenarioID string
}

// NewPlayState returns the baseline state over a freshly cloned roster.
func NewPlayState(missions []Mission) PlayState {
	return PlayState{
		CurrentRole:     RoleRed,
		Missions:        missions,
		Metrics:         BaselineMetrics(),
		MissionStatus:   StatusNotStarted,
		TerminalHistory: []TerminalEntry{},
		ScenarioHistory: []ScenarioHistoryItem{},
	}
}

// ActiveMission returns the mission pointed to by CurrentMissionID, or nil.
func (s *PlayState) ActiveMission() *Mission {
	if s.CurrentMissionID == "" {
		return nil
	}
	for i := range s.Missions {
		if s.Missions[i].ID == s.CurrentMissionID {
			return &s.Missions[i]
		}
	}
	return nil
}

// Snapshot is the persisted JSON document of a PlayState.
type Snapshot struct {
	PlayerName             string                `json:"playerName"`
	CurrentRole            Role                  `json:"currentRole"`
	CurrentMissionID       *string               `json:"currentMissionId"`
	MissionStatus          MissionStatus         `json:"missionStatus"`
	Metrics                Metrics               `json:"metrics"`
	TerminalHistory        []TerminalEntry       `json:"terminalHistory"`
	ScenarioHistory        []ScenarioHistoryItem `json:"scenarioHistory"`
	LastUnlockedScenarioID *string               `json:"lastUnlockedScenarioId"`
	Missions               []Mission             `json:"missions"`
}

// Snapshot returns a deep copy of s in its persisted shape.
func (s *PlayState) Snapshot() Snapshot {
	terminal := make([]TerminalEntry, len(s.TerminalHistory))
	copy(terminal, s.TerminalHistory)
	scenarios := make([]ScenarioHistoryItem, len(s.ScenarioHistory))
	copy(scenarios, s.ScenarioHistory)

	return Snapshot{
		PlayerName:             s.PlayerName,
		CurrentRole:            s.CurrentRole,
		CurrentMissionID:       nullable(s.CurrentMissionID),
		MissionStatus:          s.MissionStatus,
		Metrics:                s.Metrics,
		TerminalHistory:        terminal,
		ScenarioHistory:        scenarios,
		LastUnlockedScenarioID: nullable(s.LastUnlockedScenarioID),
		Missions:               CloneMissions(s.Missions),
	}
}

// PlayState rehydrates a snapshot into a state the engine can own.
// Metrics are clamped; an unknown role, status or active mission is rejected.
func (snap Snapshot) PlayState() (PlayState, error) {
	if !snap.CurrentRole.Valid() {
		return PlayState{}, fmt.Errorf("%w: role %q", ErrInvalidSnapshot, snap.CurrentRole)
	}
	if !snap.MissionStatus.Valid() {
		return PlayState{}, fmt.Errorf("%w: mission status %q", ErrInvalidSnapshot, snap.MissionStatus)
	}

	st := PlayState{
		PlayerName:             snap.PlayerName,
		CurrentRole:            snap.CurrentRole,
		CurrentMissionID:       deref(snap.CurrentMissionID),
		Missions:               CloneMissions(snap.Missions),
		Metrics:                snap.Metrics.Clamped(),
		MissionStatus:          snap.MissionStatus,
		TerminalHistory:        make([]TerminalEntry, len(snap.TerminalHistory)),
		ScenarioHistory:        make([]ScenarioHistoryItem, len(snap.ScenarioHistory)),
		LastUnlockedScenarioID: deref(snap.LastUnlockedScenarioID),
	}
	copy(st.TerminalHistory, snap.TerminalHistory)
	copy(st.ScenarioHistory, snap.ScenarioHistory)

	if st.CurrentMissionID != "" && st.ActiveMission() == nil {
		return PlayState{}, fmt.Errorf("%w: active mission %q not in roster", ErrInvalidSnapshot, st.CurrentMissionID)
	}
	return st, nil
}

// MarshalSnapshot encodes a snapshot document.
func MarshalSnapshot(snap Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// UnmarshalSnapshot decodes a snapshot document.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if snap.TerminalHistory == nil {
		snap.TerminalHistory = []TerminalEntry{}
	}
	if snap.ScenarioHistory == nil {
		snap.ScenarioHistory = []ScenarioHistoryItem{}
	}
	return snap, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
