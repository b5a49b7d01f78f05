package engine

import (
	"sort"

	"github.com/fatimatanveer/ethical-hackers-journey/internal/model"
)

// Queries are pure reads over the current state. Every result is a copy.

// CurrentMission returns a copy of the active mission.
func (e *Engine) CurrentMission() (model.Mission, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m := e.state.ActiveMission()
	if m == nil {
		return model.Mission{}, false
	}
	return m.Clone(), true
}

// AvailableScenarios returns the active mission's unlocked, unresolved
// scenarios in catalog order.
func (e *Engine) AvailableScenarios() []model.Scenario {
	e.mu.Lock()
	defer e.mu.Unlock()
	m := e.state.ActiveMission()
	if m == nil {
		return []model.Scenario{}
	}
	return m.AvailableScenarios()
}

// CompletedObjectives returns the ids of completed objectives.
func (e *Engine) CompletedObjectives() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	m := e.state.ActiveMission()
	if m == nil {
		return []string{}
	}
	return m.CompletedObjectiveIDs()
}

// FinalScore returns the weighted score of the current metrics.
func (e *Engine) FinalScore() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Metrics.FinalScore()
}

// HighlightScenarioID returns the last unlocked scenario, or "".
func (e *Engine) HighlightScenarioID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.LastUnlockedScenarioID
}

// Metrics returns the live metrics of the current play-through.
func (e *Engine) Metrics() model.Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Metrics
}

// Status returns the mission status.
func (e *Engine) Status() model.MissionStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.MissionStatus
}

// PlayerName returns the player name, empty until one is set.
func (e *Engine) PlayerName() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.PlayerName
}

// Role returns the selected role.
func (e *Engine) Role() model.Role {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.CurrentRole
}

// TerminalHistory returns the terminal entries in append order.
func (e *Engine) TerminalHistory() []model.TerminalEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.TerminalEntry{}, e.state.TerminalHistory...)
}

// ScenarioHistory returns the resolved choices in resolution order.
func (e *Engine) ScenarioHistory() []model.ScenarioHistoryItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.ScenarioHistoryItem{}, e.state.ScenarioHistory...)
}

// FailureReason returns why the mission failed, or "" unless it has.
func (e *Engine) FailureReason() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.failReason
}

// Snapshot returns the persisted shape of the current state.
func (e *Engine) Snapshot() model.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Snapshot()
}

// RunID returns the id of the current play-through, or "" before a start.
func (e *Engine) RunID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runID
}

// LogKind distinguishes mission log items.
type LogKind string

const (
	LogCommand  LogKind = "command"
	LogDecision LogKind = "decision"
)

// Fallback labels for history items whose scenario or choice is missing
// from the roster.
const (
	UnknownScenario = "Unknown Scenario"
	UnknownChoice   = "Unknown Choice"
)

// LogItem is one line of the mission log.
//
// Command items carry Command and Output. Decision items carry the
// scenario title, the choice text and its consequence.
type LogItem struct {
	Kind        LogKind `json:"kind"`
	Timestamp   int64   `json:"timestamp"`
	Command     string  `json:"command,omitempty"`
	Output      string  `json:"output,omitempty"`
	ScenarioID  string  `json:"scenarioId,omitempty"`
	Scenario    string  `json:"scenario,omitempty"`
	ChoiceID    string  `json:"choiceId,omitempty"`
	Choice      string  `json:"choice,omitempty"`
	Consequence string  `json:"consequence,omitempty"`
}

// MissionLog merges terminal and scenario history into one timeline
// ordered by timestamp. Ties keep terminal entries before decisions, each
// in their own append order.
func (e *Engine) MissionLog() []LogItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := make([]LogItem, 0, len(e.state.TerminalHistory)+len(e.state.ScenarioHistory))
	for _, t := range e.state.TerminalHistory {
		items = append(items, LogItem{
			Kind:      LogCommand,
			Timestamp: t.Timestamp,
			Command:   t.Command,
			Output:    t.Output,
		})
	}

	m := e.state.ActiveMission()
	for _, h := range e.state.ScenarioHistory {
		item := LogItem{
			Kind:       LogDecision,
			Timestamp:  h.Timestamp,
			ScenarioID: h.ScenarioID,
			ChoiceID:   h.ChoiceID,
			Scenario:   UnknownScenario,
			Choice:     UnknownChoice,
		}
		if m != nil {
			if s := m.Scenario(h.ScenarioID); s != nil {
				item.Scenario = s.Title
				if ch := s.Choice(h.ChoiceID); ch != nil {
					item.Choice = ch.Text
					item.Consequence = ch.Consequence
				}
			}
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp < items[j].Timestamp
	})
	return items
}
