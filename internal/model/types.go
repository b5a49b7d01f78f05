package model

// Role is the player affiliation of a mission.
type Role string

const (
	RoleRed  Role = "red"
	RoleBlue Role = "blue"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleRed || r == RoleBlue
}

// Difficulty is the catalog difficulty level of a mission.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// MissionStatus is the lifecycle stage of the active play-through.
//
//	not_started → in_progress → completed | failed
//
// completed and failed are terminal until an explicit reset or restart.
type MissionStatus string

const (
	StatusNotStarted MissionStatus = "not_started"
	StatusInProgress MissionStatus = "in_progress"
	StatusCompleted  MissionStatus = "completed"
	StatusFailed     MissionStatus = "failed"
)

// Valid reports whether s is a known status.
func (s MissionStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s MissionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// TerminalEntry is one line pair in the simulated terminal.
// Synthetic entries (alerts, unlock notices, completion) have an empty Command.
type TerminalEntry struct {
	Command   string `json:"command"`
	Output    string `json:"output"`
	Timestamp int64  `json:"timestamp"` // Unix milliseconds
}

// ScenarioHistoryItem records one resolved scenario choice.
type ScenarioHistoryItem struct {
	ScenarioID string `json:"scenarioId"`
	ChoiceID   string `json:"choiceId"`
	Timestamp  int64  `json:"timestamp"` // Unix milliseconds
}

// AnonymousPlayer names runs recorded without a player name.
const AnonymousPlayer = "Anonymous"

// RunSummary describes a successfully completed play-through.
type RunSummary struct {
	RunID       string
	PlayerName  string
	Role        Role
	MissionID   string
	Score       int
	CompletedAt int64 // Unix milliseconds
}
