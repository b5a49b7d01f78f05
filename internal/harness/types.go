package harness

import (
	"github.com/fatimatanveer/ethical-hackers-journey/internal/engine"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/leaderboard"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/model"
)

// Transcript is the observable end state of a scenario run.
// It is what golden files capture.
type Transcript struct {
	Scenario            string              `json:"scenario"`
	RunID               string              `json:"runId"`
	Player              string              `json:"player"`
	Role                model.Role          `json:"role"`
	Mission             string              `json:"mission"`
	Status              model.MissionStatus `json:"status"`
	FailureReason       string              `json:"failureReason,omitempty"`
	Metrics             model.Metrics       `json:"metrics"`
	Score               int                 `json:"score"`
	Grade               string              `json:"grade"`
	CompletedObjectives []string            `json:"completedObjectives"`
	AvailableScenarios  []string            `json:"availableScenarios"`
	Highlight           string              `json:"highlight,omitempty"`
	Log                 []engine.LogItem    `json:"log"`
	Leaderboard         []leaderboard.Entry `json:"leaderboard"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Transcript is the final state used for golden comparison.
	Transcript Transcript `json:"transcript"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
