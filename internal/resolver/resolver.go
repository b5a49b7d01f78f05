// Package resolver applies a scenario choice to a mission instance.
//
// Resolution is atomic: either every effect is applied or, on error, the
// mission and metrics are untouched. A scenario moves
//
//	Locked (prerequisites unmet) → Available → Completed (terminal)
//
// and a completed scenario never accepts another choice.
package resolver

import (
	"errors"
	"fmt"

	"github.com/fatimatanveer/ethical-hackers-journey/internal/model"
)

// Sentinel errors. The engine treats each of them as a silent no-op.
var (
	ErrScenarioNotFound = errors.New("scenario not found")
	ErrChoiceNotFound   = errors.New("choice not found")
	ErrScenarioResolved = errors.New("scenario already resolved")
	ErrScenarioLocked   = errors.New("scenario locked")
)

// Outcome describes what a resolution changed.
type Outcome struct {
	Scenario model.Scenario
	Choice   model.Choice
	Metrics  model.Metrics
	// NewlyCompleted lists objectives completed by this choice that were
	// not completed before, in the choice's order.
	NewlyCompleted []string
	// EndsMission is set when the choice fails the mission.
	EndsMission bool
	FailReason  string
}

// Resolve selects choiceID in scenarioID on m and returns the updated metrics.
// On error m is left unchanged.
func Resolve(m *model.Mission, metrics model.Metrics, scenarioID, choiceID string) (Outcome, error) {
	s := m.Scenario(scenarioID)
	if s == nil {
		return Outcome{}, fmt.Errorf("%w: %s", ErrScenarioNotFound, scenarioID)
	}
	c := s.Choice(choiceID)
	if c == nil {
		return Outcome{}, fmt.Errorf("%w: %s/%s", ErrChoiceNotFound, scenarioID, choiceID)
	}
	if s.Completed {
		return Outcome{}, fmt.Errorf("%w: %s", ErrScenarioResolved, scenarioID)
	}
	if !m.Unlocked(s) {
		return Outcome{}, fmt.Errorf("%w: %s", ErrScenarioLocked, scenarioID)
	}

	for i := range s.Choices {
		s.Choices[i].Selected = false
	}
	c.Selected = true
	s.SelectedChoiceID = c.ID
	s.Completed = true

	var newly []string
	for _, id := range c.CompletesObjectives {
		if m.CompleteObjective(id) {
			newly = append(newly, id)
		}
	}

	return Outcome{
		Scenario:       s.Clone(),
		Choice:         c.Clone(),
		Metrics:        metrics.Apply(c.Delta()),
		NewlyCompleted: newly,
		EndsMission:    c.EndsMission,
		FailReason:     c.FailReason,
	}, nil
}

// Ignorable reports whether err is one of the resolver's no-op conditions.
func Ignorable(err error) bool {
	return errors.Is(err, ErrScenarioNotFound) ||
		errors.Is(err, ErrChoiceNotFound) ||
		errors.Is(err, ErrScenarioResolved) ||
		errors.Is(err, ErrScenarioLocked)
}
