package harness

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/fatimatanveer/ethical-hackers-journey/internal/engine"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/leaderboard"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/model"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/store"
)

// AssertionContext holds what assertions read.
type AssertionContext struct {
	Ctx    context.Context
	Engine *engine.Engine
	Store  *store.Store
	Board  *leaderboard.Board
}

// AssertionError is returned when an assertion fails.
// It includes the terminal tail to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Terminal []model.TerminalEntry
}

// tailLen bounds the terminal lines printed with a failure.
const tailLen = 5

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Terminal) > 0 {
		fmt.Fprintf(&buf, "\nTerminal tail:\n")
		start := max(0, len(e.Terminal)-tailLen)
		for i := start; i < len(e.Terminal); i++ {
			entry := e.Terminal[i]
			first, _, _ := strings.Cut(entry.Output, "\n")
			fmt.Fprintf(&buf, "  [%d] %q -> %s\n", i+1, entry.Command, first)
		}
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluate(a, actx); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(a Assertion, actx *AssertionContext) error {
	eng := actx.Engine
	fail := func(expected, actual string) error {
		return &AssertionError{
			Type:     a.Type,
			Expected: expected,
			Actual:   actual,
			Terminal: eng.TerminalHistory(),
		}
	}

	switch a.Type {
	case AssertStatus:
		if got := string(eng.Status()); got != a.Value {
			return fail("status "+a.Value, "status "+got)
		}

	case AssertMetric:
		if got := metricValue(eng.Metrics(), a.Metric); got != *a.Equals {
			return fail(fmt.Sprintf("%s = %d", a.Metric, *a.Equals), fmt.Sprintf("%s = %d", a.Metric, got))
		}

	case AssertScore:
		if got := eng.FinalScore(); got != *a.Equals {
			return fail(fmt.Sprintf("score %d", *a.Equals), fmt.Sprintf("score %d", got))
		}

	case AssertObjective:
		done := slices.Contains(eng.CompletedObjectives(), a.ID)
		if a.Completed != nil && done != *a.Completed {
			return fail(fmt.Sprintf("objective %s completed = %t", a.ID, *a.Completed),
				fmt.Sprintf("completed = %t", done))
		}

	case AssertScenario:
		return assertScenario(a, eng, fail)

	case AssertAvailable:
		var got []string
		for _, s := range eng.AvailableScenarios() {
			got = append(got, s.ID)
		}
		if !slices.Equal(got, a.IDs) {
			return fail(fmt.Sprintf("available %v", a.IDs), fmt.Sprintf("available %v", got))
		}

	case AssertTerminalContains:
		if countOutputs(eng.TerminalHistory(), a.Output) == 0 {
			return fail(fmt.Sprintf("terminal output containing %q", a.Output), "not found in terminal history")
		}

	case AssertTerminalCount:
		if got := countOutputs(eng.TerminalHistory(), a.Output); got != *a.Count {
			return fail(fmt.Sprintf("%d outputs containing %q", *a.Count, a.Output), fmt.Sprintf("%d outputs", got))
		}

	case AssertHighlight:
		if got := eng.HighlightScenarioID(); got != a.Value {
			return fail(fmt.Sprintf("highlight %q", a.Value), fmt.Sprintf("highlight %q", got))
		}

	case AssertLeaderboard:
		if got := len(actx.Board.Entries()); got != *a.Count {
			return fail(fmt.Sprintf("%d leaderboard entries", *a.Count), fmt.Sprintf("%d entries", got))
		}

	case AssertPersisted:
		return assertPersisted(actx, fail)

	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
	return nil
}

func assertScenario(a Assertion, eng *engine.Engine, fail func(string, string) error) error {
	m, ok := eng.CurrentMission()
	if !ok {
		return fail("scenario "+a.ID, "no active mission")
	}
	s := m.Scenario(a.ID)
	if s == nil {
		return fail("scenario "+a.ID, "not in mission "+m.ID)
	}
	if a.Completed != nil && s.Completed != *a.Completed {
		return fail(fmt.Sprintf("scenario %s completed = %t", a.ID, *a.Completed),
			fmt.Sprintf("completed = %t", s.Completed))
	}
	if a.Choice != "" && s.SelectedChoiceID != a.Choice {
		return fail(fmt.Sprintf("scenario %s choice %s", a.ID, a.Choice),
			fmt.Sprintf("choice %q", s.SelectedChoiceID))
	}
	return nil
}

// assertPersisted compares the stored snapshot with the live one.
// Both sides are re-encoded so nil and empty collections compare equal.
func assertPersisted(actx *AssertionContext, fail func(string, string) error) error {
	stored, err := actx.Store.LoadGame(actx.Ctx)
	if err != nil {
		return fail("persisted snapshot", err.Error())
	}
	want, err := model.MarshalSnapshot(actx.Engine.Snapshot())
	if err != nil {
		return err
	}
	got, err := model.MarshalSnapshot(stored)
	if err != nil {
		return err
	}
	if !bytes.Equal(want, got) {
		return fail("persisted snapshot equal to engine state", "snapshots differ")
	}
	return nil
}

func metricValue(m model.Metrics, name string) int {
	switch name {
	case "technical":
		return m.TechnicalScore
	case "ethics":
		return m.EthicsScore
	case "detection_risk":
		return m.DetectionRisk
	case "time_elapsed":
		return m.TimeElapsed
	}
	return -1
}

func countOutputs(history []model.TerminalEntry, substr string) int {
	n := 0
	for _, e := range history {
		if strings.Contains(e.Output, substr) {
			n++
		}
	}
	return n
}
