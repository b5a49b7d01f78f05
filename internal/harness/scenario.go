package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted play-through.
// Steps drive the engine; assertions check the final state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Player and Role are set before the first step.
	Player string `yaml:"player,omitempty"`
	Role   string `yaml:"role,omitempty"`

	// Random lists the rolls served to the command interpreter, in order.
	// Once exhausted every roll is 0.99, so no alert fires.
	Random []float64 `yaml:"random,omitempty"`

	// RunID pins the run id. If empty, defaults to testutil.DefaultRunID.
	RunID string `yaml:"run_id,omitempty"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step kinds.
const (
	StepStart          = "start"
	StepCommand        = "command"
	StepChoose         = "choose"
	StepMiniGame       = "minigame"
	StepComplete       = "complete"
	StepFireHints      = "fire_hints"
	StepAdvance        = "advance"
	StepTick           = "tick"
	StepReset          = "reset"
	StepClearHighlight = "clear_highlight"
)

// Step is one player intent or clock movement.
type Step struct {
	// Do is the step kind.
	Do string `yaml:"do"`

	// Mission is the mission id (start).
	Mission string `yaml:"mission,omitempty"`

	// Input is the raw command text (command).
	Input string `yaml:"input,omitempty"`

	// Scenario and Choice identify a decision (choose, minigame).
	Scenario string `yaml:"scenario,omitempty"`
	Choice   string `yaml:"choice,omitempty"`

	// Objective is the objective id (complete).
	Objective string `yaml:"objective,omitempty"`

	// Flags lists the 1-based log entries flagged as suspicious (minigame).
	Flags []int `yaml:"flags,omitempty"`

	// Duration is a Go duration string (advance, tick).
	Duration string `yaml:"duration,omitempty"`

	// Expect checks the step's immediate result (command, minigame).
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect checks a step result. Unset fields are not checked.
type Expect struct {
	// Output is the exact command output.
	Output *string `yaml:"output,omitempty"`

	// Contains is a substring of the command output.
	Contains string `yaml:"contains,omitempty"`

	// Recognized reports whether the command was recognized.
	Recognized *bool `yaml:"recognized,omitempty"`

	// Passed reports whether a mini-game attempt passed.
	Passed *bool `yaml:"passed,omitempty"`
}

// Assertion kinds.
const (
	AssertStatus           = "status"
	AssertMetric           = "metric"
	AssertScore            = "score"
	AssertObjective        = "objective"
	AssertScenario         = "scenario"
	AssertAvailable        = "available"
	AssertTerminalContains = "terminal_contains"
	AssertTerminalCount    = "terminal_count"
	AssertHighlight        = "highlight"
	AssertLeaderboard      = "leaderboard"
	AssertPersisted        = "persisted"
)

// Metric names accepted by the metric assertion.
var metricNames = map[string]bool{
	"technical":      true,
	"ethics":         true,
	"detection_risk": true,
	"time_elapsed":   true,
}

// Assertion validates the final state.
type Assertion struct {
	// Type selects the check:
	// - "status": mission status equals Value
	// - "metric": Metric equals Equals
	// - "score": final score equals Equals
	// - "objective": objective ID has Completed
	// - "scenario": scenario ID has Completed and, if set, Choice selected
	// - "available": available scenario ids equal IDs, in order
	// - "terminal_contains": some terminal output contains Output
	// - "terminal_count": exactly Count terminal outputs contain Output
	// - "highlight": highlighted scenario equals Value ("" for none)
	// - "leaderboard": the leaderboard holds Count entries
	// - "persisted": the stored snapshot equals the engine snapshot
	Type string `yaml:"type"`

	Value     string   `yaml:"value,omitempty"`
	Metric    string   `yaml:"metric,omitempty"`
	Equals    *int     `yaml:"equals,omitempty"`
	ID        string   `yaml:"id,omitempty"`
	Completed *bool    `yaml:"completed,omitempty"`
	Choice    string   `yaml:"choice,omitempty"`
	IDs       []string `yaml:"ids,omitempty"`
	Output    string   `yaml:"output,omitempty"`
	Count     *int     `yaml:"count,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Role != "" && s.Role != "red" && s.Role != "blue" {
		return fmt.Errorf("role must be red or blue, got %q", s.Role)
	}
	for i, r := range s.Random {
		if r < 0 || r >= 1 {
			return fmt.Errorf("random[%d]: %v is outside [0,1)", i, r)
		}
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, s *Step) error {
	switch s.Do {
	case "":
		return fmt.Errorf("steps[%d]: do is required", index)
	case StepStart:
		if s.Mission == "" {
			return fmt.Errorf("steps[%d]: mission is required for start", index)
		}
	case StepCommand:
		// Blank input is a legal no-op.
	case StepChoose:
		if s.Scenario == "" || s.Choice == "" {
			return fmt.Errorf("steps[%d]: scenario and choice are required for choose", index)
		}
	case StepMiniGame:
		if s.Scenario == "" {
			return fmt.Errorf("steps[%d]: scenario is required for minigame", index)
		}
	case StepComplete:
		if s.Objective == "" {
			return fmt.Errorf("steps[%d]: objective is required for complete", index)
		}
	case StepAdvance, StepTick:
		d, err := time.ParseDuration(s.Duration)
		if err != nil {
			return fmt.Errorf("steps[%d]: duration: %w", index, err)
		}
		if d < 0 {
			return fmt.Errorf("steps[%d]: duration must not be negative", index)
		}
	case StepFireHints, StepReset, StepClearHighlight:
	default:
		return fmt.Errorf("steps[%d]: unknown step %q", index, s.Do)
	}
	if s.Expect != nil && s.Do != StepCommand && s.Do != StepMiniGame {
		return fmt.Errorf("steps[%d]: expect is only supported for command and minigame", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertStatus:
		if a.Value == "" {
			return fmt.Errorf("assertions[%d]: value is required for status", index)
		}
	case AssertMetric:
		if !metricNames[a.Metric] {
			return fmt.Errorf("assertions[%d]: unknown metric %q", index, a.Metric)
		}
		if a.Equals == nil {
			return fmt.Errorf("assertions[%d]: equals is required for metric", index)
		}
	case AssertScore:
		if a.Equals == nil {
			return fmt.Errorf("assertions[%d]: equals is required for score", index)
		}
	case AssertObjective, AssertScenario:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for %s", index, a.Type)
		}
		if a.Completed == nil && a.Choice == "" {
			return fmt.Errorf("assertions[%d]: completed or choice is required for %s", index, a.Type)
		}
	case AssertAvailable, AssertHighlight, AssertPersisted:
	case AssertTerminalContains:
		if a.Output == "" {
			return fmt.Errorf("assertions[%d]: output is required for terminal_contains", index)
		}
	case AssertTerminalCount:
		if a.Output == "" {
			return fmt.Errorf("assertions[%d]: output is required for terminal_count", index)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for terminal_count", index)
		}
	case AssertLeaderboard:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for leaderboard", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
