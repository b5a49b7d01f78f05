package catalog

import (
	"fmt"
	"strings"

	"github.com/fatimatanveer/ethical-hackers-journey/internal/minigame"
)

// Validation error codes (E200-E299)
const (
	ErrSchema = "E200" // file does not match the CUE schema

	// Mission-level errors (E201-E209)
	ErrDuplicateMission  = "E201" // mission id used twice in the catalog
	ErrMissionFileName   = "E202" // mission id differs from its file name
	ErrInvalidRole       = "E203" // role outside red|blue
	ErrInvalidDifficulty = "E204" // difficulty outside the known levels
	ErrNoObjectives      = "E205" // mission has no objectives

	// Reference errors (E210-E219)
	ErrDuplicateObjective = "E210" // objective id repeated within a mission
	ErrDuplicateScenario  = "E211" // scenario id repeated within a mission
	ErrDuplicateChoice    = "E212" // choice id repeated within a scenario
	ErrUnknownObjective   = "E213" // reference to an objective the mission lacks
	ErrUnknownScenario    = "E214" // next_scenario names no scenario of the mission
	ErrUnknownMiniGame    = "E215" // requires_mini_game names no known challenge
	ErrFailReason         = "E216" // fail_reason without ends_mission
	ErrNoChoices          = "E217" // scenario offers no choices
)

// ValidationError represents one catalog validation finding.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors aggregates every finding of one load.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("catalog invalid: %s", strings.Join(msgs, "; "))
}

// Validate runs the referential checks over a set of templates.
// Returns all errors found (does not fail-fast).
func Validate(templates []MissionTemplate) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(templates))
	for _, t := range templates {
		if seen[t.ID] {
			errs = append(errs, ValidationError{
				Field:   t.ID,
				Message: "mission id is not unique",
				Code:    ErrDuplicateMission,
			})
		}
		seen[t.ID] = true
		errs = append(errs, validateMission(&t)...)
	}
	return errs
}

func validateMission(t *MissionTemplate) []ValidationError {
	var errs []ValidationError
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{
			Field:   t.ID + "." + field,
			Message: fmt.Sprintf(format, args...),
			Code:    code,
		})
	}

	if !t.Role.Valid() {
		add("role", ErrInvalidRole, "unknown role %q", t.Role)
	}
	if !t.Difficulty.Valid() {
		add("difficulty", ErrInvalidDifficulty, "unknown difficulty %q", t.Difficulty)
	}
	if len(t.Objectives) == 0 {
		add("objectives", ErrNoObjectives, "at least one objective is required")
	}

	objectives := make(map[string]bool, len(t.Objectives))
	for _, o := range t.Objectives {
		if objectives[o.ID] {
			add("objectives."+o.ID, ErrDuplicateObjective, "objective id is not unique")
		}
		objectives[o.ID] = true
	}

	scenarios := make(map[string]bool, len(t.Scenarios))
	for _, s := range t.Scenarios {
		if scenarios[s.ID] {
			add("scenarios."+s.ID, ErrDuplicateScenario, "scenario id is not unique")
		}
		scenarios[s.ID] = true
	}

	for _, s := range t.Scenarios {
		field := "scenarios." + s.ID
		for _, id := range s.RequiredObjectives {
			if !objectives[id] {
				add(field+".required_objectives", ErrUnknownObjective, "unknown objective %q", id)
			}
		}
		if s.RequiresMiniGame != "" && !minigame.Known(s.RequiresMiniGame) {
			add(field+".requires_mini_game", ErrUnknownMiniGame, "unknown challenge %q", s.RequiresMiniGame)
		}
		if len(s.Choices) == 0 {
			add(field+".choices", ErrNoChoices, "at least one choice is required")
		}

		choices := make(map[string]bool, len(s.Choices))
		for _, c := range s.Choices {
			cfield := field + ".choices." + c.ID
			if choices[c.ID] {
				add(cfield, ErrDuplicateChoice, "choice id is not unique")
			}
			choices[c.ID] = true

			for _, id := range c.CompletesObjectives {
				if !objectives[id] {
					add(cfield+".completes_objectives", ErrUnknownObjective, "unknown objective %q", id)
				}
			}
			if c.NextScenario != "" && !scenarios[c.NextScenario] {
				add(cfield+".next_scenario", ErrUnknownScenario, "unknown scenario %q", c.NextScenario)
			}
			if c.FailReason != "" && !c.EndsMission {
				add(cfield+".fail_reason", ErrFailReason, "fail_reason requires ends_mission")
			}
		}
	}
	return errs
}
