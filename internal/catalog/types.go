package catalog

import "github.com/fatimatanveer/ethical-hackers-journey/internal/model"

// MissionTemplate is the immutable, catalog-owned definition of a mission.
type MissionTemplate struct {
	ID              string              `yaml:"id" json:"id"`
	Title           string              `yaml:"title" json:"title"`
	Description     string              `yaml:"description" json:"description"`
	Briefing        string              `yaml:"briefing" json:"briefing"`
	Role            model.Role          `yaml:"role" json:"role"`
	Difficulty      model.Difficulty    `yaml:"difficulty" json:"difficulty"`
	Objectives      []ObjectiveTemplate `yaml:"objectives" json:"objectives"`
	Scenarios       []ScenarioTemplate  `yaml:"scenarios" json:"scenarios"`
	InitialCommands []string            `yaml:"initial_commands" json:"initialCommands"`
}

// ObjectiveTemplate defines one objective of a mission.
type ObjectiveTemplate struct {
	ID          string `yaml:"id" json:"id"`
	Description string `yaml:"description" json:"description"`
	EthicalNote string `yaml:"ethical_note,omitempty" json:"ethicalNote,omitempty"`
}

// ScenarioTemplate defines a narrative decision point.
type ScenarioTemplate struct {
	ID                 string           `yaml:"id" json:"id"`
	Title              string           `yaml:"title" json:"title"`
	Description        string           `yaml:"description" json:"description"`
	RequiredObjectives []string         `yaml:"required_objectives,omitempty" json:"requiredObjectives,omitempty"`
	RequiresMiniGame   string           `yaml:"requires_mini_game,omitempty" json:"requiresMiniGame,omitempty"`
	Choices            []ChoiceTemplate `yaml:"choices" json:"choices"`
}

// ChoiceTemplate defines one option of a scenario.
// NextScenario is informational and never gates availability.
type ChoiceTemplate struct {
	ID                   string   `yaml:"id" json:"id"`
	Text                 string   `yaml:"text" json:"text"`
	EthicsImpact         int      `yaml:"ethics_impact" json:"ethicsImpact"`
	DetectionRiskImpact  int      `yaml:"detection_risk_impact" json:"detectionRiskImpact"`
	TechnicalScoreImpact int      `yaml:"technical_score_impact" json:"technicalScoreImpact"`
	Consequence          string   `yaml:"consequence,omitempty" json:"consequence,omitempty"`
	CompletesObjectives  []string `yaml:"completes_objectives,omitempty" json:"completesObjectives,omitempty"`
	EndsMission          bool     `yaml:"ends_mission,omitempty" json:"endsMission,omitempty"`
	FailReason           string   `yaml:"fail_reason,omitempty" json:"failReason,omitempty"`
	NextScenario         string   `yaml:"next_scenario,omitempty" json:"nextScenario,omitempty"`
}

// Instance returns a fresh mutable mission sharing no memory with t.
func (t MissionTemplate) Instance() model.Mission {
	m := model.Mission{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		Briefing:        t.Briefing,
		Role:            t.Role,
		Difficulty:      t.Difficulty,
		Objectives:      make([]model.Objective, len(t.Objectives)),
		Scenarios:       make([]model.Scenario, len(t.Scenarios)),
		InitialCommands: cloneStrings(t.InitialCommands),
	}
	for i, o := range t.Objectives {
		m.Objectives[i] = model.Objective{
			ID:                  o.ID,
			Description:         o.Description,
			EthicalImplications: o.EthicalNote,
		}
	}
	for i, s := range t.Scenarios {
		sc := model.Scenario{
			ID:                 s.ID,
			Title:              s.Title,
			Description:        s.Description,
			RequiredObjectives: cloneStrings(s.RequiredObjectives),
			RequiresMiniGame:   s.RequiresMiniGame,
			Choices:            make([]model.Choice, len(s.Choices)),
		}
		for j, c := range s.Choices {
			sc.Choices[j] = model.Choice{
				ID:                   c.ID,
				Text:                 c.Text,
				EthicsImpact:         c.EthicsImpact,
				DetectionRiskImpact:  c.DetectionRiskImpact,
				TechnicalScoreImpact: c.TechnicalScoreImpact,
				Consequence:          c.Consequence,
				CompletesObjectives:  cloneStrings(c.CompletesObjectives),
				NextScenarioID:       c.NextScenario,
				EndsMission:          c.EndsMission,
				FailReason:           c.FailReason,
			}
		}
		m.Scenarios[i] = sc
	}
	return m
}

func (t MissionTemplate) clone() MissionTemplate {
	objectives := make([]ObjectiveTemplate, len(t.Objectives))
	copy(objectives, t.Objectives)
	scenarios := make([]ScenarioTemplate, len(t.Scenarios))
	for i, s := range t.Scenarios {
		choices := make([]ChoiceTemplate, len(s.Choices))
		for j, c := range s.Choices {
			c.CompletesObjectives = cloneStrings(c.CompletesObjectives)
			choices[j] = c
		}
		s.Choices = choices
		s.RequiredObjectives = cloneStrings(s.RequiredObjectives)
		scenarios[i] = s
	}
	t.Objectives = objectives
	t.Scenarios = scenarios
	t.InitialCommands = cloneStrings(t.InitialCommands)
	return t
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
