package model

// Objective is a one-way completable task within a mission instance.
type Objective struct {
	ID                  string `json:"id"`
	Description         string `json:"description"`
	Completed           bool   `json:"completed"`
	EthicalImplications string `json:"ethicalImplications,omitempty"`
}

// Choice is one option of a scenario.
// NextScenarioID is informational; the engine never gates on it.
type Choice struct {
	ID                   string   `json:"id"`
	Text                 string   `json:"text"`
	EthicsImpact         int      `json:"ethicsImpact"`
	DetectionRiskImpact  int      `json:"detectionRiskImpact"`
	TechnicalScoreImpact int      `json:"technicalScoreImpact"`
	Consequence          string   `json:"consequence,omitempty"`
	CompletesObjectives  []string `json:"completesObjectives,omitempty"`
	NextScenarioID       string   `json:"nextScenarioId,omitempty"`
	EndsMission          bool     `json:"endsMission,omitempty"`
	FailReason           string   `json:"failReason,omitempty"`
	Selected             bool     `json:"selected,omitempty"`
}

// Delta returns the metric impact of selecting c.
func (c Choice) Delta() Delta {
	return Delta{
		Technical:     c.TechnicalScoreImpact,
		Ethics:        c.EthicsImpact,
		DetectionRisk: c.DetectionRiskImpact,
	}
}

// Scenario is a narrative decision point.
//
//	Locked (prerequisites unmet) → Available → Completed (terminal)
type Scenario struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Choices            []Choice `json:"choices"`
	Completed          bool     `json:"completed"`
	SelectedChoiceID   string   `json:"selectedChoiceId,omitempty"`
	RequiredObjectives []string `json:"requiredObjectives,omitempty"`
	RequiresMiniGame   string   `json:"requiresMiniGame,omitempty"`
}

// Choice returns a pointer to the choice with the given id, or nil.
func (s *Scenario) Choice(id string) *Choice {
	for i := range s.Choices {
		if s.Choices[i].ID == id {
			return &s.Choices[i]
		}
	}
	return nil
}

// SelectedChoice returns the selected choice, or nil if none is selected.
func (s *Scenario) SelectedChoice() *Choice {
	for i := range s.Choices {
		if s.Choices[i].Selected {
			return &s.Choices[i]
		}
	}
	return nil
}

// Mission is a mutable per-play-through mission instance.
type Mission struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Briefing        string      `json:"briefing"`
	Role            Role        `json:"role"`
	Difficulty      Difficulty  `json:"difficulty"`
	Objectives      []Objective `json:"objectives"`
	Scenarios       []Scenario  `json:"scenarios"`
	InitialCommands []string    `json:"initialCommands"`
}

// Objective returns a pointer to the objective with the given id, or nil.
func (m *Mission) Objective(id string) *Objective {
	for i := range m.Objectives {
		if m.Objectives[i].ID == id {
			return &m.Objectives[i]
		}
	}
	return nil
}

// Scenario returns a pointer to the scenario with the given id, or nil.
func (m *Mission) Scenario(id string) *Scenario {
	for i := range m.Scenarios {
		if m.Scenarios[i].ID == id {
			return &m.Scenarios[i]
		}
	}
	return nil
}

// CompleteObjective marks the objective completed and reports whether it was
// newly completed. Unknown ids and already-completed objectives return false.
func (m *Mission) CompleteObjective(id string) bool {
	obj := m.Objective(id)
	if obj == nil || obj.Completed {
		return false
	}
	obj.Completed = true
	return true
}

// ObjectiveCompleted reports whether the objective exists and is completed.
func (m *Mission) ObjectiveCompleted(id string) bool {
	obj := m.Objective(id)
	return obj != nil && obj.Completed
}

// AllObjectivesComplete reports whether every objective is completed.
// A mission without objectives is never complete.
func (m *Mission) AllObjectivesComplete() bool {
	if len(m.Objectives) == 0 {
		return false
	}
	for _, obj := range m.Objectives {
		if !obj.Completed {
			return false
		}
	}
	return true
}

// CompletedObjectiveIDs returns completed objective ids in catalog order.
func (m *Mission) CompletedObjectiveIDs() []string {
	ids := []string{}
	for _, obj := range m.Objectives {
		if obj.Completed {
			ids = append(ids, obj.ID)
		}
	}
	return ids
}

// Unlocked reports whether all of s's required objectives are completed.
func (m *Mission) Unlocked(s *Scenario) bool {
	for _, id := range s.RequiredObjectives {
		if !m.ObjectiveCompleted(id) {
			return false
		}
	}
	return true
}

// Available reports whether s is unlocked and not yet completed.
func (m *Mission) Available(s *Scenario) bool {
	return !s.Completed && m.Unlocked(s)
}

// AvailableScenarios returns copies of the available scenarios in catalog order.
func (m *Mission) AvailableScenarios() []Scenario {
	out := []Scenario{}
	for i := range m.Scenarios {
		if m.Available(&m.Scenarios[i]) {
			out = append(out, m.Scenarios[i].Clone())
		}
	}
	return out
}

// Clone returns a deep copy of c.
func (c Choice) Clone() Choice {
	c.CompletesObjectives = cloneStrings(c.CompletesObjectives)
	return c
}

// Clone returns a deep copy of s.
func (s Scenario) Clone() Scenario {
	if s.Choices != nil {
		choices := make([]Choice, len(s.Choices))
		for i, c := range s.Choices {
			choices[i] = c.Clone()
		}
		s.Choices = choices
	}
	s.RequiredObjectives = cloneStrings(s.RequiredObjectives)
	return s
}

// Clone returns a deep copy of m sharing no memory with the receiver.
func (m Mission) Clone() Mission {
	if m.Objectives != nil {
		objectives := make([]Objective, len(m.Objectives))
		copy(objectives, m.Objectives)
		m.Objectives = objectives
	}
	if m.Scenarios != nil {
		scenarios := make([]Scenario, len(m.Scenarios))
		for i, s := range m.Scenarios {
			scenarios[i] = s.Clone()
		}
		m.Scenarios = scenarios
	}
	m.InitialCommands = cloneStrings(m.InitialCommands)
	return m
}

// CloneMissions deep-copies a roster.
func CloneMissions(ms []Mission) []Mission {
	out := make([]Mission, len(ms))
	for i, m := range ms {
		out[i] = m.Clone()
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
