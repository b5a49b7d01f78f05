package interpreter

import "github.com/fatimatanveer/ethical-hackers-journey/internal/model"

// Effect is the structured result of one command.
// It is the terminal text protocol: output plus optional impact fields.
type Effect struct {
	Output               string   `json:"output"`
	EthicsImpact         int      `json:"ethicsImpact,omitempty"`
	DetectionRiskImpact  int      `json:"detectionRiskImpact,omitempty"`
	TechnicalScoreImpact int      `json:"technicalScoreImpact,omitempty"`
	CompletesObjectives  []string `json:"completesObjectives,omitempty"`
	Alerts               []Alert  `json:"alerts,omitempty"`

	// Recognized is false for unknown, role-mismatched and blank commands.
	Recognized bool `json:"-"`
	// ClearHistory asks the engine to flush the terminal history.
	ClearHistory bool `json:"-"`
}

// Alert is a side-narrative line appended after the command's own entry.
type Alert struct {
	Message             string `json:"message"`
	DetectionRiskImpact int    `json:"detectionRiskImpact,omitempty"`
}

// Delta returns the primary metric impact, excluding alerts.
func (e Effect) Delta() model.Delta {
	return model.Delta{
		Technical:     e.TechnicalScoreImpact,
		Ethics:        e.EthicsImpact,
		DetectionRisk: e.DetectionRiskImpact,
	}
}
