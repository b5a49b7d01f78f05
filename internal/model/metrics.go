package model

import "math"

const (
	// MinScore and MaxScore bound every metric score.
	MinScore = 0
	MaxScore = 100
)

// Metrics summarizes player performance for the active play-through.
type Metrics struct {
	TechnicalScore int `json:"technicalScore"`
	EthicsScore    int `json:"ethicsScore"`
	DetectionRisk  int `json:"detectionRisk"`
	TimeElapsed    int `json:"timeElapsed"` // seconds, advisory
}

// Delta is a signed change to the three bounded scores.
type Delta struct {
	Technical     int
	Ethics        int
	DetectionRisk int
}

// IsZero reports whether d changes nothing.
func (d Delta) IsZero() bool {
	return d == Delta{}
}

// Add returns the component-wise sum of d and o.
func (d Delta) Add(o Delta) Delta {
	return Delta{
		Technical:     d.Technical + o.Technical,
		Ethics:        d.Ethics + o.Ethics,
		DetectionRisk: d.DetectionRisk + o.DetectionRisk,
	}
}

// BaselineMetrics returns the metrics every mission starts from.
func BaselineMetrics() Metrics {
	return Metrics{
		TechnicalScore: 50,
		EthicsScore:    50,
		DetectionRisk:  0,
		TimeElapsed:    0,
	}
}

// Clamp bounds v to [MinScore, MaxScore].
func Clamp(v int) int {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// Apply returns m with d added to each score, clamped to [0,100].
func (m Metrics) Apply(d Delta) Metrics {
	m.TechnicalScore = Clamp(m.TechnicalScore + d.Technical)
	m.EthicsScore = Clamp(m.EthicsScore + d.Ethics)
	m.DetectionRisk = Clamp(m.DetectionRisk + d.DetectionRisk)
	return m
}

// Clamped returns m with every score forced into range.
func (m Metrics) Clamped() Metrics {
	return m.Apply(Delta{})
}

// FinalScore computes round(technical*0.4 + ethics*0.4 + (100-risk)*0.2).
func (m Metrics) FinalScore() int {
	stealth := MaxScore - m.DetectionRisk
	return int(math.Round(float64(m.TechnicalScore)*0.4 + float64(m.EthicsScore)*0.4 + float64(stealth)*0.2))
}

// Grade maps a final score to the debrief letter grade.
func Grade(score int) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B"
	case score >= 60:
		return "C"
	case score >= 50:
		return "D"
	default:
		return "F"
	}
}
