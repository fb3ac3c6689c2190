package severity

import (
	"context"
	"strings"
)

// Weights are the coefficients of the linear rule scorer.
type Weights struct {
	Base                float64
	SleepIssues         float64
	AppetiteChanges     float64
	EnergyLow           float64
	EnergyHigh          float64
	PerMoodSymptom      float64
	SocialWithdrawal    float64
	ConcentrationIssues float64
	Hopelessness        float64
	YoungAdult          float64
	Elderly             float64
}

// DefaultWeights weight hopelessness highest.
var DefaultWeights = Weights{
	Base:                1.0,
	SleepIssues:         1.5,
	AppetiteChanges:     1.2,
	EnergyLow:           2.0,
	EnergyHigh:          -0.5,
	PerMoodSymptom:      1.8,
	SocialWithdrawal:    2.2,
	ConcentrationIssues: 1.5,
	Hopelessness:        3.5,
	YoungAdult:          0.8,
	Elderly:             0.5,
}

// RuleScorer is a deterministic hand-tuned linear scorer.
type RuleScorer struct {
	weights Weights
}

func NewRuleScorer() *RuleScorer { return &RuleScorer{weights: DefaultWeights} }

// NewRuleScorerWithWeights allows overriding the coefficients.
func NewRuleScorerWithWeights(w Weights) *RuleScorer { return &RuleScorer{weights: w} }

func (s *RuleScorer) Name() string { return "rules" }

// Predict never fails.
func (s *RuleScorer) Predict(_ context.Context, info PatientInfo, _ string) (int, error) {
	return Clamp(s.Raw(info)), nil
}

// Raw returns the unrounded linear score.
func (s *RuleScorer) Raw(info PatientInfo) float64 {
	w := s.weights
	score := w.Base
	if info.SleepIssues {
		score += w.SleepIssues
	}
	if info.AppetiteChanges {
		score += w.AppetiteChanges
	}
	switch EnergyLevel(strings.ToLower(string(info.EnergyLevel))) {
	case EnergyLow:
		score += w.EnergyLow
	case EnergyHigh:
		score += w.EnergyHigh
	}
	score += float64(len(info.MoodSymptoms)) * w.PerMoodSymptom
	if info.SocialWithdrawal {
		score += w.SocialWithdrawal
	}
	if info.ConcentrationIssues {
		score += w.ConcentrationIssues
	}
	if info.Hopelessness {
		score += w.Hopelessness
	}
	switch {
	case info.Age <= 0:
	case info.Age < 25:
		score += w.YoungAdult
	case info.Age > 65:
		score += w.Elderly
	}
	return score
}
