// Package severity scores suicide risk on a 0-10 scale from extracted
// patient indicators.
package severity

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
)

// EnergyLevel is the patient's reported energy.
type EnergyLevel string

const (
	EnergyLow    EnergyLevel = "low"
	EnergyNormal EnergyLevel = "normal"
	EnergyHigh   EnergyLevel = "high"
)

// MinScore and MaxScore bound every prediction.
const (
	MinScore = 0
	MaxScore = 10
)

// PatientInfo holds the structured indicators extracted from a counselor note.
type PatientInfo struct {
	Age                 int         `json:"age,omitempty"`
	SleepIssues         bool        `json:"sleep_issues"`
	AppetiteChanges     bool        `json:"appetite_changes"`
	EnergyLevel         EnergyLevel `json:"energy_level"`
	MoodSymptoms        []string    `json:"mood_symptoms"`
	SocialWithdrawal    bool        `json:"social_withdrawal"`
	ConcentrationIssues bool        `json:"concentration_issues"`
	Hopelessness        bool        `json:"hopelessness"`
}

// Scorer predicts a severity score. Implementations are chosen once, at
// construction, by New.
type Scorer interface {
	Name() string
	Predict(ctx context.Context, info PatientInfo, note string) (int, error)
}

// Config selects the scorer variant.
type Config struct {
	// Endpoint of a sequence-classification inference service. Empty selects
	// the rule-based scorer.
	Endpoint    string
	TimeoutSecs int
}

// New returns a ModelScorer when the configured endpoint answers its health
// probe, and a RuleScorer otherwise. A selected model still falls back to
// the rules for individual predictions that fail.
func New(ctx context.Context, cfg Config, logger *slog.Logger) Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Endpoint == "" {
		logger.Info("severity scorer selected", "scorer", "rules", "reason", "no model endpoint configured")
		return NewRuleScorer()
	}
	model := NewModelScorer(cfg.Endpoint, cfg.TimeoutSecs)
	if err := model.Probe(ctx); err != nil {
		logger.Warn("severity model unavailable, falling back to rules", "endpoint", cfg.Endpoint, "error", err)
		return NewRuleScorer()
	}
	logger.Info("severity scorer selected", "scorer", model.Name(), "endpoint", cfg.Endpoint)
	return &fallbackScorer{primary: model, secondary: NewRuleScorer(), logger: logger}
}

// fallbackScorer answers from secondary whenever primary fails.
type fallbackScorer struct {
	primary   Scorer
	secondary Scorer
	logger    *slog.Logger
}

func (f *fallbackScorer) Name() string { return f.primary.Name() }

func (f *fallbackScorer) Predict(ctx context.Context, info PatientInfo, note string) (int, error) {
	score, err := f.primary.Predict(ctx, info, note)
	if err == nil {
		return score, nil
	}
	f.logger.Warn("severity prediction failed, using rules", "scorer", f.primary.Name(), "error", err)
	return f.secondary.Predict(ctx, info, note)
}

// Clamp rounds score half to even and limits it to [MinScore, MaxScore].
func Clamp(score float64) int {
	if math.IsNaN(score) {
		return MinScore
	}
	r := int(math.RoundToEven(score))
	if r < MinScore {
		return MinScore
	}
	if r > MaxScore {
		return MaxScore
	}
	return r
}

// Narrative renders the indicators as prose, the input format the
// classification model was trained on.
func Narrative(info PatientInfo, note string) string {
	var parts []string
	if note != "" {
		parts = append(parts, "Clinical observation: "+note)
	}
	var details []string
	if info.Age > 0 {
		details = append(details, fmt.Sprintf("Patient age: %d", info.Age))
	}
	if info.SleepIssues {
		details = append(details, "Sleep disturbances present")
	}
	if info.AppetiteChanges {
		details = append(details, "Appetite changes observed")
	}
	if info.SocialWithdrawal {
		details = append(details, "Social withdrawal behavior")
	}
	if info.ConcentrationIssues {
		details = append(details, "Concentration problems noted")
	}
	if info.Hopelessness {
		details = append(details, "Hopelessness and despair indicators")
	}
	energy := info.EnergyLevel
	if energy == "" {
		energy = EnergyNormal
	}
	details = append(details, "Energy level: "+string(energy))
	if len(info.MoodSymptoms) > 0 {
		details = append(details, "Mood symptoms: "+strings.Join(info.MoodSymptoms, ", "))
	}
	parts = append(parts, "Patient information: "+strings.Join(details, ". "))
	return strings.Join(parts, " ")
}
