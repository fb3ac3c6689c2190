package severity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleScorer_Predict(t *testing.T) {
	tests := []struct {
		name string
		info PatientInfo
		want int
	}{
		{"baseline", PatientInfo{}, 1},
		{"hopelessness only", PatientInfo{Hopelessness: true}, 4},
		{"sleep and appetite", PatientInfo{SleepIssues: true, AppetiteChanges: true}, 4},
		{"high energy lowers", PatientInfo{EnergyLevel: EnergyHigh}, 0},
		{"elderly", PatientInfo{Age: 70}, 2},
		{"middle age adds nothing", PatientInfo{Age: 40}, 1},
		{"energy level is case insensitive", PatientInfo{EnergyLevel: "LOW"}, 3},
		{"everything clamps to max", PatientInfo{
			Age: 20, SleepIssues: true, AppetiteChanges: true, EnergyLevel: EnergyLow,
			MoodSymptoms: []string{"sadness", "emptiness"}, SocialWithdrawal: true,
			ConcentrationIssues: true, Hopelessness: true,
		}, 10},
	}
	s := NewRuleScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Predict(context.Background(), tt.info, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRuleScorer_Raw(t *testing.T) {
	s := NewRuleScorer()
	assert.InDelta(t, 1.0+2*1.8+0.8, s.Raw(PatientInfo{Age: 18, MoodSymptoms: []string{"a", "b"}}), 1e-9)
	custom := NewRuleScorerWithWeights(Weights{Base: 2, Hopelessness: 1})
	assert.InDelta(t, 3.0, custom.Raw(PatientInfo{Hopelessness: true}), 1e-9)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-3))
	assert.Equal(t, 10, Clamp(12.7))
	assert.Equal(t, 2, Clamp(2.5))
	assert.Equal(t, 4, Clamp(3.5))
	assert.Equal(t, 0, Clamp(0.4))
}

func TestNarrative(t *testing.T) {
	text := Narrative(PatientInfo{
		Age:          31,
		SleepIssues:  true,
		Hopelessness: true,
		EnergyLevel:  EnergyLow,
		MoodSymptoms: []string{"sadness", "anxiety"},
	}, "client reports feeling stuck")

	assert.Equal(t, "Clinical observation: client reports feeling stuck Patient information: "+
		"Patient age: 31. Sleep disturbances present. Hopelessness and despair indicators. "+
		"Energy level: low. Mood symptoms: sadness, anxiety", text)

	assert.Equal(t, "Patient information: Energy level: normal", Narrative(PatientInfo{}, ""))
}

func modelServer(t *testing.T, healthy bool, logit float64, predictStatus int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			if !healthy {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		case "/predict":
			if predictStatus != http.StatusOK {
				w.WriteHeader(predictStatus)
				return
			}
			var req predictRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(predictResponse{Logits: []float64{logit}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestModelScorer_Predict(t *testing.T) {
	srv := modelServer(t, true, 6.6, http.StatusOK)
	defer srv.Close()

	s := NewModelScorer(srv.URL+"/", 1)
	require.NoError(t, s.Probe(context.Background()))
	got, err := s.Predict(context.Background(), PatientInfo{Hopelessness: true}, "note")
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestModelScorer_PredictClamps(t *testing.T) {
	srv := modelServer(t, true, 42, http.StatusOK)
	defer srv.Close()

	got, err := NewModelScorer(srv.URL, 1).Predict(context.Background(), PatientInfo{}, "")
	require.NoError(t, err)
	assert.Equal(t, MaxScore, got)
}

func TestModelScorer_PredictError(t *testing.T) {
	srv := modelServer(t, true, 0, http.StatusInternalServerError)
	defer srv.Close()

	_, err := NewModelScorer(srv.URL, 1).Predict(context.Background(), PatientInfo{}, "")
	assert.Error(t, err)
}

func TestNew_NoEndpointSelectsRules(t *testing.T) {
	s := New(context.Background(), Config{}, nil)
	assert.Equal(t, "rules", s.Name())
}

func TestNew_UnhealthyEndpointSelectsRules(t *testing.T) {
	srv := modelServer(t, false, 0, http.StatusOK)
	defer srv.Close()

	s := New(context.Background(), Config{Endpoint: srv.URL, TimeoutSecs: 1}, nil)
	assert.Equal(t, "rules", s.Name())
}

func TestNew_HealthyEndpointSelectsModel(t *testing.T) {
	srv := modelServer(t, true, 8, http.StatusOK)
	defer srv.Close()

	s := New(context.Background(), Config{Endpoint: srv.URL, TimeoutSecs: 1}, nil)
	assert.Equal(t, "model", s.Name())
	got, err := s.Predict(context.Background(), PatientInfo{}, "")
	require.NoError(t, err)
	assert.Equal(t, 8, got)
}

func TestNew_ModelFailureFallsBackPerPrediction(t *testing.T) {
	srv := modelServer(t, true, 0, http.StatusBadGateway)
	defer srv.Close()

	s := New(context.Background(), Config{Endpoint: srv.URL, TimeoutSecs: 1}, nil)
	require.Equal(t, "model", s.Name())
	got, err := s.Predict(context.Background(), PatientInfo{Hopelessness: true}, "")
	require.NoError(t, err)
	assert.Equal(t, 4, got)
}
