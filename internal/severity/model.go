package severity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ModelScorer calls a sequence-classification inference service that
// returns a single regression logit for the narrative text.
type ModelScorer struct {
	endpoint string
	client   *http.Client
}

// NewModelScorer creates a client for endpoint. timeoutSecs <= 0 means 10s.
func NewModelScorer(endpoint string, timeoutSecs int) *ModelScorer {
	t := time.Duration(timeoutSecs) * time.Second
	if t <= 0 {
		t = 10 * time.Second
	}
	return &ModelScorer{endpoint: strings.TrimRight(endpoint, "/"), client: &http.Client{Timeout: t}}
}

func (s *ModelScorer) Name() string { return "model" }

// Probe checks the service health endpoint.
func (s *ModelScorer) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("health check failed: %s", resp.Status)
	}
	return nil
}

type predictRequest struct {
	Text      string `json:"text"`
	MaxLength int    `json:"max_length"`
}

type predictResponse struct {
	Logits []float64 `json:"logits"`
}

// Predict posts the narrative and converts the logit to a 0-10 score.
func (s *ModelScorer) Predict(ctx context.Context, info PatientInfo, note string) (int, error) {
	data, err := json.Marshal(predictRequest{Text: Narrative(info, note), MaxLength: 512})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/predict", bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("severity model failed: %s", resp.Status)
	}
	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode severity response: %w", err)
	}
	if len(out.Logits) == 0 {
		return 0, errors.New("severity model returned no logits")
	}
	return Clamp(out.Logits[0]), nil
}
