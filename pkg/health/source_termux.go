package health

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pmos-ai/pmosd/pkg/host"
)

// TermuxStepSource reads the step counter sensor via termux-sensor.
type TermuxStepSource struct {
	runner host.Runner
}

func NewTermuxStepSource(runner host.Runner) *TermuxStepSource {
	return &TermuxStepSource{runner: runner}
}

func (s *TermuxStepSource) StepsSinceBoot(ctx context.Context) (int, error) {
	out, err := s.runner.Run(ctx, "termux-sensor", "-s", "step_counter", "-n", "1")
	if err != nil {
		return 0, fmt.Errorf("termux-sensor failed: %w", err)
	}

	// Output shape: {"step_counter": {"values": [12345.0]}}
	var payload map[string]struct {
		Values []float64 `json:"values"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		return 0, fmt.Errorf("unexpected sensor output: %w", err)
	}
	for _, sensor := range payload {
		if len(sensor.Values) > 0 {
			return int(sensor.Values[0]), nil
		}
	}
	return 0, fmt.Errorf("step counter reported no values")
}
