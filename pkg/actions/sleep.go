package actions

import (
	"context"

	"github.com/pmos-ai/pmosd/pkg/logger"
)

// SleepAPI is the slice of the backend client the sleep executor needs.
type SleepAPI interface {
	SleepStart(ctx context.Context) (string, error)
	SleepEnd(ctx context.Context) (string, error)
}

// SleepTracker is the one remote-backed executor: classification happens
// locally, but the action itself is a backend call.
type SleepTracker struct {
	api SleepAPI
}

func NewSleepTracker(api SleepAPI) *SleepTracker {
	return &SleepTracker{api: api}
}

func (s *SleepTracker) Start(ctx context.Context) Outcome {
	message, err := s.api.SleepStart(ctx)
	if err != nil {
		logger.ErrorCF("sleep", "Failed to start sleep tracking", map[string]interface{}{
			"error": err.Error(),
		})
		return failed("Network error starting sleep.")
	}
	if message == "" {
		message = "Goodnight! Sleep tracking started."
	}
	return ok(message)
}

func (s *SleepTracker) End(ctx context.Context) Outcome {
	message, err := s.api.SleepEnd(ctx)
	if err != nil {
		logger.ErrorCF("sleep", "Failed to log wake up", map[string]interface{}{
			"error": err.Error(),
		})
		return failed("Network error waking up.")
	}
	if message == "" {
		message = "Welcome back!"
	}
	return ok(message)
}
