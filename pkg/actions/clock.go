package actions

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pmos-ai/pmosd/pkg/host"
	"github.com/pmos-ai/pmosd/pkg/logger"
)

// Clock drives the device clock app through the standard alarm intents.
// SKIP_UI asks the clock app to set silently; behavior varies by OEM.
type Clock struct {
	runner host.Runner
	label  string
}

func NewClock(runner host.Runner, label string) *Clock {
	return &Clock{runner: runner, label: label}
}

func (c *Clock) SetAlarm(ctx context.Context, hour, minute int, display string) Outcome {
	_, err := c.runner.Run(ctx, "am", "start",
		"-a", "android.intent.action.SET_ALARM",
		"--ei", "android.intent.extra.alarm.HOUR", strconv.Itoa(hour),
		"--ei", "android.intent.extra.alarm.MINUTES", strconv.Itoa(minute),
		"--ez", "android.intent.extra.alarm.SKIP_UI", "true",
		"--es", "android.intent.extra.alarm.MESSAGE", c.label,
	)
	if err != nil {
		logger.ErrorCF("clock", "Failed to set alarm", map[string]interface{}{
			"time":  display,
			"error": err.Error(),
		})
		return failed("Failed to open clock app.")
	}
	return ok(fmt.Sprintf("Setting alarm for %s...", display))
}

func (c *Clock) SetTimer(ctx context.Context, totalSeconds int, display string) Outcome {
	_, err := c.runner.Run(ctx, "am", "start",
		"-a", "android.intent.action.SET_TIMER",
		"--ei", "android.intent.extra.alarm.LENGTH", strconv.Itoa(totalSeconds),
		"--ez", "android.intent.extra.alarm.SKIP_UI", "true",
		"--es", "android.intent.extra.alarm.MESSAGE", c.label,
	)
	if err != nil {
		logger.ErrorCF("clock", "Failed to set timer", map[string]interface{}{
			"seconds": totalSeconds,
			"error":   err.Error(),
		})
		return failed("Failed to open clock app.")
	}
	return ok(fmt.Sprintf("Setting timer for %s...", display))
}
