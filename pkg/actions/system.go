package actions

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pmos-ai/pmosd/pkg/host"
	"github.com/pmos-ai/pmosd/pkg/logger"
)

// Settings panel intents reachable by voice.
var settingsIntents = map[string]string{
	"wifi":      "android.settings.WIFI_SETTINGS",
	"bluetooth": "android.settings.BLUETOOTH_SETTINGS",
	"battery":   "android.intent.action.POWER_USAGE_SUMMARY",
	"airplane":  "android.settings.AIRPLANE_MODE_SETTINGS",
}

// System covers display brightness, settings panels and the torch.
type System struct {
	runner host.Runner
}

func NewSystem(runner host.Runner) *System {
	return &System{runner: runner}
}

// SetBrightness accepts a 0-100 percentage and maps it onto the 0-255
// range the brightness service expects.
func (s *System) SetBrightness(ctx context.Context, level int) Outcome {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	raw := level * 255 / 100
	if _, err := s.runner.Run(ctx, "termux-brightness", strconv.Itoa(raw)); err != nil {
		logger.ErrorCF("system", "Failed to set brightness", map[string]interface{}{
			"level": level,
			"error": err.Error(),
		})
		return failed("Failed to set brightness.")
	}
	return ok(fmt.Sprintf("Brightness set to %d%%", level))
}

// OpenSettings navigates to a named settings panel.
func (s *System) OpenSettings(ctx context.Context, panel string) Outcome {
	intent, known := settingsIntents[panel]
	if !known {
		return failed("Setting not found.")
	}
	if _, err := s.runner.Run(ctx, "am", "start", "-a", intent); err != nil {
		logger.ErrorCF("system", "Failed to open settings", map[string]interface{}{
			"panel": panel,
			"error": err.Error(),
		})
		return failed("Failed to open settings.")
	}
	return ok(fmt.Sprintf("Opening %s settings...", panel))
}

// Torch toggles the camera flashlight.
func (s *System) Torch(ctx context.Context, on bool) Outcome {
	state := "off"
	message := "Turning off flashlight..."
	if on {
		state = "on"
		message = "Turning on flashlight..."
	}
	if _, err := s.runner.Run(ctx, "termux-torch", state); err != nil {
		logger.ErrorCF("system", "Failed to toggle torch", map[string]interface{}{
			"state": state,
			"error": err.Error(),
		})
		return failed("Failed to toggle flashlight.")
	}
	return ok(message)
}
