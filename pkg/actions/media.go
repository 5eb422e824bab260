package actions

import (
	"context"
	"fmt"

	"github.com/pmos-ai/pmosd/pkg/host"
	"github.com/pmos-ai/pmosd/pkg/logger"
)

// MediaControl names a transport action.
type MediaControl string

const (
	MediaPlayPause MediaControl = "play_pause"
	MediaPause     MediaControl = "pause"
	MediaNext      MediaControl = "next"
	MediaPrevious  MediaControl = "previous"
)

// Android keycodes for media session key injection.
var mediaKeycodes = map[MediaControl]string{
	MediaPlayPause: "85",
	MediaPause:     "127",
	MediaNext:      "87",
	MediaPrevious:  "88",
}

// Media controls playback: launching a search-driven play intent for
// named songs and injecting media keys for transport commands.
type Media struct {
	runner host.Runner
}

func NewMedia(runner host.Runner) *Media {
	return &Media{runner: runner}
}

// PlaySong opens the default music app searching for and playing query.
func (m *Media) PlaySong(ctx context.Context, query string) Outcome {
	_, err := m.runner.Run(ctx, "am", "start",
		"-a", "android.media.action.MEDIA_PLAY_FROM_SEARCH",
		"--es", "query", query,
		"--es", "android.intent.extra.focus", "vnd.android.cursor.item/audio",
	)
	if err != nil {
		logger.ErrorCF("media", "Failed to start music app", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return failed("Failed to open music app. Is it installed?")
	}
	return ok(fmt.Sprintf("Playing %q...", query))
}

// Control injects the media key for action into the active session.
func (m *Media) Control(ctx context.Context, action MediaControl) Outcome {
	keycode, known := mediaKeycodes[action]
	if !known {
		return failed("Unknown media command.")
	}
	if _, err := m.runner.Run(ctx, "input", "keyevent", keycode); err != nil {
		logger.ErrorCF("media", "Failed to send media key", map[string]interface{}{
			"action": string(action),
			"error":  err.Error(),
		})
		return failed("Failed to send media command.")
	}
	return ok(fmt.Sprintf("Sending %s command...", action))
}
