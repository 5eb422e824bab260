// Package health accumulates step-count telemetry between periodic
// flushes to the backend.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// StepSource reads the raw pedometer value: total steps since the last
// device boot.
type StepSource interface {
	StepsSinceBoot(ctx context.Context) (int, error)
}

// Snapshot is one flush payload.
type Snapshot struct {
	Date   string
	Steps  int
	Hourly map[string]int
}

type trackerState struct {
	Offset   int            `json:"offset"`
	LastDate string         `json:"last_date"`
	Hourly   map[string]int `json:"hourly"`
}

// Tracker converts steps-since-boot into steps-today. The sensor only
// ever counts up from boot, so the tracker keeps a per-day offset and
// treats a raw value below the offset as a reboot.
type Tracker struct {
	source StepSource
	path   string
	now    func() time.Time

	mu sync.Mutex
	st trackerState
}

func NewTracker(source StepSource, workspace string) *Tracker {
	t := &Tracker{
		source: source,
		now:    time.Now,
		st:     trackerState{Hourly: map[string]int{}},
	}
	if workspace != "" {
		_ = os.MkdirAll(workspace, 0755)
		t.path = filepath.Join(workspace, "steps.json")
		t.load()
	}
	return t
}

// DailySteps returns the step count for the current day.
func (t *Tracker) DailySteps(ctx context.Context) (int, error) {
	raw, err := t.source.StepsSinceBoot(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read step sensor: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	today := t.now().Format("2006-01-02")
	if t.st.LastDate != today {
		// New day: today's count starts from the current raw value.
		t.st.Offset = raw
		t.st.LastDate = today
		t.st.Hourly = map[string]int{}
		t.saveLocked()
		return 0, nil
	}

	if raw < t.st.Offset {
		// Reboot during the day. Steps before the reboot are lost;
		// count everything since boot as today's.
		t.st.Offset = 0
		t.saveLocked()
		return raw, nil
	}

	return raw - t.st.Offset, nil
}

// Record captures the cumulative count for the current hour and returns
// the snapshot to flush.
func (t *Tracker) Record(ctx context.Context) (Snapshot, error) {
	steps, err := t.DailySteps(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	hourKey := fmt.Sprintf("%02d:00", t.now().Hour())
	if t.st.Hourly == nil {
		t.st.Hourly = map[string]int{}
	}
	t.st.Hourly[hourKey] = steps
	t.saveLocked()

	hourly := make(map[string]int, len(t.st.Hourly))
	for k, v := range t.st.Hourly {
		hourly[k] = v
	}
	return Snapshot{
		Date:   t.now().Format("2006-01-02"),
		Steps:  steps,
		Hourly: hourly,
	}, nil
}

func (t *Tracker) load() {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return
	}
	var st trackerState
	if err := json.Unmarshal(data, &st); err != nil {
		return
	}
	if st.Hourly == nil {
		st.Hourly = map[string]int{}
	}
	t.st = st
}

func (t *Tracker) saveLocked() {
	if t.path == "" {
		return
	}
	data, err := json.MarshalIndent(t.st, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(t.path, data, 0644)
}
