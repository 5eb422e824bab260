package health

import (
	"context"
	"testing"
	"time"
)

type fakeStepSource struct {
	raw int
	err error
}

func (f *fakeStepSource) StepsSinceBoot(ctx context.Context) (int, error) {
	return f.raw, f.err
}

func newTestTracker(t *testing.T, src *fakeStepSource) (*Tracker, *time.Time) {
	t.Helper()
	tr := NewTracker(src, t.TempDir())
	now := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)
	tr.now = func() time.Time { return now }
	return tr, &now
}

func TestNewDayResetsToZero(t *testing.T) {
	src := &fakeStepSource{raw: 4200}
	tr, _ := newTestTracker(t, src)

	steps, err := tr.DailySteps(context.Background())
	if err != nil {
		t.Fatalf("daily steps: %v", err)
	}
	if steps != 0 {
		t.Fatalf("first reading of a new day must be 0, got %d", steps)
	}
}

func TestStepsAccumulateWithinDay(t *testing.T) {
	src := &fakeStepSource{raw: 4200}
	tr, _ := newTestTracker(t, src)

	tr.DailySteps(context.Background())
	src.raw = 4950
	steps, err := tr.DailySteps(context.Background())
	if err != nil {
		t.Fatalf("daily steps: %v", err)
	}
	if steps != 750 {
		t.Fatalf("expected 750 steps since day start, got %d", steps)
	}
}

func TestRebootResetsOffset(t *testing.T) {
	src := &fakeStepSource{raw: 4200}
	tr, _ := newTestTracker(t, src)

	tr.DailySteps(context.Background())
	// Device rebooted: sensor restarts from a low value.
	src.raw = 120
	steps, err := tr.DailySteps(context.Background())
	if err != nil {
		t.Fatalf("daily steps: %v", err)
	}
	if steps != 120 {
		t.Fatalf("after a reboot the raw value is the day count, got %d", steps)
	}

	src.raw = 500
	steps, _ = tr.DailySteps(context.Background())
	if steps != 500 {
		t.Fatalf("offset should stay 0 after reboot, got %d", steps)
	}
}

func TestDayRolloverResetsHourly(t *testing.T) {
	src := &fakeStepSource{raw: 4200}
	tr, now := newTestTracker(t, src)

	if _, err := tr.Record(context.Background()); err != nil {
		t.Fatalf("record: %v", err)
	}

	*now = now.Add(24 * time.Hour)
	src.raw = 9000
	snap, err := tr.Record(context.Background())
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if snap.Steps != 0 {
		t.Fatalf("new day starts at 0, got %d", snap.Steps)
	}
	if len(snap.Hourly) != 1 {
		t.Fatalf("hourly map must reset on rollover, got %v", snap.Hourly)
	}
}

func TestRecordKeysByHour(t *testing.T) {
	src := &fakeStepSource{raw: 1000}
	tr, now := newTestTracker(t, src)

	tr.Record(context.Background())

	*now = now.Add(time.Hour)
	src.raw = 1600
	snap, err := tr.Record(context.Background())
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if snap.Hourly["10:00"] != 0 || snap.Hourly["11:00"] != 600 {
		t.Fatalf("unexpected hourly data %v", snap.Hourly)
	}
	if snap.Date != "2026-09-02" && snap.Date != "2026-09-01" {
		t.Fatalf("unexpected date %q", snap.Date)
	}
}

func TestStatePersistsAcrossTrackers(t *testing.T) {
	dir := t.TempDir()
	src := &fakeStepSource{raw: 4200}
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	first := NewTracker(src, dir)
	first.now = func() time.Time { return now }
	first.DailySteps(context.Background())

	src.raw = 5000
	second := NewTracker(src, dir)
	second.now = func() time.Time { return now }
	steps, err := second.DailySteps(context.Background())
	if err != nil {
		t.Fatalf("daily steps: %v", err)
	}
	if steps != 800 {
		t.Fatalf("offset should survive a restart, got %d", steps)
	}
}
