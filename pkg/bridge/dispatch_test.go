package bridge

import (
	"context"
	"strings"
	"testing"

	"github.com/pmos-ai/pmosd/pkg/actions"
	"github.com/pmos-ai/pmosd/pkg/intent"
	"github.com/pmos-ai/pmosd/pkg/resolve"
)

func newTestDispatcher(t *testing.T, runner *fakeRunner, dismiss bool) *Dispatcher {
	t.Helper()
	contacts := resolve.NewContactResolver(fakeContactSource{})
	apps := resolve.NewAppResolver(fakeAppSource{})
	ex := intent.Executors{
		Dialer:   actions.NewDialer(runner),
		Clock:    actions.NewClock(runner, "test"),
		Media:    actions.NewMedia(runner),
		WhatsApp: actions.NewWhatsApp(runner),
		SMS:      actions.NewSMSSender(runner),
		System:   actions.NewSystem(runner),
		Apps:     actions.NewAppLauncher(runner),
		Sleep:    actions.NewSleepTracker(fakeSleepAPI{}),
	}
	return NewDispatcher(contacts, apps, ex, dismiss)
}

func TestDispatchSetAlarmValidatesRange(t *testing.T) {
	runner := &fakeRunner{}
	d := newTestDispatcher(t, runner, true)

	got := d.Handle(context.Background(), ActionSetAlarm, map[string]interface{}{
		"hour": float64(25), "minute": float64(0),
	})
	if got.Success {
		t.Fatalf("hour 25 must be rejected, got %+v", got)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("invalid params must not reach the host, got %v", runner.calls)
	}
}

func TestDispatchSetAlarmFromJSONNumbers(t *testing.T) {
	runner := &fakeRunner{}
	d := newTestDispatcher(t, runner, true)

	got := d.Handle(context.Background(), ActionSetAlarm, map[string]interface{}{
		"hour": float64(21), "minute": float64(30),
	})
	if !got.Success || got.Type != intent.ActionAlarm || !got.ShouldDismiss {
		t.Fatalf("expected dismissing alarm, got %+v", got)
	}
	if runner.commandCount("am") != 1 {
		t.Fatalf("expected one alarm intent, got %v", runner.calls)
	}
}

func TestDispatchSetTimerFromParts(t *testing.T) {
	runner := &fakeRunner{}
	d := newTestDispatcher(t, runner, true)

	got := d.Handle(context.Background(), ActionSetTimer, map[string]interface{}{
		"hours": float64(1), "minutes": float64(30),
	})
	if !got.Success || got.Type != intent.ActionTimer {
		t.Fatalf("expected timer success, got %+v", got)
	}
}

func TestDispatchDismissDisabled(t *testing.T) {
	runner := &fakeRunner{}
	d := newTestDispatcher(t, runner, false)

	got := d.Handle(context.Background(), ActionCallContact, map[string]interface{}{
		"name": "mom",
	})
	if !got.Success {
		t.Fatalf("expected call success, got %+v", got)
	}
	if got.ShouldDismiss {
		t.Fatalf("dismissal disabled by config, got %+v", got)
	}
}

func TestDispatchUnknownContact(t *testing.T) {
	runner := &fakeRunner{}
	d := newTestDispatcher(t, runner, true)

	got := d.Handle(context.Background(), ActionCallContact, map[string]interface{}{
		"name": "zorro",
	})
	if got.Success || got.Type != intent.ActionCall {
		t.Fatalf("expected call failure, got %+v", got)
	}
	if !strings.Contains(got.Message, "zorro") {
		t.Fatalf("message should name the contact, got %q", got.Message)
	}
}

func TestDispatchScheduleCriticalMemory(t *testing.T) {
	runner := &fakeRunner{}
	d := newTestDispatcher(t, runner, true)

	got := d.Handle(context.Background(), ActionScheduleCriticalMemory, map[string]interface{}{
		"time": "8 pm",
	})
	if !got.Success || got.Type != intent.ActionAlarm {
		t.Fatalf("expected reminder alarm, got %+v", got)
	}
	if !strings.Contains(got.Message, "20:00") {
		t.Fatalf("expected 20:00 reminder, got %q", got.Message)
	}
}

func TestDispatchSleepTrackingModes(t *testing.T) {
	runner := &fakeRunner{}
	d := newTestDispatcher(t, runner, true)

	start := d.Handle(context.Background(), ActionSleepTracking, map[string]interface{}{})
	if !start.Success || start.Message != "Goodnight! Sleep tracking started." {
		t.Fatalf("expected start fallback, got %+v", start)
	}
	end := d.Handle(context.Background(), ActionSleepTracking, map[string]interface{}{
		"action": "end",
	})
	if !end.Success || end.Message != "Welcome back!" {
		t.Fatalf("expected end fallback, got %+v", end)
	}
}
