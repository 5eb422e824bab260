package timeparse

import "testing"

func TestParseAlarmTimePM(t *testing.T) {
	got := ParseAlarmTime("set alarm for 9pm")
	if !got.Success {
		t.Fatalf("expected success, got error %q", got.ErrorMessage)
	}
	if got.Hour24 != 21 || got.Minute != 0 {
		t.Fatalf("expected 21:00, got %02d:%02d", got.Hour24, got.Minute)
	}
}

func TestParseAlarmTimeWithMinutes(t *testing.T) {
	got := ParseAlarmTime("set alarm for 7:45 am")
	if !got.Success {
		t.Fatalf("expected success, got error %q", got.ErrorMessage)
	}
	if got.Hour24 != 7 || got.Minute != 45 {
		t.Fatalf("expected 07:45, got %02d:%02d", got.Hour24, got.Minute)
	}
}

func TestParseAlarmTimeMidnight(t *testing.T) {
	got := ParseAlarmTime("set alarm for 12am")
	if !got.Success {
		t.Fatalf("expected success, got error %q", got.ErrorMessage)
	}
	if got.Hour24 != 0 {
		t.Fatalf("12am should map to hour 0, got %d", got.Hour24)
	}
}

func TestParseAlarmTimeNoonStaysNoon(t *testing.T) {
	got := ParseAlarmTime("set alarm for 12pm")
	if !got.Success {
		t.Fatalf("expected success, got error %q", got.ErrorMessage)
	}
	if got.Hour24 != 12 {
		t.Fatalf("12pm should map to hour 12, got %d", got.Hour24)
	}
}

func TestParseAlarmTimeBare24Hour(t *testing.T) {
	got := ParseAlarmTime("set alarm for 23:15")
	if !got.Success {
		t.Fatalf("expected success, got error %q", got.ErrorMessage)
	}
	if got.Hour24 != 23 || got.Minute != 15 {
		t.Fatalf("expected 23:15, got %02d:%02d", got.Hour24, got.Minute)
	}
}

func TestParseAlarmTimeRejectsImpossibleMeridiemHour(t *testing.T) {
	got := ParseAlarmTime("set alarm for 13pm")
	if got.Success {
		t.Fatalf("13pm should not parse, got %02d:%02d", got.Hour24, got.Minute)
	}
}

func TestParseAlarmTimeRejectsGarbage(t *testing.T) {
	got := ParseAlarmTime("set alarm for tomorrow sometime")
	if got.Success {
		t.Fatalf("expected failure for non-numeric time")
	}
	if got.ErrorMessage == "" {
		t.Fatalf("expected a parse error message")
	}
}

func TestParseTimerDurationCombined(t *testing.T) {
	got := ParseDuration("set timer for 1 hour 30 minutes")
	if !got.Success {
		t.Fatalf("expected success, got error %q", got.ErrorMessage)
	}
	if got.TotalSeconds != 5400 {
		t.Fatalf("expected 5400 seconds, got %d", got.TotalSeconds)
	}
}

func TestParseTimerDurationMinutesOnly(t *testing.T) {
	got := ParseDuration("set timer for 10 minutes")
	if !got.Success {
		t.Fatalf("expected success, got error %q", got.ErrorMessage)
	}
	if got.TotalSeconds != 600 {
		t.Fatalf("expected 600 seconds, got %d", got.TotalSeconds)
	}
}

func TestParseTimerDurationNoAmount(t *testing.T) {
	got := ParseDuration("set timer for")
	if got.Success {
		t.Fatalf("expected failure when no duration is given")
	}
}
