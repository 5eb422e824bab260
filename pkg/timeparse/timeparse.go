// Package timeparse turns natural-language time phrases from assistant
// commands into concrete clock times and durations.
package timeparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// AlarmTime is the outcome of parsing a "set alarm for ..." phrase.
// Failures are values, not errors, so callers can fall through to the
// next classifier rule.
type AlarmTime struct {
	Success      bool
	Hour24       int
	Minute       int
	Display      string
	ErrorMessage string
}

// Duration is the outcome of parsing a "set timer for ..." phrase.
type Duration struct {
	Success      bool
	TotalSeconds int
	Display      string
	ErrorMessage string
}

var (
	// "set alarm for 7:30 am", "set alarm for 19:30", "set alarm for 8 pm"
	alarmRe = regexp.MustCompile(`set\s+alarm\s+for\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)

	// "set timer for 1 hour 30 minutes", either clause may be absent
	timerRe = regexp.MustCompile(`set\s+timer\s+for\s+(?:(\d+)\s*(?:hours?|hrs?|h)\b)?\s*(?:and\s+)?(?:(\d+)\s*(?:minutes?|mins?|min|m)\b)?`)
)

func ParseAlarmTime(text string) AlarmTime {
	lower := strings.ToLower(text)

	match := alarmRe.FindStringSubmatch(lower)
	if match == nil {
		return AlarmTime{ErrorMessage: "Could not understand the time."}
	}

	hour, _ := strconv.Atoi(match[1])
	minute := 0
	if match[2] != "" {
		minute, _ = strconv.Atoi(match[2])
	}
	period := match[3]

	if minute < 0 || minute > 59 {
		return AlarmTime{ErrorMessage: "Invalid time format."}
	}
	if period != "" {
		// With a meridiem marker the hour must be on the 12-hour clock.
		if hour < 1 || hour > 12 {
			return AlarmTime{ErrorMessage: "Invalid time format."}
		}
		if period == "pm" && hour < 12 {
			hour += 12
		} else if period == "am" && hour == 12 {
			hour = 0
		}
	} else if hour < 0 || hour > 23 {
		return AlarmTime{ErrorMessage: "Invalid time format."}
	}

	return AlarmTime{
		Success: true,
		Hour24:  hour,
		Minute:  minute,
		Display: fmt.Sprintf("%02d:%02d", hour, minute),
	}
}

func ParseDuration(text string) Duration {
	lower := strings.ToLower(text)

	match := timerRe.FindStringSubmatch(lower)
	if match == nil || (match[1] == "" && match[2] == "") {
		return Duration{ErrorMessage: "Could not understand the duration."}
	}

	hours := 0
	minutes := 0
	if match[1] != "" {
		hours, _ = strconv.Atoi(match[1])
	}
	if match[2] != "" {
		minutes, _ = strconv.Atoi(match[2])
	}

	total := hours*3600 + minutes*60
	if total <= 0 {
		return Duration{ErrorMessage: "Timer duration must be greater than zero."}
	}

	return Duration{
		Success:      true,
		TotalSeconds: total,
		Display:      formatDuration(hours, minutes),
	}
}

func formatDuration(hours, minutes int) string {
	var parts []string
	if hours > 0 {
		unit := "hours"
		if hours == 1 {
			unit = "hour"
		}
		parts = append(parts, fmt.Sprintf("%d %s", hours, unit))
	}
	if minutes > 0 {
		unit := "minutes"
		if minutes == 1 {
			unit = "minute"
		}
		parts = append(parts, fmt.Sprintf("%d %s", minutes, unit))
	}
	return strings.Join(parts, " ")
}
