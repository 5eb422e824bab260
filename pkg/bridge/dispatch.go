package bridge

import (
	"context"
	"fmt"
	"strings"

	"github.com/pmos-ai/pmosd/pkg/actions"
	"github.com/pmos-ai/pmosd/pkg/intent"
	"github.com/pmos-ai/pmosd/pkg/logger"
	"github.com/pmos-ai/pmosd/pkg/resolve"
	"github.com/pmos-ai/pmosd/pkg/timeparse"
)

// Dispatcher turns CLIENT_ACTION events into local executor calls. It
// mirrors the classifier's executors but is keyed by the server-chosen
// action identifier instead of utterance text.
type Dispatcher struct {
	contacts  *resolve.ContactResolver
	apps      *resolve.AppResolver
	ex        intent.Executors
	dismissOK bool
}

func NewDispatcher(contacts *resolve.ContactResolver, apps *resolve.AppResolver, ex intent.Executors, dismissOnDispatch bool) *Dispatcher {
	return &Dispatcher{contacts: contacts, apps: apps, ex: ex, dismissOK: dismissOnDispatch}
}

// dismiss gates overlay dismissal on both the outcome and config.
func (d *Dispatcher) dismiss(success bool) bool {
	return success && d.dismissOK
}

// Handle executes one server-requested action and returns its result.
func (d *Dispatcher) Handle(ctx context.Context, action ClientAction, data map[string]interface{}) intent.Result {
	logger.InfoCF("bridge", "Handling client action", map[string]interface{}{
		"action": string(action),
	})

	switch action {
	case ActionCallContact:
		return d.callContact(ctx, data)
	case ActionOpenApp:
		return d.openApp(ctx, data)
	case ActionSetAlarm:
		return d.setAlarm(ctx, data)
	case ActionSetTimer:
		return d.setTimer(ctx, data)
	case ActionPlayMedia:
		return d.playMedia(ctx, data)
	case ActionSendWhatsApp:
		return d.sendWhatsApp(ctx, data)
	case ActionSendSMS:
		return d.sendSMS(ctx, data)
	case ActionSleepTracking:
		return d.sleepTracking(ctx, data)
	case ActionScheduleCriticalMemory:
		return d.scheduleCriticalMemory(ctx, data)
	case ActionUnknown:
	}

	logger.WarnCF("bridge", "Server requested unsupported action", map[string]interface{}{
		"action": string(action),
	})
	return intent.Result{
		Success:       false,
		Message:       "The server requested an action this device does not support.",
		ShouldDismiss: false,
		Type:          intent.ActionAI,
	}
}

func (d *Dispatcher) callContact(ctx context.Context, data map[string]interface{}) intent.Result {
	name := stringField(data, "name", "contact_name")
	if name == "" {
		return invalidParams(intent.ActionCall, "missing contact name")
	}

	contact, found := d.contacts.Resolve(ctx, name)
	if !found {
		return intent.Result{
			Success:       false,
			Message:       fmt.Sprintf("Contact %q not found.", name),
			ShouldDismiss: false,
			Type:          intent.ActionCall,
		}
	}
	out := d.ex.Dialer.Dial(ctx, contact.Phone)
	message := out.Message
	if out.Success {
		message = fmt.Sprintf("Calling %s...", contact.Name)
	}
	return intent.Result{
		Success:       out.Success,
		Message:       message,
		ShouldDismiss: d.dismiss(out.Success),
		Type:          intent.ActionCall,
	}
}

func (d *Dispatcher) openApp(ctx context.Context, data map[string]interface{}) intent.Result {
	name := stringField(data, "app_name", "name")
	if name == "" {
		return invalidParams(intent.ActionApp, "missing app name")
	}

	app, found := d.apps.Resolve(ctx, name)
	if !found {
		return intent.Result{
			Success:       false,
			Message:       fmt.Sprintf("App %q not found locally.", name),
			ShouldDismiss: false,
			Type:          intent.ActionApp,
		}
	}
	out := d.ex.Apps.Launch(ctx, app.Package, app.Label)
	return intent.Result{
		Success:       out.Success,
		Message:       out.Message,
		ShouldDismiss: d.dismiss(out.Success),
		Type:          intent.ActionApp,
	}
}

func (d *Dispatcher) setAlarm(ctx context.Context, data map[string]interface{}) intent.Result {
	hour, hourOK := intField(data, "hour")
	minute, _ := intField(data, "minute")
	if !hourOK || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return invalidParams(intent.ActionAlarm, "invalid alarm time")
	}

	display := fmt.Sprintf("%02d:%02d", hour, minute)
	out := d.ex.Clock.SetAlarm(ctx, hour, minute, display)
	return intent.Result{
		Success:       out.Success,
		Message:       out.Message,
		ShouldDismiss: d.dismiss(out.Success),
		Type:          intent.ActionAlarm,
	}
}

func (d *Dispatcher) setTimer(ctx context.Context, data map[string]interface{}) intent.Result {
	seconds, secondsOK := intField(data, "seconds")
	if !secondsOK {
		hours, _ := intField(data, "hours")
		minutes, _ := intField(data, "minutes")
		seconds = hours*3600 + minutes*60
	}
	if seconds <= 0 {
		return invalidParams(intent.ActionTimer, "invalid timer duration")
	}

	display := fmt.Sprintf("%d seconds", seconds)
	if seconds%60 == 0 {
		display = fmt.Sprintf("%d minutes", seconds/60)
	}
	out := d.ex.Clock.SetTimer(ctx, seconds, display)
	return intent.Result{
		Success:       out.Success,
		Message:       out.Message,
		ShouldDismiss: d.dismiss(out.Success),
		Type:          intent.ActionTimer,
	}
}

func (d *Dispatcher) playMedia(ctx context.Context, data map[string]interface{}) intent.Result {
	query := stringField(data, "query", "song")
	var out actions.Outcome
	if query != "" {
		out = d.ex.Media.PlaySong(ctx, query)
	} else {
		out = d.ex.Media.Control(ctx, actions.MediaPlayPause)
	}
	return intent.Result{
		Success:       out.Success,
		Message:       out.Message,
		ShouldDismiss: d.dismiss(out.Success),
		Type:          intent.ActionMedia,
	}
}

func (d *Dispatcher) sendWhatsApp(ctx context.Context, data map[string]interface{}) intent.Result {
	return d.sendMessage(ctx, data, intent.ActionWhatsApp)
}

func (d *Dispatcher) sendSMS(ctx context.Context, data map[string]interface{}) intent.Result {
	return d.sendMessage(ctx, data, intent.ActionSMS)
}

func (d *Dispatcher) sendMessage(ctx context.Context, data map[string]interface{}, kind intent.ActionType) intent.Result {
	name := stringField(data, "name", "contact_name")
	body := stringField(data, "message", "text")
	if name == "" || body == "" {
		return invalidParams(kind, "missing contact or message")
	}

	contact, found := d.contacts.Resolve(ctx, name)
	if !found {
		return intent.Result{
			Success:       false,
			Message:       "Contact not found.",
			ShouldDismiss: false,
			Type:          kind,
		}
	}

	var out actions.Outcome
	if kind == intent.ActionWhatsApp {
		out = d.ex.WhatsApp.Send(ctx, contact.Phone, body)
	} else {
		out = d.ex.SMS.Send(ctx, contact.Phone, body)
	}
	return intent.Result{
		Success:       out.Success,
		Message:       out.Message,
		ShouldDismiss: d.dismiss(out.Success),
		Type:          kind,
	}
}

func (d *Dispatcher) sleepTracking(ctx context.Context, data map[string]interface{}) intent.Result {
	mode := strings.ToLower(stringField(data, "action", "mode"))
	var out actions.Outcome
	if mode == "end" || mode == "stop" || mode == "wake" {
		out = d.ex.Sleep.End(ctx)
	} else {
		out = d.ex.Sleep.Start(ctx)
	}
	return intent.Result{
		Success:       out.Success,
		Message:       out.Message,
		ShouldDismiss: d.dismiss(out.Success),
		Type:          intent.ActionSleep,
	}
}

// scheduleCriticalMemory schedules a reminder as a labelled clock alarm;
// the backend holds the memory itself, this device only needs to ring.
func (d *Dispatcher) scheduleCriticalMemory(ctx context.Context, data map[string]interface{}) intent.Result {
	when := stringField(data, "time", "at")
	parsed := timeparse.ParseAlarmTime("set alarm for " + when)
	if !parsed.Success {
		return invalidParams(intent.ActionAlarm, "invalid reminder time")
	}

	out := d.ex.Clock.SetAlarm(ctx, parsed.Hour24, parsed.Minute, parsed.Display)
	message := out.Message
	if out.Success {
		message = fmt.Sprintf("Reminder scheduled for %s.", parsed.Display)
	}
	return intent.Result{
		Success:       out.Success,
		Message:       message,
		ShouldDismiss: d.dismiss(out.Success),
		Type:          intent.ActionAlarm,
	}
}

func stringField(data map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := data[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func intField(data map[string]interface{}, key string) (int, bool) {
	switch v := data[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(v), "%d", &n); err == nil {
			return n, true
		}
	}
	return 0, false
}

func invalidParams(kind intent.ActionType, reason string) intent.Result {
	logger.WarnCF("bridge", "Client action had invalid parameters", map[string]interface{}{
		"reason": reason,
	})
	return intent.Result{
		Success:       false,
		Message:       "The server sent an action with invalid parameters.",
		ShouldDismiss: false,
		Type:          kind,
	}
}
