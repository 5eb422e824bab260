package intent

// ActionType tags which executor produced a result. It is used for
// telemetry and UI styling only, never for control flow.
type ActionType string

const (
	ActionCall          ActionType = "call"
	ActionAlarm         ActionType = "alarm"
	ActionTimer         ActionType = "timer"
	ActionMedia         ActionType = "media"
	ActionSystem        ActionType = "system"
	ActionWhatsApp      ActionType = "whatsapp"
	ActionSMS           ActionType = "sms"
	ActionApp           ActionType = "app"
	ActionSleep         ActionType = "sleep"
	ActionAI            ActionType = "ai"
	ActionFlashlightOn  ActionType = "flashlight_on"
	ActionFlashlightOff ActionType = "flashlight_off"
)

// Result is the single result type returned by every resolution path.
// Constructed fresh per utterance, immutable, never persisted.
type Result struct {
	Success       bool       `json:"success"`
	Message       string     `json:"message"`
	ShouldDismiss bool       `json:"shouldDismiss"`
	Type          ActionType `json:"type,omitempty"`
}

// Delegate is the empty result signaling "hand this utterance to the
// remote backend". It is the only case where Message may be empty.
func Delegate() Result {
	return Result{Success: false, Message: "", ShouldDismiss: false, Type: ActionAI}
}

// Delegated reports whether r is the remote-delegation sentinel.
func (r Result) Delegated() bool {
	return !r.Success && r.Message == "" && r.Type == ActionAI
}
