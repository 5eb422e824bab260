package bridge

// Wire event types on the backend query stream. The format is the
// backend's documented contract and must not be altered here.
const (
	eventStatus       = "status"
	eventTool         = "tool"
	eventClientAction = "CLIENT_ACTION"
	eventResponse     = "response"
)

// streamEvent is the decoded payload of one stream event.
type streamEvent struct {
	Type     string                 `json:"type"`
	Action   string                 `json:"action,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Response string                 `json:"response,omitempty"`
}

// ClientAction is the tagged union of device actions the backend may
// request. Server strings outside the enum collapse into ActionUnknown,
// so an unhandled new backend action is an explicit dispatch case, not a
// silently ignored string.
type ClientAction string

const (
	ActionCallContact            ClientAction = "call_contact"
	ActionOpenApp                ClientAction = "open_app"
	ActionSetAlarm               ClientAction = "set_alarm"
	ActionSetTimer               ClientAction = "set_timer"
	ActionPlayMedia              ClientAction = "play_media"
	ActionSendWhatsApp           ClientAction = "send_whatsapp"
	ActionSendSMS                ClientAction = "send_sms"
	ActionSleepTracking          ClientAction = "sleep_tracking"
	ActionScheduleCriticalMemory ClientAction = "schedule_critical_memory"
	ActionUnknown                ClientAction = "unknown"
)

func ParseClientAction(s string) ClientAction {
	switch ClientAction(s) {
	case ActionCallContact, ActionOpenApp, ActionSetAlarm, ActionSetTimer,
		ActionPlayMedia, ActionSendWhatsApp, ActionSendSMS,
		ActionSleepTracking, ActionScheduleCriticalMemory:
		return ClientAction(s)
	}
	return ActionUnknown
}
