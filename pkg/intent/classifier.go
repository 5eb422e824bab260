package intent

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pmos-ai/pmosd/pkg/actions"
	"github.com/pmos-ai/pmosd/pkg/logger"
	"github.com/pmos-ai/pmosd/pkg/resolve"
	"github.com/pmos-ai/pmosd/pkg/timeparse"
)

// Executors bundles the capability adapters the classifier dispatches to.
type Executors struct {
	Dialer   *actions.Dialer
	Clock    *actions.Clock
	Media    *actions.Media
	WhatsApp *actions.WhatsApp
	SMS      *actions.SMSSender
	System   *actions.System
	Apps     *actions.AppLauncher
	Sleep    *actions.SleepTracker
}

// Rule is one entry in the cascade. Resolve reports handled=false to
// pass the utterance to the next rule; handled=true makes its Result
// final for the utterance.
type Rule struct {
	Name    string
	Resolve func(ctx context.Context, u utterance) (Result, bool)
}

type utterance struct {
	Raw   string
	Lower string
}

// Classifier turns a raw utterance into a Result by running an ordered
// rule cascade. Rule order and terminality are data: the rules slice is
// evaluated by a single loop and the first handled rule wins. Reaching
// the end yields the remote-delegation sentinel.
type Classifier struct {
	contacts *resolve.ContactResolver
	apps     *resolve.AppResolver
	ex       Executors
	rules    []Rule
}

func NewClassifier(contacts *resolve.ContactResolver, apps *resolve.AppResolver, ex Executors) *Classifier {
	c := &Classifier{contacts: contacts, apps: apps, ex: ex}
	c.rules = []Rule{
		{Name: "direct_dial", Resolve: c.ruleDirectDial},
		{Name: "alarm", Resolve: c.ruleAlarm},
		{Name: "timer", Resolve: c.ruleTimer},
		{Name: "media", Resolve: c.ruleMedia},
		{Name: "whatsapp", Resolve: c.ruleWhatsApp},
		{Name: "sms", Resolve: c.ruleSMS},
		{Name: "system", Resolve: c.ruleSystem},
		{Name: "open_launch_call", Resolve: c.ruleOpenLaunchCall},
		{Name: "sleep", Resolve: c.ruleSleep},
	}
	return c
}

// Rules exposes the cascade order for tests and diagnostics.
func (c *Classifier) Rules() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.Name
	}
	return names
}

func (c *Classifier) Process(ctx context.Context, text string) Result {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return Result{Success: false, Message: "", ShouldDismiss: false}
	}

	logger.DebugCF("intent", "Processing utterance", map[string]interface{}{
		"text": clean,
	})

	u := utterance{Raw: clean, Lower: strings.ToLower(clean)}
	for _, rule := range c.rules {
		if result, handled := rule.Resolve(ctx, u); handled {
			logger.InfoCF("intent", "Rule resolved utterance", map[string]interface{}{
				"rule":    rule.Name,
				"success": result.Success,
			})
			return result
		}
	}

	logger.DebugC("intent", "No local rule matched, delegating to backend")
	return Delegate()
}

var (
	numberShapeRe = regexp.MustCompile(`^[\d\s\-()+]+$`)
	nonDigitRe    = regexp.MustCompile(`[^0-9]`)

	mediaGateRe  = regexp.MustCompile(`^(play|pause|stop|next|skip|prev|back)`)
	whatsAppRe   = regexp.MustCompile(`(?i)send whatsapp to (.+?) (.+)`)
	smsRe        = regexp.MustCompile(`(?i)(?:send sms to|text) (.+?) (.+)`)
	openLaunchRe = regexp.MustCompile(`(?i)^(open|launch|call|phone)\s+(.+)`)
	digitsRe     = regexp.MustCompile(`\d+`)
)

// ruleDirectDial catches bare phone numbers. Terminal whenever the text
// normalizes to exactly ten digits and contains only dialable
// punctuation, no matter what else the executor reports.
func (c *Classifier) ruleDirectDial(ctx context.Context, u utterance) (Result, bool) {
	digits := nonDigitRe.ReplaceAllString(u.Raw, "")
	if len(digits) != 10 || !numberShapeRe.MatchString(u.Raw) {
		return Result{}, false
	}

	out := c.ex.Dialer.Dial(ctx, digits)
	return Result{
		Success:       out.Success,
		Message:       out.Message,
		ShouldDismiss: out.Success,
		Type:          ActionCall,
	}, true
}

// ruleAlarm gates on the word "alarm". A parse failure falls through so
// later rules and ultimately the backend get a chance.
func (c *Classifier) ruleAlarm(ctx context.Context, u utterance) (Result, bool) {
	if !strings.Contains(u.Lower, "alarm") {
		return Result{}, false
	}

	parsed := timeparse.ParseAlarmTime(u.Raw)
	if !parsed.Success {
		logger.DebugCF("intent", "Alarm phrase did not parse, falling through", map[string]interface{}{
			"reason": parsed.ErrorMessage,
		})
		return Result{}, false
	}

	out := c.ex.Clock.SetAlarm(ctx, parsed.Hour24, parsed.Minute, parsed.Display)
	return Result{
		Success:       out.Success,
		Message:       out.Message,
		ShouldDismiss: out.Success,
		Type:          ActionAlarm,
	}, true
}

func (c *Classifier) ruleTimer(ctx context.Context, u utterance) (Result, bool) {
	if !strings.Contains(u.Lower, "timer") {
		return Result{}, false
	}

	parsed := timeparse.ParseDuration(u.Raw)
	if !parsed.Success {
		logger.DebugCF("intent", "Timer phrase did not parse, falling through", map[string]interface{}{
			"reason": parsed.ErrorMessage,
		})
		return Result{}, false
	}

	out := c.ex.Clock.SetTimer(ctx, parsed.TotalSeconds, parsed.Display)
	return Result{
		Success:       out.Success,
		Message:       out.Message,
		ShouldDismiss: out.Success,
		Type:          ActionTimer,
	}, true
}

// ruleMedia handles transport commands. An executor failure falls
// through rather than terminating, so unrecognized phrasing still
// reaches the backend.
func (c *Classifier) ruleMedia(ctx context.Context, u utterance) (Result, bool) {
	if !mediaGateRe.MatchString(u.Lower) {
		return Result{}, false
	}

	out := c.mediaAction(ctx, u)
	if !out.Success {
		return Result{}, false
	}
	return Result{
		Success:       true,
		Message:       out.Message,
		ShouldDismiss: true,
		Type:          ActionMedia,
	}, true
}

func (c *Classifier) mediaAction(ctx context.Context, u utterance) actions.Outcome {
	if strings.HasPrefix(u.Lower, "play") {
		song := strings.TrimSpace(u.Raw[4:])
		if song != "" {
			return c.ex.Media.PlaySong(ctx, song)
		}
		// Bare "play" resumes whatever is paused.
		return c.ex.Media.Control(ctx, actions.MediaPlayPause)
	}

	switch {
	case strings.Contains(u.Lower, "pause"), strings.Contains(u.Lower, "stop music"):
		return c.ex.Media.Control(ctx, actions.MediaPause)
	case strings.Contains(u.Lower, "next"), strings.Contains(u.Lower, "skip"):
		return c.ex.Media.Control(ctx, actions.MediaNext)
	case strings.Contains(u.Lower, "prev"), strings.Contains(u.Lower, "back"):
		return c.ex.Media.Control(ctx, actions.MediaPrevious)
	}
	return actions.Outcome{Success: false, Message: "Unknown media command."}
}

// ruleWhatsApp resolves "send whatsapp to <name> <message>". A missing
// contact is terminal for this branch; the backend cannot invent a phone
// number either.
func (c *Classifier) ruleWhatsApp(ctx context.Context, u utterance) (Result, bool) {
	if !strings.Contains(u.Lower, "whatsapp") {
		return Result{}, false
	}
	match := whatsAppRe.FindStringSubmatch(u.Raw)
	if match == nil {
		return Result{}, false
	}
	contactName := strings.TrimSpace(match[1])
	messageBody := strings.TrimSpace(match[2])

	contact, found := c.contacts.Resolve(ctx, contactName)
	if !found {
		return Result{
			Success:       false,
			Message:       "Contact not found.",
			ShouldDismiss: false,
			Type:          ActionWhatsApp,
		}, true
	}

	out := c.ex.WhatsApp.Send(ctx, contact.Phone, messageBody)
	message := out.Message
	if out.Success {
		message = fmt.Sprintf("Sending to %s...", contact.Name)
	}
	return Result{
		Success:       out.Success,
		Message:       message,
		ShouldDismiss: out.Success,
		Type:          ActionWhatsApp,
	}, true
}

func (c *Classifier) ruleSMS(ctx context.Context, u utterance) (Result, bool) {
	if !strings.Contains(u.Lower, "sms") && !strings.HasPrefix(u.Lower, "text") {
		return Result{}, false
	}
	match := smsRe.FindStringSubmatch(u.Raw)
	if match == nil {
		return Result{}, false
	}
	contactName := strings.TrimSpace(match[1])
	messageBody := strings.TrimSpace(match[2])

	contact, found := c.contacts.Resolve(ctx, contactName)
	if !found {
		return Result{
			Success:       false,
			Message:       "Contact not found.",
			ShouldDismiss: false,
			Type:          ActionSMS,
		}, true
	}

	out := c.ex.SMS.Send(ctx, contact.Phone, messageBody)
	message := out.Message
	if out.Success {
		message = fmt.Sprintf("SMS sent to %s!", contact.Name)
	}
	return Result{
		Success:       out.Success,
		Message:       message,
		ShouldDismiss: out.Success,
		Type:          ActionSMS,
	}, true
}

// ruleSystem covers the flashlight, brightness and settings panels.
func (c *Classifier) ruleSystem(ctx context.Context, u utterance) (Result, bool) {
	if strings.Contains(u.Lower, "flash") || strings.Contains(u.Lower, "lumos") || strings.Contains(u.Lower, "nox") {
		turnOn := strings.Contains(u.Lower, "on") || strings.Contains(u.Lower, "lumos")
		turnOff := strings.Contains(u.Lower, "off") || strings.Contains(u.Lower, "nox")
		if turnOn || turnOff {
			out := c.ex.System.Torch(ctx, turnOn)
			resultType := ActionFlashlightOff
			if turnOn {
				resultType = ActionFlashlightOn
			}
			return Result{
				Success:       out.Success,
				Message:       out.Message,
				ShouldDismiss: out.Success,
				Type:          resultType,
			}, true
		}
	}

	if strings.Contains(u.Lower, "brightness") {
		if digits := digitsRe.FindString(u.Lower); digits != "" {
			level, _ := strconv.Atoi(digits)
			out := c.ex.System.SetBrightness(ctx, level)
			return Result{
				Success:       out.Success,
				Message:       out.Message,
				ShouldDismiss: out.Success,
				Type:          ActionSystem,
			}, true
		}
	}

	if strings.Contains(u.Lower, "open") || strings.Contains(u.Lower, "goto") {
		for _, panel := range []string{"wifi", "bluetooth", "battery", "airplane"} {
			if strings.Contains(u.Lower, panel) {
				out := c.ex.System.OpenSettings(ctx, panel)
				return Result{
					Success:       out.Success,
					Message:       out.Message,
					ShouldDismiss: out.Success,
					Type:          ActionSystem,
				}, true
			}
		}
	}

	return Result{}, false
}

// ruleOpenLaunchCall handles "open|launch <app>" and "call|phone
// <target>". Resolution failures are terminal for this branch.
func (c *Classifier) ruleOpenLaunchCall(ctx context.Context, u utterance) (Result, bool) {
	match := openLaunchRe.FindStringSubmatch(u.Raw)
	if match == nil {
		return Result{}, false
	}
	verb := strings.ToLower(match[1])
	target := strings.TrimSpace(match[2])

	if verb == "call" || verb == "phone" {
		// The target may itself be a formatted number rule 1 missed
		// because of the leading verb.
		targetDigits := nonDigitRe.ReplaceAllString(target, "")
		if len(targetDigits) == 10 && numberShapeRe.MatchString(target) {
			out := c.ex.Dialer.Dial(ctx, targetDigits)
			return Result{
				Success:       out.Success,
				Message:       out.Message,
				ShouldDismiss: out.Success,
				Type:          ActionCall,
			}, true
		}

		contact, found := c.contacts.Resolve(ctx, target)
		if !found {
			return Result{
				Success:       false,
				Message:       fmt.Sprintf("Contact %q not found.", target),
				ShouldDismiss: false,
				Type:          ActionCall,
			}, true
		}
		out := c.ex.Dialer.Dial(ctx, contact.Phone)
		message := out.Message
		if out.Success {
			message = fmt.Sprintf("Calling %s...", contact.Name)
		}
		return Result{
			Success:       out.Success,
			Message:       message,
			ShouldDismiss: out.Success,
			Type:          ActionCall,
		}, true
	}

	app, found := c.apps.Resolve(ctx, target)
	if !found {
		return Result{
			Success:       false,
			Message:       fmt.Sprintf("App %q not found locally.", target),
			ShouldDismiss: false,
			Type:          ActionApp,
		}, true
	}
	out := c.ex.Apps.Launch(ctx, app.Package, app.Label)
	message := out.Message
	if out.Success {
		message = fmt.Sprintf("Opening %s...", target)
	}
	return Result{
		Success:       out.Success,
		Message:       message,
		ShouldDismiss: out.Success,
		Type:          ActionApp,
	}, true
}

// ruleSleep classifies sleep tracking locally even though the executor
// is remote-backed.
func (c *Classifier) ruleSleep(ctx context.Context, u utterance) (Result, bool) {
	var out actions.Outcome
	switch {
	case strings.Contains(u.Lower, "sleeping"), strings.Contains(u.Lower, "going to sleep"):
		out = c.ex.Sleep.Start(ctx)
	case strings.Contains(u.Lower, "woke up"), strings.Contains(u.Lower, "awake"):
		out = c.ex.Sleep.End(ctx)
	default:
		return Result{}, false
	}

	return Result{
		Success:       out.Success,
		Message:       out.Message,
		ShouldDismiss: out.Success,
		Type:          ActionSleep,
	}, true
}
