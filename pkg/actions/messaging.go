package actions

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pmos-ai/pmosd/pkg/host"
	"github.com/pmos-ai/pmosd/pkg/logger"
)

// WhatsApp opens a prefilled chat through the wa.me deep link. The send
// itself stays with the user; the deep link is the one primitive this
// adapter owns.
type WhatsApp struct {
	runner host.Runner
}

func NewWhatsApp(runner host.Runner) *WhatsApp {
	return &WhatsApp{runner: runner}
}

func (w *WhatsApp) Send(ctx context.Context, phone, message string) Outcome {
	link := fmt.Sprintf("https://wa.me/%s?text=%s",
		strings.TrimPrefix(phone, "+"), url.QueryEscape(message))
	_, err := w.runner.Run(ctx, "am", "start",
		"-a", "android.intent.action.VIEW",
		"-d", link,
	)
	if err != nil {
		logger.ErrorCF("whatsapp", "Failed to open WhatsApp", map[string]interface{}{
			"error": err.Error(),
		})
		return failed("Failed to open WhatsApp.")
	}
	return ok(fmt.Sprintf("Sending to %s...", phone))
}

// SMSSender sends a text directly, without opening any UI.
type SMSSender struct {
	runner host.Runner
}

func NewSMSSender(runner host.Runner) *SMSSender {
	return &SMSSender{runner: runner}
}

func (s *SMSSender) Send(ctx context.Context, phone, message string) Outcome {
	if _, err := s.runner.Run(ctx, "termux-sms-send", "-n", phone, message); err != nil {
		logger.ErrorCF("sms", "Failed to send SMS", map[string]interface{}{
			"number": phone,
			"error":  err.Error(),
		})
		return failed("Failed to send SMS.")
	}
	return ok(fmt.Sprintf("SMS sent to %s!", phone))
}
