package actions

import (
	"context"
	"fmt"

	"github.com/pmos-ai/pmosd/pkg/host"
	"github.com/pmos-ai/pmosd/pkg/logger"
)

// Dialer places calls through the telephony service.
type Dialer struct {
	runner host.Runner
}

func NewDialer(runner host.Runner) *Dialer {
	return &Dialer{runner: runner}
}

// Dial immediately places a call to number. The number must already be
// sanitized (digits and leading + only).
func (d *Dialer) Dial(ctx context.Context, number string) Outcome {
	if _, err := d.runner.Run(ctx, "termux-telephony-call", number); err != nil {
		logger.ErrorCF("dialer", "Call failed", map[string]interface{}{
			"number": number,
			"error":  err.Error(),
		})
		return failed("Failed to place call.")
	}
	return ok(fmt.Sprintf("Calling %s...", number))
}
