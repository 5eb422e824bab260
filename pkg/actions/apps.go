package actions

import (
	"context"
	"fmt"

	"github.com/pmos-ai/pmosd/pkg/host"
	"github.com/pmos-ai/pmosd/pkg/logger"
)

// AppLauncher starts an installed application by package identifier.
type AppLauncher struct {
	runner host.Runner
}

func NewAppLauncher(runner host.Runner) *AppLauncher {
	return &AppLauncher{runner: runner}
}

// Launch fires the package's LAUNCHER activity via the monkey shell
// tool, which needs no knowledge of the concrete activity name.
func (a *AppLauncher) Launch(ctx context.Context, pkg, label string) Outcome {
	_, err := a.runner.Run(ctx, "monkey",
		"-p", pkg,
		"-c", "android.intent.category.LAUNCHER", "1",
	)
	if err != nil {
		logger.ErrorCF("apps", "Failed to launch app", map[string]interface{}{
			"package": pkg,
			"error":   err.Error(),
		})
		return failed(fmt.Sprintf("Failed to open %s.", label))
	}
	return ok(fmt.Sprintf("Opening %s...", label))
}
