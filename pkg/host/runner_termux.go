//go:build linux

package host

import (
	"context"
	"fmt"
	"os/exec"
)

type execRunner struct{}

func newPlatformRunner() Runner { return execRunner{} }

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s: %w (output: %s)", name, err, string(out))
	}
	return string(out), nil
}
