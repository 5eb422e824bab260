//go:build !linux

package host

import (
	"context"
	"fmt"
)

type stubRunner struct{}

func newPlatformRunner() Runner { return stubRunner{} }

func (stubRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	return "", fmt.Errorf("%s requires Termux with termux-api on Android", name)
}
