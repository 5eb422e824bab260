// Package host wraps the Android host-platform primitives the daemon
// drives through the termux-api command family. Every capability above
// this package goes through Runner, so tests substitute a fake and the
// rest of the tree never touches os/exec.
package host

import "context"

// Runner executes one host command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// NewRunner returns the platform Runner: a real exec-based runner on
// Linux/Android builds, an error stub elsewhere.
func NewRunner() Runner {
	return newPlatformRunner()
}
