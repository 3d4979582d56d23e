// Package collectors acquires raw telemetry from the operating environment.
// Every collector resolves to a best-effort value: tiered fallbacks replace
// failed or missing data sources and no error crosses the package boundary
// as anything other than a degraded metric.
package collectors

import (
	"context"
	"os/exec"
	"time"
)

// Runner executes an external tool under a hard wall-clock timeout and
// returns its stdout. Collectors hold a Runner field so subprocess
// acquisition can be faked in tests.
type Runner func(timeout time.Duration, name string, args ...string) (string, error)

// LookPath probes for an optional external utility. Mirrors exec.LookPath.
type LookPath func(name string) (string, error)

// Run is the default Runner. The child process is killed once the timeout
// expires; callers treat that the same as any other tier failure.
func Run(timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if ctx.Err() == context.DeadlineExceeded {
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}
	return string(out), nil
}
