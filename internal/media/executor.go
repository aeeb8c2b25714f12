package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Executor runs ffmpeg with the given arguments.
type Executor interface {
	Run(ctx context.Context, args []string) error
}

// LocalExecutor shells out to an ffmpeg binary on the host.
type LocalExecutor struct {
	Binary string // defaults to "ffmpeg" in PATH
}

// Run executes ffmpeg. Cancelling ctx kills the process.
func (e *LocalExecutor) Run(ctx context.Context, args []string) error {
	bin := strings.TrimSpace(e.Binary)
	if bin == "" {
		bin = "ffmpeg"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return fmt.Errorf("ffmpeg binary %q not found in PATH: %w", bin, err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg failed: %w: %s", err, tail(stderr.String(), 512))
	}
	return nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "…" + s[len(s)-n:]
}
