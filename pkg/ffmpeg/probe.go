package ffmpeg

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

const probeTimeout = 10 * time.Second

// Installed reports whether the ffmpeg binary is present and runnable.
func Installed() bool {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	return exec.CommandContext(ctx, "ffmpeg", "-version").Run() == nil
}

// Version returns the first line of `ffmpeg -version`, or "" when the probe
// fails.
func Version() string {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, "ffmpeg", "-version").Output()
	if err != nil {
		return ""
	}
	lines := strings.SplitN(string(out), "\n", 2)
	return strings.TrimSpace(lines[0])
}
