package ffmpeg

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/logger"
)

// Result is the outcome of one external-tool invocation.
type Result struct {
	OK         bool
	TimedOut   bool
	Diagnostic string
}

// Runner invokes the external render tool as a black box.
type Runner interface {
	Run(ctx context.Context, args []string) Result
}

type execRunner struct {
	binary  string
	timeout time.Duration
	logger  logger.Logger
}

// NewRunner returns a Runner that shells out to the given binary, bounding
// every invocation by timeout.
func NewRunner(binary string, timeout time.Duration, log logger.Logger) Runner {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &execRunner{binary: binary, timeout: timeout, logger: log}
}

func (r *execRunner) Run(ctx context.Context, args []string) Result {
	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	r.logger.Debugf("running %s %s", r.binary, strings.Join(args, " "))

	cmd := exec.CommandContext(runCtx, r.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return Result{
			TimedOut:   true,
			Diagnostic: "process timed out after " + r.timeout.String(),
		}
	}
	if err != nil {
		diagnostic := strings.TrimSpace(stderr.String())
		if diagnostic == "" {
			diagnostic = err.Error()
		}
		return Result{Diagnostic: diagnostic}
	}
	return Result{OK: true}
}
