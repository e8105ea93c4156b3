package hook

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"scribe/internal/config"

	"github.com/google/shlex"
	"github.com/sirupsen/logrus"
)

// Job is one finalized transcript to hand to the hook command.
type Job struct {
	Text      string
	Timestamp time.Time
}

// Runner executes the configured command with cooldown handling.
type Runner struct {
	cfg     *config.Config
	logger  *logrus.Logger
	args    []string
	mu      sync.Mutex
	lastRun time.Time
}

// NewRunner parses hook.args once. A nil Runner and nil error are returned
// when no hook command is configured.
func NewRunner(cfg *config.Config, logger *logrus.Logger) (*Runner, error) {
	if strings.TrimSpace(cfg.Hook.Command) == "" {
		return nil, nil
	}
	args, err := ParseArgs(cfg.Hook.Args)
	if err != nil {
		return nil, fmt.Errorf("parse hook.args: %w", err)
	}
	return &Runner{cfg: cfg, logger: logger, args: args}, nil
}

// ShouldRun returns whether cooldown allows a new hook.
func (r *Runner) ShouldRun() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cfg.Hook.CooldownSec <= 0 {
		return true
	}
	return time.Since(r.lastRun).Seconds() >= r.cfg.Hook.CooldownSec
}

// Run executes the command with the transcript appended as the last
// argument and exported as SCRIBE_TEXT.
func (r *Runner) Run(ctx context.Context, job Job) error {
	r.mu.Lock()
	r.lastRun = time.Now()
	r.mu.Unlock()

	args := append(append([]string{}, r.args...), job.Text)

	runCtx := ctx
	if r.cfg.Hook.TimeoutSec > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(float64(time.Second)*r.cfg.Hook.TimeoutSec))
		defer cancel()
	}
	cmd := exec.CommandContext(runCtx, os.ExpandEnv(r.cfg.Hook.Command), args...)
	cmd.Env = os.Environ()
	for k, v := range r.cfg.Hook.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Env = append(cmd.Env,
		fmt.Sprintf("SCRIBE_TEXT=%s", job.Text),
		fmt.Sprintf("SCRIBE_TIMESTAMP=%s", job.Timestamp.Format(time.RFC3339)),
	)

	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		r.logger.Infof("hook output: %s", strings.TrimSpace(string(out)))
	}
	if err != nil {
		return fmt.Errorf("hook failed: %w", err)
	}
	return nil
}

// Worker drains jobs until ctx is done. Failures are logged; the hook never
// affects the event stream.
func (r *Runner) Worker(ctx context.Context, jobs <-chan Job) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-jobs:
			if !r.ShouldRun() {
				r.logger.Debug("hook skipped (cooldown)")
				continue
			}
			if err := r.Run(ctx, job); err != nil {
				r.logger.Errorf("hook: %v", err)
			}
		}
	}
}

// ParseArgs splits a shell-style argument string.
func ParseArgs(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	return shlex.Split(raw)
}
