package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/juju/clock"
	jujuretry "github.com/juju/retry"
	"github.com/kballard/go-shellquote"

	"github.com/marshall/retry/internal/backoff"
	"github.com/marshall/retry/internal/config"
	"github.com/marshall/retry/internal/launcher"
	"github.com/marshall/retry/internal/logging"
)

// Result describes how a run ended.
type Result struct {
	// Attempts is the number of attempts made.
	Attempts uint64

	// ExitCode and Signal describe the final attempt. ExitCode is nil when it
	// was terminated by a signal.
	ExitCode *int
	Signal   os.Signal

	// PrevExitCode is the last exit code recorded before a retry.
	PrevExitCode *int

	// Satisfied is true when the run stopped because the success predicate
	// said so, false when the attempt budget ran out.
	Satisfied bool

	// Inverted mirrors Config.RetryOnSuccess.
	Inverted bool

	Elapsed time.Duration
}

// Code maps the result to a process exit status.
//
// The final attempt's exit code is propagated. A final attempt killed by a
// signal yields 128+signal. When retrying on success, reaching the awaited
// failure is itself a success and yields 0.
func (r Result) Code() int {
	if r.Inverted && r.Satisfied {
		return 0
	}
	if r.ExitCode != nil {
		return *r.ExitCode
	}
	if sig, ok := r.Signal.(syscall.Signal); ok {
		return 128 + int(sig)
	}
	return 1
}

// Engine owns the state of a single retry run.
type Engine struct {
	cfg    config.Config
	policy backoff.Policy

	clock    clock.Clock
	log      logr.Logger
	hasLog   bool
	launcher launcher.Launcher
	recorder Recorder
	environ  func() []string
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer

	count        uint64
	start        time.Time
	prevExitCode *int
	ran          bool
}

// New validates cfg and builds an engine. The start time is taken here.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Command = slices.Clone(cfg.Command)

	e := &Engine{
		cfg:      cfg,
		policy:   backoff.FromConfig(cfg),
		clock:    clock.WallClock,
		launcher: launcher.Exec{},
		recorder: noopRecorder{},
		environ:  os.Environ,
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.start = e.clock.Now()
	if !e.hasLog {
		e.log = logging.New(e.stdout, logging.Options{
			Clock: e.clock,
			Start: e.start,
			Level: cfg.LogLevel,
			Quiet: cfg.Quiet,
		})
	}
	return e, nil
}

// Start returns the time the engine was created.
func (e *Engine) Start() time.Time {
	return e.start
}

// Run executes attempts until the success predicate or the budget stops the
// loop. Attempt failures are absorbed; only a launch failure or a cancelled
// context is returned as an error.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	if e.ran {
		return Result{}, ErrAlreadyRun
	}
	e.ran = true

	res := Result{Inverted: e.cfg.RetryOnSuccess}
	var (
		status launcher.Status
		fatal  error
	)

	attempt := func() error {
		if err := ctx.Err(); err != nil {
			fatal = err
			return fatal
		}
		if e.count > 0 {
			e.recorder.Sleep(e.policy.Delay(e.count))
		}
		e.logAttempt()

		began := e.clock.Now()
		st, err := e.launcher.Launch(ctx, e.request())
		if err != nil {
			fatal = &LaunchError{Command: e.cfg.Command[0], Err: err}
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				fatal = ctxErr
			}
			return fatal
		}
		e.recorder.Attempt(st, e.clock.Now().Sub(began))

		status = st
		res.ExitCode = st.ExitCode
		res.Signal = st.Signal

		shouldRetry := !st.Success()
		if e.cfg.RetryOnSuccess {
			shouldRetry = !shouldRetry
		}

		e.count++
		res.Attempts = e.count
		if !shouldRetry {
			res.Satisfied = true
			return nil
		}
		return errRetry
	}

	err := jujuretry.Call(jujuretry.CallArgs{
		Func: attempt,
		IsFatalError: func(error) bool {
			return fatal != nil
		},
		NotifyFunc: func(error, int) {
			// Call notifies after the final attempt too; nothing sleeps then.
			if !e.keepTrying() {
				return
			}
			e.prevExitCode = status.ExitCode
			res.PrevExitCode = e.prevExitCode
			e.log.V(logging.Debug).Info(fmt.Sprintf("%s, sleeping %ds", reason(status), e.policy.Seconds(e.count)))
		},
		Attempts: e.attempts(),
		// Call rejects a zero Delay; every sleep comes from BackoffFunc.
		Delay: time.Nanosecond,
		BackoffFunc: func(_ time.Duration, completed int) time.Duration {
			return e.policy.Delay(uint64(completed))
		},
		Clock: e.clock,
		Stop:  ctx.Done(),
	})
	switch {
	case fatal != nil:
		return res, fatal
	case jujuretry.IsRetryStopped(err):
		return res, ctx.Err()
	case err != nil && !jujuretry.IsAttemptsExceeded(err):
		return res, fmt.Errorf("retry loop failed: %w", err)
	}

	res.Elapsed = max(e.clock.Now().Sub(e.start), 0)
	e.log.V(logging.Debug).Info(fmt.Sprintf("total duration %ss", logging.Elapsed(e.clock, e.start)))
	e.recorder.Finish(res.Satisfied, res.Elapsed)
	return res, nil
}

// attempts maps MaxTries onto the attempt budget of jujuretry.Call.
func (e *Engine) attempts() int {
	if e.cfg.MaxTries == 0 || e.cfg.MaxTries > math.MaxInt {
		return jujuretry.UnlimitedAttempts
	}
	return int(e.cfg.MaxTries)
}

func (e *Engine) keepTrying() bool {
	return e.cfg.MaxTries == 0 || e.count < e.cfg.MaxTries
}

func (e *Engine) request() launcher.Request {
	meta := launcher.Meta{
		Try:          e.count + 1,
		Max:          e.cfg.MaxTries,
		NextSleep:    e.policy.Seconds(e.count + 1),
		PrevExitCode: e.prevExitCode,
	}
	if e.count > 0 {
		prev := e.policy.Seconds(e.count)
		meta.PrevSleep = &prev
	}

	return launcher.Request{
		Argv:   e.cfg.Command,
		Env:    launcher.RetryEnv(e.environ(), meta),
		Stdin:  e.stdin,
		Stdout: e.stdout,
		Stderr: e.stderr,
	}
}

func (e *Engine) logAttempt() {
	budget := ""
	if e.cfg.MaxTries != 0 {
		budget = fmt.Sprintf("/%d", e.cfg.MaxTries)
	}
	e.log.Info(fmt.Sprintf("try #%d%s: %s", e.count+1, budget, shellquote.Join(e.cfg.Command...)))
}

func reason(status launcher.Status) string {
	if status.ExitCode == nil {
		return "process terminated by signal"
	}
	return fmt.Sprintf("unexpected exit code: %d", *status.ExitCode)
}
