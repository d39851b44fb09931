package retry

import (
	"io"
	"time"

	"github.com/go-logr/logr"
	"github.com/juju/clock"

	"github.com/marshall/retry/internal/launcher"
)

// Option is a functional option for engine construction.
type Option func(*Engine)

// Recorder receives run events, e.g. for metrics.
type Recorder interface {
	Attempt(status launcher.Status, took time.Duration)
	Sleep(d time.Duration)
	Finish(succeeded bool, elapsed time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) Attempt(launcher.Status, time.Duration) {}
func (noopRecorder) Sleep(time.Duration)                    {}
func (noopRecorder) Finish(bool, time.Duration)             {}

// WithClock sets the clock used for timestamps and sleeping.
func WithClock(clk clock.Clock) Option {
	return func(e *Engine) {
		e.clock = clk
	}
}

// WithLogger replaces the default stdout logger.
func WithLogger(log logr.Logger) Option {
	return func(e *Engine) {
		e.log = log
		e.hasLog = true
	}
}

// WithLauncher sets how attempts are started.
func WithLauncher(l launcher.Launcher) Option {
	return func(e *Engine) {
		e.launcher = l
	}
}

// WithRecorder sets the run event recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithStdio sets the standard streams handed to the command. The default
// logger also writes to out.
func WithStdio(in io.Reader, out, errw io.Writer) Option {
	return func(e *Engine) {
		e.stdin = in
		e.stdout = out
		e.stderr = errw
	}
}

// WithEnviron sets the base environment the retry variables are added to.
func WithEnviron(environ func() []string) Option {
	return func(e *Engine) {
		e.environ = environ
	}
}
