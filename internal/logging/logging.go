// Package logging provides the line logger used by the retry engine.
//
// Lines are rendered as
//
//	[retry][+<elapsed seconds>] <message>
//
// where elapsed time is measured from the start of the run. The logger is a
// [logr.Logger]: INFO messages are logged at V(0) and DEBUG messages at V(1).
package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/juju/clock"

	"github.com/marshall/retry/internal/config"
)

// Debug is the logr verbosity used for debug messages.
const Debug = int(config.LevelDebug)

// Unknown replaces the elapsed time when the clock reads before the start.
const Unknown = "??"

// Options configure a Sink.
type Options struct {
	Clock clock.Clock
	Start time.Time
	Level config.LogLevel
	Quiet bool
}

// Sink is a logr.LogSink writing retry-formatted lines.
type Sink struct {
	mu     *sync.Mutex
	w      io.Writer
	opts   Options
	name   string
	values []any
}

var _ logr.LogSink = (*Sink)(nil)

// NewSink creates a sink writing to w. A nil clock means the wall clock.
func NewSink(w io.Writer, opts Options) *Sink {
	if opts.Clock == nil {
		opts.Clock = clock.WallClock
	}
	return &Sink{mu: &sync.Mutex{}, w: w, opts: opts}
}

// New returns a logger backed by a Sink.
func New(w io.Writer, opts Options) logr.Logger {
	return logr.New(NewSink(w, opts))
}

// Elapsed formats the time since start with millisecond precision.
func Elapsed(clk clock.Clock, start time.Time) string {
	d := clk.Now().Sub(start)
	if d < 0 {
		return Unknown
	}
	return fmt.Sprintf("%.3f", d.Seconds())
}

func (s *Sink) Init(logr.RuntimeInfo) {}

// Enabled reports whether messages at level are written.
func (s *Sink) Enabled(level int) bool {
	return !s.opts.Quiet && level <= int(s.opts.Level)
}

func (s *Sink) Info(_ int, msg string, keysAndValues ...any) {
	s.write(msg, keysAndValues)
}

// Error is written at INFO level with the error appended to the message.
func (s *Sink) Error(err error, msg string, keysAndValues ...any) {
	if !s.Enabled(0) {
		return
	}
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	s.write(msg, keysAndValues)
}

func (s *Sink) WithValues(keysAndValues ...any) logr.LogSink {
	c := *s
	c.values = append(append([]any(nil), s.values...), keysAndValues...)
	return &c
}

func (s *Sink) WithName(name string) logr.LogSink {
	c := *s
	if c.name == "" {
		c.name = name
	} else {
		c.name = c.name + "/" + name
	}
	return &c
}

func (s *Sink) write(msg string, keysAndValues []any) {
	var b strings.Builder
	b.WriteString("[retry][+")
	b.WriteString(Elapsed(s.opts.Clock, s.opts.Start))
	b.WriteString("] ")
	if s.name != "" {
		b.WriteString(s.name)
		b.WriteString(": ")
	}
	b.WriteString(msg)
	writeValues(&b, s.values)
	writeValues(&b, keysAndValues)
	b.WriteByte('\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.w, b.String())
}

func writeValues(b *strings.Builder, kv []any) {
	for i := 0; i < len(kv); i += 2 {
		var v any = "<missing>"
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		fmt.Fprintf(b, " %v=%v", kv[i], v)
	}
}
