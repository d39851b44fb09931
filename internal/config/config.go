package config

import (
	"errors"
	"fmt"
)

// LogLevel is an ordinal verbosity threshold. Lower values are more important.
type LogLevel int

const (
	// LevelInfo messages are always shown unless quiet.
	LevelInfo LogLevel = 0
	// LevelDebug messages are shown only in verbose mode.
	LevelDebug LogLevel = 1
)

// Defaults applied when neither a defaults file nor a flag sets a value.
const (
	DefaultMaxTries   uint64 = 10
	DefaultSleep      uint64 = 5
	DefaultMaxBackoff uint64 = 60
)

var (
	// ErrNoCommand is returned when the command vector is empty.
	ErrNoCommand = errors.New("no command provided")
	// ErrInvalidLogLevel is returned for a log level outside INFO..DEBUG.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Config holds the resolved options for a single retry run.
type Config struct {
	// MaxTries is the attempt budget. Zero means unlimited.
	MaxTries uint64

	// Sleep is the fixed delay in seconds between attempts when Backoff is off.
	Sleep uint64

	// Backoff selects exponential delays (2^n seconds) over the fixed Sleep.
	Backoff bool

	// MaxBackoff clamps the exponential delay, in seconds.
	MaxBackoff uint64

	LogLevel LogLevel
	Quiet    bool

	// RetryOnSuccess inverts the success predicate: the command is retried
	// while it exits 0 and the run stops once it fails.
	RetryOnSuccess bool

	// Command is the wrapped executable followed by its arguments.
	Command []string

	// MetricsFile, when set, receives a Prometheus textfile report of the run.
	MetricsFile string
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		MaxTries:   DefaultMaxTries,
		Sleep:      DefaultSleep,
		MaxBackoff: DefaultMaxBackoff,
		LogLevel:   LevelInfo,
	}
}

// Verbose reports whether debug logging is enabled.
func (c Config) Verbose() bool {
	return c.LogLevel >= LevelDebug
}

// Validate checks the configuration before a run is started.
func (c Config) Validate() error {
	if err := c.validateLogLevel(); err != nil {
		return err
	}
	if len(c.Command) == 0 || c.Command[0] == "" {
		return ErrNoCommand
	}
	return nil
}

func (c Config) validateLogLevel() error {
	if c.LogLevel < LevelInfo || c.LogLevel > LevelDebug {
		return fmt.Errorf("%w: %d", ErrInvalidLogLevel, c.LogLevel)
	}
	return nil
}
