// Package handlers contains the business logic behind the CLI commands.
package handlers

import (
	"context"
	"io"
	"strconv"

	"github.com/marshall/retry/internal/config"
	"github.com/marshall/retry/internal/metrics"
	"github.com/marshall/retry/internal/retry"
)

// ExitError carries a non-zero exit status for main to propagate.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return "exit status " + strconv.Itoa(e.Code)
}

// Retry runs the engine for cfg with the given standard streams.
//
// A non-zero final status is returned as an *ExitError. Launch failures are
// returned as they are and are never retried.
func Retry(ctx context.Context, cfg config.Config, in io.Reader, out, errw io.Writer) error {
	opts := []retry.Option{retry.WithStdio(in, out, errw)}

	var rec *metrics.Recorder
	if cfg.MetricsFile != "" {
		rec = metrics.New()
		opts = append(opts, retry.WithRecorder(rec))
	}

	engine, err := retry.New(cfg, opts...)
	if err != nil {
		return err
	}

	res, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	if rec != nil {
		if err := rec.WriteFile(cfg.MetricsFile); err != nil {
			return err
		}
	}

	if code := res.Code(); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}
