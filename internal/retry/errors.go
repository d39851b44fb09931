package retry

import "errors"

// ErrAlreadyRun is returned when Run is called more than once.
var ErrAlreadyRun = errors.New("retry engine has already run")

// errRetry tells the loop that an attempt asked for another one.
var errRetry = errors.New("attempt requires a retry")

// LaunchError reports a command that could not be started. It is never
// retried.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return e.Err.Error()
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// IsLaunchError checks if err is or wraps a LaunchError.
func IsLaunchError(err error) bool {
	var launchErr *LaunchError
	return errors.As(err, &launchErr)
}
