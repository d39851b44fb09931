// Package retry runs a command repeatedly until its success condition is met
// or the attempt budget is exhausted.
//
// An [Engine] is built from a resolved [config.Config] with [New] and driven
// once with [Engine.Run]. Each attempt is launched synchronously with the
// retry variables (RETRY_TRY, RETRY_MAX, RETRY_NEXT_SLEEP, RETRY_PREV_SLEEP,
// RETRY_PREV_EXIT_CODE) in its environment; between attempts the engine
// sleeps for the delay given by the [backoff.Policy].
//
// A command that cannot be started is not retried: Run returns a
// [*LaunchError] immediately.
package retry
