package launcher

import (
	"strconv"
	"strings"
)

// Variables exported to the wrapped command on every attempt.
const (
	EnvTry          = "RETRY_TRY"
	EnvMax          = "RETRY_MAX"
	EnvNextSleep    = "RETRY_NEXT_SLEEP"
	EnvPrevSleep    = "RETRY_PREV_SLEEP"
	EnvPrevExitCode = "RETRY_PREV_EXIT_CODE"
)

var retryVars = []string{EnvTry, EnvMax, EnvNextSleep, EnvPrevSleep, EnvPrevExitCode}

// Meta is the retry context of one attempt as seen by the child.
type Meta struct {
	// Try is the 1-based attempt index.
	Try uint64
	// Max is the attempt budget, 0 for unlimited.
	Max uint64
	// NextSleep is the delay in seconds before the following attempt, if any.
	NextSleep uint64
	// PrevSleep is the delay slept before this attempt. Nil on the first one.
	PrevSleep *uint64
	// PrevExitCode is nil when no code was recorded or the previous attempt
	// was killed by a signal.
	PrevExitCode *int
}

// Vars renders m as KEY=value pairs. Absent values are omitted, not emptied.
func (m Meta) Vars() []string {
	vars := []string{
		EnvTry + "=" + strconv.FormatUint(m.Try, 10),
		EnvMax + "=" + strconv.FormatUint(m.Max, 10),
		EnvNextSleep + "=" + strconv.FormatUint(m.NextSleep, 10),
	}
	if m.PrevSleep != nil {
		vars = append(vars, EnvPrevSleep+"="+strconv.FormatUint(*m.PrevSleep, 10))
	}
	if m.PrevExitCode != nil {
		vars = append(vars, EnvPrevExitCode+"="+strconv.Itoa(*m.PrevExitCode))
	}
	return vars
}

// RetryEnv returns base with any inherited retry variables removed and the
// ones describing m appended. base is not modified.
func RetryEnv(base []string, m Meta) []string {
	env := make([]string, 0, len(base)+len(retryVars))
	for _, kv := range base {
		if !isRetryVar(kv) {
			env = append(env, kv)
		}
	}
	return append(env, m.Vars()...)
}

func isRetryVar(kv string) bool {
	name, _, _ := strings.Cut(kv, "=")
	for _, v := range retryVars {
		if name == v {
			return true
		}
	}
	return false
}
