package ai

import "sync/atomic"

// debugLoggingEnabled gates per-decision debug logs of the AI.
// Shared by every battle in the process, hence atomic.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging toggles AI decision logging. Called once from main.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled guards AI debug log calls.
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
