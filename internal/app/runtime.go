package app

import (
	"os"
	"sync"
)

const testModeEnv = "STOCKDESK_TEST_MODE"

var (
	testModeMu    sync.RWMutex
	testModeValue *bool
)

// InTestMode reports whether binaries should skip connecting to Postgres,
// Redis and the job queue. The flag is read once and cached.
func InTestMode() bool {
	testModeMu.RLock()
	cached := testModeValue
	testModeMu.RUnlock()
	if cached != nil {
		return *cached
	}
	return RefreshTestMode()
}

// RefreshTestMode re-reads the environment, e.g. after t.Setenv.
func RefreshTestMode() bool {
	v := os.Getenv(testModeEnv) == "1"
	testModeMu.Lock()
	testModeValue = &v
	testModeMu.Unlock()
	return v
}
