// Package guard switches binaries into test mode when blank-imported from a
// test, so calling main never dials Postgres or Redis.
package guard

import (
	"os"
	"sync"
)

// EnvVar names the variable checked by app.InTestMode.
const EnvVar = "STOCKDESK_TEST_MODE"

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv(EnvVar) == "" {
			_ = os.Setenv(EnvVar, "1")
		}
	})
}
