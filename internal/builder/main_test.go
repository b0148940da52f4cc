package builder

import (
	"testing"

	"go.uber.org/goleak"
)

// Renders fan out on an errgroup; every worker must be gone once a build
// returns. regexp2, used by chroma's lexers, keeps one clock goroutine for
// the life of the process.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreAnyFunction("github.com/dlclark/regexp2.runClock"))
}
