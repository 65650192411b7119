package scheduler

import "fmt"

// assertf panics on a broken invariant — a programmer error such as a
// negative count, never a returned error. Local/recoverable placement
// failures never go through here; they're encoded directly into the
// working set.
func assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("scheduler: invariant violated: "+format, args...))
	}
}
