package session

import (
	"strconv"
	"sync/atomic"
)

// counter is a session-scoped monotonic id allocator: three independent
// instances (transaction, subscription, receipt) back the three counters
// the state machine requires, each formatted as a decimal string and never
// reused within the session's lifetime.
type counter struct {
	n atomic.Uint64
}

// next returns the next value, starting at "0" to match the original
// implementation's zero-based counters.
func (c *counter) next() string {
	v := c.n.Add(1) - 1
	return strconv.FormatUint(v, 10)
}
