package domain

import (
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// readingInterval separates consecutive history readings, newest first.
const readingInterval = 24 * time.Hour

type clockHolder struct{ clockwork.Clock }

// clock stamps readings. It is swapped atomically because searches build
// places from concurrent HTTP handlers while tests and tools call SetClock.
var clock atomic.Value

func init() {
	clock.Store(clockHolder{clockwork.NewRealClock()})
}

// SetClock replaces the time source used by BuildPlace. Nil restores the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	clock.Store(clockHolder{c})
}

func now() time.Time {
	return clock.Load().(clockHolder).Now() //nolint:forcetypeassert // only clockHolder is stored
}
