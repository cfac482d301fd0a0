// internal/clock/clock.go
package clock

import (
	"sync/atomic"
	"time"
)

// Cached UTC epoch seconds, refreshed once per second.
//
// Ingest stamps every entry with the current second; calling time.Now()
// per request is wasted syscalls at high throughput, and 1-second
// precision is all the record format keeps anyway. The cached value only
// moves forward, so timestamps assigned on one instance never decrease.
var unixSec atomic.Int64

func init() {
	unixSec.Store(time.Now().Unix())

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for range ticker.C {
			now := time.Now().Unix()
			if now > unixSec.Load() {
				unixSec.Store(now)
			}
		}
	}()
}

// Unix returns the current UTC epoch seconds (cached, 1-second precision).
func Unix() int64 {
	return unixSec.Load()
}
