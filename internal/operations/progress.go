package operations

import (
	"time"

	"golang.org/x/time/rate"
)

// ProgressFunc receives the completed share of an operation as a
// percentage in [0, 100]. It is called synchronously after each unit of
// work, so a slow callback stalls the operation.
type ProgressFunc func(percent float64)

func report(progress ProgressFunc, done, total int) {
	if progress == nil || total <= 0 {
		return
	}
	progress(float64(done) * 100 / float64(total))
}

// ThrottledProgress forwards at most one update per interval to fn.
// The first and final (100%) updates always get through.
func ThrottledProgress(fn ProgressFunc, interval time.Duration) ProgressFunc {
	if fn == nil {
		return nil
	}
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	return func(percent float64) {
		if percent >= 100 || limiter.Allow() {
			fn(percent)
		}
	}
}
