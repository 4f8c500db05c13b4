package cli

import (
	"golang.org/x/time/rate"
)

// throttle caps the pace of credential-bearing commands (login and account
// creation). One interactive operator, so a single limiter suffices.
type throttle struct {
	lim *rate.Limiter
}

func newThrottle() *throttle {
	// 1 attempt per second sustained, bursts of 5
	return &throttle{lim: rate.NewLimiter(rate.Limit(1), 5)}
}

func (t *throttle) allow() bool {
	return t.lim.Allow()
}
