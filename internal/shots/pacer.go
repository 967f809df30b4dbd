package shots

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Pacer enforces the minimum spacing between generator calls. The last-call
// timestamp is deliberately process-wide, not per-request: under concurrent
// batches one request's call satisfies the spacing for another, so the
// guarantee holds for the upstream credential as a whole.
type Pacer struct {
	mu       sync.Mutex
	lastCall time.Time

	interval time.Duration
	maxWait  time.Duration

	now   func() time.Time
	sleep func(context.Context, time.Duration)
}

func NewPacer() *Pacer {
	return newPacer(minInterval, maxPacerWait)
}

func newPacer(interval, maxWait time.Duration) *Pacer {
	return &Pacer{
		interval: interval,
		maxWait:  maxWait,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Wait blocks until the spacing since the last recorded call is satisfied,
// capped at maxWait plus a small jitter.
func (p *Pacer) Wait(ctx context.Context) {
	p.mu.Lock()
	remaining := p.interval - p.now().Sub(p.lastCall)
	p.mu.Unlock()

	if remaining <= 0 {
		return
	}
	if remaining > p.maxWait {
		remaining = p.maxWait
	}
	p.sleep(ctx, remaining+jitter(100*time.Millisecond, 300*time.Millisecond))
}

// Record stamps the completion of a call, success or failure, so the next
// caller's spacing is measured from the most recent attempt.
func (p *Pacer) Record() {
	p.mu.Lock()
	p.lastCall = p.now()
	p.mu.Unlock()
}

func jitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
