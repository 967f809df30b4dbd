package shots

import (
	"context"
	"log/slog"
	"time"

	"fourcut-ai/internal/gemini"
)

// caller wraps the generator with call pacing and a bounded quota retry.
type caller struct {
	gen    Generator
	pacer  *Pacer
	logger *slog.Logger

	maxRetryDelay time.Duration
	deadline      time.Duration

	now   func() time.Time
	sleep func(context.Context, time.Duration)
}

func newCaller(gen Generator, pacer *Pacer, logger *slog.Logger) *caller {
	return &caller{
		gen:           gen,
		pacer:         pacer,
		logger:        logger,
		maxRetryDelay: maxRetryDelay,
		deadline:      batchDeadline,
		now:           time.Now,
		sleep:         sleepCtx,
	}
}

// invoke performs up to attempts generator calls and reports how many it
// used, so the caller can charge them against a per-scene budget. Only quota
// errors are retried, and only when waiting out the suggested delay still
// fits inside the batch deadline measured from batchStart. Fast-fail beats
// exhausting retries: a delay that would bust the deadline aborts
// immediately.
func (c *caller) invoke(ctx context.Context, refs []gemini.ImageInput, prompt string, batchStart time.Time, attempts int) ([]byte, string, int, error) {
	var lastErr error
	used := 0

	for attempt := 1; attempt <= attempts; attempt++ {
		c.pacer.Wait(ctx)
		data, mimeType, err := c.gen.Generate(ctx, refs, prompt)
		c.pacer.Record()
		used = attempt

		if err == nil {
			return data, mimeType, used, nil
		}
		lastErr = err

		if !gemini.IsQuota(err) || attempt >= attempts {
			break
		}

		delay, ok := gemini.RetryDelay(err)
		if !ok {
			delay = minInterval
		}
		if delay > c.maxRetryDelay {
			delay = c.maxRetryDelay
		}

		if c.now().Sub(batchStart)+delay > c.deadline {
			c.logger.Warn("quota retry skipped, deadline too close",
				"elapsed", c.now().Sub(batchStart), "delay", delay)
			break
		}

		c.logger.Info("quota hit, retrying", "attempt", attempt, "delay", delay)
		c.sleep(ctx, delay+jitter(200*time.Millisecond, 800*time.Millisecond))
	}

	return nil, "", used, lastErr
}
