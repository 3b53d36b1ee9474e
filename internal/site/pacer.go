package site

import (
	"context"
	"time"
)

// Pacer enforces the fixed delay that precedes every remote page load,
// search submission and gazette query.
type Pacer struct {
	Delay time.Duration
}

// Wait sleeps for Delay or until ctx is done.
func (p Pacer) Wait(ctx context.Context) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
