package bot

import (
	"context"
	"time"
)

// NotifyAtInterval fires the evaluation pass on every wall-clock boundary that
// is a multiple of interval (every 10 minutes at :00, :10, :20 and so on).
// The pass runs synchronously, so the loop cannot overlap itself; passes
// racing a manual /evaluate are serialized per controller by the in-flight set.
func (b *Bot) NotifyAtInterval(ctx context.Context, interval time.Duration) {
	for {
		timer := time.NewTimer(time.Until(nextFire(time.Now(), interval)))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			b.EvaluateAndNotify(ctx)
		}
	}
}

func nextFire(now time.Time, interval time.Duration) time.Time {
	return now.Truncate(interval).Add(interval)
}
