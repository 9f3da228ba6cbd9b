package schedule

import (
	"context"
	"time"
)

// RunDaemon re-ingests the configured groups and weeks on a fixed
// interval until the context is cancelled. The first run happens
// immediately rather than one interval in.
func (s Service) RunDaemon(ctx context.Context, interval time.Duration, groups []string, weeks []int) {
	logRunSummary(ctx, s.Run(ctx, groups, weeks))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logRunSummary(ctx, s.Run(ctx, groups, weeks))
		}
	}
}
