package view

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// StartAutoRefresh schedules periodic soft refreshes. They go through the
// same epoch sequencing as user-driven fetches, so an auto refresh racing a
// parameter change resolves the same way any other overlap does. The
// schedule stops when ctx is done.
func (v *View) StartAutoRefresh(ctx context.Context, schedule, timezone string) error {
	if schedule == "" {
		return fmt.Errorf("auto refresh schedule is required")
	}
	location := time.UTC
	if timezone != "" {
		tz, err := time.LoadLocation(timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone: %w", err)
		}
		location = tz
	}

	c := cron.New(cron.WithLocation(location))
	if _, err := c.AddFunc(schedule, func() {
		v.logger.Debug("auto refresh fired", "schedule", schedule)
		v.Refresh(ctx, false)
	}); err != nil {
		return fmt.Errorf("invalid auto refresh schedule %q: %w", schedule, err)
	}
	c.Start()

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return nil
}
