package schedule

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"folio/internal/folio"
)

// CronScheduler implements folio.Scheduler with robfig/cron. Each call to
// Every gets its own cron instance so jobs can be stopped independently.
// A run is skipped while the previous one is still executing.
type CronScheduler struct {
	logger folio.Logger
}

func NewCronScheduler(logger folio.Logger) *CronScheduler {
	return &CronScheduler{logger: logger}
}

// Every runs job every interval, starting one interval from now.
// Intervals below one second are rounded up to one second.
func (s *CronScheduler) Every(interval time.Duration, job func()) (func(), error) {
	if interval <= 0 {
		return nil, fmt.Errorf("invalid schedule interval: %v", interval)
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(cron.Every(interval), cron.FuncJob(job))
	c.Start()
	s.logger.Debug("cron job scheduled", "interval", interval)

	return func() {
		<-c.Stop().Done()
		s.logger.Debug("cron job stopped", "interval", interval)
	}, nil
}

// Compile-time check that CronScheduler implements folio.Scheduler interface
var _ folio.Scheduler = (*CronScheduler)(nil)
