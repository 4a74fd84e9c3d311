package services

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs jobs periodically.
type Scheduler interface {
	// ForPeriod runs job every interval, and once right away when immediate
	// is set. The returned function unschedules the job.
	ForPeriod(job func(), interval time.Duration, immediate bool) (stop func())
}

// CronScheduler schedules jobs on a robfig cron instance. Intervals are
// rounded down to whole seconds, with a one second minimum.
type CronScheduler struct {
	log  *zap.Logger
	cron *cron.Cron
}

func NewCronScheduler(log *zap.Logger) *CronScheduler {
	cronLog := cron.PrintfLogger(zap.NewStdLog(log))
	c := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	c.Start()
	return &CronScheduler{log: log, cron: c}
}

func (s *CronScheduler) ForPeriod(job func(), interval time.Duration, immediate bool) func() {
	if immediate {
		job()
	}

	id := s.cron.Schedule(cron.Every(interval), cron.FuncJob(job))
	s.log.Info("[CronScheduler] Job scheduled", zap.Duration("interval", interval), zap.Int("entry", int(id)))

	var once sync.Once
	return func() {
		once.Do(func() {
			s.cron.Remove(id)
			s.log.Info("[CronScheduler] Job unscheduled", zap.Int("entry", int(id)))
		})
	}
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *CronScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
