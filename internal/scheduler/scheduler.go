package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one periodic task. Run gets a context bounded by Timeout.
type Job struct {
	Name     string
	Schedule string
	Timeout  time.Duration
	Run      func(ctx context.Context) error
}

type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// cronLogger routes cron's own messages into zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

func New(log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger{log: log}),
		cron.SkipIfStillRunning(cronLogger{log: log}),
	))
	return &Scheduler{cron: c, log: log}
}

func (s *Scheduler) Add(job Job) error {
	if job.Timeout <= 0 {
		job.Timeout = 30 * time.Second
	}
	_, err := s.cron.AddFunc(job.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), job.Timeout)
		defer cancel()
		start := time.Now()
		if err := job.Run(ctx); err != nil {
			s.log.Warn().Err(err).Str("job", job.Name).Msg("job failed")
			return
		}
		s.log.Debug().Str("job", job.Name).Dur("took", time.Since(start)).Msg("job finished")
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", job.Name, job.Schedule, err)
	}
	s.log.Info().Str("job", job.Name).Str("schedule", job.Schedule).Msg("job scheduled")
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Entries is the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
