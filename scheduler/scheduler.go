package scheduler

import (
	"context"
	"sync"
	"time"

	"tech-radar/config"
	"tech-radar/logger"
)

// Job is one scheduled callback. Jobs are expected to handle their own
// failures; a panic-free error exit just waits for the next occurrence.
type Job func(ctx context.Context)

// Scheduler fires the daily pipeline at a fixed local hour. It is a
// sleep-until-next-occurrence loop rather than a cron dependency; the
// cadence is a single daily tick, with the weekly job piggybacking on
// the daily tick of its configured weekday.
type Scheduler struct {
	daily   Job
	weekly  Job
	hour    int
	weekday time.Weekday
	loc     *time.Location

	mu      sync.Mutex
	nextRun time.Time
	lastRun time.Time
}

func New(cfg *config.AppConfig, daily, weekly Job) *Scheduler {
	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		logger.Log.Warnf("unknown timezone %q, falling back to UTC: %v", cfg.Schedule.Timezone, err)
		loc = time.UTC
	}
	return &Scheduler{
		daily:   daily,
		weekly:  weekly,
		hour:    cfg.Schedule.DailyHour,
		weekday: time.Weekday(cfg.Schedule.WeeklyWeekday),
		loc:     loc,
	}
}

// Start launches the schedule loop. It returns immediately; the loop runs
// until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	for {
		next := s.nextOccurrence(time.Now().In(s.loc))
		s.mu.Lock()
		s.nextRun = next
		s.mu.Unlock()

		logger.Log.Infof("next scheduled run at %s", next.Format(time.RFC3339))
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Log.Info("scheduler stopped")
			return
		case <-timer.C:
		}

		s.mu.Lock()
		s.lastRun = time.Now()
		s.mu.Unlock()
		s.daily(ctx)
		if s.weekly != nil && time.Now().In(s.loc).Weekday() == s.weekday {
			s.weekly(ctx)
		}
	}
}

// nextOccurrence is the next daily-hour boundary strictly after now.
func (s *Scheduler) nextOccurrence(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, 0, 0, 0, s.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Status reports the schedule state for the health endpoint.
type Status struct {
	NextRun time.Time `json:"next_run"`
	LastRun time.Time `json:"last_run,omitempty"`
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{NextRun: s.nextRun, LastRun: s.lastRun}
}
