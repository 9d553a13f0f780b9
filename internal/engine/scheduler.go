package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// Scheduler fires a job at fixed local times each day. Cancellation is
// honored between runs (and, via the job's context, between sources)
// so an interrupt never lands mid-cache-write.
type Scheduler struct {
	times  []clockTime
	logger *slog.Logger
}

// clockTime is a time of day, independent of date.
type clockTime struct {
	hour, minute int
}

// NewScheduler parses the run times ("HH:MM", local time).
func NewScheduler(times []string, logger *slog.Logger) (*Scheduler, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("no schedule times given")
	}

	parsed := make([]clockTime, 0, len(times))
	for _, raw := range times {
		t, err := time.Parse("15:04", raw)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule time %q: %w", raw, err)
		}
		parsed = append(parsed, clockTime{hour: t.Hour(), minute: t.Minute()})
	}
	sort.Slice(parsed, func(i, j int) bool {
		if parsed[i].hour != parsed[j].hour {
			return parsed[i].hour < parsed[j].hour
		}
		return parsed[i].minute < parsed[j].minute
	})

	return &Scheduler{
		times:  parsed,
		logger: logger.With("component", "scheduler"),
	}, nil
}

// Start blocks, invoking job at each scheduled time, until the context
// is canceled.
func (s *Scheduler) Start(ctx context.Context, job func(context.Context)) {
	for _, t := range s.times {
		s.logger.Info("scrape scheduled", "time", fmt.Sprintf("%02d:%02d", t.hour, t.minute))
	}

	for {
		next := s.NextRun(time.Now())
		s.logger.Info("next run", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("scheduler stopped")
			return
		case <-timer.C:
		}

		s.logger.Info("running scheduled scrape")
		job(ctx)

		if ctx.Err() != nil {
			s.logger.Info("scheduler stopped")
			return
		}
	}
}

// NextRun returns the first scheduled instant strictly after now.
func (s *Scheduler) NextRun(now time.Time) time.Time {
	for _, t := range s.times {
		candidate := time.Date(now.Year(), now.Month(), now.Day(), t.hour, t.minute, 0, 0, now.Location())
		if candidate.After(now) {
			return candidate
		}
	}
	// All of today's times have passed; wrap to the earliest tomorrow.
	first := s.times[0]
	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), first.hour, first.minute, 0, 0, now.Location())
}
