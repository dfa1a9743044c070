// Package scheduler fires a job once per calendar day at a fixed
// wall-clock time, in the server's local zone.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Job func(ctx context.Context)

type Daily struct {
	hour   int
	minute int
	job    Job
	logger zerolog.Logger
	done   chan struct{}
}

// NewDaily parses an "HH:MM" trigger time.
func NewDaily(at string, job Job, logger zerolog.Logger) (*Daily, error) {
	hour, minute, err := parseClock(at)
	if err != nil {
		return nil, err
	}
	return &Daily{
		hour:   hour,
		minute: minute,
		job:    job,
		logger: logger,
		done:   make(chan struct{}),
	}, nil
}

// Start runs the trigger loop until ctx is cancelled.
func (d *Daily) Start(ctx context.Context) {
	go func() {
		defer close(d.done)
		for {
			next := d.nextRun(time.Now())
			d.logger.Info().Time("next_run", next).Msg("daily job scheduled")

			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				d.job(ctx)
			}
		}
	}()
}

// Wait blocks until the loop has exited after cancellation.
func (d *Daily) Wait() {
	<-d.done
}

func (d *Daily) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), d.hour, d.minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func parseClock(value string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("scheduler: invalid time %q, want HH:MM", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("scheduler: invalid hour in %q", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("scheduler: invalid minute in %q", value)
	}
	return hour, minute, nil
}
