package reminders

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aligeramy/somas/internal/engine"
	"github.com/aligeramy/somas/internal/metrics"
	"github.com/aligeramy/somas/internal/recurrence"
)

const (
	lockKey = "reminders:dispatch"
	lockTTL = 4 * time.Minute
)

// Gate is the part of the engine the dispatcher drives.
type Gate interface {
	DueReminders(ctx context.Context, now time.Time) ([]engine.DueReminder, error)
	RecordReminderSent(ctx context.Context, d engine.DueReminder, sentAt time.Time) (bool, error)
}

// Locker keeps concurrent replicas from dispatching the same pass.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Unlock(ctx context.Context, key, token string) error
}

type Dispatcher struct {
	gate     Gate
	notifier Notifier
	locker   Locker
	loc      *time.Location
	now      func() time.Time
}

// NewDispatcher builds a dispatcher. locker may be nil for a single
// replica; loc is the wall-clock zone occurrence dates are written in.
func NewDispatcher(gate Gate, notifier Notifier, locker Locker, loc *time.Location) *Dispatcher {
	if loc == nil {
		loc = time.UTC
	}
	return &Dispatcher{gate: gate, notifier: notifier, locker: locker, loc: loc, now: time.Now}
}

type PassResult struct {
	Due     int
	Sent    int
	Failed  int
	Skipped bool
}

// RunOnce delivers every due reminder. Only delivered reminders are logged,
// so failures are picked up again by the next pass.
func (d *Dispatcher) RunOnce(ctx context.Context) (PassResult, error) {
	var res PassResult
	start := d.now()
	defer func() { metrics.ReminderPassDuration.Observe(time.Since(start).Seconds()) }()

	if d.locker != nil {
		token, ok, err := d.locker.TryLock(ctx, lockKey, lockTTL)
		if err != nil {
			return res, err
		}
		if !ok {
			log.Debug().Msg("reminder pass already running elsewhere")
			res.Skipped = true
			return res, nil
		}
		defer func() {
			_ = d.locker.Unlock(context.WithoutCancel(ctx), lockKey, token)
		}()
	}

	due, err := d.gate.DueReminders(ctx, recurrence.Naive(start, d.loc))
	if err != nil {
		log.Error().Err(err).Msg("DueReminders failed")
		return res, err
	}
	res.Due = len(due)

	for _, r := range due {
		if err := d.notifier.Notify(ctx, r); err != nil {
			res.Failed++
			metrics.RemindersSent.WithLabelValues("failed").Inc()
			log.Warn().Err(err).
				Str("occurrence_id", r.OccurrenceID.String()).
				Str("user_id", r.UserID.String()).
				Msg("reminder delivery failed")
			continue
		}
		if _, err := d.gate.RecordReminderSent(ctx, r, d.now().UTC()); err != nil {
			return res, err
		}
		res.Sent++
		metrics.RemindersSent.WithLabelValues("sent").Inc()
	}

	if res.Due > 0 {
		log.Info().Int("due", res.Due).Int("sent", res.Sent).Int("failed", res.Failed).Msg("reminder pass finished")
	}
	return res, nil
}
