package reminders

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const passTimeout = 4 * time.Minute

// StartScheduler runs the dispatcher on the cron schedule spec. Overlapping
// runs are skipped. Stop the returned cron on shutdown.
func StartScheduler(spec string, d *Dispatcher) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), passTimeout)
		defer cancel()

		if _, err := d.RunOnce(ctx); err != nil {
			log.Error().Err(err).Msg("reminder pass failed")
		}
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("schedule", spec).Msg("reminder scheduler started")
	c.Start()
	return c, nil
}
