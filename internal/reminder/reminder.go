// Package reminder nudges customers about orders left unpaid.
package reminder

import (
	"context"
	"time"

	"github.com/chandraa-ads/sthree-backend/internal/notification"
	"github.com/chandraa-ads/sthree-backend/internal/repository"

	"github.com/robfig/cron"
	"github.com/rs/zerolog"
)

// Job periodically scans for orders that have been pending longer than
// the configured window and sends each owner a reminder. Deliveries are
// best-effort; a failed send is logged and retried on the next run.
type Job struct {
	orders       repository.OrderRepository
	users        repository.UserRepository
	notifier     notification.Notifier
	pendingAfter time.Duration
	logger       zerolog.Logger

	cron *cron.Cron
}

// NewJob creates a reminder job. pendingAfter is how long an order may sit
// in pending before a reminder goes out.
func NewJob(
	orders repository.OrderRepository,
	users repository.UserRepository,
	notifier notification.Notifier,
	pendingAfter time.Duration,
	logger zerolog.Logger,
) *Job {
	return &Job{
		orders:       orders,
		users:        users,
		notifier:     notifier,
		pendingAfter: pendingAfter,
		logger:       logger.With().Str("component", "reminder").Logger(),
		cron:         cron.New(),
	}
}

// Start schedules the job with the given cron expression and begins running.
func (j *Job) Start(schedule string) error {
	if err := j.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		j.Run(ctx)
	}); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info().Str("schedule", schedule).Dur("pending_after", j.pendingAfter).Msg("reminder job scheduled")
	return nil
}

// Stop halts the schedule. A run already in progress finishes.
func (j *Job) Stop() {
	j.cron.Stop()
}

// Run performs one reminder sweep.
func (j *Job) Run(ctx context.Context) {
	cutoff := time.Now().Add(-j.pendingAfter)

	orders, err := j.orders.ListPendingBefore(ctx, cutoff)
	if err != nil {
		j.logger.Error().Err(err).Msg("failed to list pending orders")
		return
	}
	if len(orders) == 0 {
		j.logger.Debug().Msg("no pending orders to remind")
		return
	}

	sent := 0
	for i := range orders {
		order := &orders[i]

		user, err := j.users.GetByID(ctx, order.UserID)
		if err != nil {
			j.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to load order owner")
			continue
		}
		if user == nil {
			j.logger.Warn().Str("order_id", order.ID.String()).Msg("order owner no longer exists, skipping reminder")
			continue
		}

		if err := j.notifier.OrderReminder(ctx, order, user); err != nil {
			j.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to send order reminder")
			continue
		}
		sent++
	}

	j.logger.Info().Int("pending", len(orders)).Int("sent", sent).Msg("reminder sweep complete")
}
