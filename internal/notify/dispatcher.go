package notify

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/daycast/backend/internal/models"
)

// EventStore is the slice of event persistence the dispatcher needs.
type EventStore interface {
	FindMany(ctx context.Context, filter bson.M, sort bson.D, limit int64) ([]models.Event, error)
	UpdateOne(ctx context.Context, filter bson.M, set bson.M) (*models.Event, error)
}

// UserFinder resolves event owners.
type UserFinder interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// ReminderSender delivers a single reminder.
type ReminderSender interface {
	SendReminder(ev *models.Event, to *models.User) error
}

// Dispatcher periodically scans for due, unsent email reminders and
// delivers them. Reminders of type push are left for the client. Due
// reminders are marked sent whether or not mail goes out, so a
// misconfigured mailbox never causes endless redelivery.
type Dispatcher struct {
	events   EventStore
	users    UserFinder
	sender   ReminderSender
	logger   *zap.SugaredLogger
	interval time.Duration
	now      func() time.Time
}

func NewDispatcher(events EventStore, users UserFinder, sender ReminderSender, logger *zap.SugaredLogger, interval time.Duration) *Dispatcher {
	return &Dispatcher{
		events:   events,
		users:    users,
		sender:   sender,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
}

// Run blocks, scanning on every tick until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Infow("reminder dispatcher started", "interval", d.interval)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("reminder dispatcher stopped")
			return
		case <-ticker.C:
			if err := d.DispatchDue(ctx); err != nil {
				d.logger.Errorw("reminder scan failed", "err", err)
			}
		}
	}
}

// DispatchDue performs one scan: every event with at least one unsent
// email reminder whose fire time has passed gets processed.
func (d *Dispatcher) DispatchDue(ctx context.Context) error {
	now := d.now()
	filter := bson.M{
		"reminders": bson.M{"$elemMatch": bson.M{
			"sent": false,
			"type": models.ReminderEmail,
			"time": bson.M{"$lte": now},
		}},
	}
	events, err := d.events.FindMany(ctx, filter, nil, 0)
	if err != nil {
		return err
	}

	for i := range events {
		d.dispatchEvent(ctx, &events[i], now)
	}
	return nil
}

func (d *Dispatcher) dispatchEvent(ctx context.Context, ev *models.Event, now time.Time) {
	due := false
	for i := range ev.Reminders {
		r := &ev.Reminders[i]
		if r.Sent || r.Type != models.ReminderEmail || r.Time.After(now) {
			continue
		}
		r.Sent = true
		due = true
	}
	if !due {
		return
	}

	// Reminders are only worth sending while the event is still ahead
	// and within the next 24 hours.
	untilStart := ev.Start.Sub(now)
	if untilStart > 0 && untilStart <= 24*time.Hour {
		d.deliver(ctx, ev)
	}

	if _, err := d.events.UpdateOne(ctx, bson.M{"_id": ev.ID}, bson.M{"reminders": ev.Reminders}); err != nil {
		d.logger.Errorw("failed to mark reminders sent", "event", ev.ID.Hex(), "err", err)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev *models.Event) {
	owner, err := d.users.GetUserByID(ctx, ev.CreatedBy)
	if err != nil {
		d.logger.Warnw("reminder owner lookup failed", "event", ev.ID.Hex(), "err", err)
		return
	}
	if !owner.Preferences.Notifications.Email {
		return
	}
	if err := d.sender.SendReminder(ev, owner); err != nil {
		d.logger.Warnw("reminder mail failed", "event", ev.ID.Hex(), "err", err)
	}
}
