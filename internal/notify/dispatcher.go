// Package notify records admin notifications and fans them out to every
// delivery channel: the WebSocket hub, web push and, for issue reports, email.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/washdesk/internal/model"
	"github.com/dukerupert/washdesk/internal/websocket"
)

type Store interface {
	Create(n model.Notification) (*model.Notification, error)
}

type Broadcaster interface {
	Broadcast(ev websocket.Event)
}

type Pusher interface {
	Notify(n model.Notification) int
}

type IssueMailer interface {
	SendIssueReport(ctx context.Context, toEmail string, n model.Notification) error
}

// Dispatcher persists a notification, then broadcasts it synchronously. Push
// and email deliveries run in the background; Wait blocks until they finish.
type Dispatcher struct {
	store  Store
	hub    Broadcaster
	logger *slog.Logger

	pusher       Pusher
	mailer       IssueMailer
	supportEmail string

	wg sync.WaitGroup
}

type Option func(*Dispatcher)

func WithPusher(p Pusher) Option {
	return func(d *Dispatcher) { d.pusher = p }
}

// WithIssueMailer escalates ISSUE_REPORT notifications to supportEmail.
func WithIssueMailer(m IssueMailer, supportEmail string) Option {
	return func(d *Dispatcher) {
		d.mailer = m
		d.supportEmail = supportEmail
	}
}

func NewDispatcher(store Store, hub Broadcaster, logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{store: store, hub: hub, logger: logger}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Publish stores n and delivers it. The returned notification carries the
// assigned id and creation time.
func (d *Dispatcher) Publish(n model.Notification) (*model.Notification, error) {
	created, err := d.store.Create(n)
	if err != nil {
		return nil, fmt.Errorf("publish notification: %w", err)
	}

	if d.hub != nil {
		d.hub.Broadcast(websocket.NewEvent(websocket.EventNewNotification, model.NewNotificationEvent{Notification: *created}))
	}
	d.logger.Info("notification published", "id", created.ID, "type", created.Type)

	if d.pusher != nil {
		d.wg.Add(1)
		go func(n model.Notification) {
			defer d.wg.Done()
			sent := d.pusher.Notify(n)
			d.logger.Debug("push delivered", "id", n.ID, "sent", sent)
		}(*created)
	}

	if d.mailer != nil && d.supportEmail != "" && created.Type == model.TypeIssueReport {
		d.wg.Add(1)
		go func(n model.Notification) {
			defer d.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := d.mailer.SendIssueReport(ctx, d.supportEmail, n); err != nil {
				d.logger.Error("issue report email", "id", n.ID, "error", err)
			}
		}(*created)
	}

	return created, nil
}

// Wait blocks until background deliveries started so far have completed.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
