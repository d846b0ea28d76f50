package push

import (
	"errors"
	"log/slog"

	"github.com/dukerupert/washdesk/internal/model"
)

// Sender delivers a payload to one subscription.
type Sender interface {
	Send(sub *model.PushSubscription, payload Payload) error
}

// SubscriptionStore is the subset of store.PushStore the notifier needs.
type SubscriptionStore interface {
	List() ([]model.PushSubscription, error)
	DeleteByEndpoint(endpoint string) error
}

// Notifier fans a notification out to every stored admin device.
type Notifier struct {
	sender Sender
	subs   SubscriptionStore
	logger *slog.Logger
}

func NewNotifier(sender Sender, subs SubscriptionStore, logger *slog.Logger) *Notifier {
	return &Notifier{sender: sender, subs: subs, logger: logger}
}

// PayloadFor builds the push payload for a notification.
func PayloadFor(n model.Notification) Payload {
	body := n.Message
	if body == "" && n.BookingID != "" {
		body = "Booking " + n.BookingID
	}
	return Payload{
		Title: n.Title,
		Body:  body,
		URL:   "/admin/notifications",
		Tag:   n.Type,
	}
}

// Notify sends n to all subscriptions and returns how many deliveries
// succeeded. Expired subscriptions are removed.
func (nt *Notifier) Notify(n model.Notification) int {
	subs, err := nt.subs.List()
	if err != nil {
		nt.logger.Error("list push subscriptions", "error", err)
		return 0
	}

	payload := PayloadFor(n)
	sent := 0
	for i := range subs {
		sub := &subs[i]
		err := nt.sender.Send(sub, payload)
		switch {
		case err == nil:
			sent++
		case errors.Is(err, ErrExpired):
			nt.logger.Info("removing expired push subscription", "device", sub.DeviceName)
			if err := nt.subs.DeleteByEndpoint(sub.Endpoint); err != nil {
				nt.logger.Error("delete push subscription", "error", err)
			}
		default:
			nt.logger.Warn("push send failed", "device", sub.DeviceName, "error", err)
		}
	}
	return sent
}
