package push

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/dukerupert/washdesk/internal/model"
)

type fakeSender struct {
	results map[string]error
	sent    []Payload
}

func (f *fakeSender) Send(sub *model.PushSubscription, p Payload) error {
	f.sent = append(f.sent, p)
	return f.results[sub.Endpoint]
}

type fakeSubs struct {
	subs    []model.PushSubscription
	deleted []string
}

func (f *fakeSubs) List() ([]model.PushSubscription, error) { return f.subs, nil }

func (f *fakeSubs) DeleteByEndpoint(endpoint string) error {
	f.deleted = append(f.deleted, endpoint)
	return nil
}

func TestNotifierRemovesExpired(t *testing.T) {
	subs := &fakeSubs{subs: []model.PushSubscription{
		{Endpoint: "https://push.example/ok"},
		{Endpoint: "https://push.example/gone"},
		{Endpoint: "https://push.example/flaky"},
	}}
	sender := &fakeSender{results: map[string]error{
		"https://push.example/gone":  ErrExpired,
		"https://push.example/flaky": errors.New("push service returned 500"),
	}}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	n := NewNotifier(sender, subs, logger)
	sent := n.Notify(model.Notification{Type: model.TypePayment, Title: "Payment received"})

	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}
	if len(sender.sent) != 3 {
		t.Errorf("attempts = %d, want 3", len(sender.sent))
	}
	if len(subs.deleted) != 1 || subs.deleted[0] != "https://push.example/gone" {
		t.Errorf("deleted = %v, want only the expired endpoint", subs.deleted)
	}
}
