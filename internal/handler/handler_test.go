package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/washdesk/internal/database"
	"github.com/dukerupert/washdesk/internal/notify"
	"github.com/dukerupert/washdesk/internal/store"
	"github.com/dukerupert/washdesk/internal/websocket"
)

type fixture struct {
	notifications *store.NotificationStore
	bookings      *store.BookingStore
	payments      *store.PaymentStore
	dashboards    *store.DashboardStore
	pushes        *store.PushStore
	hub           *websocket.Hub
	dispatcher    *notify.Dispatcher
	logger        *slog.Logger
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ns := store.NewNotificationStore(db)
	hub := websocket.NewHub(logger)
	return &fixture{
		notifications: ns,
		bookings:      store.NewBookingStore(db),
		payments:      store.NewPaymentStore(db),
		dashboards:    store.NewDashboardStore(db),
		pushes:        store.NewPushStore(db),
		hub:           hub,
		dispatcher:    notify.NewDispatcher(ns, hub, logger),
		logger:        logger,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v (status %d)", err, rec.Code)
	}
	if data != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env
}
