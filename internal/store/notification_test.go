package store

import (
	"testing"
	"time"

	"github.com/dukerupert/washdesk/internal/database"
	"github.com/dukerupert/washdesk/internal/model"
)

func setupNotificationTestDB(t *testing.T) *NotificationStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewNotificationStore(db)
}

func TestNotificationCreateAndGet(t *testing.T) {
	ns := setupNotificationTestDB(t)

	n, err := ns.Create(model.Notification{
		Type:      model.TypeBooking,
		Title:     "New booking",
		Message:   "Premium wash at 10:00",
		BookingID: "BK-12345678",
		Extra:     map[string]any{"bay": "3"},
	})
	if err != nil {
		t.Fatalf("create notification: %v", err)
	}
	if n.ID == "" {
		t.Fatal("expected generated id")
	}
	if n.IsRead {
		t.Error("expected unread")
	}
	if n.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
	if n.Extra["bay"] != "3" {
		t.Errorf("extra bay = %v, want %q", n.Extra["bay"], "3")
	}

	got, err := ns.GetByID(n.ID)
	if err != nil {
		t.Fatalf("get notification: %v", err)
	}
	if got == nil {
		t.Fatal("expected notification, got nil")
	}
	if got.BookingID != "BK-12345678" {
		t.Errorf("booking id = %q, want %q", got.BookingID, "BK-12345678")
	}
}

func TestNotificationNotFound(t *testing.T) {
	ns := setupNotificationTestDB(t)

	got, err := ns.GetByID("missing")
	if err != nil {
		t.Fatalf("get notification: %v", err)
	}
	if got != nil {
		t.Error("expected nil for non-existent notification")
	}

	marked, err := ns.MarkRead("missing")
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if marked != nil {
		t.Error("expected nil when marking a missing notification")
	}
}

func TestNotificationListFilterAndOrder(t *testing.T) {
	ns := setupNotificationTestDB(t)

	base := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	ns.Create(model.Notification{Type: model.TypeBooking, Title: "oldest", CreatedAt: base})
	ns.Create(model.Notification{Type: model.TypePayment, Title: "middle", CreatedAt: base.Add(time.Minute)})
	ns.Create(model.Notification{Type: model.TypeBooking, Title: "newest", CreatedAt: base.Add(2 * time.Minute)})

	all, err := ns.List("", 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	want := []string{"newest", "middle", "oldest"}
	if len(all) != len(want) {
		t.Fatalf("expected %d notifications, got %d", len(want), len(all))
	}
	for i, title := range want {
		if all[i].Title != title {
			t.Errorf("all[%d].Title = %q, want %q", i, all[i].Title, title)
		}
	}

	bookings, err := ns.List(model.TypeBooking, 0)
	if err != nil {
		t.Fatalf("list bookings: %v", err)
	}
	if len(bookings) != 2 {
		t.Fatalf("expected 2 booking notifications, got %d", len(bookings))
	}
	for _, n := range bookings {
		if n.Type != model.TypeBooking {
			t.Errorf("type = %q, want %q", n.Type, model.TypeBooking)
		}
	}

	limited, err := ns.List("", 1)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 || limited[0].Title != "newest" {
		t.Errorf("limited list = %+v, want only newest", limited)
	}
}

func TestNotificationListMixedOffsets(t *testing.T) {
	ns := setupNotificationTestDB(t)

	plus5 := time.FixedZone("UTC+5", 5*60*60)
	// 10:00+05:00 is 05:00Z, an hour before the second notification.
	ns.Create(model.Notification{Type: model.TypeBooking, Title: "older", CreatedAt: time.Date(2026, 1, 1, 10, 0, 0, 0, plus5)})
	ns.Create(model.Notification{Type: model.TypeBooking, Title: "newer", CreatedAt: time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)})

	list, err := ns.List("", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(list))
	}
	if list[0].Title != "newer" || list[1].Title != "older" {
		t.Errorf("order = %q, %q, want newer first", list[0].Title, list[1].Title)
	}
	if !list[1].CreatedAt.Equal(time.Date(2026, 1, 1, 5, 0, 0, 0, time.UTC)) {
		t.Errorf("older created_at = %v, want 05:00Z", list[1].CreatedAt)
	}
}

func TestNotificationTypes(t *testing.T) {
	ns := setupNotificationTestDB(t)

	types, err := ns.Types()
	if err != nil {
		t.Fatalf("types: %v", err)
	}
	want := []string{model.TypeBooking, model.TypePayment, model.TypeIssueReport}
	if len(types) != len(want) {
		t.Fatalf("types = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("types[%d] = %q, want %q", i, types[i], want[i])
		}
	}

	// A new category is appended after the seeded ones.
	if _, err := ns.Create(model.Notification{Type: "REVIEW", Title: "5 stars"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	types, _ = ns.Types()
	if len(types) != 4 || types[3] != "REVIEW" {
		t.Errorf("types = %v, want REVIEW appended", types)
	}
}

func TestNotificationMarkRead(t *testing.T) {
	ns := setupNotificationTestDB(t)

	a, _ := ns.Create(model.Notification{Type: model.TypeBooking, Title: "a"})
	ns.Create(model.Notification{Type: model.TypePayment, Title: "b"})

	count, err := ns.CountUnread()
	if err != nil {
		t.Fatalf("count unread: %v", err)
	}
	if count != 2 {
		t.Errorf("unread = %d, want 2", count)
	}

	marked, err := ns.MarkRead(a.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if marked == nil || !marked.IsRead {
		t.Fatalf("expected notification marked read, got %+v", marked)
	}

	count, _ = ns.CountUnread()
	if count != 1 {
		t.Errorf("unread = %d, want 1", count)
	}

	changed, err := ns.MarkAllRead()
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if changed != 1 {
		t.Errorf("changed = %d, want 1", changed)
	}
	count, _ = ns.CountUnread()
	if count != 0 {
		t.Errorf("unread = %d, want 0", count)
	}
}
