package store

import (
	"testing"

	"github.com/dukerupert/washdesk/internal/database"
)

func setupPushTestDB(t *testing.T) *PushStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPushStore(db)
}

func TestPushSubscriptionUpsert(t *testing.T) {
	ps := setupPushTestDB(t)

	sub, err := ps.CreateSubscription("https://push.example.com/abc", "p256", "auth", "Front desk")
	if err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	if sub.ID == 0 {
		t.Error("expected id")
	}

	// Same endpoint updates keys rather than duplicating.
	updated, err := ps.CreateSubscription("https://push.example.com/abc", "p256-new", "auth-new", "Front desk")
	if err != nil {
		t.Fatalf("upsert subscription: %v", err)
	}
	if updated.ID != sub.ID {
		t.Errorf("id = %d, want %d", updated.ID, sub.ID)
	}
	if updated.P256dhKey != "p256-new" {
		t.Errorf("p256dh = %q, want %q", updated.P256dhKey, "p256-new")
	}

	subs, err := ps.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(subs))
	}

	if err := ps.DeleteByEndpoint("https://push.example.com/abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	subs, _ = ps.List()
	if len(subs) != 0 {
		t.Errorf("expected 0 subscriptions after delete, got %d", len(subs))
	}
}
