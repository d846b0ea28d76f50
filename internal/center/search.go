package center

import (
	"strings"

	"github.com/dukerupert/washdesk/internal/model"
)

// Matches reports whether query is a case-insensitive substring of the
// title, message or booking reference. An empty query matches everything.
func Matches(n model.Notification, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(n.Title), q) ||
		strings.Contains(strings.ToLower(n.Message), q) ||
		strings.Contains(strings.ToLower(n.BookingID), q)
}

// Search returns the matching items in their original order.
func Search(list []model.Notification, query string) []model.Notification {
	out := make([]model.Notification, 0, len(list))
	for _, n := range list {
		if Matches(n, query) {
			out = append(out, n)
		}
	}
	return out
}
