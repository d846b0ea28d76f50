package center

import (
	"context"
	"fmt"
	"time"

	"github.com/dukerupert/washdesk/internal/model"
)

// UrgentWindow is how long an unread notification stays flagged urgent.
const UrgentWindow = 30 * time.Minute

// Theme is the visual treatment of a notification category.
type Theme struct {
	Icon      string
	Gradient  [2]string
	BadgeBg   string
	BadgeText string
	Label     string
}

var themes = map[string]Theme{
	model.TypeBooking: {
		Icon:      "📅",
		Gradient:  [2]string{"#3b82f6", "#2563eb"},
		BadgeBg:   "#dbeafe",
		BadgeText: "#1e40af",
		Label:     "Booking",
	},
	model.TypePayment: {
		Icon:      "💳",
		Gradient:  [2]string{"#10b981", "#059669"},
		BadgeBg:   "#d1fae5",
		BadgeText: "#065f46",
		Label:     "Payment",
	},
	model.TypeIssueReport: {
		Icon:      "⚠️",
		Gradient:  [2]string{"#f59e0b", "#d97706"},
		BadgeBg:   "#fef3c7",
		BadgeText: "#92400e",
		Label:     "Issue Report",
	},
}

// ThemeFor returns the theme for a category. Unknown or empty categories get
// the booking theme.
func ThemeFor(typ string) Theme {
	if t, ok := themes[typ]; ok {
		return t
	}
	return themes[model.TypeBooking]
}

// TimeAgo renders the age of t relative to now: "Just now", "5m ago",
// "3h ago", "2d ago". Days are whole 24h periods, not calendar days.
func TimeAgo(t, now time.Time) string {
	mins := int(now.Sub(t) / time.Minute)
	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return fmt.Sprintf("%dm ago", mins)
	case mins < 24*60:
		return fmt.Sprintf("%dh ago", mins/60)
	default:
		return fmt.Sprintf("%dd ago", mins/(24*60))
	}
}

// IsUrgent reports whether an item is unread and younger than UrgentWindow.
func IsUrgent(isRead bool, createdAt, now time.Time) bool {
	return !isRead && now.Sub(createdAt) < UrgentWindow
}

// ReadMarker confirms a read with the server.
type ReadMarker interface {
	MarkRead(ctx context.Context, id string) (*model.Notification, error)
}

// Card is one rendered notification. It keeps its own read flag, seeded from
// the notification, and reports every toggle to the parent list.
type Card struct {
	Notification model.Notification

	read     bool
	onToggle func(id string, currentStatus bool)
	marker   ReadMarker
}

func NewCard(n model.Notification, onToggle func(id string, currentStatus bool), marker ReadMarker) *Card {
	return &Card{Notification: n, read: n.IsRead, onToggle: onToggle, marker: marker}
}

func (c *Card) IsRead() bool {
	return c.read
}

func (c *Card) Theme() Theme {
	return ThemeFor(c.Notification.Type)
}

func (c *Card) TimeAgo(now time.Time) string {
	return TimeAgo(c.Notification.CreatedAt, now)
}

func (c *Card) Urgent(now time.Time) bool {
	return IsUrgent(c.read, c.Notification.CreatedAt, now)
}

// MarkAsRead flips the card to read, tells the parent the previous status,
// then confirms with the server. A failed confirmation is returned but the
// local state is left as is. Already-read cards are a no-op.
func (c *Card) MarkAsRead(ctx context.Context) error {
	if c.read {
		return nil
	}
	prev := c.read
	c.read = !prev
	if c.onToggle != nil {
		c.onToggle(c.Notification.ID, prev)
	}
	if c.marker == nil {
		return nil
	}
	_, err := c.marker.MarkRead(ctx, c.Notification.ID)
	return err
}

// MarkAsUnread flips the card back to unread locally. The server has no
// unread endpoint, so nothing is sent.
func (c *Card) MarkAsUnread() {
	if !c.read {
		return
	}
	c.read = false
	if c.onToggle != nil {
		c.onToggle(c.Notification.ID, true)
	}
}

// Action is an entry of the card's overflow menu.
type Action string

const (
	ActionMarkRead    Action = "Mark as read"
	ActionMarkUnread  Action = "Mark as unread"
	ActionCopyBooking Action = "Copy booking reference"
)

// Actions lists the overflow menu entries available for the card.
func (c *Card) Actions() []Action {
	actions := []Action{ActionMarkRead}
	if c.read {
		actions[0] = ActionMarkUnread
	}
	if c.Notification.BookingID != "" {
		actions = append(actions, ActionCopyBooking)
	}
	return actions
}
