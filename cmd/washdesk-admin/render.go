package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dukerupert/washdesk/internal/center"
	"github.com/dukerupert/washdesk/internal/model"
)

const shortIDLen = 8

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func renderTabs(w io.Writer, tabs []center.Tab) {
	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		label := strings.TrimSpace(t.Icon + " " + t.Label)
		if t.Active {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}
	fmt.Fprintln(w, strings.Join(parts, "  "))
}

func renderStats(w io.Writer, s center.Stats) {
	fmt.Fprintf(w, "Total %d | Unread %d | Bookings %d | Today %d\n", s.Total, s.Unread, s.Bookings, s.Today)
}

func renderCard(w io.Writer, c center.CardView) {
	marker := " "
	if !c.Notification.IsRead {
		marker = "*"
	}
	urgent := ""
	if c.Urgent {
		urgent = " URGENT"
	}
	fmt.Fprintf(w, "%s %s %s %-12s %s (%s)%s\n",
		marker, shortID(c.Notification.ID), c.Theme.Icon, c.Theme.Label, c.Notification.Title, c.TimeAgo, urgent)
	if c.Notification.Message != "" {
		fmt.Fprintf(w, "      %s\n", c.Notification.Message)
	}
	if c.Notification.BookingID != "" {
		fmt.Fprintf(w, "      booking %s\n", c.Notification.BookingID)
	}
}

// renderNotice prints a pushed notification on its own line and reprints the
// prompt, since it arrives while the console is waiting for input.
func renderNotice(w io.Writer, n model.Notification) {
	theme := center.ThemeFor(n.Type)
	line := fmt.Sprintf("\nnew: %s %s %s", theme.Icon, theme.Label, n.Title)
	if n.BookingID != "" {
		line += " (booking " + n.BookingID + ")"
	}
	if n.ID != "" {
		line += " [" + shortID(n.ID) + "]"
	}
	fmt.Fprintln(w, line)
	fmt.Fprint(w, "> ")
}

func renderSnapshot(w io.Writer, s center.Snapshot) {
	renderTabs(w, s.Tabs)
	renderStats(w, s.Stats)
	if s.Query != "" {
		fmt.Fprintf(w, "search: %q\n", s.Query)
	}
	if s.State != center.StateIdle {
		fmt.Fprintf(w, "(%s)\n", s.State)
	}
	if len(s.Cards) == 0 {
		fmt.Fprintln(w, "No notifications")
		return
	}
	for _, c := range s.Cards {
		renderCard(w, c)
	}
}
