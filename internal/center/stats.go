package center

import (
	"time"

	"github.com/dukerupert/washdesk/internal/model"
)

type Stats struct {
	Total    int
	Unread   int
	Bookings int
	Today    int
}

// ComputeStats counts the loaded list. Today means the same calendar date as
// now, in now's location.
func ComputeStats(list []model.Notification, now time.Time) Stats {
	y, m, d := now.Date()
	s := Stats{Total: len(list)}
	for _, n := range list {
		if !n.IsRead {
			s.Unread++
		}
		if n.Type == model.TypeBooking {
			s.Bookings++
		}
		ny, nm, nd := n.CreatedAt.In(now.Location()).Date()
		if ny == y && nm == m && nd == d {
			s.Today++
		}
	}
	return s
}
