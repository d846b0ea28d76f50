package store

import (
	"database/sql"

	"github.com/dukerupert/washdesk/internal/model"
)

const recentBookingsLimit = 10

// DashboardStore assembles the admin dashboard from bookings and payments.
type DashboardStore struct {
	bookings *BookingStore
	payments *PaymentStore
}

func NewDashboardStore(db *sql.DB) *DashboardStore {
	return &DashboardStore{bookings: NewBookingStore(db), payments: NewPaymentStore(db)}
}

func (s *DashboardStore) Get() (*model.Dashboard, error) {
	summary, err := s.bookings.Summary()
	if err != nil {
		return nil, err
	}
	recent, err := s.bookings.ListRecent(recentBookingsLimit)
	if err != nil {
		return nil, err
	}
	totals, err := s.payments.TotalsByMethod()
	if err != nil {
		return nil, err
	}

	if recent == nil {
		recent = []model.Booking{}
	}
	if totals == nil {
		totals = []model.MethodTotal{}
	}
	return &model.Dashboard{
		Summary:          summary,
		RecentBookings:   recent,
		PaymentsByMethod: totals,
	}, nil
}
