package model

import "time"

// Booking statuses.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// Booking is a scheduled wash. Amount is in minor currency units.
type Booking struct {
	ID           int64     `json:"id"`
	Reference    string    `json:"bookingId"`
	CustomerName string    `json:"customerName"`
	Service      string    `json:"serviceName"`
	ScheduledAt  time.Time `json:"scheduledAt"`
	Amount       int64     `json:"amount"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Payment is a settled payment, optionally tied to a booking.
type Payment struct {
	ID          int64     `json:"id"`
	BookingRef  string    `json:"bookingId,omitempty"`
	Method      string    `json:"method"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	ProviderRef string    `json:"providerRef,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
