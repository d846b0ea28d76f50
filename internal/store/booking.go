package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/washdesk/internal/model"
)

type BookingStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewBookingStore(db *sql.DB) *BookingStore {
	return &BookingStore{db: db, now: time.Now}
}

const bookingCols = `id, reference, customer_name, service, scheduled_at, amount, status, created_at`

func scanBooking(scanner interface{ Scan(...any) error }) (*model.Booking, error) {
	var b model.Booking
	err := scanner.Scan(&b.ID, &b.Reference, &b.CustomerName, &b.Service, &b.ScheduledAt, &b.Amount, &b.Status, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// NewReference returns a short human-facing booking reference such as "BK-1A2B3C4D".
func NewReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "BK-" + strings.ToUpper(id[:8])
}

// Create inserts a booking. A reference is generated when b.Reference is empty.
func (s *BookingStore) Create(b model.Booking) (*model.Booking, error) {
	if b.Reference == "" {
		b.Reference = NewReference()
	}
	if b.Status == "" {
		b.Status = model.BookingPending
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.now().UTC()
	}

	result, err := s.db.Exec(
		`INSERT INTO bookings (reference, customer_name, service, scheduled_at, amount, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.Reference, b.CustomerName, b.Service, b.ScheduledAt.UTC(), b.Amount, b.Status, b.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *BookingStore) GetByID(id int64) (*model.Booking, error) {
	row := s.db.QueryRow(`SELECT `+bookingCols+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// ListRecent returns the newest bookings first.
func (s *BookingStore) ListRecent(limit int) ([]model.Booking, error) {
	rows, err := s.db.Query(
		`SELECT `+bookingCols+` FROM bookings ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// Summary returns booking count, revenue from non-cancelled bookings, and
// the number of distinct customers.
func (s *BookingStore) Summary() (model.DashboardSummary, error) {
	var sum model.DashboardSummary
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN status != ? THEN amount ELSE 0 END), 0),
		        COUNT(DISTINCT LOWER(customer_name))
		 FROM bookings`,
		model.BookingCancelled,
	).Scan(&sum.TotalBookings, &sum.TotalRevenue, &sum.ActiveCustomers)
	if err != nil {
		return sum, fmt.Errorf("booking summary: %w", err)
	}
	return sum, nil
}
