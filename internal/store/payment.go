package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/washdesk/internal/model"
)

type PaymentStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPaymentStore(db *sql.DB) *PaymentStore {
	return &PaymentStore{db: db, now: time.Now}
}

const paymentCols = `id, booking_ref, method, amount, currency, provider_ref, created_at`

func scanPayment(scanner interface{ Scan(...any) error }) (*model.Payment, error) {
	var p model.Payment
	var providerRef sql.NullString
	err := scanner.Scan(&p.ID, &p.BookingRef, &p.Method, &p.Amount, &p.Currency, &providerRef, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if providerRef.Valid {
		p.ProviderRef = providerRef.String
	}
	return &p, nil
}

// Create records a payment. When ProviderRef is set and already recorded, the
// existing payment is returned with created=false so webhook redeliveries are
// idempotent.
func (s *PaymentStore) Create(p model.Payment) (payment *model.Payment, created bool, err error) {
	if p.ProviderRef != "" {
		existing, err := s.GetByProviderRef(p.ProviderRef)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, false, nil
		}
	}

	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}
	if p.Currency == "" {
		p.Currency = "usd"
	}
	p.Method = strings.ToLower(strings.TrimSpace(p.Method))
	if p.Method == "" {
		p.Method = "other"
	}

	var providerRef sql.NullString
	if p.ProviderRef != "" {
		providerRef = sql.NullString{String: p.ProviderRef, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO payments (booking_ref, method, amount, currency, provider_ref, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.BookingRef, p.Method, p.Amount, p.Currency, providerRef, p.CreatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert payment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("last insert id: %w", err)
	}
	payment, err = s.GetByID(id)
	return payment, err == nil, err
}

func (s *PaymentStore) GetByID(id int64) (*model.Payment, error) {
	row := s.db.QueryRow(`SELECT `+paymentCols+` FROM payments WHERE id = ?`, id)
	p, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

func (s *PaymentStore) GetByProviderRef(ref string) (*model.Payment, error) {
	row := s.db.QueryRow(`SELECT `+paymentCols+` FROM payments WHERE provider_ref = ?`, ref)
	p, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get payment by provider ref: %w", err)
	}
	return p, nil
}

// TotalsByMethod aggregates payments per method, largest amount first.
func (s *PaymentStore) TotalsByMethod() ([]model.MethodTotal, error) {
	rows, err := s.db.Query(
		`SELECT method, COUNT(*), COALESCE(SUM(amount), 0) FROM payments
		 GROUP BY method ORDER BY SUM(amount) DESC, method`,
	)
	if err != nil {
		return nil, fmt.Errorf("payments by method: %w", err)
	}
	defer rows.Close()

	var totals []model.MethodTotal
	for rows.Next() {
		var t model.MethodTotal
		if err := rows.Scan(&t.Method, &t.Count, &t.Amount); err != nil {
			return nil, fmt.Errorf("scan method total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
