package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/washdesk/internal/model"
	"github.com/dukerupert/washdesk/internal/notify"
	"github.com/dukerupert/washdesk/internal/payments"
	"github.com/dukerupert/washdesk/internal/store"
)

type BookingHandler struct {
	bookings   *store.BookingStore
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
}

func NewBookingHandler(bs *store.BookingStore, d *notify.Dispatcher, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{bookings: bs, dispatcher: d, logger: logger}
}

var validBookingStatuses = map[string]bool{
	model.BookingPending:   true,
	model.BookingConfirmed: true,
	model.BookingCompleted: true,
	model.BookingCancelled: true,
}

type bookingRequest struct {
	CustomerName string    `json:"customerName"`
	ServiceName  string    `json:"serviceName"`
	ScheduledAt  time.Time `json:"scheduledAt"`
	Amount       int64     `json:"amount"`
	Status       string    `json:"status"`
}

// Create handles POST /admin/bookings. Recording a booking emits a BOOKING
// notification.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.ServiceName = strings.TrimSpace(req.ServiceName)
	if req.CustomerName == "" || req.ServiceName == "" {
		writeError(w, http.StatusBadRequest, "customerName and serviceName are required")
		return
	}
	if req.ScheduledAt.IsZero() {
		writeError(w, http.StatusBadRequest, "scheduledAt is required")
		return
	}
	if req.Amount < 0 {
		writeError(w, http.StatusBadRequest, "amount must not be negative")
		return
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if req.Status == "" {
		req.Status = model.BookingPending
	}
	if !validBookingStatuses[req.Status] {
		writeError(w, http.StatusBadRequest, "status must be pending, confirmed, completed, or cancelled")
		return
	}

	b, err := h.bookings.Create(model.Booking{
		CustomerName: req.CustomerName,
		Service:      req.ServiceName,
		ScheduledAt:  req.ScheduledAt,
		Amount:       req.Amount,
		Status:       req.Status,
	})
	if err != nil {
		h.logger.Error("create booking", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create booking")
		return
	}

	if _, err := h.dispatcher.Publish(bookingNotification(b)); err != nil {
		h.logger.Error("publish booking notification", "booking", b.Reference, "error", err)
	}

	writeData(w, http.StatusCreated, b)
}

// List handles GET /admin/bookings?limit=
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	bookings, err := h.bookings.ListRecent(limit)
	if err != nil {
		h.logger.Error("list bookings", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load bookings")
		return
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	writeData(w, http.StatusOK, bookings)
}

func bookingNotification(b *model.Booking) model.Notification {
	return model.Notification{
		Type:      model.TypeBooking,
		Title:     "New booking",
		Message:   fmt.Sprintf("%s booked %s for %s", b.CustomerName, b.Service, b.ScheduledAt.UTC().Format("Jan 2 15:04 UTC")),
		BookingID: b.Reference,
		Extra: map[string]any{
			"customerName": b.CustomerName,
			"serviceName":  b.Service,
			"amount":       b.Amount,
			"amountText":   payments.FormatAmount(b.Amount, "usd"),
			"scheduledAt":  b.ScheduledAt.UTC(),
		},
	}
}
