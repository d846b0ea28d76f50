package handler

import (
	"io"
	"log/slog"
	"net/http"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/dukerupert/washdesk/internal/notify"
	"github.com/dukerupert/washdesk/internal/payments"
	"github.com/dukerupert/washdesk/internal/store"
)

type WebhookHandler struct {
	verifier   *payments.Verifier
	payments   *store.PaymentStore
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
}

func NewWebhookHandler(v *payments.Verifier, ps *store.PaymentStore, d *notify.Dispatcher, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{verifier: v, payments: ps, dispatcher: d, logger: logger}
}

// HandleStripeWebhook handles POST /webhooks/stripe
func (h *WebhookHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 65536))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	event, err := h.verifier.ConstructEvent(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("stripe webhook rejected", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	switch string(event.Type) {
	case payments.EventSucceeded:
		if err := h.handleSucceeded(event); err != nil {
			// Stripe retries non-2xx deliveries; the payment row is idempotent.
			writeError(w, http.StatusInternalServerError, "Failed to record payment")
			return
		}
	case payments.EventFailed:
		h.handleFailed(event)
	default:
		h.logger.Debug("stripe event ignored", "type", event.Type)
	}

	writeData(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *WebhookHandler) handleSucceeded(event stripe.Event) error {
	pi, err := payments.DecodeIntent(event)
	if err != nil {
		h.logger.Error("decode payment intent", "event", event.ID, "error", err)
		return nil
	}

	p, created, err := h.payments.Create(payments.PaymentFromIntent(pi))
	if err != nil {
		h.logger.Error("record payment", "intent", pi.ID, "error", err)
		return err
	}
	if !created {
		h.logger.Info("duplicate payment event", "intent", pi.ID)
		return nil
	}

	if _, err := h.dispatcher.Publish(payments.ReceivedNotification(*p)); err != nil {
		h.logger.Error("publish payment notification", "intent", pi.ID, "error", err)
	}
	return nil
}

func (h *WebhookHandler) handleFailed(event stripe.Event) {
	pi, err := payments.DecodeIntent(event)
	if err != nil {
		h.logger.Error("decode payment intent", "event", event.ID, "error", err)
		return
	}
	if _, err := h.dispatcher.Publish(payments.FailedNotification(pi)); err != nil {
		h.logger.Error("publish payment failure", "intent", pi.ID, "error", err)
	}
}
