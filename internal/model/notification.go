package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Known notification categories. The set is open: the server may report others.
const (
	TypeBooking     = "BOOKING"
	TypePayment     = "PAYMENT"
	TypeIssueReport = "ISSUE_REPORT"
)

// Notification is a single admin-facing event. Extra carries any JSON fields
// beyond the fixed ones; they are flattened into the top-level object on the wire.
type Notification struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message,omitempty"`
	BookingID string         `json:"bookingId,omitempty"`
	IsRead    bool           `json:"isRead"`
	CreatedAt time.Time      `json:"createdAt"`
	Extra     map[string]any `json:"-"`
}

var notificationKeys = map[string]bool{
	"id":        true,
	"type":      true,
	"title":     true,
	"message":   true,
	"bookingId": true,
	"isRead":    true,
	"createdAt": true,
}

// notificationAlias drops the methods so encoding/json doesn't recurse.
type notificationAlias Notification

func (n Notification) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(notificationAlias(n))
	if err != nil {
		return nil, err
	}
	if len(n.Extra) == 0 {
		return base, nil
	}

	merged := make(map[string]any, len(n.Extra)+len(notificationKeys))
	for k, v := range n.Extra {
		if !notificationKeys[k] {
			merged[k] = v
		}
	}
	var fixed map[string]any
	if err := json.Unmarshal(base, &fixed); err != nil {
		return nil, err
	}
	for k, v := range fixed {
		merged[k] = v
	}
	return json.Marshal(merged)
}

func (n *Notification) UnmarshalJSON(data []byte) error {
	var a notificationAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("decode notification: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode notification fields: %w", err)
	}
	for k := range notificationKeys {
		delete(raw, k)
	}

	*n = Notification(a)
	if len(raw) > 0 {
		n.Extra = raw
	}
	return nil
}

// NewNotificationEvent is the payload of the real-time "new_notification" event.
type NewNotificationEvent struct {
	Notification Notification `json:"notification"`
}
