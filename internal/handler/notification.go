package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/washdesk/internal/model"
	"github.com/dukerupert/washdesk/internal/notify"
	"github.com/dukerupert/washdesk/internal/store"
	"github.com/dukerupert/washdesk/internal/websocket"
)

type NotificationHandler struct {
	store      *store.NotificationStore
	dispatcher *notify.Dispatcher
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewNotificationHandler(ns *store.NotificationStore, d *notify.Dispatcher, hub *websocket.Hub, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{store: ns, dispatcher: d, hub: hub, logger: logger}
}

func (h *NotificationHandler) broadcast(ev websocket.Event) {
	if h.hub != nil {
		h.hub.Broadcast(ev)
	}
}

// Types handles GET /admin/notifications/types
func (h *NotificationHandler) Types(w http.ResponseWriter, r *http.Request) {
	types, err := h.store.Types()
	if err != nil {
		h.logger.Error("list notification types", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load notification types")
		return
	}
	if types == nil {
		types = []string{}
	}
	writeData(w, http.StatusOK, types)
}

// List handles GET /admin/notifications?type=&limit=
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	typ := strings.TrimSpace(r.URL.Query().Get("type"))
	if strings.EqualFold(typ, "ALL") {
		typ = ""
	}

	limit := store.DefaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	list, err := h.store.List(typ, limit)
	if err != nil {
		h.logger.Error("list notifications", "type", typ, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load notifications")
		return
	}
	if list == nil {
		list = []model.Notification{}
	}
	writeData(w, http.StatusOK, list)
}

// MarkRead handles PATCH /admin/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	n, err := h.store.MarkRead(id)
	if err != nil {
		h.logger.Error("mark notification read", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to mark notification as read")
		return
	}
	if n == nil {
		writeError(w, http.StatusNotFound, "Notification not found")
		return
	}

	h.broadcast(websocket.NewEvent(websocket.EventNotificationRead, map[string]string{"id": n.ID}))
	writeData(w, http.StatusOK, n)
}

// Unread handles GET /admin/notifications/unread
func (h *NotificationHandler) Unread(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.CountUnread()
	if err != nil {
		h.logger.Error("count unread", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to count unread notifications")
		return
	}
	writeData(w, http.StatusOK, map[string]int64{"count": count})
}

// MarkAllRead handles PATCH /admin/notifications/read
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	updated, err := h.store.MarkAllRead()
	if err != nil {
		h.logger.Error("mark all read", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to mark notifications as read")
		return
	}

	h.broadcast(websocket.NewEvent(websocket.EventAllRead, map[string]int64{"updated": updated}))
	writeData(w, http.StatusOK, map[string]int64{"updated": updated})
}

// Create handles POST /admin/notifications. Unknown fields are kept on the
// notification and echoed back.
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var n model.Notification
	if err := decodeJSON(w, r, &n); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	n.Type = strings.ToUpper(strings.TrimSpace(n.Type))
	n.Title = strings.TrimSpace(n.Title)
	if n.Type == "" || n.Title == "" {
		writeError(w, http.StatusBadRequest, "type and title are required")
		return
	}
	if n.Type == "ALL" {
		writeError(w, http.StatusBadRequest, "ALL is not a notification type")
		return
	}
	n.ID = ""
	n.IsRead = false
	n.CreatedAt = time.Time{}

	created, err := h.dispatcher.Publish(n)
	if err != nil {
		h.logger.Error("create notification", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create notification")
		return
	}
	writeData(w, http.StatusCreated, created)
}
