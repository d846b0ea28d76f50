package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/washdesk/internal/model"
	"github.com/dukerupert/washdesk/internal/notify"
)

// IssueHandler turns operator or customer issue reports into ISSUE_REPORT
// notifications. The dispatcher escalates them by email.
type IssueHandler struct {
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
}

func NewIssueHandler(d *notify.Dispatcher, logger *slog.Logger) *IssueHandler {
	return &IssueHandler{dispatcher: d, logger: logger}
}

type issueRequest struct {
	Title      string `json:"title"`
	Message    string `json:"message"`
	BookingID  string `json:"bookingId"`
	ReportedBy string `json:"reportedBy"`
	Location   string `json:"location"`
}

// Create handles POST /admin/issues
func (h *IssueHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	extra := map[string]any{}
	if req.ReportedBy != "" {
		extra["reportedBy"] = req.ReportedBy
	}
	if req.Location != "" {
		extra["location"] = req.Location
	}

	n, err := h.dispatcher.Publish(model.Notification{
		Type:      model.TypeIssueReport,
		Title:     req.Title,
		Message:   strings.TrimSpace(req.Message),
		BookingID: strings.TrimSpace(req.BookingID),
		Extra:     extra,
	})
	if err != nil {
		h.logger.Error("create issue report", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to report issue")
		return
	}
	writeData(w, http.StatusCreated, n)
}
