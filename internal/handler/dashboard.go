package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/dukerupert/washdesk/internal/archive"
	"github.com/dukerupert/washdesk/internal/report"
	"github.com/dukerupert/washdesk/internal/store"
)

// ReportArchive keeps a copy of every exported report.
type ReportArchive interface {
	PutReport(ctx context.Context, filename string, data []byte) (string, error)
	GetReport(ctx context.Context, key string) ([]byte, error)
}

type DashboardHandler struct {
	dashboards *store.DashboardStore
	exporter   *report.Exporter
	archive    ReportArchive
	logger     *slog.Logger
}

// NewDashboardHandler wires the dashboard endpoints. archive may be nil.
func NewDashboardHandler(ds *store.DashboardStore, exp *report.Exporter, reports ReportArchive, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{dashboards: ds, exporter: exp, archive: reports, logger: logger}
}

// Get handles GET /admin/dashboard
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.dashboards.Get()
	if err != nil {
		h.logger.Error("load dashboard", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	writeData(w, http.StatusOK, d)
}

// Export handles GET /admin/dashboard/export?range=
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	d, err := h.dashboards.Get()
	if err != nil {
		h.logger.Error("load dashboard", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	// The exporter takes the same loosely typed bag API clients receive.
	raw, err := json.Marshal(d)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export dashboard")
		return
	}
	var bag map[string]any
	if err := json.Unmarshal(raw, &bag); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export dashboard")
		return
	}

	rangeLabel := strings.TrimSpace(r.URL.Query().Get("range"))
	rep, err := h.exporter.Export(bag, rangeLabel)
	if err != nil {
		h.logger.Error("render dashboard pdf", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to export dashboard")
		return
	}

	if h.archive != nil {
		key, err := h.archive.PutReport(r.Context(), rep.Filename, rep.Data)
		if err != nil {
			h.logger.Error("archive report", "file", rep.Filename, "error", err)
		} else {
			w.Header().Set("X-Archive-Key", key)
		}
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rep.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(rep.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(rep.Data)
}

// Report handles GET /admin/reports/{year}/{month}/{file}, serving a report
// archived by an earlier export.
func (h *DashboardHandler) Report(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeError(w, http.StatusNotFound, "Report archive is not configured")
		return
	}

	year, month, file := r.PathValue("year"), r.PathValue("month"), r.PathValue("file")
	if !allDigits(year, 4) || !allDigits(month, 2) || !strings.HasSuffix(file, ".pdf") ||
		strings.Contains(file, "..") || strings.ContainsAny(file, "/\\") {
		writeError(w, http.StatusBadRequest, "Invalid report path")
		return
	}

	key := path.Join("reports", year, month, file)
	data, err := h.archive.GetReport(r.Context(), key)
	if errors.Is(err, archive.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Report not found")
		return
	}
	if err != nil {
		h.logger.Error("load archived report", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func allDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
