package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/washdesk/internal/toast"
)

var fixedNow = time.Date(2026, 10, 19, 12, 30, 45, 123_000_000, time.UTC)

func newTestExporter(rec *toast.Recorder) *Exporter {
	return New(rec, WithClock(func() time.Time { return fixedNow }), WithLocation(time.UTC), WithCompression(false))
}

func bag(t *testing.T, js string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(js), &m); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return m
}

func TestFilename(t *testing.T) {
	got := Filename(fixedNow)
	want := "dashboard-2026-10-19-12-30-45-123Z.pdf"
	if got != want {
		t.Errorf("Filename = %q, want %q", got, want)
	}
	if strings.ContainsAny(strings.TrimSuffix(got, ".pdf"), ":.T") {
		t.Errorf("filename %q still contains separators", got)
	}
}

func TestExportNilData(t *testing.T) {
	var rec toast.Recorder
	e := newTestExporter(&rec)

	rep, err := e.Export(nil, "Last 7 days")
	if err != nil {
		t.Fatalf("Export(nil) error = %v", err)
	}
	if rep != nil {
		t.Errorf("Export(nil) report = %+v, want nil", rep)
	}
	if e.inits != 0 || e.translate != nil {
		t.Error("nil data must not initialise the pdf library")
	}

	toasts := rec.Toasts()
	if len(toasts) != 1 || toasts[0].Message != "No dashboard data to export" {
		t.Errorf("toasts = %+v", toasts)
	}
}

func TestExportEmptyArrays(t *testing.T) {
	var rec toast.Recorder
	e := newTestExporter(&rec)

	data := bag(t, `{"summary":{"totalBookings":0,"totalRevenue":0,"activeCustomers":0},"recentBookings":[],"paymentsByMethod":[]}`)
	rep, err := e.Export(data, "Today")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if rep.Filename != "dashboard-2026-10-19-12-30-45-123Z.pdf" {
		t.Errorf("filename = %q", rep.Filename)
	}
	if !bytes.HasPrefix(rep.Data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", rep.Data[:16])
	}

	for _, want := range []string{
		"(Dashboard Report)",
		"(Period: Today)",
		"(Generated: 2026-10-19 12:30:45 UTC)",
		"Total Bookings: 0    Total Revenue: $0.00    Active Customers: 0",
		"(Recent Bookings)",
		"(Booking ID)", "(Customer)", "(Service)", "(Date)", "(Amount)", "(Status)",
		"(Payments by Method)",
		"(Transactions)",
		"(Page 1 of 1)",
	} {
		if !bytes.Contains(rep.Data, []byte(want)) {
			t.Errorf("pdf missing %q", want)
		}
	}

	toasts := rec.Toasts()
	if len(toasts) != 1 || toasts[0].Level != toast.LevelSuccess {
		t.Errorf("toasts = %+v", toasts)
	}
}

func TestExportMissingFieldsDefault(t *testing.T) {
	e := newTestExporter(&toast.Recorder{})

	rep, err := e.Export(map[string]any{}, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, want := range []string{
		"Total Bookings: 0    Total Revenue: $0.00    Active Customers: 0",
		"(Period: All time)",
	} {
		if !bytes.Contains(rep.Data, []byte(want)) {
			t.Errorf("pdf missing %q", want)
		}
	}
}

func TestExportRows(t *testing.T) {
	e := newTestExporter(&toast.Recorder{})

	data := bag(t, `{
		"summary": {"totalBookings": 1234, "totalRevenue": 12345650, "activeCustomers": 56},
		"recentBookings": [
			{"bookingId": "BK-00AA11BB", "customerName": "Dana Ruiz", "serviceName": "Premium Wash",
			 "scheduledAt": "2026-10-19T09:00:00Z", "amount": 2450, "status": "confirmed"},
			{"_id": "65f0c1", "customer": {"name": "Lee Park"}, "service": "Interior",
			 "createdAt": "yesterday", "totalAmount": 1000},
			{}
		],
		"paymentsByMethod": [
			{"method": "card", "count": 3, "amount": 7350},
			{"_id": "cash", "transactions": 1200, "total": 500}
		]
	}`)

	rep, err := e.Export(data, "October")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	for _, want := range []string{
		"Total Bookings: 1,234    Total Revenue: $123,456.50    Active Customers: 56",
		"(BK-00AA11BB)", "(Dana Ruiz)", "(Premium Wash)", "(2026-10-19 09:00)", "($24.50)", "(confirmed)",
		"(65f0c1)", "(Lee Park)", "(Interior)", "(yesterday)", "($10.00)",
		"(N/A)",
		"(card)", "(3)", "($73.50)",
		"(cash)", "(1,200)", "($5.00)",
	} {
		if !bytes.Contains(rep.Data, []byte(want)) {
			t.Errorf("pdf missing %q", want)
		}
	}
}

func TestExportPaginates(t *testing.T) {
	e := newTestExporter(&toast.Recorder{})

	bookings := make([]any, 80)
	for i := range bookings {
		bookings[i] = map[string]any{"bookingId": "BK-X", "amount": 100}
	}
	rep, err := e.Export(map[string]any{"recentBookings": bookings}, "Q3")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.Contains(rep.Data, []byte("(Page 1 of 3)")) {
		t.Error("expected page 1 footer with total")
	}
	if !bytes.Contains(rep.Data, []byte("(Page 3 of 3)")) {
		t.Error("expected last page footer")
	}
}

func TestInitIsIdempotent(t *testing.T) {
	e := newTestExporter(&toast.Recorder{})

	for i := 0; i < 3; i++ {
		if _, err := e.Export(map[string]any{}, "x"); err != nil {
			t.Fatalf("export %d: %v", i, err)
		}
	}
	if e.inits != 1 {
		t.Errorf("inits = %d, want 1", e.inits)
	}
}

func TestCompressedOutput(t *testing.T) {
	e := New(nil, WithClock(func() time.Time { return fixedNow }))

	rep, err := e.Export(map[string]any{}, "x")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if bytes.Contains(rep.Data, []byte("(Recent Bookings)")) {
		t.Error("compressed output should not contain plain text")
	}
	if !bytes.Contains(rep.Data, []byte("/FlateDecode")) {
		t.Error("expected FlateDecode streams")
	}
}
