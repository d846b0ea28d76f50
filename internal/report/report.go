// Package report renders the admin dashboard as a downloadable PDF.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/dukerupert/washdesk/internal/toast"
)

// Report is a rendered PDF and the filename it should be saved under.
type Report struct {
	Filename string
	Data     []byte
}

// Exporter renders dashboard data bags. Font and code-page tables are loaded
// on the first export that has data, never before.
type Exporter struct {
	toaster  toast.Toaster
	now      func() time.Time
	loc      *time.Location
	compress bool

	once      sync.Once
	translate func(string) string
	inits     int
}

type Option func(*Exporter)

// WithClock sets the time source used for the header and filename.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// WithLocation sets the zone dates are printed in. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(e *Exporter) { e.loc = loc }
}

// WithCompression toggles content-stream compression. On by default.
func WithCompression(on bool) Option {
	return func(e *Exporter) { e.compress = on }
}

func New(toaster toast.Toaster, opts ...Option) *Exporter {
	if toaster == nil {
		toaster = toast.Discard
	}
	e := &Exporter{
		toaster:  toaster,
		now:      time.Now,
		loc:      time.Local,
		compress: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Exporter) init() {
	e.once.Do(func() {
		e.inits++
		e.translate = fpdf.New("P", "mm", "A4", "").UnicodeTranslatorFromDescriptor("")
	})
}

// Filename returns the download name for a report generated at t, e.g.
// dashboard-2026-10-19-12-30-45-123Z.pdf.
func Filename(t time.Time) string {
	stamp := t.UTC().Format("2006-01-02T15:04:05.000Z")
	return "dashboard-" + strings.NewReplacer(":", "-", ".", "-", "T", "-").Replace(stamp) + ".pdf"
}

// Export renders data for the reporting period rangeLabel. A nil bag shows a
// toast and returns (nil, nil). Rendering failures are toasted and returned.
func (e *Exporter) Export(data map[string]any, rangeLabel string) (rep *Report, err error) {
	if data == nil {
		e.toaster.Show(toast.LevelError, "No dashboard data to export")
		return nil, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render dashboard pdf: %v", r)
		}
		if err != nil {
			rep = nil
			e.toaster.Show(toast.LevelError, "Failed to export PDF: "+err.Error())
		}
	}()

	e.init()

	now := e.now()
	var buf bytes.Buffer
	if err := e.render(&buf, data, rangeLabel, now); err != nil {
		return nil, err
	}

	e.toaster.Show(toast.LevelSuccess, "Dashboard exported")
	return &Report{Filename: Filename(now), Data: buf.Bytes()}, nil
}

const (
	marginX   = 10.0
	marginTop = 12.0
	footerGap = 18.0
	rowH      = 7.0
)

type column struct {
	title string
	width float64
	align string
}

var bookingColumns = []column{
	{"Booking ID", 32, "L"},
	{"Customer", 38, "L"},
	{"Service", 38, "L"},
	{"Date", 34, "L"},
	{"Amount", 24, "R"},
	{"Status", 24, "L"},
}

var paymentColumns = []column{
	{"Method", 90, "L"},
	{"Transactions", 50, "R"},
	{"Amount", 50, "R"},
}

func (e *Exporter) render(buf *bytes.Buffer, data map[string]any, rangeLabel string, now time.Time) error {
	tr := e.translate

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(e.compress)
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetTitle("Dashboard Report", true)
	pdf.SetCreator("washdesk", true)
	pdf.SetMargins(marginX, marginTop, marginX)
	pdf.SetAutoPageBreak(true, footerGap)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(30, 41, 59)
	pdf.CellFormat(0, 10, "Dashboard Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(71, 85, 105)
	if rangeLabel == "" {
		rangeLabel = "All time"
	}
	pdf.CellFormat(0, 6, tr("Period: "+rangeLabel), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Generated: "+now.In(e.loc).Format("2006-01-02 15:04:05 MST"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	summary := object(data, "summary")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(30, 41, 59)
	line := fmt.Sprintf("Total Bookings: %s    Total Revenue: %s    Active Customers: %s",
		count(summary, []string{"totalBookings"}),
		revenue(summary),
		count(summary, []string{"activeCustomers"}),
	)
	pdf.CellFormat(0, 8, line, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	bookings := rows(data, "recentBookings")
	table(pdf, tr, "Recent Bookings", bookingColumns, len(bookings), func(i int) []string {
		b := bookings[i]
		return []string{
			text(b, bookingIDKeys),
			text(b, customerKeys),
			text(b, serviceKeys),
			dateText(b, dateKeys, e.loc),
			money(b, amountKeys),
			text(b, statusKeys),
		}
	})
	pdf.Ln(6)

	methods := rows(data, "paymentsByMethod")
	table(pdf, tr, "Payments by Method", paymentColumns, len(methods), func(i int) []string {
		m := methods[i]
		return []string{
			text(m, methodKeys),
			count(m, transactionKeys),
			money(m, methodAmtKeys),
		}
	})

	if err := pdf.Output(buf); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func revenue(summary map[string]any) string {
	if _, ok := firstValue(summary, []string{"totalRevenue"}); !ok {
		return formatMoney(0)
	}
	return money(summary, []string{"totalRevenue"})
}

// table draws a titled table, repeating the header row after page breaks.
func table(pdf *fpdf.Fpdf, tr func(string) string, title string, cols []column, n int, row func(i int) []string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(30, 41, 59)
	pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(37, 99, 235)
		pdf.SetTextColor(255, 255, 255)
		for _, c := range cols {
			pdf.CellFormat(c.width, rowH, c.title, "1", 0, c.align, true, 0, "")
		}
		pdf.Ln(-1)
	}
	header()

	_, pageH := pdf.GetPageSize()
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(30, 41, 59)
	for i := 0; i < n; i++ {
		if pdf.GetY()+rowH > pageH-footerGap {
			pdf.AddPage()
			header()
			pdf.SetFont("Helvetica", "", 9)
			pdf.SetTextColor(30, 41, 59)
		}
		fill := i%2 == 1
		pdf.SetFillColor(241, 245, 249)
		for j, cell := range row(i) {
			c := cols[j]
			pdf.CellFormat(c.width, rowH, fit(pdf, tr(cell), c.width-2), "1", 0, c.align, fill, 0, "")
		}
		pdf.Ln(-1)
	}
}

// fit truncates s with an ellipsis so it fits in width.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}
