package report

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Synonymous field names, tried in order, for each table cell.
var (
	bookingIDKeys   = []string{"bookingId", "reference", "bookingRef", "_id", "id"}
	customerKeys    = []string{"customerName", "customer", "userName", "name"}
	serviceKeys     = []string{"serviceName", "service", "serviceType", "package"}
	dateKeys        = []string{"date", "scheduledAt", "bookingDate", "createdAt"}
	amountKeys      = []string{"amount", "totalAmount", "price", "total"}
	statusKeys      = []string{"status", "bookingStatus"}
	methodKeys      = []string{"method", "paymentMethod", "_id", "name"}
	transactionKeys = []string{"count", "transactions", "totalTransactions"}
	methodAmtKeys   = []string{"amount", "totalAmount", "total"}
)

const missing = "N/A"

func firstValue(m map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// text renders the first present field as a string, or "N/A".
func text(m map[string]any, keys []string) string {
	v, ok := firstValue(m, keys)
	if !ok {
		return missing
	}
	switch v := v.(type) {
	case string:
		return v
	case map[string]any:
		if name, ok := v["name"].(string); ok && name != "" {
			return name
		}
		return missing
	}
	if f, ok := number(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return missing
}

// dateText formats RFC 3339 values in loc and passes other strings through.
func dateText(m map[string]any, keys []string, loc *time.Location) string {
	s := text(m, keys)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc).Format("2006-01-02 15:04")
	}
	return s
}

// money formats an amount in minor units, e.g. 123450 -> "$1,234.50".
func money(m map[string]any, keys []string) string {
	v, ok := firstValue(m, keys)
	if !ok {
		return missing
	}
	f, ok := number(v)
	if !ok {
		return missing
	}
	return formatMoney(f)
}

func formatMoney(minor float64) string {
	s := humanize.FormatFloat("#,###.##", minor/100)
	if strings.HasPrefix(s, "-") {
		return "-$" + s[1:]
	}
	return "$" + s
}

// count renders an integer counter with thousands separators, 0 when absent.
func count(m map[string]any, keys []string) string {
	v, ok := firstValue(m, keys)
	if !ok {
		return "0"
	}
	f, ok := number(v)
	if !ok {
		return "0"
	}
	return humanize.Comma(int64(f))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// rows returns the objects of an array field, skipping non-object entries.
func rows(data map[string]any, key string) []map[string]any {
	if typed, ok := data[key].([]map[string]any); ok {
		return typed
	}
	list, _ := data[key].([]any)
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func object(data map[string]any, key string) map[string]any {
	m, _ := data[key].(map[string]any)
	if m == nil {
		return map[string]any{}
	}
	return m
}
