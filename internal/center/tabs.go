package center

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dukerupert/washdesk/internal/model"
)

// AllTab is the synthetic tab that shows every category. It is never sent to
// the server as a filter.
const AllTab = "ALL"

var tabIcons = map[string]string{
	AllTab:                "🔔",
	model.TypeBooking:     "📅",
	model.TypePayment:     "💳",
	model.TypeIssueReport: "⚠️",
}

type Tab struct {
	Name   string
	Label  string
	Icon   string
	Active bool
}

// TabBar renders the category filter. It holds no state of its own.
type TabBar struct {
	Types    []string
	Active   string
	OnSelect func(name string)
}

// Tabs returns ALL followed by one tab per category. Types already carrying
// ALL are not duplicated.
func (b TabBar) Tabs() []Tab {
	tabs := []Tab{newTab(AllTab, b.Active)}
	for _, t := range b.Types {
		if t == AllTab {
			continue
		}
		tabs = append(tabs, newTab(t, b.Active))
	}
	return tabs
}

// Select invokes the parent callback.
func (b TabBar) Select(name string) {
	if b.OnSelect != nil {
		b.OnSelect(name)
	}
}

func newTab(name, active string) Tab {
	return Tab{Name: name, Label: TabLabel(name), Icon: tabIcons[name], Active: name == active}
}

// TabLabel turns a category constant into a label: ISSUE_REPORT -> Issue Report.
func TabLabel(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}
