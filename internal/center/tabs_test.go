package center

import "testing"

func TestTabBar(t *testing.T) {
	var selected string
	bar := TabBar{
		Types:    []string{"BOOKING", "PAYMENT", "ISSUE_REPORT", "REFUND"},
		Active:   "PAYMENT",
		OnSelect: func(name string) { selected = name },
	}

	tabs := bar.Tabs()
	if len(tabs) != 5 {
		t.Fatalf("tabs = %d, want 5", len(tabs))
	}
	if tabs[0].Name != AllTab || tabs[0].Label != "All" {
		t.Errorf("first tab = %+v", tabs[0])
	}
	if !tabs[2].Active || tabs[1].Active {
		t.Errorf("active flags wrong: %+v", tabs)
	}
	if tabs[3].Label != "Issue Report" {
		t.Errorf("label = %q", tabs[3].Label)
	}
	if tabs[4].Icon != "" {
		t.Errorf("unknown category icon = %q, want none", tabs[4].Icon)
	}

	bar.Select("BOOKING")
	if selected != "BOOKING" {
		t.Errorf("selected = %q", selected)
	}
}

func TestTabBarNoDuplicateAll(t *testing.T) {
	tabs := TabBar{Types: []string{AllTab, "BOOKING"}}.Tabs()
	if len(tabs) != 2 {
		t.Errorf("tabs = %+v", tabs)
	}
}

func TestTabLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BOOKING", "Booking"},
		{"ISSUE_REPORT", "Issue Report"},
		{"ÉVÉNEMENT", "Événement"},
		{"ÜBER_PRÜFUNG", "Über Prüfung"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := TabLabel(tt.in); got != tt.want {
			t.Errorf("TabLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
