package model

// DashboardSummary holds the headline counters of the admin dashboard.
type DashboardSummary struct {
	TotalBookings   int64 `json:"totalBookings"`
	TotalRevenue    int64 `json:"totalRevenue"`
	ActiveCustomers int64 `json:"activeCustomers"`
}

// MethodTotal is one row of the payments-by-method breakdown.
type MethodTotal struct {
	Method string `json:"method"`
	Count  int64  `json:"count"`
	Amount int64  `json:"amount"`
}

type Dashboard struct {
	Summary          DashboardSummary `json:"summary"`
	RecentBookings   []Booking        `json:"recentBookings"`
	PaymentsByMethod []MethodTotal    `json:"paymentsByMethod"`
}
