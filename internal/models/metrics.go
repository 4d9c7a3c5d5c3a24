package models

// ProductSales is one entry in the top-product ranking.
type ProductSales struct {
	Name string `json:"name"`
	Sold int    `json:"sold"`
}

// MonthlyBucket aggregates one calendar month of sales.
type MonthlyBucket struct {
	TotalRevenue    float64        `json:"total_revenue"`
	OrdersByWeekday map[string]int `json:"orders_by_weekday"`
}

// CustomerStats rolls up one customer's activity. Field names follow the
// report format consumed downstream.
type CustomerStats struct {
	OrderCount int     `json:"numero_de_pedidos"`
	TotalSpent float64 `json:"valor_total_gasto"`
}

// SkipCounts records orders that could not feed every aggregate. These are
// soft data-quality signals, never fatal.
type SkipCounts struct {
	MissingFields   int `json:"missing_fields"`
	BadOrderDate    int `json:"bad_order_date"`
	MissingPrepTime int `json:"missing_prep_time"`
	NegativePrep    int `json:"negative_prep"`
}

func (s SkipCounts) Total() int {
	return s.MissingFields + s.BadOrderDate + s.MissingPrepTime + s.NegativePrep
}

// AggregatedMetrics is the engine's output: a fully populated, immutable
// snapshot recomputed from the whole order log on every call. Every field is
// present even when its source data is empty, so consumers never null-check.
type AggregatedMetrics struct {
	RestaurantName string `json:"restaurant_name"`

	// GrandTotalSold is the sum of every order total, rounded to two
	// fractional digits, regardless of timestamp validity.
	GrandTotalSold float64 `json:"grand_total_sold"`

	// SalesByMonth is keyed "YYYY-MM". Orders with unparseable dates are
	// absent here but still counted in GrandTotalSold.
	SalesByMonth map[string]MonthlyBucket `json:"sales_by_month"`

	// AvgPrepByWeekday reports mean preparation seconds per weekday label.
	// All seven labels are always present; empty buckets read 0.
	AvgPrepByWeekday map[string]int `json:"avg_prep_by_weekday"`

	AvgPrepSeconds      int `json:"avg_prep_seconds"`
	AvgPrepTodaySeconds int `json:"avg_prep_today_seconds"`
	AvgPrep30dSeconds   int `json:"avg_prep_30d_seconds"`

	TopProducts []ProductSales `json:"top_products"`

	Customers map[string]CustomerStats `json:"customers"`

	Skipped SkipCounts `json:"skipped_records"`
}
