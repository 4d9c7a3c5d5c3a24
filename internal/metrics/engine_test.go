package metrics_test

import (
	"testing"
	"time"

	"github.com/restalytics/restalytics/internal/metrics"
	"github.com/restalytics/restalytics/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-07-15 is a Tuesday; 2025-07-14 a Monday.
var now = time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)

func order(customer string, total float64, orderedAt, weekday, receivedAt, dispatchedAt string, items ...models.LineItem) models.Order {
	return models.Order{
		Customer:     models.Customer{Name: customer},
		Total:        total,
		OrderedAt:    orderedAt,
		WeekdayName:  weekday,
		ReceivedAt:   receivedAt,
		DispatchedAt: dispatchedAt,
		Items:        items,
	}
}

func item(name string, qty int) models.LineItem {
	return models.LineItem{ProductName: name, Quantity: qty}
}

func TestComputeEndToEndScenario(t *testing.T) {
	orders := []models.Order{
		order("Ana", 30.00, "2025-07-14T09:00:00", models.WeekdayMonday, "09:00:00", "09:10:00", item("Pizza", 2)),
		order("Bruno", 20.00, "2025-07-14T09:00:00", models.WeekdayMonday, "09:00:00", "09:05:00", item("Pizza", 1)),
		order("Carla", 15.00, "14/07/2025", "", "", "", item("Refrigerante", 1)),
	}

	m := metrics.Compute(orders, "Pizzaria do Zé", now, metrics.DefaultOptions())

	assert.Equal(t, "Pizzaria do Zé", m.RestaurantName)
	assert.Equal(t, 65.00, m.GrandTotalSold)

	// Average of 600s and 300s.
	assert.Equal(t, 450, m.AvgPrepByWeekday[models.WeekdayMonday])

	require.Len(t, m.TopProducts, 2)
	assert.Equal(t, models.ProductSales{Name: "Pizza", Sold: 3}, m.TopProducts[0])
	assert.Equal(t, models.ProductSales{Name: "Refrigerante", Sold: 1}, m.TopProducts[1])

	// The order with the unparseable date still appears in revenue, product
	// counts and customer rollups but nowhere temporal.
	assert.Equal(t, 1, m.Skipped.BadOrderDate)
	assert.Equal(t, models.CustomerStats{OrderCount: 1, TotalSpent: 15.00}, m.Customers["Carla"])
	assert.NotContains(t, m.SalesByMonth, "0001-01")
	assert.Len(t, m.SalesByMonth, 1)

	// Both qualifying orders fall inside the trailing window, not today.
	assert.Equal(t, 0, m.AvgPrepTodaySeconds)
	assert.Equal(t, 450, m.AvgPrep30dSeconds)
	assert.Equal(t, 450, m.AvgPrepSeconds)
}

func TestGrandTotalIndependentOfTimestampValidity(t *testing.T) {
	orders := []models.Order{
		order("Ana", 10.10, "not-a-date", "", "", ""),
		order("Ana", 20.20, "2025-07-10T10:00:00", "", "", ""),
		order("Bruno", 30.35, "", "", "", ""),
	}

	m := metrics.Compute(orders, "Teste", now, metrics.DefaultOptions())

	assert.Equal(t, 60.65, m.GrandTotalSold)
	assert.Equal(t, 2, m.Skipped.BadOrderDate)
}

func TestEmptyBucketsReportZero(t *testing.T) {
	m := metrics.Compute(nil, "Vazio", now, metrics.DefaultOptions())

	assert.Equal(t, 0.0, m.GrandTotalSold)
	assert.Equal(t, 0, m.AvgPrepSeconds)
	assert.Equal(t, 0, m.AvgPrepTodaySeconds)
	assert.Equal(t, 0, m.AvgPrep30dSeconds)

	require.Len(t, m.AvgPrepByWeekday, 7)
	for _, label := range models.WeekdayNames {
		assert.Equal(t, 0, m.AvgPrepByWeekday[label])
	}

	assert.Empty(t, m.TopProducts)
	assert.NotNil(t, m.SalesByMonth)
	assert.NotNil(t, m.Customers)
}

func TestTopProductRanking(t *testing.T) {
	orders := []models.Order{
		order("Ana", 10, "2025-07-10T10:00:00", "", "", "",
			item("Esfiha", 5), item("Pizza", 8)),
		order("Bruno", 10, "2025-07-11T10:00:00", "", "", "",
			item("Lasanha", 5), item("Coxinha", 2)),
	}

	m := metrics.Compute(orders, "Teste", now, metrics.DefaultOptions())

	require.Len(t, m.TopProducts, 3)
	assert.Equal(t, "Pizza", m.TopProducts[0].Name)
	// Esfiha and Lasanha tie at 5 units; Esfiha was seen first.
	assert.Equal(t, "Esfiha", m.TopProducts[1].Name)
	assert.Equal(t, "Lasanha", m.TopProducts[2].Name)

	for i := 1; i < len(m.TopProducts); i++ {
		assert.GreaterOrEqual(t, m.TopProducts[i-1].Sold, m.TopProducts[i].Sold)
	}
}

func TestTopProductsShorterThanTopN(t *testing.T) {
	orders := []models.Order{
		order("Ana", 10, "2025-07-10T10:00:00", "", "", "", item("Pizza", 1)),
	}

	m := metrics.Compute(orders, "Teste", now, metrics.DefaultOptions())
	assert.Len(t, m.TopProducts, 1)
}

func TestRollingWindowsAreMutuallyExclusive(t *testing.T) {
	orders := []models.Order{
		// Today: 100s.
		order("Ana", 10, "2025-07-15T08:00:00", "", "08:00:00", "08:01:40"),
		// Inside the trailing window: 200s.
		order("Bruno", 10, "2025-07-01T08:00:00", "", "08:00:00", "08:03:20"),
		// Exactly 30 days back: inclusive lower bound, 400s.
		order("Davi", 10, "2025-06-15T08:00:00", "", "08:00:00", "08:06:40"),
		// Far outside both windows: 300s, all-time only.
		order("Carla", 10, "2025-03-01T08:00:00", "", "08:00:00", "08:05:00"),
	}

	m := metrics.Compute(orders, "Teste", now, metrics.DefaultOptions())

	assert.Equal(t, 100, m.AvgPrepTodaySeconds)
	assert.Equal(t, 300, m.AvgPrep30dSeconds) // (200+400)/2
	assert.Equal(t, 250, m.AvgPrepSeconds)    // (100+200+400+300)/4
}

func TestWindowExcludesThirtyOneDaysBack(t *testing.T) {
	orders := []models.Order{
		order("Ana", 10, "2025-06-14T08:00:00", "", "08:00:00", "08:10:00"),
	}

	m := metrics.Compute(orders, "Teste", now, metrics.DefaultOptions())

	assert.Equal(t, 0, m.AvgPrep30dSeconds)
	assert.Equal(t, 600, m.AvgPrepSeconds)
}

func TestMeanIsFloored(t *testing.T) {
	orders := []models.Order{
		order("Ana", 10, "2025-07-14T08:00:00", "", "08:00:00", "08:01:40"),
		order("Bruno", 10, "2025-07-14T08:00:00", "", "08:00:00", "08:01:41"),
	}

	m := metrics.Compute(orders, "Teste", now, metrics.DefaultOptions())
	assert.Equal(t, 100, m.AvgPrepSeconds)
}

func TestNegativePrepDurationIsSkipped(t *testing.T) {
	orders := []models.Order{
		order("Ana", 10, "2025-07-14T08:00:00", "", "09:00:00", "08:00:00"),
	}

	m := metrics.Compute(orders, "Teste", now, metrics.DefaultOptions())

	assert.Equal(t, 1, m.Skipped.NegativePrep)
	assert.Equal(t, 0, m.AvgPrepSeconds)
	assert.Equal(t, 10.0, m.GrandTotalSold)
}

func TestMissingIdentityFieldsSkipRecord(t *testing.T) {
	orders := []models.Order{
		order("", 10, "2025-07-14T08:00:00", "", "", ""),
		order("Ana", 0, "2025-07-14T08:00:00", "", "", ""),
		order("Bruno", 25, "2025-07-14T08:00:00", "", "", ""),
	}

	m := metrics.Compute(orders, "Teste", now, metrics.DefaultOptions())

	assert.Equal(t, 2, m.Skipped.MissingFields)
	assert.Equal(t, 25.0, m.GrandTotalSold)
	assert.Len(t, m.Customers, 1)
}

func TestCustomerSpendClosure(t *testing.T) {
	orders := []models.Order{
		order("Ana", 30.50, "2025-07-14T08:00:00", "", "", ""),
		order("Ana", 19.50, "bad-date", "", "", ""),
		order("Bruno", 50.00, "2025-07-10T08:00:00", "", "", ""),
	}

	m := metrics.Compute(orders, "Teste", now, metrics.DefaultOptions())

	total := 0.0
	for _, stats := range m.Customers {
		total += stats.TotalSpent
	}
	assert.InDelta(t, m.GrandTotalSold, total, 0.001)
	assert.Equal(t, 2, m.Customers["Ana"].OrderCount)
}

func TestMonthlyBuckets(t *testing.T) {
	orders := []models.Order{
		order("Ana", 30, "2025-07-14T08:00:00", models.WeekdayMonday, "", ""),
		order("Bruno", 20, "2025-07-08T08:00:00", models.WeekdayTuesday, "", ""),
		order("Carla", 10, "2025-06-02T08:00:00", models.WeekdayMonday, "", ""),
	}

	m := metrics.Compute(orders, "Teste", now, metrics.DefaultOptions())

	require.Contains(t, m.SalesByMonth, "2025-07")
	require.Contains(t, m.SalesByMonth, "2025-06")

	july := m.SalesByMonth["2025-07"]
	assert.Equal(t, 50.0, july.TotalRevenue)
	assert.Equal(t, 1, july.OrdersByWeekday[models.WeekdayMonday])
	assert.Equal(t, 1, july.OrdersByWeekday[models.WeekdayTuesday])

	june := m.SalesByMonth["2025-06"]
	assert.Equal(t, 10.0, june.TotalRevenue)
}

func TestWeekdayLabelDerivedWhenAbsent(t *testing.T) {
	orders := []models.Order{
		// 2025-07-13 is a Sunday; no label supplied.
		order("Ana", 30, "2025-07-13T08:00:00", "", "08:00:00", "08:05:00"),
	}

	m := metrics.Compute(orders, "Teste", now, metrics.DefaultOptions())
	assert.Equal(t, 300, m.AvgPrepByWeekday[models.WeekdaySunday])
}

func TestOptionsDisableOptionalAggregates(t *testing.T) {
	orders := []models.Order{
		order("Ana", 30, "2025-07-14T08:00:00", models.WeekdayMonday, "08:00:00", "08:05:00"),
	}

	opts := metrics.Options{Monthly: false, WeekdayPrep: false, Customers: false}
	m := metrics.Compute(orders, "Teste", now, opts)

	assert.Empty(t, m.SalesByMonth)
	assert.Empty(t, m.Customers)
	assert.Equal(t, 0, m.AvgPrepByWeekday[models.WeekdayMonday])

	// Core aggregates are always computed.
	assert.Equal(t, 30.0, m.GrandTotalSold)
	assert.Equal(t, 300, m.AvgPrepSeconds)
	assert.Len(t, m.TopProducts, 0)
}

func TestClockOnlyPrepStampsAnchorToOrderDate(t *testing.T) {
	orders := []models.Order{
		order("Ana", 30, "2025-07-14T09:00:00", "", "2025-07-14T09:00:00", "2025-07-14T09:10:00"),
		order("Bruno", 20, "2025-07-14T09:00:00", "", "09:00:00", "09:10:00"),
	}

	m := metrics.Compute(orders, "Teste", now, metrics.DefaultOptions())
	assert.Equal(t, 600, m.AvgPrepSeconds)
}
