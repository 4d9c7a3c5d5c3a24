package metrics

import (
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/restalytics/restalytics/internal/models"
	"github.com/shopspring/decimal"
)

// Options selects which optional aggregates to compute. There is one engine;
// callers needing only a subset disable the rest instead of maintaining a
// parallel implementation.
type Options struct {
	Monthly     bool
	WeekdayPrep bool
	Customers   bool
	TopN        int
	WindowDays  int
}

func DefaultOptions() Options {
	return Options{
		Monthly:     true,
		WeekdayPrep: true,
		Customers:   true,
		TopN:        3,
		WindowDays:  30,
	}
}

var validate = validator.New()

// orderDateLayouts are tried in sequence for the order timestamp.
var orderDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// clockLayout covers receipt/dispatch stamps recorded as time-of-day only.
const clockLayout = "15:04:05"

func parseOrderDate(value string) (time.Time, bool) {
	for _, layout := range orderDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parsePrepStamp parses a receipt or dispatch stamp. Clock-only values are
// anchored to the order date so the two stamps subtract cleanly.
func parsePrepStamp(value string, orderDate time.Time) (time.Time, bool) {
	if t, ok := parseOrderDate(value); ok {
		return t, true
	}
	if t, err := time.Parse(clockLayout, value); err == nil {
		y, m, d := orderDate.Date()
		return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, orderDate.Location()), true
	}
	return time.Time{}, false
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Compute derives the full metrics snapshot from the order log. It is a pure
// function of its inputs: no shared state, no I/O, safe for concurrent use.
//
// An order with an unparseable date is excluded from every time-bucketed
// aggregate but still feeds the grand total, product ranking and customer
// rollup. Malformed dates degrade temporal insight without touching the
// financial totals.
func Compute(orders []models.Order, restaurantName string, now time.Time, opts Options) models.AggregatedMetrics {
	if opts.TopN <= 0 {
		opts.TopN = 3
	}
	if opts.WindowDays <= 0 {
		opts.WindowDays = 30
	}

	result := models.AggregatedMetrics{
		RestaurantName:   restaurantName,
		SalesByMonth:     make(map[string]models.MonthlyBucket),
		AvgPrepByWeekday: make(map[string]int),
		TopProducts:      []models.ProductSales{},
		Customers:        make(map[string]models.CustomerStats),
	}
	for _, label := range models.WeekdayNames {
		result.AvgPrepByWeekday[label] = 0
	}

	grandTotal := decimal.Zero
	monthlyRevenue := make(map[string]decimal.Decimal)
	monthlyWeekdays := make(map[string]map[string]int)

	type prepBucket struct {
		seconds int64
		count   int64
	}
	prepByWeekday := make(map[string]*prepBucket)
	var prepAll, prepToday, prep30d prepBucket

	type productEntry struct {
		name string
		sold int
	}
	productIndex := make(map[string]int)
	products := []productEntry{}

	type customerAcc struct {
		orders int
		spent  decimal.Decimal
	}
	customers := make(map[string]customerAcc)

	today := dateOf(now)
	windowStart := today.AddDate(0, 0, -opts.WindowDays)

	for _, order := range orders {
		if err := validate.Struct(order); err != nil {
			result.Skipped.MissingFields++
			continue
		}

		grandTotal = grandTotal.Add(decimal.NewFromFloat(order.Total))

		for _, item := range order.Items {
			if i, ok := productIndex[item.ProductName]; ok {
				products[i].sold += item.Quantity
			} else {
				productIndex[item.ProductName] = len(products)
				products = append(products, productEntry{name: item.ProductName, sold: item.Quantity})
			}
		}

		if opts.Customers {
			acc := customers[order.Customer.Name]
			acc.orders++
			acc.spent = acc.spent.Add(decimal.NewFromFloat(order.Total))
			customers[order.Customer.Name] = acc
		}

		orderedAt, ok := parseOrderDate(order.OrderedAt)
		if !ok {
			result.Skipped.BadOrderDate++
			continue
		}

		weekday := order.WeekdayName
		if weekday == "" {
			weekday = models.WeekdayName(orderedAt.Weekday())
		}

		if opts.Monthly {
			monthKey := orderedAt.Format("2006-01")
			monthlyRevenue[monthKey] = monthlyRevenue[monthKey].Add(decimal.NewFromFloat(order.Total))
			if monthlyWeekdays[monthKey] == nil {
				monthlyWeekdays[monthKey] = make(map[string]int)
			}
			monthlyWeekdays[monthKey][weekday]++
		}

		if order.ReceivedAt == "" || order.DispatchedAt == "" {
			result.Skipped.MissingPrepTime++
			continue
		}
		receivedAt, okR := parsePrepStamp(order.ReceivedAt, orderedAt)
		dispatchedAt, okD := parsePrepStamp(order.DispatchedAt, orderedAt)
		if !okR || !okD {
			result.Skipped.MissingPrepTime++
			continue
		}
		prepSeconds := int64(dispatchedAt.Sub(receivedAt).Seconds())
		if prepSeconds < 0 {
			result.Skipped.NegativePrep++
			continue
		}

		prepAll.seconds += prepSeconds
		prepAll.count++

		// Today and the trailing window partition the calendar: an order
		// lands in at most one of them.
		orderDate := dateOf(orderedAt)
		switch {
		case orderDate.Equal(today):
			prepToday.seconds += prepSeconds
			prepToday.count++
		case !orderDate.Before(windowStart) && orderDate.Before(today):
			prep30d.seconds += prepSeconds
			prep30d.count++
		}

		if opts.WeekdayPrep {
			bucket := prepByWeekday[weekday]
			if bucket == nil {
				bucket = &prepBucket{}
				prepByWeekday[weekday] = bucket
			}
			bucket.seconds += prepSeconds
			bucket.count++
		}
	}

	result.GrandTotalSold = grandTotal.Round(2).InexactFloat64()

	if opts.Monthly {
		for monthKey, revenue := range monthlyRevenue {
			result.SalesByMonth[monthKey] = models.MonthlyBucket{
				TotalRevenue:    revenue.Round(2).InexactFloat64(),
				OrdersByWeekday: monthlyWeekdays[monthKey],
			}
		}
	}

	mean := func(b prepBucket) int {
		if b.count == 0 {
			return 0
		}
		return int(b.seconds / b.count)
	}
	result.AvgPrepSeconds = mean(prepAll)
	result.AvgPrepTodaySeconds = mean(prepToday)
	result.AvgPrep30dSeconds = mean(prep30d)

	if opts.WeekdayPrep {
		for weekday, bucket := range prepByWeekday {
			result.AvgPrepByWeekday[weekday] = mean(*bucket)
		}
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].sold > products[j].sold
	})
	topN := opts.TopN
	if topN > len(products) {
		topN = len(products)
	}
	for _, p := range products[:topN] {
		result.TopProducts = append(result.TopProducts, models.ProductSales{Name: p.name, Sold: p.sold})
	}

	if opts.Customers {
		for name, acc := range customers {
			result.Customers[name] = models.CustomerStats{
				OrderCount: acc.orders,
				TotalSpent: acc.spent.Round(2).InexactFloat64(),
			}
		}
	}

	return result
}
