package factories_test

import (
	"testing"
	"time"

	"github.com/restalytics/restalytics/internal/factories"
	"github.com/restalytics/restalytics/internal/metrics"
	"github.com/restalytics/restalytics/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryOrdersFeedTheEngine(t *testing.T) {
	factory := factories.NewOrderFactory(10, 5)
	now := time.Now()

	orders := make([]models.Order, 0, 200)
	for i := 0; i < 200; i++ {
		orders = append(orders, factory.CreateOrder(now, 60))
	}

	m := metrics.Compute(orders, "Fixture", now, metrics.DefaultOptions())

	// Every generated order has a valid customer and total.
	assert.Equal(t, 0, m.Skipped.MissingFields)
	assert.Greater(t, m.GrandTotalSold, 0.0)
	require.NotEmpty(t, m.TopProducts)
	assert.LessOrEqual(t, len(m.TopProducts), 3)

	// The dirty share is bounded: most orders parse.
	assert.Less(t, m.Skipped.BadOrderDate, 40)
}

func TestFactoryOrdersHaveItems(t *testing.T) {
	factory := factories.NewOrderFactory(3, 4)
	order := factory.CreateOrder(time.Now(), 30)

	assert.NotEmpty(t, order.ID)
	assert.NotEmpty(t, order.Customer.Name)
	require.NotEmpty(t, order.Items)
	for _, item := range order.Items {
		assert.Greater(t, item.Quantity, 0)
	}
}
