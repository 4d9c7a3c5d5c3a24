package factories

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
	"github.com/restalytics/restalytics/internal/models"
)

var dishNames = []string{
	"Pizza Calabresa", "Pizza Portuguesa", "Pizza Margherita", "Esfiha Carne",
	"Esfiha Queijo", "Lasanha Bolonhesa", "Risoto de Camarão", "Feijoada",
	"Strogonoff de Frango", "Coxinha", "Pastel de Queijo", "Açaí 500ml",
}

// OrderFactory generates synthetic order records for fixtures and local
// development. A small share of records is deliberately dirty (missing
// dispatch stamps, malformed dates) so the skip policy gets exercised.
type OrderFactory struct {
	fake      faker.Faker
	customers []string
	products  []string
}

func NewOrderFactory(customerCount, productCount int) *OrderFactory {
	fake := faker.New()

	customers := make([]string, customerCount)
	for i := range customers {
		customers[i] = fake.Person().Name()
	}

	if productCount > len(dishNames) {
		productCount = len(dishNames)
	}

	return &OrderFactory{
		fake:      fake,
		customers: customers,
		products:  dishNames[:productCount],
	}
}

func (f *OrderFactory) CreateOrder(now time.Time, daysBack int) models.Order {
	orderedAt := now.Add(-time.Duration(rand.Intn(daysBack*24*60)) * time.Minute)

	order := models.Order{
		ID:          cuid.New(),
		Customer:    models.Customer{Name: f.customers[rand.Intn(len(f.customers))]},
		Total:       f.fake.Float64(2, 15, 250),
		OrderedAt:   orderedAt.Format("2006-01-02T15:04:05"),
		WeekdayName: models.WeekdayName(orderedAt.Weekday()),
	}

	itemCount := rand.Intn(3) + 1
	for i := 0; i < itemCount; i++ {
		order.Items = append(order.Items, models.LineItem{
			ProductName: f.products[rand.Intn(len(f.products))],
			Quantity:    rand.Intn(3) + 1,
		})
	}

	// Roughly one in ten orders never got prep stamps, and a few carry a
	// date the parser cannot read.
	switch roll := rand.Float64(); {
	case roll < 0.05:
		order.OrderedAt = fmt.Sprintf("%02d/%02d/%d", orderedAt.Day(), orderedAt.Month(), orderedAt.Year())
	case roll < 0.15:
		// no prep stamps
	default:
		received := orderedAt.Add(time.Duration(rand.Intn(5)) * time.Minute)
		dispatched := received.Add(time.Duration(rand.Intn(27)+3) * time.Minute)
		order.ReceivedAt = received.Format("15:04:05")
		order.DispatchedAt = dispatched.Format("15:04:05")
	}

	return order
}
