package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/restalytics/restalytics/internal/models"
	"github.com/restalytics/restalytics/internal/store"
)

// postgresSource adapts the order repository to the chat session's
// OrderSource. The restaurant name comes from config since the database holds
// only orders.
type postgresSource struct {
	repo           *store.OrderRepository
	restaurantName string
}

func newPostgresSource(ctx context.Context, cfg *models.Config) (*postgresSource, error) {
	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &postgresSource{
		repo:           store.NewOrderRepository(pool),
		restaurantName: cfg.RestaurantName,
	}, nil
}

func (p *postgresSource) Load() (*models.OrderLog, error) {
	orders, err := p.repo.GetAll(context.Background())
	if err != nil {
		return nil, err
	}
	return &models.OrderLog{
		Restaurant: models.RestaurantInfo{Name: p.restaurantName},
		Orders:     orders,
	}, nil
}
