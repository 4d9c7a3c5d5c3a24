package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/restalytics/restalytics/internal/factories"
	"github.com/restalytics/restalytics/internal/models"
	"github.com/restalytics/restalytics/internal/store"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate a synthetic order log for development",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		seed := cfg.Seed
		if seed.Orders <= 0 {
			seed.Orders = 500
		}
		if seed.Customers <= 0 {
			seed.Customers = 40
		}
		if seed.Products <= 0 {
			seed.Products = 8
		}
		if seed.DaysBack <= 0 {
			seed.DaysBack = 90
		}
		if seed.OutputFile == "" {
			seed.OutputFile = cfg.DataFile
		}

		factory := factories.NewOrderFactory(seed.Customers, seed.Products)
		now := time.Now()

		bar := progressbar.Default(int64(seed.Orders), "generating orders")
		orders := make([]models.Order, 0, seed.Orders)
		for i := 0; i < seed.Orders; i++ {
			orders = append(orders, factory.CreateOrder(now, seed.DaysBack))
			bar.Add(1)
		}

		if cfg.Postgres.Enabled {
			pool, err := pgxpool.New(cmd.Context(), cfg.Postgres.DSN)
			if err != nil {
				return fmt.Errorf("failed to connect to postgres: %w", err)
			}
			defer pool.Close()
			repo := store.NewOrderRepository(pool)
			// Reseeding replaces the dataset; without the wipe a second run
			// would double-insert and collide on order ids.
			if err := repo.DeleteAll(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear existing orders: %w", err)
			}
			if err := repo.BulkCreate(cmd.Context(), orders); err != nil {
				return err
			}
			count, err := repo.Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Inserted %d orders into postgres (%d total)\n", len(orders), count)
			return nil
		}

		log := models.OrderLog{
			Restaurant: models.RestaurantInfo{Name: cfg.RestaurantName},
			Orders:     orders,
		}
		payload, err := json.MarshalIndent(log, "", "  ")
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(seed.OutputFile), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(seed.OutputFile, payload, 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote %d orders to %s\n", len(orders), seed.OutputFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
