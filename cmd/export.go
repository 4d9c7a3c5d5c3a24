package cmd

import (
	"fmt"
	"time"

	"github.com/restalytics/restalytics/internal/cloudwriter"
	"github.com/restalytics/restalytics/internal/metrics"
	"github.com/restalytics/restalytics/internal/models"
	"github.com/restalytics/restalytics/internal/sink"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export aggregated metrics as parquet datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		source, err := newOrderSource(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		log, err := source.Load()
		if err != nil {
			return err
		}

		name := log.Restaurant.Name
		if name == "" {
			name = cfg.RestaurantName
		}
		opts := metrics.DefaultOptions()
		opts.TopN = cfg.TopProducts
		opts.WindowDays = cfg.RollingWindowDays
		m := metrics.Compute(log.Orders, name, time.Now(), opts)

		var exporter *sink.ParquetExporter
		switch cfg.ExportDestination {
		case "", "local":
			folder := cfg.ExportFolder
			if folder == "" {
				folder = "exports"
			}
			exporter = sink.NewParquetExporter(folder)
		case "s3":
			factory, err := cloudwriter.NewS3WriterFactory(cmd.Context(), cfg.CloudStorage.Region)
			if err != nil {
				return fmt.Errorf("failed to create cloud writer factory: %w", err)
			}
			exporter = sink.NewCloudParquetExporter(factory, cfg.CloudStorage.Bucket)
		default:
			return fmt.Errorf("unsupported export destination: %s", cfg.ExportDestination)
		}

		if err := exporter.ExportCustomers(m); err != nil {
			return err
		}
		if err := exporter.ExportMonthly(m); err != nil {
			return err
		}

		fmt.Printf("Exported metrics for %d customers and %d months\n",
			len(m.Customers), len(m.SalesByMonth))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
