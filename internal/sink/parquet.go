package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/restalytics/restalytics/internal/cloudwriter"
	"github.com/restalytics/restalytics/internal/models"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// CustomerRow is the flattened per-customer rollup written to parquet.
type CustomerRow struct {
	Restaurant string  `parquet:"name=restaurant, type=BYTE_ARRAY, convertedtype=UTF8"`
	Customer   string  `parquet:"name=customer, type=BYTE_ARRAY, convertedtype=UTF8"`
	OrderCount int32   `parquet:"name=order_count, type=INT32"`
	TotalSpent float64 `parquet:"name=total_spent, type=DOUBLE"`
}

// MonthlyRow is one calendar month of sales.
type MonthlyRow struct {
	Restaurant   string  `parquet:"name=restaurant, type=BYTE_ARRAY, convertedtype=UTF8"`
	Month        string  `parquet:"name=month, type=BYTE_ARRAY, convertedtype=UTF8"`
	TotalRevenue float64 `parquet:"name=total_revenue, type=DOUBLE"`
	OrderCount   int32   `parquet:"name=order_count, type=INT32"`
}

// ParquetExporter writes metrics snapshots as parquet datasets, locally or
// through a cloud writer factory.
type ParquetExporter struct {
	basePath           string
	cloudWriterFactory cloudwriter.CloudWriterFactory
	cloudBucketName    string
}

func NewParquetExporter(basePath string) *ParquetExporter {
	return &ParquetExporter{basePath: basePath}
}

func NewCloudParquetExporter(factory cloudwriter.CloudWriterFactory, bucket string) *ParquetExporter {
	return &ParquetExporter{
		cloudWriterFactory: factory,
		cloudBucketName:    bucket,
	}
}

func (p *ParquetExporter) newFile(name string) (source.ParquetFile, error) {
	if p.cloudWriterFactory != nil {
		cw, err := p.cloudWriterFactory.NewWriter(p.cloudBucketName, name)
		if err != nil {
			return nil, err
		}
		return newCloudParquetFile(cw), nil
	}
	if err := os.MkdirAll(p.basePath, 0o755); err != nil {
		return nil, err
	}
	return local.NewLocalFileWriter(filepath.Join(p.basePath, name))
}

// ExportCustomers writes one row per customer, sorted by name so the output
// is reproducible.
func (p *ParquetExporter) ExportCustomers(m models.AggregatedMetrics) error {
	file, err := p.newFile("customers.parquet")
	if err != nil {
		return fmt.Errorf("failed to open customers export: %w", err)
	}

	pw, err := writer.NewParquetWriter(file, new(CustomerRow), 4)
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}

	names := make([]string, 0, len(m.Customers))
	for name := range m.Customers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		stats := m.Customers[name]
		row := CustomerRow{
			Restaurant: m.RestaurantName,
			Customer:   name,
			OrderCount: int32(stats.OrderCount),
			TotalSpent: stats.TotalSpent,
		}
		if err := pw.Write(row); err != nil {
			file.Close()
			return fmt.Errorf("failed to write customer row: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		file.Close()
		return fmt.Errorf("failed to finalize customers export: %w", err)
	}
	return file.Close()
}

// ExportMonthly writes one row per calendar month.
func (p *ParquetExporter) ExportMonthly(m models.AggregatedMetrics) error {
	file, err := p.newFile("sales_by_month.parquet")
	if err != nil {
		return fmt.Errorf("failed to open monthly export: %w", err)
	}

	pw, err := writer.NewParquetWriter(file, new(MonthlyRow), 4)
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}

	months := make([]string, 0, len(m.SalesByMonth))
	for month := range m.SalesByMonth {
		months = append(months, month)
	}
	sort.Strings(months)

	for _, month := range months {
		bucket := m.SalesByMonth[month]
		orderCount := 0
		for _, count := range bucket.OrdersByWeekday {
			orderCount += count
		}
		row := MonthlyRow{
			Restaurant:   m.RestaurantName,
			Month:        month,
			TotalRevenue: bucket.TotalRevenue,
			OrderCount:   int32(orderCount),
		}
		if err := pw.Write(row); err != nil {
			file.Close()
			return fmt.Errorf("failed to write monthly row: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		file.Close()
		return fmt.Errorf("failed to finalize monthly export: %w", err)
	}
	return file.Close()
}
