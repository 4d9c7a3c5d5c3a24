package models

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type KafkaConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	BrokerList string `mapstructure:"broker_list"`
	Topic      string `mapstructure:"topic"`
}

type PostgresConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

type CloudStorageConfig struct {
	Provider string `mapstructure:"provider"`
	Region   string `mapstructure:"region"`
	Bucket   string `mapstructure:"bucket"`
}

type LLMConfig struct {
	Model          string        `mapstructure:"model"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	APIKey         string        `mapstructure:"-"`
}

type SeedConfig struct {
	Orders     int    `mapstructure:"orders"`
	Customers  int    `mapstructure:"customers"`
	Products   int    `mapstructure:"products"`
	DaysBack   int    `mapstructure:"days_back"`
	OutputFile string `mapstructure:"output_file"`
}

type Config struct {
	DataFile          string `mapstructure:"data_file"`
	RestaurantName    string `mapstructure:"restaurant_name"`
	ReportsDir        string `mapstructure:"reports_dir"`
	TopProducts       int    `mapstructure:"top_products"`
	RollingWindowDays int    `mapstructure:"rolling_window_days"`

	PrepRegressionFactor float64 `mapstructure:"prep_regression_factor"`
	ProductSalesFloor    int     `mapstructure:"product_sales_floor"`

	ExportFolder      string `mapstructure:"export_folder"`
	ExportDestination string `mapstructure:"export_destination"` // "local" or "s3"

	Kafka        KafkaConfig        `mapstructure:"kafka"`
	Postgres     PostgresConfig     `mapstructure:"postgres"`
	CloudStorage CloudStorageConfig `mapstructure:"cloud_storage"`
	LLM          LLMConfig          `mapstructure:"llm"`
	Seed         SeedConfig         `mapstructure:"seed"`
}

// LoadConfig initializes and reads the configuration using Viper. A .env file
// next to the binary supplies secrets (GEMINI_API_KEY) without putting them in
// the config file.
func LoadConfig(cfgFile string) (*Config, error) {
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("examples")
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	viper.AutomaticEnv()

	viper.SetDefault("data_file", "data/pedidos.json")
	viper.SetDefault("reports_dir", "reports")
	viper.SetDefault("top_products", 3)
	viper.SetDefault("rolling_window_days", 30)
	viper.SetDefault("prep_regression_factor", 1.25)
	viper.SetDefault("product_sales_floor", 50)
	viper.SetDefault("export_destination", "local")
	viper.SetDefault("llm.model", "gemini-2.0-flash")
	viper.SetDefault("llm.request_timeout", "30s")
	viper.SetDefault("llm.max_retries", 2)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	config.LLM.APIKey = os.Getenv("GEMINI_API_KEY")

	return &config, nil
}
