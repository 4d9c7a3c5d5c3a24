package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/restalytics/restalytics/internal/chat"
	"github.com/restalytics/restalytics/internal/models"
	"github.com/restalytics/restalytics/internal/narrative"
	"github.com/restalytics/restalytics/internal/sink"
	"github.com/restalytics/restalytics/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "restalytics",
	Short: "Chat assistant over restaurant order analytics",
	Long:  `restalytics loads a historical restaurant order log, derives aggregate business metrics, flags rule-based anomalies and answers questions about them through an interactive chat loop backed by an LLM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		logger, err := zap.NewProduction()
		if err != nil {
			return err
		}
		defer logger.Sync()

		source, err := newOrderSource(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		opts := []chat.Option{}

		if cfg.LLM.APIKey != "" {
			model, err := googleai.New(cmd.Context(),
				googleai.WithAPIKey(cfg.LLM.APIKey),
				googleai.WithDefaultModel(cfg.LLM.Model),
			)
			if err != nil {
				return fmt.Errorf("failed to create model client: %w", err)
			}
			opts = append(opts, chat.WithGenerator(narrative.NewGenerator(model, cfg.LLM, logger)))
		} else {
			logger.Warn("GEMINI_API_KEY not set, narrative features disabled")
		}

		if cfg.Kafka.Enabled {
			kafkaSink, err := sink.NewKafkaSink(cfg.Kafka, logger)
			if err != nil {
				return fmt.Errorf("failed to create Kafka sink: %w", err)
			}
			defer kafkaSink.Close()
			opts = append(opts, chat.WithSnapshotSink(kafkaSink))
		}

		session := chat.NewSession(cfg, source, logger, opts...)
		return session.Run(cmd.Context())
	},
}

func newOrderSource(ctx context.Context, cfg *models.Config) (chat.OrderSource, error) {
	if cfg.Postgres.Enabled {
		return newPostgresSource(ctx, cfg)
	}
	return store.NewFileStore(cfg.DataFile), nil
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is examples/config.json)")

	rootCmd.Flags().String("data-file", "data/pedidos.json", "Path to the order log JSON file")
	rootCmd.Flags().String("reports-dir", "reports", "Directory for generated reports")
	rootCmd.Flags().Int("top-products", 3, "Number of products in the top ranking")
	rootCmd.Flags().Int("rolling-window-days", 30, "Length of the trailing prep-time window in days")
	rootCmd.Flags().Bool("kafka-enabled", false, "Publish metrics snapshots to Kafka")
	rootCmd.Flags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")

	viper.BindPFlags(rootCmd.Flags())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
