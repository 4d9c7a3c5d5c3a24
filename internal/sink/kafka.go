package sink

import (
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/restalytics/restalytics/internal/models"
	"go.uber.org/zap"
)

// KafkaSink publishes metrics snapshots to a Kafka topic through a sarama
// synchronous producer.
type KafkaSink struct {
	producer sarama.SyncProducer
	logger   *zap.Logger
}

func NewKafkaSink(cfg models.KafkaConfig, logger *zap.Logger) (*KafkaSink, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true // Must be true for SyncProducer
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second

	brokerList := strings.Split(cfg.BrokerList, ",")

	producer, err := sarama.NewSyncProducer(brokerList, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}

	logger.Info("Kafka snapshot producer created", zap.Strings("brokers", brokerList))
	return &KafkaSink{producer: producer, logger: logger}, nil
}

func (k *KafkaSink) WriteSnapshot(topic string, snapshot []byte) error {
	if k.producer == nil {
		return fmt.Errorf("kafka producer is not initialized")
	}

	_, _, err := k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(snapshot),
	})
	if err != nil {
		k.logger.Error("failed to publish snapshot",
			zap.String("topic", topic),
			zap.Error(err))
		return err
	}
	return nil
}

func (k *KafkaSink) Close() error {
	if k.producer != nil {
		return k.producer.Close()
	}
	return nil
}
