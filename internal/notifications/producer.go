package notifications

import (
	"context"
	"fmt"
	"time"

	"authportal/pkg/logger"

	"github.com/IBM/sarama"
)

// KafkaProducerConfig contains configuration for the Kafka email producer
type KafkaProducerConfig struct {
	Brokers          []string
	EmailTopic       string
	RetryMax         int
	TimeoutMs        int
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          []string{"localhost:9092"},
		EmailTopic:       "auth-emails",
		RetryMax:         3,
		TimeoutMs:        10000,             // 10 seconds
		RequiredAcks:     sarama.WaitForAll, // Wait for all in-sync replicas
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000, // 1MB
	}
}

// SaramaConfig translates the producer settings into a sarama config
func (c *KafkaProducerConfig) SaramaConfig() *sarama.Config {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = c.RequiredAcks
	saramaConfig.Producer.Compression = c.CompressionType
	saramaConfig.Producer.Retry.Max = c.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(c.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = c.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = c.MaxMessageBytes

	// Idempotent producer needs a single in-flight request per connection
	if c.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps one recipient on one partition
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner
	return saramaConfig
}

// KafkaDispatcher publishes email notifications for a mailer service to consume
type KafkaDispatcher struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
	logger   *logger.Logger
}

// NewKafkaDispatcher connects to the brokers and returns a dispatcher
func NewKafkaDispatcher(config *KafkaProducerConfig, log *logger.Logger) (*KafkaDispatcher, error) {
	producer, err := sarama.NewSyncProducer(config.Brokers, config.SaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewKafkaDispatcherWithProducer(producer, config, log), nil
}

// NewKafkaDispatcherWithProducer wraps an existing producer
func NewKafkaDispatcherWithProducer(producer sarama.SyncProducer, config *KafkaProducerConfig, log *logger.Logger) *KafkaDispatcher {
	if log == nil {
		log = logger.GetDefault()
	}
	return &KafkaDispatcher{producer: producer, config: config, logger: log}
}

// Dispatch publishes a single notification
func (kd *KafkaDispatcher) Dispatch(ctx context.Context, notification *EmailNotification) error {
	notification.MarkQueued()

	messageBytes, err := notification.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     kd.config.EmailTopic,
		Key:       sarama.StringEncoder(notification.GetPartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   kd.createHeaders(notification),
		Timestamp: notification.CreatedAt,
	}

	partition, offset, err := kd.producer.SendMessage(message)
	if err != nil {
		notification.MarkFailed(err)
		return fmt.Errorf("failed to send notification to Kafka: %w", err)
	}

	kd.logger.InfoWithContext(ctx, "Email notification published", map[string]interface{}{
		"topic":     kd.config.EmailTopic,
		"partition": partition,
		"offset":    offset,
		"purpose":   string(notification.Purpose),
	})
	return nil
}

func (kd *KafkaDispatcher) createHeaders(notification *EmailNotification) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("notification_id"), Value: []byte(notification.ID.String())},
		{Key: []byte("purpose"), Value: []byte(notification.Purpose)},
		{Key: []byte("version"), Value: []byte("1.0")},
		{Key: []byte("producer"), Value: []byte("authportal")},
		{Key: []byte("created_at"), Value: []byte(notification.CreatedAt.Format(time.RFC3339))},
	}
}

// Close closes the Kafka producer
func (kd *KafkaDispatcher) Close() error {
	if kd.producer == nil {
		return nil
	}
	if err := kd.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}
