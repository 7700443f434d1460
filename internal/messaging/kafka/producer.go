package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/mechanix/shop-reports/internal/domain"
	platformError "github.com/mechanix/shop-reports/internal/platform/errors"
	"github.com/mechanix/shop-reports/internal/platform/observability/logging"
	"github.com/mechanix/shop-reports/internal/platform/observability/metrics"
)

// GenerateRequestsTopic carries report-generation requests from the API
// service to the aggregator.
const GenerateRequestsTopic = "generate-report-requests"

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers        []string      `json:"brokers"`
	ClientID       string        `json:"client_id"`
	MaxRetries     int           `json:"max_retries"`
	RetryBackoff   time.Duration `json:"retry_backoff"`
	RequestTimeout time.Duration `json:"request_timeout"`
}

// DefaultProducerConfig returns default producer configuration
func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		Brokers:        []string{"localhost:9092"},
		ClientID:       "shop-reports-api",
		MaxRetries:     3,
		RetryBackoff:   100 * time.Millisecond,
		RequestTimeout: 30 * time.Second,
	}
}

// generateRequestMessage is the wire payload for one generation request.
type generateRequestMessage struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// ReportRequestProducer publishes report-generation requests. Publishing
// is synchronous so the HTTP handler can surface a broker failure as a 500
// instead of silently dropping the request.
type ReportRequestProducer struct {
	producer sarama.SyncProducer
	logger   logging.Logger
	metrics  metrics.Metrics
}

// NewReportRequestProducer creates a new Kafka report request producer
func NewReportRequestProducer(config ProducerConfig, logger logging.Logger, m metrics.Metrics) (*ReportRequestProducer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = config.ClientID
	saramaConfig.Net.DialTimeout = config.RequestTimeout
	saramaConfig.Net.ReadTimeout = config.RequestTimeout
	saramaConfig.Net.WriteTimeout = config.RequestTimeout
	saramaConfig.Producer.Retry.Max = config.MaxRetries
	saramaConfig.Producer.Retry.Backoff = config.RetryBackoff
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, platformError.Wrap(err, "failed to create Kafka producer")
	}

	logger.Info(context.Background(), "Kafka producer created", map[string]interface{}{
		"brokers":   config.Brokers,
		"client_id": config.ClientID,
		"topic":     GenerateRequestsTopic,
	})

	return &ReportRequestProducer{
		producer: producer,
		logger:   logger,
		metrics:  m,
	}, nil
}

// PublishGenerateRequest publishes one generation request for the period.
func (p *ReportRequestProducer) PublishGenerateRequest(ctx context.Context, filters domain.ReportFilters) error {
	data, err := json.Marshal(generateRequestMessage{Year: filters.Year, Month: filters.Month})
	if err != nil {
		return platformError.Wrap(err, "failed to serialize generation request")
	}

	message := &sarama.ProducerMessage{
		Topic: GenerateRequestsTopic,
		Key:   sarama.StringEncoder(domain.BuildReportID(filters.Year, filters.Month)),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("message-id"), Value: []byte(uuid.New().String())},
		},
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		p.metrics.IncrementCounter("kafka_producer_errors_total", map[string]string{
			"topic": GenerateRequestsTopic,
		})
		p.logger.Error(ctx, "Failed to publish generation request", err, map[string]interface{}{
			"year":  filters.Year,
			"month": filters.Month,
		})
		return platformError.Wrap(err, "failed to publish generation request")
	}

	p.metrics.IncrementCounter("kafka_producer_messages_total", map[string]string{
		"topic": GenerateRequestsTopic,
	})
	p.logger.Debug(ctx, "Generation request published", map[string]interface{}{
		"year":      filters.Year,
		"month":     filters.Month,
		"partition": partition,
		"offset":    offset,
	})

	return nil
}

// Close closes the underlying producer
func (p *ReportRequestProducer) Close() error {
	if err := p.producer.Close(); err != nil {
		return platformError.Wrap(err, "failed to close Kafka producer")
	}
	return nil
}
