package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/IBM/sarama"

	platformError "github.com/mechanix/shop-reports/internal/platform/errors"
	"github.com/mechanix/shop-reports/internal/platform/observability/logging"
)

// Admin performs broker topology checks and bootstrap.
type Admin struct {
	brokers []string
	logger  logging.Logger
}

// NewAdmin creates a new Kafka admin helper
func NewAdmin(brokers []string, logger logging.Logger) *Admin {
	return &Admin{
		brokers: brokers,
		logger:  logger,
	}
}

func (a *Admin) newConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Net.DialTimeout = 5 * time.Second
	config.Net.ReadTimeout = 5 * time.Second
	config.Net.WriteTimeout = 5 * time.Second
	return config
}

// EnsureTopic creates the generation-requests topic if it does not exist.
// Safe to call on every startup.
func (a *Admin) EnsureTopic(ctx context.Context) error {
	admin, err := sarama.NewClusterAdmin(a.brokers, a.newConfig())
	if err != nil {
		return platformError.Wrap(err, "failed to create Kafka cluster admin")
	}
	defer admin.Close()

	topics, err := admin.ListTopics()
	if err != nil {
		return platformError.Wrap(err, "failed to list Kafka topics")
	}
	if _, exists := topics[GenerateRequestsTopic]; exists {
		return nil
	}

	detail := &sarama.TopicDetail{
		NumPartitions:     1,
		ReplicationFactor: 1,
	}
	err = admin.CreateTopic(GenerateRequestsTopic, detail, false)
	if err != nil && !errors.Is(err, sarama.ErrTopicAlreadyExists) {
		return platformError.Wrap(err, "failed to create Kafka topic")
	}

	a.logger.Info(ctx, "Kafka topic created", map[string]interface{}{
		"topic": GenerateRequestsTopic,
	})
	return nil
}

// HealthCheck verifies that at least one broker responds.
func (a *Admin) HealthCheck(ctx context.Context) error {
	client, err := sarama.NewClient(a.brokers, a.newConfig())
	if err != nil {
		return platformError.Wrap(err, "failed to connect to Kafka brokers")
	}
	defer client.Close()

	if len(client.Brokers()) == 0 {
		return platformError.NewInternal("no Kafka brokers available")
	}
	return nil
}

// ConsumerGroupActive reports whether the aggregator's consumer group is
// known to the broker. This signals topology, not liveness: a group that
// once joined stays listed while offsets are retained.
func (a *Admin) ConsumerGroupActive(ctx context.Context) (bool, error) {
	admin, err := sarama.NewClusterAdmin(a.brokers, a.newConfig())
	if err != nil {
		return false, platformError.Wrap(err, "failed to create Kafka cluster admin")
	}
	defer admin.Close()

	groups, err := admin.ListConsumerGroups()
	if err != nil {
		return false, platformError.Wrap(err, "failed to list consumer groups")
	}

	_, active := groups[GenerateRequestsGroup]
	return active, nil
}
