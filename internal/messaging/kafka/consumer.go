package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"

	platformError "github.com/mechanix/shop-reports/internal/platform/errors"
	"github.com/mechanix/shop-reports/internal/platform/observability/logging"
	"github.com/mechanix/shop-reports/internal/platform/observability/metrics"
)

// GenerateRequestsGroup is the durable consumer group for generation requests.
const GenerateRequestsGroup = "generate-report-requests-sub"

// ConsumerConfig holds Kafka consumer configuration
type ConsumerConfig struct {
	Brokers           []string      `json:"brokers"`
	GroupID           string        `json:"group_id"`
	ClientID          string        `json:"client_id"`
	SessionTimeout    time.Duration `json:"session_timeout"`
	HeartbeatInterval time.Duration `json:"heartbeat_interval"`
	RebalanceTimeout  time.Duration `json:"rebalance_timeout"`
	InitialOffset     string        `json:"initial_offset"` // "oldest" or "newest"
	MaxProcessingTime time.Duration `json:"max_processing_time"`
}

// DefaultConsumerConfig returns default consumer configuration
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Brokers:           []string{"localhost:9092"},
		GroupID:           GenerateRequestsGroup,
		ClientID:          "shop-reports-aggregator",
		SessionTimeout:    30 * time.Second,
		HeartbeatInterval: 3 * time.Second,
		RebalanceTimeout:  60 * time.Second,
		InitialOffset:     "oldest",
		MaxProcessingTime: 30 * time.Second,
	}
}

// ReportRequestConsumer consumes generation requests and feeds them to the
// dispatcher. Offsets are committed only for processed messages. A rejected
// message ends the current claim before anything after it is marked, so the
// next session resumes at the uncommitted offset and the broker redelivers
// the message.
type ReportRequestConsumer struct {
	consumerGroup sarama.ConsumerGroup
	dispatcher    *Dispatcher
	config        ConsumerConfig
	logger        logging.Logger
	metrics       metrics.Metrics
	ready         chan struct{}
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	mu            sync.Mutex
	running       bool
	suspended     atomic.Bool
}

// NewReportRequestConsumer creates a new Kafka report request consumer
func NewReportRequestConsumer(config ConsumerConfig, dispatcher *Dispatcher, logger logging.Logger, m metrics.Metrics) (*ReportRequestConsumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = config.ClientID
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = config.HeartbeatInterval
	saramaConfig.Consumer.Group.Rebalance.Timeout = config.RebalanceTimeout
	if config.InitialOffset == "newest" {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	}
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, platformError.Wrap(err, "failed to create Kafka consumer group")
	}

	logger.Info(context.Background(), "Kafka consumer created", map[string]interface{}{
		"brokers":  config.Brokers,
		"group_id": config.GroupID,
		"topic":    GenerateRequestsTopic,
	})

	return &ReportRequestConsumer{
		consumerGroup: consumerGroup,
		dispatcher:    dispatcher,
		config:        config,
		logger:        logger,
		metrics:       m,
		ready:         make(chan struct{}),
	}, nil
}

// Start begins consuming. It blocks until the first successful group claim
// or the context is cancelled.
func (c *ReportRequestConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return platformError.NewInternal("consumer is already running")
	}
	c.running = true
	c.mu.Unlock()

	consumeCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.wg.Add(1)
	go c.handleErrors(consumeCtx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-consumeCtx.Done():
				return
			default:
				handler := &groupHandler{consumer: c}
				if err := c.consumerGroup.Consume(consumeCtx, []string{GenerateRequestsTopic}, handler); err != nil {
					if err == sarama.ErrClosedConsumerGroup {
						return
					}
					c.logger.Error(consumeCtx, "Error consuming from Kafka", err)
					select {
					case <-consumeCtx.Done():
						return
					case <-time.After(5 * time.Second):
					}
				}
				if c.suspended.CompareAndSwap(true, false) {
					select {
					case <-consumeCtx.Done():
						return
					case <-time.After(5 * time.Second):
					}
				}
			}
		}
	}()

	select {
	case <-c.ready:
		c.logger.Info(ctx, "Kafka consumer is ready", map[string]interface{}{
			"group_id": c.config.GroupID,
		})
		return nil
	case <-time.After(30 * time.Second):
		return platformError.NewInternal("timeout waiting for consumer to be ready")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop stops the consumer and waits for in-flight handling to finish.
func (c *ReportRequestConsumer) Stop() error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()

	if err := c.consumerGroup.Close(); err != nil {
		return platformError.Wrap(err, "failed to close consumer group")
	}

	c.logger.Info(context.Background(), "Kafka consumer stopped")
	return nil
}

func (c *ReportRequestConsumer) handleErrors(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-c.consumerGroup.Errors():
			if !ok {
				return
			}
			c.metrics.IncrementCounter("kafka_consumer_errors_total", map[string]string{
				"group_id": c.config.GroupID,
			})
			c.logger.Error(ctx, "Kafka consumer error", err)
		}
	}
}

// groupHandler adapts the dispatcher onto sarama's group session callbacks.
type groupHandler struct {
	consumer  *ReportRequestConsumer
	readyOnce sync.Once
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	h.readyOnce.Do(func() {
		select {
		case <-h.consumer.ready:
		default:
			close(h.consumer.ready)
		}
	})
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if !h.handle(session, message) {
				return nil
			}
		case <-session.Context().Done():
			return nil
		}
	}
}

// handle dispatches one message and reports whether the claim may continue.
// A processed message has its offset marked. Offset commits are cumulative,
// so a rejected message must stop the claim before any later message is
// marked; the session ends with the rejected offset uncommitted and the
// broker redelivers it on the next claim.
func (h *groupHandler) handle(session sarama.ConsumerGroupSession, message *sarama.ConsumerMessage) bool {
	c := h.consumer

	ctx, cancel := context.WithTimeout(session.Context(), c.config.MaxProcessingTime)
	defer cancel()

	c.metrics.IncrementCounter("kafka_consumer_messages_total", map[string]string{
		"topic": message.Topic,
	})

	timer := metrics.StartTimer(c.metrics, "kafka_message_processing_duration_seconds", map[string]string{
		"topic": message.Topic,
	})
	result := c.dispatcher.Dispatch(ctx, message.Value)
	timer.Stop()

	switch result.Status {
	case Processed:
		session.MarkMessage(message, "")
	case Rejected:
		c.logger.Warn(ctx, "Generation request rejected, suspending claim for redelivery", map[string]interface{}{
			"topic":     message.Topic,
			"partition": message.Partition,
			"offset":    message.Offset,
			"reason":    result.Reason,
		})
		c.suspended.Store(true)
		return false
	}
	return true
}
