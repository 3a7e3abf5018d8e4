package kafka_client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/reviewseed/internal/clients/kafka_client/utils"
)

type Producer struct {
	producer *kafka.Producer
}

func NewProducer(cfg KafkaConfig) (*Producer, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...",
		slog.String("broker", cfg.Broker))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":                     cfg.Broker,
		"security.protocol":                     "PLAINTEXT",
		"api.version.request":                   "true",
		"enable.idempotence":                    true,
		"acks":                                  "all",
		"max.in.flight.requests.per.connection": 1,
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return &Producer{producer: p}, nil
}

func (p *Producer) Close() {
	slog.Info("[KafkaClient] Shutting down Kafka producer...")
	if remaining := p.producer.Flush(FLUSH_TIMEOUT_MS); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	p.producer.Close()
	slog.Info("[KafkaClient] Kafka producer shut down")
}

// Publish serializes value and waits for the broker to acknowledge it.
func (p *Producer) Publish(ctx context.Context, topic, key string, value any) error {
	data, err := utils.SerializeToJSON(value)
	if err != nil {
		return err
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          data,
	}

	ctx, cancel := context.WithTimeout(ctx, DELIVERY_DEADLINE)
	defer cancel()

	for i := 0; i < MAX_RETRIES; i++ {
		deliveries := make(chan kafka.Event, 1)
		if err = p.producer.Produce(msg, deliveries); err == nil {
			err = awaitDelivery(ctx, deliveries)
		}
		if err == nil {
			slog.Info("[KafkaClient] Published message",
				slog.String("topic", topic),
				slog.String("key", key))
			return nil
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			break
		}
		slog.Warn("[KafkaClient] Failed to produce message, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
	}

	return fmt.Errorf("[KafkaClient] failed to publish to %s: %w", topic, err)
}

func awaitDelivery(ctx context.Context, deliveries chan kafka.Event) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case e := <-deliveries:
		m, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event %v", e)
		}
		return m.TopicPartition.Error
	}
}
