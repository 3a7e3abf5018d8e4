package consumers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"
	"github.com/spacesedan/reviewseed/internal/clients/kafka_client"
	"github.com/spacesedan/reviewseed/internal/clients/kafka_client/utils"
	"github.com/spacesedan/reviewseed/internal/db"
	"github.com/spacesedan/reviewseed/internal/models"
)

const (
	UNHEALTHY_PAUSE = 5 * time.Second
	SEEK_TIMEOUT_MS = 5000
)

type Generator interface {
	Generate(ctx context.Context, req models.GenerationRequest, product *models.Product) (*models.BatchResult, error)
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

// GenerationHandler turns one request message into one result message.
type GenerationHandler struct {
	generator Generator
	products  db.ProductStore
	publisher Publisher
	ledger    RunLedger
}

func NewGenerationHandler(generator Generator, products db.ProductStore, publisher Publisher, ledger RunLedger) *GenerationHandler {
	if ledger == nil {
		ledger = NoopLedger{}
	}
	return &GenerationHandler{
		generator: generator,
		products:  products,
		publisher: publisher,
		ledger:    ledger,
	}
}

// Handle processes a raw request payload. A nil error means the message can be committed; undecodable
// payloads are dropped with a warning.
func (h *GenerationHandler) Handle(ctx context.Context, payload []byte) error {
	var req models.GenerationRequest
	if err := utils.DeserializeFromJSON(payload, &req); err != nil {
		slog.Warn("[GenerationConsumer] Dropping undecodable request",
			slog.String("error", err.Error()))
		return nil
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	if h.ledger.IsProcessed(ctx, req.RequestID) {
		slog.Info("[GenerationConsumer] Request already processed, skipping",
			slog.String("request_id", req.RequestID))
		return nil
	}

	product, err := h.products.GetProduct(ctx, req.ProductID)
	if err != nil && !errors.Is(err, db.ErrProductNotFound) {
		return fmt.Errorf("[GenerationConsumer] product lookup failed: %w", err)
	}

	msg := models.GenerationResultMessage{
		RequestID: req.RequestID,
		ProductID: req.ProductID,
	}

	result, genErr := h.generator.Generate(ctx, req, product)
	if genErr != nil && result != nil && result.Cancelled {
		return genErr
	}
	if genErr != nil {
		msg.Error = genErr.Error()
	}
	msg.Result = result

	if err := h.publisher.Publish(ctx, kafka_client.KAFKA_TOPIC_GENERATION_RESULTS, req.ProductID, msg); err != nil {
		return err
	}

	if result != nil {
		if err := h.ledger.RecordRun(ctx, req.ProductID, result.RunID, result.Summary); err != nil {
			slog.Warn("[GenerationConsumer] Failed to record run",
				slog.String("run_id", result.RunID),
				slog.String("error", err.Error()))
		}
	}
	if err := h.ledger.MarkProcessed(ctx, req.RequestID); err != nil {
		slog.Warn("[GenerationConsumer] Failed to mark request processed",
			slog.String("request_id", req.RequestID),
			slog.String("error", err.Error()))
	}

	return nil
}

// StartGenerationConsumer reads requests until ctx is done. While any health flag is false no new message is
// read.
func StartGenerationConsumer(h *GenerationHandler) func(ctx context.Context, consumer *kafka.Consumer, health ...*atomic.Bool) {
	return func(ctx context.Context, consumer *kafka.Consumer, health ...*atomic.Bool) {
		iterator := kafka_client.NewKafkaMessageIterator(ctx, consumer)
		committer := kafka_client.NewCommitHandler(ctx, consumer)

		for {
			select {
			case <-ctx.Done():
				slog.Warn("[GenerationConsumer] Stopping consumer...")
				return
			default:
			}

			if !allHealthy(health) {
				slog.Warn("[GenerationConsumer] Provider unhealthy, pausing consumption",
					slog.Duration("pause", UNHEALTHY_PAUSE))
				select {
				case <-ctx.Done():
				case <-time.After(UNHEALTHY_PAUSE):
				}
				continue
			}

			msg, err := iterator.Next()
			if err != nil {
				utils.HandleConsumerError(err)
				continue
			}

			err = processMessage(ctx, h, msg, committer, consumer)
			if errors.Is(err, errRewindFailed) {
				slog.Error("[GenerationConsumer] Could not rewind to failed message, stopping consumer",
					slog.String("error", err.Error()))
				return
			}
			if err != nil {
				slog.Error("[GenerationConsumer] Failed to handle request, retrying from its offset",
					slog.String("key", string(msg.Key)),
					slog.String("offset", msg.TopicPartition.Offset.String()),
					slog.Duration("delay", kafka_client.RETRY_DELAY),
					slog.String("error", err.Error()))
				select {
				case <-ctx.Done():
				case <-time.After(kafka_client.RETRY_DELAY):
				}
			}
		}
	}
}

var errRewindFailed = errors.New("[GenerationConsumer] failed to rewind consumer")

type offsetCommitter interface {
	Commit(msg *kafka.Message) error
}

type offsetSeeker interface {
	Seek(partition kafka.TopicPartition, timeoutMs int) error
}

// processMessage commits msg once it is handled. On failure the partition is rewound to msg so the next read
// returns it again and no later commit can skip past it.
func processMessage(ctx context.Context, h *GenerationHandler, msg *kafka.Message, committer offsetCommitter, seeker offsetSeeker) error {
	if err := h.Handle(ctx, msg.Value); err != nil {
		if seekErr := seeker.Seek(msg.TopicPartition, SEEK_TIMEOUT_MS); seekErr != nil {
			return fmt.Errorf("%w to offset %s: %w", errRewindFailed, msg.TopicPartition.Offset, errors.Join(err, seekErr))
		}
		return err
	}

	if err := committer.Commit(msg); err != nil {
		slog.Warn("[GenerationConsumer] Failed to commit offset",
			slog.String("error", err.Error()))
	}
	return nil
}

func allHealthy(flags []*atomic.Bool) bool {
	for _, f := range flags {
		if f != nil && !f.Load() {
			return false
		}
	}
	return true
}
