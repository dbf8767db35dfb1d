package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	redisv9 "github.com/redis/go-redis/v9"

	"promptgate/internal/model"
)

// UsageWorker consumes turn events and folds them into per-user and per-model
// counters in Redis. Counters are eventually consistent with the chat store; a
// crashed worker picks up from the unacked queue on restart.
type UsageWorker struct {
	conn      *amqp.Connection
	redis     *redisv9.Client
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewUsageWorker(conn *amqp.Connection, redis *redisv9.Client, queueName string) *UsageWorker {
	return &UsageWorker{
		conn:      conn,
		redis:     redis,
		queueName: queueName,
	}
}

func (w *UsageWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var event model.TurnEvent
				if err := json.Unmarshal(d.Body, &event); err != nil {
					log.Printf("worker decode turn event failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.record(workerCtx, event); err != nil {
					log.Printf("worker record usage failed: %v", err)
					_ = d.Nack(false, true)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *UsageWorker) record(ctx context.Context, event model.TurnEvent) error {
	pipe := w.redis.Pipeline()
	userKey := fmt.Sprintf("usage:user:%d", event.UserID)
	pipe.HIncrBy(ctx, userKey, "turns", 1)
	pipe.HIncrBy(ctx, userKey, "question_chars", int64(event.QuestionLen))
	pipe.HIncrBy(ctx, userKey, "answer_chars", int64(event.AnswerLen))
	pipe.HIncrBy(ctx, fmt.Sprintf("usage:model:%d", event.ModelID), "turns", 1)
	_, err := pipe.Exec(ctx)
	return err
}

func (w *UsageWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
