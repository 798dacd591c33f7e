package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/lms-platform/internal/lib/sl"
)

// ErrPermanent помечает ошибку обработчика, которую повторная доставка не
// исправит: такое сообщение снимается с очереди без возврата.
var ErrPermanent = errors.New("permanent message error")

// ConsumerMessage запускает потребителя очереди. Обработчики выполняются
// параллельно, не более PrefetchCount одновременно. Ошибка обработчика
// возвращает сообщение в очередь, кроме ошибок ErrPermanent.
func ConsumerMessage(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string, handler func([]byte) error) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))
	sem := make(chan struct{}, PrefetchCount)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					log.Info("delivery channel closed")
					return
				}
				sem <- struct{}{}
				go func(delivery amqp.Delivery) {
					defer func() { <-sem }()
					handleDelivery(log, delivery, handler)
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// handleDelivery подтверждает сообщение после успешной обработки,
// при ошибке возвращает его в очередь либо отбрасывает, если ошибка постоянная.
func handleDelivery(log *slog.Logger, d amqp.Delivery, handler func([]byte) error) {
	err := handler(d.Body)
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error("failed to ack message", sl.Err(ackErr))
		}
		return
	}

	requeue := !errors.Is(err, ErrPermanent)
	if requeue {
		log.Error("handler failed, requeue", sl.Err(err))
	} else {
		log.Error("handler failed permanently, drop message", sl.Err(err))
	}
	if nackErr := d.Nack(false, requeue); nackErr != nil {
		log.Error("failed to nack message", sl.Err(nackErr))
	}
}
