package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/online-learning/internal/lib/sl"
)

// Handler обрабатывает тело сообщения. Ошибка приводит к отбрасыванию сообщения.
type Handler func(ctx context.Context, body []byte) error

// ConsumerMessage запускает потребителя очереди. Одновременно обрабатывается
// не более Prefetch сообщений. Успешно обработанные сообщения подтверждаются,
// сообщения с ошибкой отклоняются без возврата в очередь.
// Возвращённый WaitGroup завершается, когда все начатые обработчики закончили работу.
func ConsumerMessage(ctx context.Context, ch *amqp.Channel, queueName string, log *slog.Logger, handler Handler) (*sync.WaitGroup, error) {
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
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))
	wg := &sync.WaitGroup{}
	sem := make(chan struct{}, Prefetch)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					log.Info("delivery channel closed")
					return
				}
				sem <- struct{}{}
				wg.Add(1)
				go func(d amqp.Delivery) {
					defer func() {
						<-sem
						wg.Done()
					}()
					handle(ctx, log, d, handler)
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return wg, nil
}

func handle(ctx context.Context, log *slog.Logger, d amqp.Delivery, handler Handler) {
	log = log.With(slog.String("message_id", d.MessageId))
	if err := handler(ctx, d.Body); err != nil {
		log.Error("failed to handle message, dropping", sl.Err(err))
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
		return
	}
	if ackErr := d.Ack(false); ackErr != nil {
		log.Error("failed to ack message", sl.Err(ackErr))
	}
}
