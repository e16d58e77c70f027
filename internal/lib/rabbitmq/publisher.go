package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

// ErrNotConfirmed брокер ответил nack на публикацию.
var ErrNotConfirmed = errors.New("message was not confirmed by broker")

// PublishMessage публикует сообщение в RabbitMQ как persistent JSON.
func PublishMessage(ch *amqp.Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now().UTC(),
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Publisher публикует сообщения в один канал в режиме подтверждений.
// Публикации сериализуются мьютексом. Подтверждения читает отдельная
// горутина и передаёт их ожидающему Publish по delivery tag, поэтому
// подтверждения прерванных публикаций не задерживают чтение канала.
type Publisher struct {
	mu       sync.Mutex
	ch       *amqp.Channel
	exchange string
	// seq номер последней публикации в канале (delivery tag).
	seq uint64

	waitMu  sync.Mutex
	waiters map[uint64]chan amqp.Confirmation
	closed  bool
}

// NewPublisher переводит канал в режим подтверждений.
func NewPublisher(ch *amqp.Channel, exchange string) (*Publisher, error) {
	const op = "rabbitmq.NewPublisher"
	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p := newPublisher(ch, exchange)
	go p.dispatch(ch.NotifyPublish(make(chan amqp.Confirmation, confirmBuffer)))
	return p, nil
}

const confirmBuffer = 64

func newPublisher(ch *amqp.Channel, exchange string) *Publisher {
	return &Publisher{
		ch:       ch,
		exchange: exchange,
		waiters:  make(map[uint64]chan amqp.Confirmation),
	}
}

// dispatch читает подтверждения до закрытия канала. Подтверждения,
// которых никто не ждёт, отбрасываются.
func (p *Publisher) dispatch(confirms <-chan amqp.Confirmation) {
	for confirm := range confirms {
		p.waitMu.Lock()
		w, ok := p.waiters[confirm.DeliveryTag]
		delete(p.waiters, confirm.DeliveryTag)
		p.waitMu.Unlock()
		if ok {
			w <- confirm
		}
	}

	p.waitMu.Lock()
	defer p.waitMu.Unlock()
	p.closed = true
	for tag, w := range p.waiters {
		close(w)
		delete(p.waiters, tag)
	}
}

// wait регистрирует ожидание подтверждения для delivery tag.
func (p *Publisher) wait(tag uint64) (<-chan amqp.Confirmation, bool) {
	p.waitMu.Lock()
	defer p.waitMu.Unlock()
	if p.closed {
		return nil, false
	}
	w := make(chan amqp.Confirmation, 1)
	p.waiters[tag] = w
	return w, true
}

func (p *Publisher) forget(tag uint64) {
	p.waitMu.Lock()
	delete(p.waiters, tag)
	p.waitMu.Unlock()
}

// Publish публикует сообщение и ждёт подтверждения брокера или отмены ctx.
func (p *Publisher) Publish(ctx context.Context, routingKey string, message any) error {
	const op = "rabbitmq.Publish"
	p.mu.Lock()
	tag := p.seq + 1
	confirm, ok := p.wait(tag)
	if !ok {
		p.mu.Unlock()
		return fmt.Errorf("%s: channel closed", op)
	}
	if err := PublishMessage(p.ch, p.exchange, routingKey, message); err != nil {
		p.forget(tag)
		p.mu.Unlock()
		return fmt.Errorf("%s: %w", op, err)
	}
	p.seq = tag
	p.mu.Unlock()

	select {
	case c, ok := <-confirm:
		if !ok {
			return fmt.Errorf("%s: channel closed", op)
		}
		if !c.Ack {
			return fmt.Errorf("%s: %w", op, ErrNotConfirmed)
		}
		return nil
	case <-ctx.Done():
		p.forget(tag)
		return fmt.Errorf("%s: %w", op, ctx.Err())
	}
}
