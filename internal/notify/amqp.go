package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Broker publishes and consumes payment notifications over RabbitMQ.
type Broker struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
	log          *logrus.Logger
}

func NewBroker(url, exchangeName, queueName string, log *logrus.Logger) (*Broker, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	b := &Broker{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
		log:          log,
	}

	if err := b.setup(); err != nil {
		b.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return b, nil
}

func (b *Broker) setup() error {
	// durable direct exchange, routing key = queue name
	if err := b.channel.ExchangeDeclare(b.exchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := b.channel.QueueDeclare(b.queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := b.channel.QueueBind(b.queueName, b.queueName, b.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// PaymentSucceeded publishes msg as a persistent JSON message.
func (b *Broker) PaymentSucceeded(ctx context.Context, msg PaymentSucceeded) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = b.channel.PublishWithContext(ctx, b.exchangeName, b.queueName, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("publish payment %s: %w", msg.OrderID, err)
	}
	return nil
}

// Consume delivers queued notifications to handle until ctx is cancelled.
// Messages that fail to decode are dropped; handler failures are requeued once.
func (b *Broker) Consume(ctx context.Context, handle func(context.Context, PaymentSucceeded) error) error {
	if err := b.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := b.channel.Consume(b.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			b.handle(ctx, d, handle)
		}
	}
}

func (b *Broker) handle(ctx context.Context, d amqp091.Delivery, handle func(context.Context, PaymentSucceeded) error) {
	msg, err := PaymentSucceededFromJSON(d.Body)
	if err != nil {
		b.log.WithError(err).Warn("dropping malformed payment notification")
		_ = d.Nack(false, false)
		return
	}

	if err := handle(ctx, *msg); err != nil {
		b.log.WithError(err).WithField("order_id", msg.OrderID).Error("payment notification failed")
		_ = d.Nack(false, !d.Redelivered)
		return
	}
	_ = d.Ack(false)
}

func (b *Broker) Close() error {
	if b.channel != nil {
		b.channel.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}
