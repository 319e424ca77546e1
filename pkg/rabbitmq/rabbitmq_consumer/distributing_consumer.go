package rabbitmq_consumer

import (
	"context"
	"fmt"
	"time"

	"github.com/horse37/corretores-sub000/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler processes one delivery. The package decides ack/nack/retry
// based on the returned error.
type MessageHandler func(delivery amqp.Delivery) error

// DistributingConsumer runs one handler goroutine per delivery.
type DistributingConsumer struct {
	baseConsumer *baseConsumer
	handler      MessageHandler
}

func NewDistributingConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*DistributingConsumer, error) {
	bc, err := newBaseConsumer(cfg, connManager)
	if err != nil {
		return nil, fmt.Errorf("distributing Consumer: %w", err)
	}

	if handler == nil {
		return nil, fmt.Errorf("distributing Consumer: message handler is required")
	}

	return &DistributingConsumer{
		baseConsumer: bc,
		handler:      handler,
	}, nil
}

// StartConsuming registers the consumer and dispatches deliveries until the
// context is cancelled or the broker closes the channel.
func (c *DistributingConsumer) StartConsuming(ctx context.Context) error {
	if c.baseConsumer.channel == nil || c.baseConsumer.connection == nil || c.baseConsumer.connection.IsClosed() {
		return fmt.Errorf("distributing Consumer: not connected. Please create a new consumer or ensure connection is stable")
	}

	msgs, err := c.baseConsumer.channel.Consume(
		c.baseConsumer.actualQueueName,
		c.baseConsumer.config.ConsumerTag,
		false, // auto-ack
		c.baseConsumer.config.ExclusiveConsumer,
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("distributing Consumer %s: failed to register a consumer on queue '%s': %w", c.baseConsumer.config.ConsumerTag, c.baseConsumer.actualQueueName, err)
	}

	c.baseConsumer.Logger.Info("[*] Waiting for messages on queue", "queue_name", c.baseConsumer.actualQueueName)

	for {
		// Priority, non-blocking cancellation check: never start a new
		// worker once shutdown was requested.
		select {
		case <-ctx.Done():
			c.baseConsumer.Logger.Info("Context cancelled for consumer. Exiting consumption loop.",
				"consumer_tag", c.baseConsumer.config.ConsumerTag)
			return nil
		default:
		}

		select {
		case <-ctx.Done():
			c.baseConsumer.Logger.Info("Context cancelled for consumer. Exiting consumption loop.",
				"consumer_tag", c.baseConsumer.config.ConsumerTag)
			return nil

		case d, ok := <-msgs:
			if !ok {
				c.baseConsumer.Logger.Info("Deliveries channel closed by RabbitMQ for consumer. Exiting loop.",
					"consumer_tag", c.baseConsumer.config.ConsumerTag)
				return nil
			}

			c.baseConsumer.wg.Add(1)
			go func(delivery amqp.Delivery) {
				defer c.baseConsumer.wg.Done()
				c.handleDelivery(delivery)
			}(d)
		}
	}
}

func (c *DistributingConsumer) handleDelivery(delivery amqp.Delivery) {
	c.baseConsumer.Logger.Info("[->] Started processing message",
		"consumer_tag", c.baseConsumer.config.ConsumerTag,
		"delivery_tag", delivery.DeliveryTag)

	processErr := c.handler(delivery)
	if processErr == nil {
		_ = delivery.Ack(false)
		c.baseConsumer.Logger.Info("[+] Message Ack'd",
			"consumer_tag", c.baseConsumer.config.ConsumerTag,
			"delivery_tag", delivery.DeliveryTag)
		return
	}

	c.baseConsumer.Logger.Error(processErr, "Handler error for message",
		"consumer_tag", c.baseConsumer.config.ConsumerTag,
		"delivery_tag", delivery.DeliveryTag)

	if !c.baseConsumer.config.EnableRetryMechanism {
		c.baseConsumer.Logger.Info("Retry disabled. Nacking message without requeue.",
			"consumer_tag", c.baseConsumer.config.ConsumerTag)
		_ = delivery.Nack(false, false)
		return
	}

	deathCount := c.baseConsumer.getDeathCount(delivery, c.baseConsumer.actualQueueName)

	if deathCount < int64(c.baseConsumer.config.MaxRetries) {
		// Nack without requeue dead-letters the message into the retry loop.
		c.baseConsumer.Logger.Info("Retrying message",
			"consumer_tag", c.baseConsumer.config.ConsumerTag,
			"delivery_tag", delivery.DeliveryTag,
			"death_count", deathCount)
		_ = delivery.Nack(false, false)
		return
	}

	c.baseConsumer.Logger.Info("Max retries reached for message. Publishing to final DLX.",
		"consumer_tag", c.baseConsumer.config.ConsumerTag,
		"delivery_tag", delivery.DeliveryTag)

	err := c.baseConsumer.finalDlxPublisher.Publish(
		context.Background(),
		c.baseConsumer.config.FinalDLQRoutingKey,
		amqp.Publishing{
			ContentType:  delivery.ContentType,
			Body:         delivery.Body,
			Headers:      delivery.Headers,
			Timestamp:    time.Now(),
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		c.baseConsumer.Logger.Error(err, "Failed to publish to final DLX. Nacking to trigger retry loop again.",
			"consumer_tag", c.baseConsumer.config.ConsumerTag,
			"delivery_tag", delivery.DeliveryTag)
		_ = delivery.Nack(false, false)
		return
	}

	c.baseConsumer.Logger.Info("Successfully published to final DLX. Acking original message",
		"consumer_tag", c.baseConsumer.config.ConsumerTag,
		"delivery_tag", delivery.DeliveryTag)
	_ = delivery.Ack(false)
}

// Close stops the consumer and releases its channel.
func (c *DistributingConsumer) Close() error {
	return c.baseConsumer.Close()
}
