package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/horse37/corretores-sub000/internal/contextkeys"
	"github.com/horse37/corretores-sub000/internal/contracts"
	"github.com/horse37/corretores-sub000/internal/core/domain"
	"github.com/horse37/corretores-sub000/internal/core/port"
	"github.com/horse37/corretores-sub000/internal/core/port/usecases_port"
	"github.com/horse37/corretores-sub000/pkg/rabbitmq/rabbitmq_common"
	"github.com/horse37/corretores-sub000/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// BackupConsumerAdapter listens on the media backup queue and drives the
// archive use case. A handler error nacks the message into the retry loop.
type BackupConsumerAdapter struct {
	consumer   rabbitmq_consumer.Consumer
	useCase    usecases_port.ArchiveMediaPort
	baseLogger port.LoggerPort
}

func NewBackupConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	connManager *rabbitmq_common.ConnectionManager,
	useCase usecases_port.ArchiveMediaPort,
	baseLogger port.LoggerPort,
) (*BackupConsumerAdapter, error) {
	adapter := &BackupConsumerAdapter{
		useCase:    useCase,
		baseLogger: baseLogger,
	}

	consumer, err := rabbitmq_consumer.NewDistributingConsumer(consumerCfg, adapter.handleMessage, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for media backups: %w", err)
	}
	adapter.consumer = consumer

	return adapter, nil
}

func (a *BackupConsumerAdapter) handleMessage(d amqp.Delivery) error {
	// Each job runs with its own trace id so the archive path is followable
	// in the logs independently of the sync that enqueued it.
	traceID := uuid.New().String()
	logger := a.baseLogger.WithFields(port.Fields{
		"component": "BackupConsumerAdapter",
		"trace_id":  traceID,
	})

	ctx := contextkeys.ContextWithTraceID(context.Background(), traceID)
	ctx = contextkeys.ContextWithLogger(ctx, logger)

	eventType, _ := d.Headers["event-type"].(string)
	eventVersion, _ := d.Headers["event-version"].(string)
	if err := contracts.ValidatePayload(eventType, eventVersion, d.Body); err != nil {
		logger.Error("Backup job failed schema validation, rejecting", err, nil)
		return err
	}

	var job domain.MediaBackupJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		logger.Error("Failed to unmarshal backup job", err, nil)
		return fmt.Errorf("failed to unmarshal backup job: %w", err)
	}

	logger.Info("Processing media backup job", port.Fields{
		"job_id":      job.JobID.String(),
		"property_id": job.PropertyID,
		"refs_count":  len(job.Refs),
	})

	return a.useCase.Archive(ctx, job)
}

// Start implements EventListenerPort; it blocks until the context is
// cancelled or the broker closes the channel.
func (a *BackupConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

func (a *BackupConsumerAdapter) Close() error {
	return a.consumer.Close()
}
