package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/horse37/corretores-sub000/internal/contextkeys"
	"github.com/horse37/corretores-sub000/internal/contracts"
	"github.com/horse37/corretores-sub000/internal/core/domain"
	"github.com/horse37/corretores-sub000/internal/core/port"
	"github.com/horse37/corretores-sub000/pkg/rabbitmq/rabbitmq_producer"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	backupEventType    = "MediaBackupJob"
	backupEventVersion = "1.0.0"

	publishTimeout = 10 * time.Second
)

// BackupQueueAdapter publishes media backup jobs on the side channel.
// Callers treat it as fire-and-forget; the returned error is only logged.
type BackupQueueAdapter struct {
	producer   *rabbitmq_producer.Publisher
	routingKey string
}

func NewBackupQueueAdapter(producer *rabbitmq_producer.Publisher, routingKey string) (*BackupQueueAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("routingKey cannot be empty")
	}
	return &BackupQueueAdapter{
		producer:   producer,
		routingKey: routingKey,
	}, nil
}

func (a *BackupQueueAdapter) EnqueueBackup(ctx context.Context, job domain.MediaBackupJob) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "BackupQueueAdapter",
		"property_id": job.PropertyID,
		"job_id":      job.JobID.String(),
	})

	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal backup job for property %d: %w", job.PropertyID, err)
	}

	// Catch malformed jobs on the producing side, before they ever hit the
	// broker.
	if err := contracts.ValidatePayload(backupEventType, backupEventVersion, body); err != nil {
		return fmt.Errorf("backup job violates contract: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers: amqp.Table{
			"event-type":    backupEventType,
			"event-version": backupEventVersion,
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	logger.Debug("Publishing media backup job", port.Fields{"routing_key": a.routingKey, "refs_count": len(job.Refs)})
	return a.producer.Publish(publishCtx, a.routingKey, msg)
}
