package usecase

import (
	"context"
	"time"

	"github.com/horse37/corretores-sub000/internal/contextkeys"
	"github.com/horse37/corretores-sub000/internal/core/domain"
	"github.com/horse37/corretores-sub000/internal/core/port"

	"github.com/google/uuid"
)

// SyncPropertyUseCase reconciles one local property into the content store.
// Create versus update is decided by looking the property up by its
// id_integracao, never by remembered state, so the operation is idempotent.
type SyncPropertyUseCase struct {
	repository port.PropertyRepositoryPort
	store      port.ContentStorePort
	uploader   port.MediaUploaderPort
	backup     port.BackupSchedulerPort // nil when the side channel is disabled
}

func NewSyncPropertyUseCase(
	repository port.PropertyRepositoryPort,
	store port.ContentStorePort,
	uploader port.MediaUploaderPort,
	backup port.BackupSchedulerPort,
) *SyncPropertyUseCase {
	return &SyncPropertyUseCase{
		repository: repository,
		store:      store,
		uploader:   uploader,
		backup:     backup,
	}
}

// Sync never returns an error: every failure is folded into the outcome so
// that bulk runs keep going.
func (uc *SyncPropertyUseCase) Sync(ctx context.Context, local domain.LocalProperty) domain.SyncOutcome {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "SyncProperty",
		"property_id": local.ID,
	})

	// Media first: the payload needs the remote file ids. Failed assets are
	// absorbed inside the uploader, they never fail the property.
	imageIDs := uc.uploader.UploadAll(ctx, local.Fotos)
	videoIDs := uc.uploader.UploadAll(ctx, local.Videos)

	payload := domain.ToRemotePayload(local, imageIDs, videoIDs)

	existing, err := uc.store.FindByIntegrationID(ctx, local.ID)
	if err != nil {
		logger.Error("Failed to look up remote record", err, nil)
		return domain.SyncOutcome{
			PropertyID: local.ID,
			Action:     domain.ActionFailed,
			Error:      err.Error(),
		}
	}

	var (
		written *domain.RemoteProperty
		action  domain.SyncAction
	)
	if existing == nil {
		action = domain.ActionCreated
		written, err = uc.store.CreateProperty(ctx, payload)
	} else {
		action = domain.ActionUpdated
		written, err = uc.store.UpdateProperty(ctx, existing.ID, payload)
	}
	if err != nil {
		logger.Error("Failed to write property to content store", err, port.Fields{"action": string(action)})
		return domain.SyncOutcome{
			PropertyID: local.ID,
			Action:     domain.ActionFailed,
			Error:      err.Error(),
		}
	}

	uc.scheduleBackup(ctx, local, logger)

	logger.Info("Property synchronized", port.Fields{
		"action":    string(action),
		"remote_id": written.ID,
	})
	return domain.SyncOutcome{
		PropertyID: local.ID,
		Action:     action,
		RemoteID:   written.ID,
	}
}

// scheduleBackup is fire-and-forget: an enqueue failure is logged and the
// sync outcome stays successful.
func (uc *SyncPropertyUseCase) scheduleBackup(ctx context.Context, local domain.LocalProperty, logger port.LoggerPort) {
	if uc.backup == nil {
		return
	}

	refs := make([]string, 0, len(local.Fotos)+len(local.Videos))
	refs = append(refs, local.Fotos...)
	refs = append(refs, local.Videos...)
	if len(refs) == 0 {
		return
	}

	job := domain.MediaBackupJob{
		JobID:       uuid.New(),
		PropertyID:  local.ID,
		Refs:        refs,
		RequestedAt: time.Now().UTC(),
	}
	if err := uc.backup.EnqueueBackup(ctx, job); err != nil {
		logger.Warn("Failed to enqueue media backup job", port.Fields{
			"job_id": job.JobID.String(),
			"error":  err.Error(),
		})
	}
}

func (uc *SyncPropertyUseCase) SyncByID(ctx context.Context, id int64) (domain.SyncOutcome, error) {
	local, err := uc.repository.GetByID(ctx, id)
	if err != nil {
		return domain.SyncOutcome{}, err
	}
	return uc.Sync(ctx, *local), nil
}
