package port

import (
	"context"

	"github.com/horse37/corretores-sub000/internal/core/domain"
)

// BackupSchedulerPort hands a backup job to the side-channel queue.
// Callers treat failures as log-and-forget; an enqueue error must never fail
// a property sync.
type BackupSchedulerPort interface {
	EnqueueBackup(ctx context.Context, job domain.MediaBackupJob) error
}

// MediaArchivePort persists one archived asset (original bytes plus hash)
// into the secondary store.
type MediaArchivePort interface {
	Store(ctx context.Context, entry domain.MediaBackupEntry) error
}
