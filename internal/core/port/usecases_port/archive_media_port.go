package usecases_port

import (
	"context"

	"github.com/horse37/corretores-sub000/internal/core/domain"
)

type ArchiveMediaPort interface {
	Archive(ctx context.Context, job domain.MediaBackupJob) error
}
