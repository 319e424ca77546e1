package usecases_port

import (
	"context"

	"github.com/horse37/corretores-sub000/internal/core/domain"
)

type SyncAllPort interface {
	SyncAll(ctx context.Context, opts domain.BulkSyncOptions) (*domain.SyncReport, error)
}
