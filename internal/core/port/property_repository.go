package port

import (
	"context"

	"github.com/horse37/corretores-sub000/internal/core/domain"
)

// PropertyRepositoryPort exposes the local system of record. Both the
// Postgres adapter and the legacy HTTP API adapter implement it; the
// composition root picks one.
type PropertyRepositoryPort interface {
	// ListAll returns one page of properties. Page numbering starts at 1.
	ListAll(ctx context.Context, page, pageSize int) (*domain.PropertyPage, error)
	// GetByID returns domain.ErrPropertyNotFound when the id does not exist.
	GetByID(ctx context.Context, id int64) (*domain.LocalProperty, error)
}
