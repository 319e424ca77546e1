package usecases_port

import (
	"context"

	"github.com/horse37/corretores-sub000/internal/core/domain"
)

type SyncPropertyPort interface {
	// Sync reconciles one already-loaded property and never returns an
	// error: failures are folded into the outcome.
	Sync(ctx context.Context, local domain.LocalProperty) domain.SyncOutcome

	// SyncByID fetches the property first; the returned error covers only
	// the fetch (domain.ErrPropertyNotFound, repository unreachable).
	SyncByID(ctx context.Context, id int64) (domain.SyncOutcome, error)
}
