package port

import (
	"context"

	"github.com/horse37/corretores-sub000/internal/core/domain"
)

// ContentStorePort wraps the remote CMS REST surface.
//
// Lookup operations are permissive where a false negative is cheaper than a
// blocked sync: FindFileByName and UploadFile never return errors, they
// degrade to nil and log. Write operations are strict: a non-2xx response
// surfaces as *domain.RemoteWriteError.
type ContentStorePort interface {
	// FindByIntegrationID returns nil (no error) when no record carries the
	// given id_integracao. Errors are transport failures only.
	FindByIntegrationID(ctx context.Context, integrationID int64) (*domain.RemoteProperty, error)

	// FindFileByName returns the id of an already-uploaded file with this
	// name, or nil when absent or on any error (logged as a warning).
	FindFileByName(ctx context.Context, name string) *int64

	// UploadFile uploads one asset and returns the new file id, or nil on
	// any failure (logged). Consumes and closes src.Body.
	UploadFile(ctx context.Context, src *domain.AssetSource) *int64

	CreateProperty(ctx context.Context, payload domain.RemoteProperty) (*domain.RemoteProperty, error)
	UpdateProperty(ctx context.Context, remoteID int64, payload domain.RemoteProperty) (*domain.RemoteProperty, error)
	DeleteProperty(ctx context.Context, remoteID int64) error
}
