package port

import (
	"context"

	"github.com/horse37/corretores-sub000/internal/core/domain"
)

// AssetResolverPort turns a stored media reference into a fetchable byte
// source. Resolve never fails loudly: an empty or unreachable reference
// yields nil and a logged reason, and the caller skips the asset.
type AssetResolverPort interface {
	Resolve(ctx context.Context, reference string) *domain.AssetSource
}
