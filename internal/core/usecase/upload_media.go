package usecase

import (
	"context"

	"github.com/horse37/corretores-sub000/internal/contextkeys"
	"github.com/horse37/corretores-sub000/internal/core/port"
)

// UploadMediaUseCase uploads the media references of one property to the
// content store. Processing is sequential and per-entry best-effort: an
// entry that cannot be resolved or uploaded is dropped from the result and
// the rest of the batch continues.
type UploadMediaUseCase struct {
	resolver port.AssetResolverPort
	store    port.ContentStorePort
}

func NewUploadMediaUseCase(resolver port.AssetResolverPort, store port.ContentStorePort) *UploadMediaUseCase {
	return &UploadMediaUseCase{
		resolver: resolver,
		store:    store,
	}
}

// UploadAll returns the remote file ids in input order. Re-runs are cheap:
// a file whose name already exists in the content store is reused, not
// uploaded again.
func (uc *UploadMediaUseCase) UploadAll(ctx context.Context, references []string) []int64 {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "UploadMedia",
	})

	ids := make([]int64, 0, len(references))
	for _, ref := range references {
		src := uc.resolver.Resolve(ctx, ref)
		if src == nil {
			continue
		}

		if existingID := uc.store.FindFileByName(ctx, src.Filename); existingID != nil {
			src.Body.Close()
			logger.Debug("Reusing already-uploaded file", port.Fields{
				"reference": ref,
				"file_id":   *existingID,
			})
			ids = append(ids, *existingID)
			continue
		}

		uploadedID := uc.store.UploadFile(ctx, src)
		if uploadedID == nil {
			// Already logged by the client; the property syncs without
			// this asset.
			continue
		}
		ids = append(ids, *uploadedID)
	}

	logger.Info("Media batch processed", port.Fields{
		"requested": len(references),
		"uploaded":  len(ids),
	})
	return ids
}
