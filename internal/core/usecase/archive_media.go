package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/horse37/corretores-sub000/internal/contextkeys"
	"github.com/horse37/corretores-sub000/internal/core/domain"
	"github.com/horse37/corretores-sub000/internal/core/port"
)

// ArchiveMediaUseCase materializes one backup job: every referenced asset is
// fetched, hashed and handed to the archive. Unresolvable references are
// skipped for good; archive failures make the whole job fail so the queue
// retries it (Store is idempotent, already-archived assets are no-ops).
type ArchiveMediaUseCase struct {
	resolver port.AssetResolverPort
	archive  port.MediaArchivePort
}

func NewArchiveMediaUseCase(resolver port.AssetResolverPort, archive port.MediaArchivePort) *ArchiveMediaUseCase {
	return &ArchiveMediaUseCase{
		resolver: resolver,
		archive:  archive,
	}
}

func (uc *ArchiveMediaUseCase) Archive(ctx context.Context, job domain.MediaBackupJob) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "ArchiveMedia",
		"job_id":      job.JobID.String(),
		"property_id": job.PropertyID,
	})

	var failed int
	var lastErr error

	for _, ref := range job.Refs {
		src := uc.resolver.Resolve(ctx, ref)
		if src == nil {
			// A reference that cannot be resolved now will not resolve on a
			// retry either.
			continue
		}

		data, err := io.ReadAll(src.Body)
		src.Body.Close()
		if err != nil {
			logger.Warn("Failed to read asset bytes", port.Fields{"reference": ref, "error": err.Error()})
			failed++
			lastErr = err
			continue
		}

		hash := sha256.Sum256(data)
		entry := domain.MediaBackupEntry{
			PropertyID: job.PropertyID,
			Ref:        ref,
			Filename:   src.Filename,
			SHA256:     hex.EncodeToString(hash[:]),
			Size:       int64(len(data)),
			Data:       data,
		}

		if err := uc.archive.Store(ctx, entry); err != nil {
			logger.Error("Failed to archive asset", err, port.Fields{"reference": ref})
			failed++
			lastErr = err
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to archive %d of %d assets for property %d: %w",
			failed, len(job.Refs), job.PropertyID, lastErr)
	}

	logger.Info("Backup job completed", port.Fields{"refs_count": len(job.Refs)})
	return nil
}
