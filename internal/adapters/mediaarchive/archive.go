package mediaarchive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/horse37/corretores-sub000/internal/contextkeys"
	"github.com/horse37/corretores-sub000/internal/core/domain"
	"github.com/horse37/corretores-sub000/internal/core/port"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DiskArchive stores backed-up assets on the local filesystem and records
// each stored entry in the media_backups table. The hash key makes Store
// idempotent: re-running a backup job neither duplicates files nor rows.
type DiskArchive struct {
	root string
	pool *pgxpool.Pool
}

func NewDiskArchive(root string, pool *pgxpool.Pool) *DiskArchive {
	return &DiskArchive{root: root, pool: pool}
}

func (a *DiskArchive) Store(ctx context.Context, entry domain.MediaBackupEntry) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "MediaArchive",
		"property_id": entry.PropertyID,
		"sha256":      entry.SHA256,
	})

	dir := filepath.Join(a.root, strconv.FormatInt(entry.PropertyID, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	// Hash-prefixed name: two versions of the same source file coexist.
	fileName := entry.SHA256[:12] + "_" + entry.Filename
	fullPath := filepath.Join(dir, fileName)

	if _, err := os.Stat(fullPath); err == nil {
		logger.Debug("Asset already archived, skipping write", port.Fields{"path": fullPath})
	} else {
		if err := os.WriteFile(fullPath, entry.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write archived asset: %w", err)
		}
		logger.Info("Archived asset to disk", port.Fields{"path": fullPath, "size": entry.Size})
	}

	if a.pool == nil {
		return nil
	}

	_, err := a.pool.Exec(ctx,
		`INSERT INTO media_backups (property_id, ref, filename, sha256, size_bytes, stored_path, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())
		 ON CONFLICT (property_id, sha256) DO NOTHING`,
		entry.PropertyID, entry.Ref, entry.Filename, entry.SHA256, entry.Size, fullPath,
	)
	if err != nil {
		return fmt.Errorf("failed to record archived asset: %w", err)
	}
	return nil
}
