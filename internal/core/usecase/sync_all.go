package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/horse37/corretores-sub000/internal/contextkeys"
	"github.com/horse37/corretores-sub000/internal/core/domain"
	"github.com/horse37/corretores-sub000/internal/core/port"
	"github.com/horse37/corretores-sub000/internal/core/port/usecases_port"
)

// SyncAllUseCase drains the property repository page by page and syncs every
// item sequentially. One failing property never stops the run; its error is
// recorded and the loop moves on after the configured delay.
type SyncAllUseCase struct {
	repository      port.PropertyRepositoryPort
	syncer          usecases_port.SyncPropertyPort
	defaultPageSize int
}

func NewSyncAllUseCase(repository port.PropertyRepositoryPort, syncer usecases_port.SyncPropertyPort, defaultPageSize int) *SyncAllUseCase {
	return &SyncAllUseCase{
		repository:      repository,
		syncer:          syncer,
		defaultPageSize: defaultPageSize,
	}
}

func (uc *SyncAllUseCase) SyncAll(ctx context.Context, opts domain.BulkSyncOptions) (*domain.SyncReport, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "SyncAll",
	})

	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = uc.defaultPageSize
	}

	report := &domain.SyncReport{Errors: []string{}}
	index := 0

	for page := 1; ; page++ {
		propertyPage, err := uc.repository.ListAll(ctx, page, pageSize)
		if err != nil {
			logger.Error("Failed to fetch properties page", err, port.Fields{"page": page})
			return report, fmt.Errorf("failed to fetch properties page %d: %w", page, err)
		}
		if len(propertyPage.Items) == 0 {
			break
		}

		for _, item := range propertyPage.Items {
			// Honor cancellation between items, never mid-item.
			if err := ctx.Err(); err != nil {
				logger.Warn("Bulk sync cancelled", port.Fields{"processed": report.Total})
				return report, err
			}

			if opts.Progress != nil {
				opts.Progress(index, propertyPage.TotalItems, fmt.Sprintf("%d (%s)", item.ID, item.Titulo))
			}
			index++

			outcome := uc.syncer.Sync(ctx, item)
			report.Total++
			if outcome.Action == domain.ActionFailed {
				report.ErrorCount++
				report.Errors = append(report.Errors, fmt.Sprintf("%d (%s): %s", item.ID, item.Titulo, outcome.Error))
			} else {
				report.SuccessCount++
			}

			if opts.Delay > 0 && !uc.isLastItem(propertyPage, page, item) {
				if err := sleepCtx(ctx, opts.Delay); err != nil {
					logger.Warn("Bulk sync cancelled during inter-item delay", port.Fields{"processed": report.Total})
					return report, err
				}
			}
		}

		if propertyPage.TotalPages > 0 && page >= propertyPage.TotalPages {
			break
		}
	}

	logger.Info("Bulk sync finished", port.Fields{
		"total":   report.Total,
		"success": report.SuccessCount,
		"errors":  report.ErrorCount,
	})
	return report, nil
}

// isLastItem reports whether item is the final one of the final page, in
// which case the trailing delay is skipped.
func (uc *SyncAllUseCase) isLastItem(page *domain.PropertyPage, pageNum int, item domain.LocalProperty) bool {
	if page.TotalPages > 0 && pageNum < page.TotalPages {
		return false
	}
	return len(page.Items) > 0 && page.Items[len(page.Items)-1].ID == item.ID
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
