package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/horse37/corretores-sub000/internal/core/domain"
)

func pageOf(items []domain.LocalProperty, page, pageSize int) *domain.PropertyPage {
	start := (page - 1) * pageSize
	if start >= len(items) {
		return &domain.PropertyPage{Page: page, TotalPages: (len(items) + pageSize - 1) / pageSize, TotalItems: len(items)}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return &domain.PropertyPage{
		Items:      items[start:end],
		Page:       page,
		TotalPages: (len(items) + pageSize - 1) / pageSize,
		TotalItems: len(items),
	}
}

func properties(n int) []domain.LocalProperty {
	items := make([]domain.LocalProperty, n)
	for i := range items {
		items[i] = domain.LocalProperty{ID: int64(i + 1), Titulo: fmt.Sprintf("Imovel %d", i+1)}
	}
	return items
}

func TestSyncAllUseCase_SyncAll(t *testing.T) {
	t.Run("one failing item does not stop the run", func(t *testing.T) {
		items := properties(5)
		repo := &mockRepository{
			ListAllFunc: func(ctx context.Context, page, pageSize int) (*domain.PropertyPage, error) {
				return pageOf(items, page, pageSize), nil
			},
		}
		var attempted []int64
		syncer := &mockSyncer{
			SyncFunc: func(ctx context.Context, local domain.LocalProperty) domain.SyncOutcome {
				attempted = append(attempted, local.ID)
				if local.ID == 3 {
					return domain.SyncOutcome{PropertyID: local.ID, Action: domain.ActionFailed, Error: "content store create returned non-success status code 500: boom"}
				}
				return domain.SyncOutcome{PropertyID: local.ID, Action: domain.ActionCreated, RemoteID: local.ID + 100}
			},
		}

		uc := NewSyncAllUseCase(repo, syncer, 50)
		report, err := uc.SyncAll(context.Background(), domain.BulkSyncOptions{})

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Total != 5 || report.SuccessCount != 4 || report.ErrorCount != 1 {
			t.Errorf("report = %+v", report)
		}
		if len(attempted) != 5 {
			t.Errorf("attempted %v, every item must be tried", attempted)
		}
		if len(report.Errors) != 1 || !strings.HasPrefix(report.Errors[0], "3 (Imovel 3): ") {
			t.Errorf("Errors = %v", report.Errors)
		}
	})

	t.Run("drains multiple pages", func(t *testing.T) {
		items := properties(7)
		repo := &mockRepository{
			ListAllFunc: func(ctx context.Context, page, pageSize int) (*domain.PropertyPage, error) {
				return pageOf(items, page, pageSize), nil
			},
		}
		syncer := &mockSyncer{
			SyncFunc: func(ctx context.Context, local domain.LocalProperty) domain.SyncOutcome {
				return domain.SyncOutcome{PropertyID: local.ID, Action: domain.ActionUpdated}
			},
		}

		uc := NewSyncAllUseCase(repo, syncer, 3)
		report, err := uc.SyncAll(context.Background(), domain.BulkSyncOptions{PageSize: 3})

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Total != 7 || report.SuccessCount != 7 {
			t.Errorf("report = %+v", report)
		}
	})

	t.Run("page fetch failure aborts with the partial report", func(t *testing.T) {
		items := properties(4)
		repo := &mockRepository{
			ListAllFunc: func(ctx context.Context, page, pageSize int) (*domain.PropertyPage, error) {
				if page == 2 {
					return nil, errors.New("db gone")
				}
				return pageOf(items, page, pageSize), nil
			},
		}
		syncer := &mockSyncer{
			SyncFunc: func(ctx context.Context, local domain.LocalProperty) domain.SyncOutcome {
				return domain.SyncOutcome{PropertyID: local.ID, Action: domain.ActionCreated}
			},
		}

		uc := NewSyncAllUseCase(repo, syncer, 2)
		report, err := uc.SyncAll(context.Background(), domain.BulkSyncOptions{PageSize: 2})

		if err == nil {
			t.Fatal("expected error")
		}
		if report.Total != 2 {
			t.Errorf("partial report Total = %d, want 2", report.Total)
		}
	})

	t.Run("cancellation stops between items", func(t *testing.T) {
		items := properties(10)
		repo := &mockRepository{
			ListAllFunc: func(ctx context.Context, page, pageSize int) (*domain.PropertyPage, error) {
				return pageOf(items, page, pageSize), nil
			},
		}
		ctx, cancel := context.WithCancel(context.Background())
		syncer := &mockSyncer{
			SyncFunc: func(ctx context.Context, local domain.LocalProperty) domain.SyncOutcome {
				if local.ID == 3 {
					cancel()
				}
				return domain.SyncOutcome{PropertyID: local.ID, Action: domain.ActionCreated}
			},
		}

		uc := NewSyncAllUseCase(repo, syncer, 50)
		report, err := uc.SyncAll(ctx, domain.BulkSyncOptions{})

		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
		if report.Total != 3 {
			t.Errorf("Total = %d, want 3 (no new item after cancel)", report.Total)
		}
	})

	t.Run("progress callback sees every item", func(t *testing.T) {
		items := properties(3)
		repo := &mockRepository{
			ListAllFunc: func(ctx context.Context, page, pageSize int) (*domain.PropertyPage, error) {
				return pageOf(items, page, pageSize), nil
			},
		}
		syncer := &mockSyncer{
			SyncFunc: func(ctx context.Context, local domain.LocalProperty) domain.SyncOutcome {
				return domain.SyncOutcome{PropertyID: local.ID, Action: domain.ActionCreated}
			},
		}

		var labels []string
		opts := domain.BulkSyncOptions{
			Progress: func(index, total int, label string) {
				labels = append(labels, fmt.Sprintf("%d/%d %s", index, total, label))
			},
		}

		uc := NewSyncAllUseCase(repo, syncer, 50)
		if _, err := uc.SyncAll(context.Background(), opts); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(labels) != 3 {
			t.Fatalf("labels = %v", labels)
		}
		if labels[0] != "0/3 1 (Imovel 1)" {
			t.Errorf("labels[0] = %q", labels[0])
		}
	})

	t.Run("delay is applied between items but not after the last", func(t *testing.T) {
		items := properties(3)
		repo := &mockRepository{
			ListAllFunc: func(ctx context.Context, page, pageSize int) (*domain.PropertyPage, error) {
				return pageOf(items, page, pageSize), nil
			},
		}
		syncer := &mockSyncer{
			SyncFunc: func(ctx context.Context, local domain.LocalProperty) domain.SyncOutcome {
				return domain.SyncOutcome{PropertyID: local.ID, Action: domain.ActionCreated}
			},
		}

		uc := NewSyncAllUseCase(repo, syncer, 50)
		delay := 30 * time.Millisecond
		start := time.Now()
		if _, err := uc.SyncAll(context.Background(), domain.BulkSyncOptions{Delay: delay}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		elapsed := time.Since(start)

		// Two gaps for three items.
		if elapsed < 2*delay {
			t.Errorf("elapsed = %v, want at least %v", elapsed, 2*delay)
		}
		if elapsed > 3*delay+20*time.Millisecond {
			t.Errorf("elapsed = %v, trailing delay should be skipped", elapsed)
		}
	})
}
