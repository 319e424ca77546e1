package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/horse37/corretores-sub000/internal/core/domain"
)

func TestSyncPropertyUseCase_Sync(t *testing.T) {
	t.Run("creates when no remote record exists", func(t *testing.T) {
		var createdPayload domain.RemoteProperty
		store := &mockContentStore{
			FindByIntegrationIDFunc: func(ctx context.Context, id int64) (*domain.RemoteProperty, error) {
				return nil, nil
			},
			CreatePropertyFunc: func(ctx context.Context, payload domain.RemoteProperty) (*domain.RemoteProperty, error) {
				createdPayload = payload
				payload.ID = 900
				return &payload, nil
			},
			UpdatePropertyFunc: func(ctx context.Context, remoteID int64, payload domain.RemoteProperty) (*domain.RemoteProperty, error) {
				t.Fatal("update must not be called when the record is absent")
				return nil, nil
			},
		}

		uc := NewSyncPropertyUseCase(nil, store, &mockUploader{}, nil)
		outcome := uc.Sync(context.Background(), domain.LocalProperty{ID: 42, Titulo: "Casa"})

		if outcome.Action != domain.ActionCreated {
			t.Errorf("Action = %q, want created", outcome.Action)
		}
		if outcome.RemoteID != 900 {
			t.Errorf("RemoteID = %d, want 900", outcome.RemoteID)
		}
		if createdPayload.IDIntegracao != 42 {
			t.Errorf("payload IDIntegracao = %d, want 42", createdPayload.IDIntegracao)
		}
	})

	t.Run("updates when the integration id already exists", func(t *testing.T) {
		store := &mockContentStore{
			FindByIntegrationIDFunc: func(ctx context.Context, id int64) (*domain.RemoteProperty, error) {
				return &domain.RemoteProperty{ID: 77, IDIntegracao: id}, nil
			},
			CreatePropertyFunc: func(ctx context.Context, payload domain.RemoteProperty) (*domain.RemoteProperty, error) {
				t.Fatal("create must not be called when the record exists")
				return nil, nil
			},
			UpdatePropertyFunc: func(ctx context.Context, remoteID int64, payload domain.RemoteProperty) (*domain.RemoteProperty, error) {
				if remoteID != 77 {
					t.Errorf("remoteID = %d, want 77", remoteID)
				}
				payload.ID = remoteID
				return &payload, nil
			},
		}

		uc := NewSyncPropertyUseCase(nil, store, &mockUploader{}, nil)
		outcome := uc.Sync(context.Background(), domain.LocalProperty{ID: 42})

		if outcome.Action != domain.ActionUpdated {
			t.Errorf("Action = %q, want updated", outcome.Action)
		}
		if outcome.RemoteID != 77 {
			t.Errorf("RemoteID = %d, want 77", outcome.RemoteID)
		}
	})

	t.Run("second run of the same property is an update", func(t *testing.T) {
		var stored *domain.RemoteProperty
		store := &mockContentStore{
			FindByIntegrationIDFunc: func(ctx context.Context, id int64) (*domain.RemoteProperty, error) {
				return stored, nil
			},
			CreatePropertyFunc: func(ctx context.Context, payload domain.RemoteProperty) (*domain.RemoteProperty, error) {
				payload.ID = 5
				stored = &payload
				return &payload, nil
			},
			UpdatePropertyFunc: func(ctx context.Context, remoteID int64, payload domain.RemoteProperty) (*domain.RemoteProperty, error) {
				payload.ID = remoteID
				return &payload, nil
			},
		}

		uc := NewSyncPropertyUseCase(nil, store, &mockUploader{}, nil)
		local := domain.LocalProperty{ID: 42}

		first := uc.Sync(context.Background(), local)
		second := uc.Sync(context.Background(), local)

		if first.Action != domain.ActionCreated || second.Action != domain.ActionUpdated {
			t.Errorf("actions = %q then %q, want created then updated", first.Action, second.Action)
		}
		if first.RemoteID != second.RemoteID {
			t.Errorf("remote ids diverged: %d != %d", first.RemoteID, second.RemoteID)
		}
	})

	t.Run("lookup failure folds into a failed outcome", func(t *testing.T) {
		store := &mockContentStore{
			FindByIntegrationIDFunc: func(ctx context.Context, id int64) (*domain.RemoteProperty, error) {
				return nil, fmt.Errorf("connection refused")
			},
			CreatePropertyFunc: func(ctx context.Context, payload domain.RemoteProperty) (*domain.RemoteProperty, error) {
				return nil, nil
			},
			UpdatePropertyFunc: func(ctx context.Context, remoteID int64, payload domain.RemoteProperty) (*domain.RemoteProperty, error) {
				return nil, nil
			},
		}

		uc := NewSyncPropertyUseCase(nil, store, &mockUploader{}, nil)
		outcome := uc.Sync(context.Background(), domain.LocalProperty{ID: 42})

		if outcome.Action != domain.ActionFailed {
			t.Errorf("Action = %q, want failed", outcome.Action)
		}
		if outcome.Error == "" {
			t.Error("Error must carry the failure reason")
		}
	})

	t.Run("write failure carries the remote error text", func(t *testing.T) {
		store := &mockContentStore{
			FindByIntegrationIDFunc: func(ctx context.Context, id int64) (*domain.RemoteProperty, error) {
				return nil, nil
			},
			CreatePropertyFunc: func(ctx context.Context, payload domain.RemoteProperty) (*domain.RemoteProperty, error) {
				return nil, &domain.RemoteWriteError{Operation: "create", StatusCode: 500, Body: "boom"}
			},
			UpdatePropertyFunc: func(ctx context.Context, remoteID int64, payload domain.RemoteProperty) (*domain.RemoteProperty, error) {
				return nil, nil
			},
		}

		uc := NewSyncPropertyUseCase(nil, store, &mockUploader{}, nil)
		outcome := uc.Sync(context.Background(), domain.LocalProperty{ID: 42})

		if outcome.Action != domain.ActionFailed {
			t.Fatalf("Action = %q, want failed", outcome.Action)
		}
		want := "content store create returned non-success status code 500: boom"
		if outcome.Error != want {
			t.Errorf("Error = %q, want %q", outcome.Error, want)
		}
	})

	t.Run("backup job is enqueued with all refs", func(t *testing.T) {
		store := successStore()
		backup := &mockBackupScheduler{}

		uc := NewSyncPropertyUseCase(nil, store, &mockUploader{}, backup)
		local := domain.LocalProperty{
			ID:     42,
			Fotos:  domain.MediaRefs{"a.jpg", "b.jpg"},
			Videos: domain.MediaRefs{"v.mp4"},
		}
		outcome := uc.Sync(context.Background(), local)

		if outcome.Action != domain.ActionCreated {
			t.Fatalf("Action = %q", outcome.Action)
		}
		if len(backup.jobs) != 1 {
			t.Fatalf("jobs enqueued = %d, want 1", len(backup.jobs))
		}
		job := backup.jobs[0]
		if job.PropertyID != 42 || len(job.Refs) != 3 {
			t.Errorf("job = %+v", job)
		}
	})

	t.Run("enqueue failure does not fail the sync", func(t *testing.T) {
		store := successStore()
		backup := &mockBackupScheduler{
			EnqueueBackupFunc: func(ctx context.Context, job domain.MediaBackupJob) error {
				return errors.New("broker unavailable")
			},
		}

		uc := NewSyncPropertyUseCase(nil, store, &mockUploader{}, backup)
		outcome := uc.Sync(context.Background(), domain.LocalProperty{ID: 1, Fotos: domain.MediaRefs{"a.jpg"}})

		if outcome.Action != domain.ActionCreated {
			t.Errorf("Action = %q, want created despite enqueue failure", outcome.Action)
		}
	})

	t.Run("no backup job without media", func(t *testing.T) {
		store := successStore()
		backup := &mockBackupScheduler{}

		uc := NewSyncPropertyUseCase(nil, store, &mockUploader{}, backup)
		uc.Sync(context.Background(), domain.LocalProperty{ID: 1})

		if len(backup.jobs) != 0 {
			t.Errorf("jobs enqueued = %d, want 0", len(backup.jobs))
		}
	})
}

func TestSyncPropertyUseCase_SyncByID(t *testing.T) {
	t.Run("propagates not found", func(t *testing.T) {
		repo := &mockRepository{
			GetByIDFunc: func(ctx context.Context, id int64) (*domain.LocalProperty, error) {
				return nil, domain.ErrPropertyNotFound
			},
		}

		uc := NewSyncPropertyUseCase(repo, successStore(), &mockUploader{}, nil)
		_, err := uc.SyncByID(context.Background(), 999)

		if !errors.Is(err, domain.ErrPropertyNotFound) {
			t.Errorf("err = %v, want ErrPropertyNotFound", err)
		}
	})

	t.Run("syncs the loaded property", func(t *testing.T) {
		repo := &mockRepository{
			GetByIDFunc: func(ctx context.Context, id int64) (*domain.LocalProperty, error) {
				return &domain.LocalProperty{ID: id, Titulo: "Apto"}, nil
			},
		}

		uc := NewSyncPropertyUseCase(repo, successStore(), &mockUploader{}, nil)
		outcome, err := uc.SyncByID(context.Background(), 7)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome.PropertyID != 7 || outcome.Action != domain.ActionCreated {
			t.Errorf("outcome = %+v", outcome)
		}
	})
}

// successStore is a content store where every write succeeds and nothing
// exists yet.
func successStore() *mockContentStore {
	return &mockContentStore{
		FindByIntegrationIDFunc: func(ctx context.Context, id int64) (*domain.RemoteProperty, error) {
			return nil, nil
		},
		CreatePropertyFunc: func(ctx context.Context, payload domain.RemoteProperty) (*domain.RemoteProperty, error) {
			payload.ID = 1000 + payload.IDIntegracao
			return &payload, nil
		},
		UpdatePropertyFunc: func(ctx context.Context, remoteID int64, payload domain.RemoteProperty) (*domain.RemoteProperty, error) {
			payload.ID = remoteID
			return &payload, nil
		},
	}
}
