package usecase

import (
	"context"
	"io"
	"strings"

	"github.com/horse37/corretores-sub000/internal/core/domain"
)

// Hand-rolled mocks with function fields: each test overrides only what it
// needs.

type mockResolver struct {
	ResolveFunc func(ctx context.Context, reference string) *domain.AssetSource
}

func (m *mockResolver) Resolve(ctx context.Context, reference string) *domain.AssetSource {
	return m.ResolveFunc(ctx, reference)
}

func assetFrom(name, content string) *domain.AssetSource {
	return &domain.AssetSource{
		Filename:    name,
		ContentType: "image/jpeg",
		Body:        io.NopCloser(strings.NewReader(content)),
	}
}

type mockContentStore struct {
	FindByIntegrationIDFunc func(ctx context.Context, integrationID int64) (*domain.RemoteProperty, error)
	FindFileByNameFunc      func(ctx context.Context, name string) *int64
	UploadFileFunc          func(ctx context.Context, src *domain.AssetSource) *int64
	CreatePropertyFunc      func(ctx context.Context, payload domain.RemoteProperty) (*domain.RemoteProperty, error)
	UpdatePropertyFunc      func(ctx context.Context, remoteID int64, payload domain.RemoteProperty) (*domain.RemoteProperty, error)
	DeletePropertyFunc      func(ctx context.Context, remoteID int64) error
}

func (m *mockContentStore) FindByIntegrationID(ctx context.Context, integrationID int64) (*domain.RemoteProperty, error) {
	if m.FindByIntegrationIDFunc == nil {
		return nil, nil
	}
	return m.FindByIntegrationIDFunc(ctx, integrationID)
}

func (m *mockContentStore) FindFileByName(ctx context.Context, name string) *int64 {
	if m.FindFileByNameFunc == nil {
		return nil
	}
	return m.FindFileByNameFunc(ctx, name)
}

func (m *mockContentStore) UploadFile(ctx context.Context, src *domain.AssetSource) *int64 {
	if m.UploadFileFunc == nil {
		return nil
	}
	return m.UploadFileFunc(ctx, src)
}

func (m *mockContentStore) CreateProperty(ctx context.Context, payload domain.RemoteProperty) (*domain.RemoteProperty, error) {
	return m.CreatePropertyFunc(ctx, payload)
}

func (m *mockContentStore) UpdateProperty(ctx context.Context, remoteID int64, payload domain.RemoteProperty) (*domain.RemoteProperty, error) {
	return m.UpdatePropertyFunc(ctx, remoteID, payload)
}

func (m *mockContentStore) DeleteProperty(ctx context.Context, remoteID int64) error {
	if m.DeletePropertyFunc == nil {
		return nil
	}
	return m.DeletePropertyFunc(ctx, remoteID)
}

type mockRepository struct {
	ListAllFunc func(ctx context.Context, page, pageSize int) (*domain.PropertyPage, error)
	GetByIDFunc func(ctx context.Context, id int64) (*domain.LocalProperty, error)
}

func (m *mockRepository) ListAll(ctx context.Context, page, pageSize int) (*domain.PropertyPage, error) {
	return m.ListAllFunc(ctx, page, pageSize)
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*domain.LocalProperty, error) {
	return m.GetByIDFunc(ctx, id)
}

type mockUploader struct {
	UploadAllFunc func(ctx context.Context, references []string) []int64
}

func (m *mockUploader) UploadAll(ctx context.Context, references []string) []int64 {
	if m.UploadAllFunc == nil {
		return []int64{}
	}
	return m.UploadAllFunc(ctx, references)
}

type mockBackupScheduler struct {
	EnqueueBackupFunc func(ctx context.Context, job domain.MediaBackupJob) error
	jobs              []domain.MediaBackupJob
}

func (m *mockBackupScheduler) EnqueueBackup(ctx context.Context, job domain.MediaBackupJob) error {
	m.jobs = append(m.jobs, job)
	if m.EnqueueBackupFunc == nil {
		return nil
	}
	return m.EnqueueBackupFunc(ctx, job)
}

type mockArchive struct {
	StoreFunc func(ctx context.Context, entry domain.MediaBackupEntry) error
	entries   []domain.MediaBackupEntry
}

func (m *mockArchive) Store(ctx context.Context, entry domain.MediaBackupEntry) error {
	m.entries = append(m.entries, entry)
	if m.StoreFunc == nil {
		return nil
	}
	return m.StoreFunc(ctx, entry)
}

type mockSyncer struct {
	SyncFunc func(ctx context.Context, local domain.LocalProperty) domain.SyncOutcome
}

func (m *mockSyncer) Sync(ctx context.Context, local domain.LocalProperty) domain.SyncOutcome {
	return m.SyncFunc(ctx, local)
}

func (m *mockSyncer) SyncByID(ctx context.Context, id int64) (domain.SyncOutcome, error) {
	return domain.SyncOutcome{}, nil
}
