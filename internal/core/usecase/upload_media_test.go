package usecase

import (
	"context"
	"reflect"
	"testing"

	"github.com/horse37/corretores-sub000/internal/core/domain"
)

func TestUploadMediaUseCase_UploadAll(t *testing.T) {
	t.Run("uploads every reference in order", func(t *testing.T) {
		var next int64 = 100
		store := &mockContentStore{
			UploadFileFunc: func(ctx context.Context, src *domain.AssetSource) *int64 {
				id := next
				next++
				return &id
			},
		}
		resolver := &mockResolver{
			ResolveFunc: func(ctx context.Context, ref string) *domain.AssetSource {
				return assetFrom(ref, "bytes")
			},
		}

		uc := NewUploadMediaUseCase(resolver, store)
		ids := uc.UploadAll(context.Background(), []string{"a.jpg", "b.jpg", "c.jpg"})

		if !reflect.DeepEqual(ids, []int64{100, 101, 102}) {
			t.Errorf("ids = %v, want [100 101 102]", ids)
		}
	})

	t.Run("failed entry is dropped, batch continues", func(t *testing.T) {
		store := &mockContentStore{
			UploadFileFunc: func(ctx context.Context, src *domain.AssetSource) *int64 {
				if src.Filename == "b.jpg" {
					return nil
				}
				id := int64(len(src.Filename))
				return &id
			},
		}
		resolver := &mockResolver{
			ResolveFunc: func(ctx context.Context, ref string) *domain.AssetSource {
				return assetFrom(ref, "bytes")
			},
		}

		uc := NewUploadMediaUseCase(resolver, store)
		ids := uc.UploadAll(context.Background(), []string{"a.jpg", "b.jpg", "c.jpg"})

		if len(ids) != 2 {
			t.Fatalf("len(ids) = %d, want 2", len(ids))
		}
	})

	t.Run("unresolvable reference is skipped", func(t *testing.T) {
		uploaded := 0
		store := &mockContentStore{
			UploadFileFunc: func(ctx context.Context, src *domain.AssetSource) *int64 {
				uploaded++
				id := int64(uploaded)
				return &id
			},
		}
		resolver := &mockResolver{
			ResolveFunc: func(ctx context.Context, ref string) *domain.AssetSource {
				if ref == "missing.jpg" {
					return nil
				}
				return assetFrom(ref, "bytes")
			},
		}

		uc := NewUploadMediaUseCase(resolver, store)
		ids := uc.UploadAll(context.Background(), []string{"missing.jpg", "ok.jpg"})

		if len(ids) != 1 || uploaded != 1 {
			t.Errorf("ids = %v, uploads = %d", ids, uploaded)
		}
	})

	t.Run("existing file is reused instead of re-uploaded", func(t *testing.T) {
		existing := int64(55)
		uploadCalls := 0
		store := &mockContentStore{
			FindFileByNameFunc: func(ctx context.Context, name string) *int64 {
				if name == "dup.jpg" {
					return &existing
				}
				return nil
			},
			UploadFileFunc: func(ctx context.Context, src *domain.AssetSource) *int64 {
				uploadCalls++
				id := int64(1)
				return &id
			},
		}
		resolver := &mockResolver{
			ResolveFunc: func(ctx context.Context, ref string) *domain.AssetSource {
				return assetFrom(ref, "bytes")
			},
		}

		uc := NewUploadMediaUseCase(resolver, store)
		ids := uc.UploadAll(context.Background(), []string{"dup.jpg", "new.jpg"})

		if !reflect.DeepEqual(ids, []int64{55, 1}) {
			t.Errorf("ids = %v, want [55 1]", ids)
		}
		if uploadCalls != 1 {
			t.Errorf("uploadCalls = %d, want 1", uploadCalls)
		}
	})

	t.Run("empty batch yields empty result", func(t *testing.T) {
		uc := NewUploadMediaUseCase(&mockResolver{ResolveFunc: func(ctx context.Context, ref string) *domain.AssetSource {
			t.Fatal("resolver must not be called for an empty batch")
			return nil
		}}, &mockContentStore{})

		if ids := uc.UploadAll(context.Background(), nil); len(ids) != 0 {
			t.Errorf("ids = %v, want empty", ids)
		}
	})
}
