package imoveisapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/horse37/corretores-sub000/internal/core/domain"
)

func TestNormalizeListResponse(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCount int
		wantFirst int64
	}{
		{
			"bare array",
			`[{"id":1,"titulo":"Casa"},{"id":2}]`,
			2, 1,
		},
		{
			"data array",
			`{"data":[{"id":3,"titulo":"Apto"}]}`,
			1, 3,
		},
		{
			"imoveis array",
			`{"imoveis":[{"id":4}]}`,
			1, 4,
		},
		{
			"nested data object",
			`{"data":{"imoveis":[{"id":5}],"pagination":{"page":1,"totalPages":2,"total":12}}}`,
			1, 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dtos, _, err := normalizeListResponse([]byte(tt.body))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(dtos) != tt.wantCount {
				t.Fatalf("count = %d, want %d", len(dtos), tt.wantCount)
			}
			if got := int64(dtos[0].ID.orZero()); got != tt.wantFirst {
				t.Errorf("first id = %d, want %d", got, tt.wantFirst)
			}
		})
	}

	t.Run("pagination from nested shape", func(t *testing.T) {
		_, pagination, err := normalizeListResponse([]byte(
			`{"data":{"imoveis":[],"pagination":{"page":3,"totalPages":7,"total":66}}}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pagination == nil || pagination.TotalPages.orZero() != 7 || pagination.Total.orZero() != 66 {
			t.Errorf("pagination = %+v", pagination)
		}
	})

	t.Run("empty body is an error", func(t *testing.T) {
		if _, _, err := normalizeListResponse([]byte("  ")); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestLooseNumbers(t *testing.T) {
	t.Run("quoted numbers", func(t *testing.T) {
		dtos, _, err := normalizeListResponse([]byte(
			`[{"id":"7","preco":"350000.50","quartos":"3","area_total":null,"banheiros":""}]`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		p := dtos[0].toDomain()
		if p.ID != 7 {
			t.Errorf("ID = %d", p.ID)
		}
		if p.Preco != 350000.50 {
			t.Errorf("Preco = %v", p.Preco)
		}
		if p.Quartos == nil || *p.Quartos != 3 {
			t.Errorf("Quartos = %v", p.Quartos)
		}
		if p.AreaTotal != nil {
			t.Errorf("AreaTotal = %v, want nil", p.AreaTotal)
		}
		if p.Banheiros != nil {
			t.Errorf("Banheiros = %v, want nil", p.Banheiros)
		}
	})

	t.Run("garbage coerces to absent", func(t *testing.T) {
		dtos, _, err := normalizeListResponse([]byte(`[{"id":1,"preco":"abc","vagas_garagem":{"x":1}}]`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		p := dtos[0].toDomain()
		if p.Preco != 0 {
			t.Errorf("Preco = %v, want 0", p.Preco)
		}
		if p.VagasGaragem != nil {
			t.Errorf("VagasGaragem = %v, want nil", p.VagasGaragem)
		}
	})

	t.Run("media refs survive double encoding", func(t *testing.T) {
		dtos, _, err := normalizeListResponse([]byte(`[{"id":1,"fotos":"[\"a.jpg\"]","videos":"broken"}]`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		p := dtos[0].toDomain()
		if len(p.Fotos) != 1 || p.Fotos[0] != "a.jpg" {
			t.Errorf("Fotos = %v", p.Fotos)
		}
		if len(p.Videos) != 0 {
			t.Errorf("Videos = %v, want empty", p.Videos)
		}
	})
}

func TestClient_ListAll(t *testing.T) {
	t.Run("derives total pages from a short page", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"id":1},{"id":2}]`))
		}))
		defer server.Close()

		client := NewClient(server.URL)
		page, err := client.ListAll(context.Background(), 1, 10)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.TotalPages != 1 {
			t.Errorf("TotalPages = %d, want 1 (short page is the last)", page.TotalPages)
		}
		if len(page.Items) != 2 {
			t.Errorf("items = %d", len(page.Items))
		}
	})

	t.Run("full page implies there may be more", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"id":1},{"id":2}]`))
		}))
		defer server.Close()

		client := NewClient(server.URL)
		page, err := client.ListAll(context.Background(), 1, 2)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.TotalPages != 2 {
			t.Errorf("TotalPages = %d, want 2", page.TotalPages)
		}
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewClient(server.URL)
		if _, err := client.ListAll(context.Background(), 1, 10); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestClient_GetByID(t *testing.T) {
	t.Run("bare object", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/imoveis/7" {
				t.Errorf("path = %s", r.URL.Path)
			}
			w.Write([]byte(`{"id":7,"titulo":"Casa"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL)
		p, err := client.GetByID(context.Background(), 7)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ID != 7 || p.Titulo != "Casa" {
			t.Errorf("property = %+v", p)
		}
	})

	t.Run("data wrapped object", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":{"id":8,"titulo":"Apto"}}`))
		}))
		defer server.Close()

		client := NewClient(server.URL)
		p, err := client.GetByID(context.Background(), 8)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ID != 8 || p.Titulo != "Apto" {
			t.Errorf("property = %+v", p)
		}
	})

	t.Run("404 maps to ErrPropertyNotFound", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewClient(server.URL)
		_, err := client.GetByID(context.Background(), 999)

		if !errors.Is(err, domain.ErrPropertyNotFound) {
			t.Errorf("err = %v, want ErrPropertyNotFound", err)
		}
	})
}
