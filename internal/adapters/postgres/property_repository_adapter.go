package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/horse37/corretores-sub000/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PropertyRepositoryAdapter reads the imoveis table, the local system of
// record. The sync pipeline never writes to it.
type PropertyRepositoryAdapter struct {
	pool *pgxpool.Pool
}

func NewPropertyRepositoryAdapter(pool *pgxpool.Pool) *PropertyRepositoryAdapter {
	return &PropertyRepositoryAdapter{pool: pool}
}

const propertyColumns = `
	id,
	COALESCE(titulo, ''),
	COALESCE(descricao, ''),
	COALESCE(tipo, ''),
	COALESCE(finalidade, ''),
	COALESCE(status, ''),
	COALESCE(preco, 0),
	area_total,
	area_construida,
	quartos,
	banheiros,
	vagas_garagem,
	COALESCE(endereco, ''),
	COALESCE(bairro, ''),
	COALESCE(cidade, ''),
	COALESCE(estado, ''),
	COALESCE(cep, ''),
	COALESCE(latitude, 0),
	COALESCE(longitude, 0),
	ativo,
	COALESCE(fotos::text, ''),
	COALESCE(videos::text, ''),
	created_at,
	updated_at`

func scanProperty(row pgx.Row) (*domain.LocalProperty, error) {
	var p domain.LocalProperty
	var rawFotos, rawVideos string

	err := row.Scan(
		&p.ID,
		&p.Titulo,
		&p.Descricao,
		&p.Tipo,
		&p.Finalidade,
		&p.Status,
		&p.Preco,
		&p.AreaTotal,
		&p.AreaConstruida,
		&p.Quartos,
		&p.Banheiros,
		&p.VagasGaragem,
		&p.Endereco,
		&p.Bairro,
		&p.Cidade,
		&p.Estado,
		&p.CEP,
		&p.Latitude,
		&p.Longitude,
		&p.Ativo,
		&rawFotos,
		&rawVideos,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Media columns hold JSON text; malformed values degrade to empty lists.
	p.Fotos = domain.ParseMediaRefs(rawFotos)
	p.Videos = domain.ParseMediaRefs(rawVideos)
	return &p, nil
}

func (a *PropertyRepositoryAdapter) ListAll(ctx context.Context, page, pageSize int) (*domain.PropertyPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	var total int
	if err := a.pool.QueryRow(ctx, `SELECT COUNT(*) FROM imoveis`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}

	offset := (page - 1) * pageSize
	query := fmt.Sprintf(`SELECT %s FROM imoveis ORDER BY id LIMIT $1 OFFSET $2`, propertyColumns)

	rows, err := a.pool.Query(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties page: %w", err)
	}
	defer rows.Close()

	items := make([]domain.LocalProperty, 0, pageSize)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property row: %w", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading property rows: %w", err)
	}

	totalPages := (total + pageSize - 1) / pageSize
	return &domain.PropertyPage{
		Items:      items,
		Page:       page,
		TotalPages: totalPages,
		TotalItems: total,
	}, nil
}

func (a *PropertyRepositoryAdapter) GetByID(ctx context.Context, id int64) (*domain.LocalProperty, error) {
	query := fmt.Sprintf(`SELECT %s FROM imoveis WHERE id = $1`, propertyColumns)

	p, err := scanProperty(a.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to get property %d: %w", id, err)
	}
	return p, nil
}
