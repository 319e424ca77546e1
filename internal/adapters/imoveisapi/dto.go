package imoveisapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/horse37/corretores-sub000/internal/core/domain"
)

// The legacy API serializes numbers inconsistently: bare numbers, quoted
// numbers, null and "" all occur in the wild. looseFloat and looseInt absorb
// every variant without failing the decode; garbage degrades to absent.

type looseFloat struct {
	Value *float64
}

func (f *looseFloat) UnmarshalJSON(data []byte) error {
	f.Value = nil
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}

	var raw string
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil
		}
		raw = strings.TrimSpace(raw)
	} else {
		raw = string(trimmed)
	}
	if raw == "" {
		return nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	f.Value = &v
	return nil
}

type looseInt struct {
	Value *int
}

func (i *looseInt) UnmarshalJSON(data []byte) error {
	i.Value = nil
	var f looseFloat
	if err := f.UnmarshalJSON(data); err != nil || f.Value == nil {
		return nil
	}
	v := int(*f.Value)
	i.Value = &v
	return nil
}

func (f looseFloat) orZero() float64 {
	if f.Value == nil {
		return 0
	}
	return *f.Value
}

func (i looseInt) orZero() int {
	if i.Value == nil {
		return 0
	}
	return *i.Value
}

type propertyDTO struct {
	ID             looseInt         `json:"id"`
	Titulo         string           `json:"titulo"`
	Descricao      string           `json:"descricao"`
	Tipo           string           `json:"tipo"`
	Finalidade     string           `json:"finalidade"`
	Status         string           `json:"status"`
	Preco          looseFloat       `json:"preco"`
	AreaTotal      looseFloat       `json:"area_total"`
	AreaConstruida looseFloat       `json:"area_construida"`
	Quartos        looseInt         `json:"quartos"`
	Banheiros      looseInt         `json:"banheiros"`
	VagasGaragem   looseInt         `json:"vagas_garagem"`
	Endereco       string           `json:"endereco"`
	Bairro         string           `json:"bairro"`
	Cidade         string           `json:"cidade"`
	Estado         string           `json:"estado"`
	CEP            string           `json:"cep"`
	Latitude       looseFloat       `json:"latitude"`
	Longitude      looseFloat       `json:"longitude"`
	Ativo          *bool            `json:"ativo"`
	Fotos          domain.MediaRefs `json:"fotos"`
	Videos         domain.MediaRefs `json:"videos"`
	CreatedAt      string           `json:"created_at"`
	UpdatedAt      string           `json:"updated_at"`
}

func parseAPITime(raw string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (d *propertyDTO) toDomain() domain.LocalProperty {
	return domain.LocalProperty{
		ID:             int64(d.ID.orZero()),
		Titulo:         d.Titulo,
		Descricao:      d.Descricao,
		Tipo:           d.Tipo,
		Finalidade:     d.Finalidade,
		Status:         d.Status,
		Preco:          d.Preco.orZero(),
		AreaTotal:      d.AreaTotal.Value,
		AreaConstruida: d.AreaConstruida.Value,
		Quartos:        d.Quartos.Value,
		Banheiros:      d.Banheiros.Value,
		VagasGaragem:   d.VagasGaragem.Value,
		Endereco:       d.Endereco,
		Bairro:         d.Bairro,
		Cidade:         d.Cidade,
		Estado:         d.Estado,
		CEP:            d.CEP,
		Latitude:       d.Latitude.orZero(),
		Longitude:      d.Longitude.orZero(),
		Ativo:          d.Ativo,
		Fotos:          d.Fotos,
		Videos:         d.Videos,
		CreatedAt:      parseAPITime(d.CreatedAt),
		UpdatedAt:      parseAPITime(d.UpdatedAt),
	}
}

type paginationDTO struct {
	Page       looseInt `json:"page"`
	TotalPages looseInt `json:"totalPages"`
	Total      looseInt `json:"total"`
}
