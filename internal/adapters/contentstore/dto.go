package contentstore

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/horse37/corretores-sub000/internal/core/domain"
)

// propertyFieldsDTO mirrors the CMS field set of one property entry.
type propertyFieldsDTO struct {
	Titulo       string  `json:"titulo"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	TipoContrato string  `json:"tipo_contrato"`
	TipoImovel   string  `json:"tipo_imovel"`
	Active       bool    `json:"active"`
	Bairro       string  `json:"bairro"`
	Cidade       string  `json:"cidade"`
	Tipologia    string  `json:"tipologia"`
	Geohash      string  `json:"geohash"`
	IDIntegracao int64   `json:"id_integracao"`
}

// propertyEntryDTO accepts both envelope shapes the CMS can respond with:
// the nested one ({"id": 1, "attributes": {...}}) and the flat one where
// the fields sit next to the id. When Attributes is present it wins.
type propertyEntryDTO struct {
	ID         int64              `json:"id"`
	Attributes *propertyFieldsDTO `json:"attributes"`
	propertyFieldsDTO
}

func (d *propertyEntryDTO) toDomain() domain.RemoteProperty {
	fields := d.propertyFieldsDTO
	if d.Attributes != nil {
		fields = *d.Attributes
	}
	return domain.RemoteProperty{
		ID:           d.ID,
		Titulo:       fields.Titulo,
		Description:  fields.Description,
		Price:        fields.Price,
		TipoContrato: fields.TipoContrato,
		TipoImovel:   fields.TipoImovel,
		Active:       fields.Active,
		Bairro:       fields.Bairro,
		Cidade:       fields.Cidade,
		Tipologia:    fields.Tipologia,
		Geohash:      fields.Geohash,
		IDIntegracao: fields.IDIntegracao,
	}
}

type listResponseDTO struct {
	Data []propertyEntryDTO `json:"data"`
}

// decodePropertyList accepts both list shapes the CMS answers with:
// {"data": [...]} and a bare array.
func decodePropertyList(body []byte) ([]propertyEntryDTO, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	if trimmed[0] == '[' {
		var entries []propertyEntryDTO
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("failed to decode bare array response: %w", err)
		}
		return entries, nil
	}

	var list listResponseDTO
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, fmt.Errorf("failed to decode response envelope: %w", err)
	}
	return list.Data, nil
}

type entryResponseDTO struct {
	Data propertyEntryDTO `json:"data"`
}

// fileDTO is one entry of the upload plugin's responses. The plugin returns
// bare arrays, no data envelope.
type fileDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
	Mime string `json:"mime"`
}
