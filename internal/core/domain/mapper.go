package domain

import (
	"strconv"
	"strings"

	"github.com/mmcloughlin/geohash"
)

const geohashPrecision = 5

// tipologia fields are appended in this exact order; downstream consumers
// rely on it being stable.
//
// Each token is "<field_name> <value>"; nil and zero values contribute
// nothing, not even an empty token.
func buildTipologia(p LocalProperty) string {
	var tokens []string

	addFloat := func(name string, v *float64) {
		if v != nil && *v != 0 {
			tokens = append(tokens, name+" "+strconv.FormatFloat(*v, 'f', -1, 64))
		}
	}
	addInt := func(name string, v *int) {
		if v != nil && *v != 0 {
			tokens = append(tokens, name+" "+strconv.Itoa(*v))
		}
	}

	addFloat("area_construida", p.AreaConstruida)
	addFloat("area_total", p.AreaTotal)
	addInt("banheiros", p.Banheiros)
	addInt("quartos", p.Quartos)
	addInt("vagas_garagem", p.VagasGaragem)

	return strings.Join(tokens, ", ")
}

// isActive applies the permissive default: a property is assumed sellable
// unless expressly marked otherwise.
func isActive(p LocalProperty) bool {
	if p.Ativo != nil {
		return *p.Ativo
	}
	switch p.Status {
	case "vendido", "alugado":
		return false
	}
	return true
}

// ToRemotePayload transforms one local record into the canonical CMS payload.
// Pure function: no I/O, deterministic for a given input pair.
//
// Tipologia is lossy: the individual numeric fields cannot be recovered
// from the joined string.
func ToRemotePayload(local LocalProperty, imageIDs, videoIDs []int64) RemoteProperty {
	if imageIDs == nil {
		imageIDs = []int64{}
	}
	if videoIDs == nil {
		videoIDs = []int64{}
	}

	payload := RemoteProperty{
		Titulo:       local.Titulo,
		Description:  local.Descricao,
		Price:        local.Preco,
		TipoContrato: local.Finalidade,
		TipoImovel:   local.Tipo,
		Active:       isActive(local),
		Bairro:       local.Bairro,
		Cidade:       local.Cidade,
		Tipologia:    buildTipologia(local),
		Images:       imageIDs,
		Videos:       videoIDs,
		IDIntegracao: local.ID,
	}

	if local.Latitude != 0 && local.Longitude != 0 {
		payload.Geohash = geohash.EncodeWithPrecision(local.Latitude, local.Longitude, geohashPrecision)
	}

	return payload
}
