package domain

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// LocalProperty is the system-of-record representation of one listing.
// It is read-only for the sync pipeline: nothing here ever mutates it.
type LocalProperty struct {
	ID         int64
	Titulo     string
	Descricao  string
	Tipo       string // casa, apartamento, terreno, comercial, rural
	Finalidade string // venda, aluguel, venda_aluguel
	Status     string // disponivel, vendido, alugado, reservado

	Preco float64 // BRL

	AreaTotal      *float64 // m²
	AreaConstruida *float64 // m²
	Quartos        *int
	Banheiros      *int
	VagasGaragem   *int

	Endereco  string
	Bairro    string
	Cidade    string
	Estado    string
	CEP       string
	Latitude  float64
	Longitude float64

	// Ativo, when present, overrides the status-derived active flag.
	Ativo *bool

	Fotos  MediaRefs
	Videos MediaRefs

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RemoteProperty is the canonical payload shape accepted by the CMS.
// ID is only populated on records read back from the CMS.
type RemoteProperty struct {
	ID           int64   `json:"id,omitempty"`
	Titulo       string  `json:"titulo"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	TipoContrato string  `json:"tipo_contrato"`
	TipoImovel   string  `json:"tipo_imovel"`
	Active       bool    `json:"active"`
	Bairro       string  `json:"bairro"`
	Cidade       string  `json:"cidade"`
	Tipologia    string  `json:"tipologia"`
	Geohash      string  `json:"geohash,omitempty"`
	Images       []int64 `json:"images"`
	Videos       []int64 `json:"videos"`
	IDIntegracao int64   `json:"id_integracao"`
}

// RemoteFile describes a file created by the CMS upload endpoint.
type RemoteFile struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
	Mime string `json:"mime"`
}

// AssetSource is a fetchable byte source produced by the asset resolver.
// The caller owns Body and must close it.
type AssetSource struct {
	Filename    string
	ContentType string
	Body        io.ReadCloser
}

type SyncAction string

const (
	ActionCreated SyncAction = "created"
	ActionUpdated SyncAction = "updated"
	ActionSkipped SyncAction = "skipped"
	ActionFailed  SyncAction = "failed"
)

// SyncOutcome is the per-property unit of reporting. It is created per sync
// attempt and discarded after reporting, never persisted.
type SyncOutcome struct {
	PropertyID int64      `json:"property_id"`
	Action     SyncAction `json:"action"`
	RemoteID   int64      `json:"remote_id,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// SyncReport aggregates the outcomes of a bulk run.
type SyncReport struct {
	Total        int      `json:"total"`
	SuccessCount int      `json:"success_count"`
	ErrorCount   int      `json:"error_count"`
	Errors       []string `json:"errors"`
}

// ProgressFunc lets a caller observe bulk progress incrementally.
type ProgressFunc func(index, total int, label string)

// BulkSyncOptions parameterizes one bulk run.
type BulkSyncOptions struct {
	PageSize int
	Delay    time.Duration
	Progress ProgressFunc
}

// PropertyPage is one page drained from the property repository.
type PropertyPage struct {
	Items      []LocalProperty
	Page       int
	TotalPages int
	TotalItems int
}

// MediaBackupJob is the payload of the fire-and-forget backup side-channel.
type MediaBackupJob struct {
	JobID       uuid.UUID `json:"job_id"`
	PropertyID  int64     `json:"property_id"`
	Refs        []string  `json:"refs"`
	RequestedAt time.Time `json:"requested_at"`
}

// MediaBackupEntry is one archived asset: original bytes plus content hash.
type MediaBackupEntry struct {
	PropertyID int64
	Ref        string
	Filename   string
	SHA256     string
	Size       int64
	Data       []byte
}

// ErrPropertyNotFound signals that the requested property does not exist in
// the local store.
var ErrPropertyNotFound = fmt.Errorf("property not found")

// RemoteWriteError carries the HTTP status and body of a failed CMS write.
// A write failure fails the whole property's sync (asset-level failures do
// not - they are absorbed earlier).
type RemoteWriteError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("content store %s returned non-success status code %d: %s", e.Operation, e.StatusCode, e.Body)
}
