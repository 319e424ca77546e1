package rest

// BulkSyncRequest is the optional body of POST /api/v1/sync. Zero values
// fall back to the configured defaults.
type BulkSyncRequest struct {
	PageSize int `json:"page_size"`
	DelayMS  int `json:"delay_ms"`
}
