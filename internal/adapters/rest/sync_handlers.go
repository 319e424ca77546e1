package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/horse37/corretores-sub000/internal/core/domain"
	"github.com/horse37/corretores-sub000/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
)

type SyncHandlers struct {
	syncPropertyUC usecases_port.SyncPropertyPort
	syncAllUC      usecases_port.SyncAllPort
	defaultDelay   time.Duration
}

func NewSyncHandlers(syncPropertyUC usecases_port.SyncPropertyPort, syncAllUC usecases_port.SyncAllPort, defaultDelay time.Duration) *SyncHandlers {
	return &SyncHandlers{
		syncPropertyUC: syncPropertyUC,
		syncAllUC:      syncAllUC,
		defaultDelay:   defaultDelay,
	}
}

// HandleSyncProperty syncs one property by its local id.
func (h *SyncHandlers) HandleSyncProperty(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "propertyID")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 1 {
		WriteJSONError(w, http.StatusBadRequest, "SyncPropertyHandler: invalid property id")
		return
	}

	outcome, err := h.syncPropertyUC.SyncByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrPropertyNotFound) {
			WriteJSONError(w, http.StatusNotFound, fmt.Sprintf("SyncPropertyHandler: property %d not found", id))
			return
		}
		WriteJSONError(w, http.StatusInternalServerError, fmt.Sprintf("SyncPropertyHandler: failed to load property: %v", err))
		return
	}

	if outcome.Action == domain.ActionFailed {
		RespondWithJSON(w, http.StatusBadGateway, outcome)
		return
	}
	RespondWithJSON(w, http.StatusOK, outcome)
}

// HandleSyncAll runs a full bulk sync. The report is returned once the run
// finishes; per-property failures live inside the report, they do not change
// the response status.
func (h *SyncHandlers) HandleSyncAll(w http.ResponseWriter, r *http.Request) {
	var req BulkSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteJSONError(w, http.StatusBadRequest, "SyncAllHandler: invalid request body")
		return
	}

	opts := domain.BulkSyncOptions{
		PageSize: req.PageSize,
		Delay:    h.defaultDelay,
	}
	if req.DelayMS > 0 {
		opts.Delay = time.Duration(req.DelayMS) * time.Millisecond
	}

	report, err := h.syncAllUC.SyncAll(r.Context(), opts)
	if err != nil {
		WriteJSONError(w, http.StatusBadGateway, fmt.Sprintf("SyncAllHandler: bulk sync aborted: %v", err))
		return
	}

	RespondWithJSON(w, http.StatusOK, report)
}

// HandleHealth is the liveness probe.
func (h *SyncHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
