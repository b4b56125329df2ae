package accident

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trainingdesk/internal/api"
)

type Handlers struct {
	Repo *Repository
	Log  *zap.Logger
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context())
	if err != nil {
		h.Log.Error("list accident reports failed", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	if items == nil {
		items = []Report{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type createRequest struct {
	Date           string `json:"date"` // 2006-01-02
	Description    string `json:"description,omitempty"`
	InjuredName    string `json:"injuredName,omitempty"`
	InjuredAddress string `json:"injuredAddress,omitempty"`
	FirstAiderName string `json:"firstAiderName,omitempty"`
	ReporterName   string `json:"reporterName,omitempty"`
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid body")
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "date must be YYYY-MM-DD")
		return
	}

	rep := Report{
		ID:             uuid.NewString(),
		Date:           date,
		Description:    req.Description,
		InjuredName:    req.InjuredName,
		InjuredAddress: req.InjuredAddress,
		FirstAiderName: req.FirstAiderName,
		ReporterName:   req.ReporterName,
	}
	if err := h.Repo.Insert(r.Context(), &rep); err != nil {
		h.Log.Error("create accident report failed", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to create report")
		return
	}

	api.WriteJSON(w, http.StatusCreated, map[string]any{"report": rep})
}
