package coursetype

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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
		h.Log.Error("list course types failed", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	if items == nil {
		items = []CourseType{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type createRequest struct {
	Name          string `json:"name"`
	Code          string `json:"code"`
	DurationDays  string `json:"durationDays"`
	HasExam       bool   `json:"hasExam"`
	NumberOfExams *int   `json:"numberOfExams,omitempty"`
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid body")
		return
	}
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if req.Name == "" || req.Code == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "name and code are required")
		return
	}

	d, err := decimal.NewFromString(req.DurationDays)
	if err != nil || d.LessThanOrEqual(decimal.Zero) {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "durationDays must be a positive decimal")
		return
	}
	if req.HasExam && (req.NumberOfExams == nil || *req.NumberOfExams < 1) {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "numberOfExams is required for exam courses")
		return
	}
	if !req.HasExam {
		req.NumberOfExams = nil
	}

	ct := CourseType{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Code:          req.Code,
		DurationDays:  d.String(),
		HasExam:       req.HasExam,
		NumberOfExams: req.NumberOfExams,
	}
	if err := h.Repo.Insert(r.Context(), &ct); err != nil {
		h.Log.Error("create course type failed", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to create course type")
		return
	}

	api.WriteJSON(w, http.StatusCreated, map[string]any{"courseType": ct})
}
