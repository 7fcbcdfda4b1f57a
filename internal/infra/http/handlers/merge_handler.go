package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type MergeHandler struct {
	MergeUC *usecase.MergeStudentUseCase
	Logger  *zap.Logger
}

func NewMergeHandler(uc *usecase.MergeStudentUseCase, logger *zap.Logger) *MergeHandler {
	return &MergeHandler{MergeUC: uc, Logger: loggerOrNop(logger)}
}

// Preview (POST /students/{id}/merge/preview)
func (h *MergeHandler) Preview(w http.ResponseWriter, r *http.Request) {
	input, ok := h.input(w, r)
	if !ok {
		return
	}
	out, err := h.MergeUC.Preview(r.Context(), input)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Execute (POST /students/{id}/merge)
func (h *MergeHandler) Execute(w http.ResponseWriter, r *http.Request) {
	input, ok := h.input(w, r)
	if !ok {
		return
	}
	out, err := h.MergeUC.Execute(r.Context(), input)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *MergeHandler) input(w http.ResponseWriter, r *http.Request) (usecase.MergeStudentInput, bool) {
	var input usecase.MergeStudentInput
	if !decodeJSON(w, r, &input) {
		return input, false
	}
	input.StudentID = chi.URLParam(r, "id")
	input.ActorID = middleware.ActorID(r.Context())
	return input, true
}
