package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type FunnelHandler struct {
	MoveStageUC *usecase.MoveStageUseCase
	Logger      *zap.Logger
}

func NewFunnelHandler(uc *usecase.MoveStageUseCase, logger *zap.Logger) *FunnelHandler {
	return &FunnelHandler{MoveStageUC: uc, Logger: loggerOrNop(logger)}
}

// MoveStage (POST /students/{id}/stage)
func (h *FunnelHandler) MoveStage(w http.ResponseWriter, r *http.Request) {
	var input usecase.MoveStageInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.StudentID = chi.URLParam(r, "id")
	input.ActorID = middleware.ActorID(r.Context())

	out, err := h.MoveStageUC.Execute(r.Context(), input)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
