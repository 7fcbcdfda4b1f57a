package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type TrashHandler struct {
	TrashUC *usecase.TrashUseCase
	Logger  *zap.Logger
}

func NewTrashHandler(uc *usecase.TrashUseCase, logger *zap.Logger) *TrashHandler {
	return &TrashHandler{TrashUC: uc, Logger: loggerOrNop(logger)}
}

// MoveToTrash (DELETE /students/{id})
func (h *TrashHandler) MoveToTrash(w http.ResponseWriter, r *http.Request) {
	if err := h.TrashUC.MoveToTrash(r.Context(), chi.URLParam(r, "id"), middleware.ActorID(r.Context())); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Restore (POST /students/{id}/restore)
func (h *TrashHandler) Restore(w http.ResponseWriter, r *http.Request) {
	student, err := h.TrashUC.Restore(r.Context(), chi.URLParam(r, "id"), middleware.ActorID(r.Context()))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

// List (GET /trash)
func (h *TrashHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.TrashUC.ListTrash(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
