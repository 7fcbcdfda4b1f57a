package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

// TimelineHandler agrupa o que aparece na ficha do aluno: matrículas, notas e histórico.
type TimelineHandler struct {
	EnrollmentUC *usecase.EnrollmentUseCase
	NoteUC       *usecase.NoteUseCase
	ActivityUC   *usecase.ActivityQueryUseCase
	Logger       *zap.Logger
}

func NewTimelineHandler(
	enrollments *usecase.EnrollmentUseCase,
	notes *usecase.NoteUseCase,
	activity *usecase.ActivityQueryUseCase,
	logger *zap.Logger,
) *TimelineHandler {
	return &TimelineHandler{EnrollmentUC: enrollments, NoteUC: notes, ActivityUC: activity, Logger: loggerOrNop(logger)}
}

func (h *TimelineHandler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	list, err := h.EnrollmentUC.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *TimelineHandler) AddEnrollment(w http.ResponseWriter, r *http.Request) {
	var input usecase.AddEnrollmentInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.StudentID = chi.URLParam(r, "id")
	input.ActorID = middleware.ActorID(r.Context())

	enrollment, err := h.EnrollmentUC.Add(r.Context(), input)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, enrollment)
}

func (h *TimelineHandler) RemoveEnrollment(w http.ResponseWriter, r *http.Request) {
	err := h.EnrollmentUC.Remove(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "enrollmentId"), middleware.ActorID(r.Context()))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TimelineHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.NoteUC.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *TimelineHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	var input usecase.AddNoteInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.StudentID = chi.URLParam(r, "id")
	input.AuthorID = middleware.ActorID(r.Context())

	note, err := h.NoteUC.Add(r.Context(), input)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (h *TimelineHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
	logs, err := h.ActivityUC.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}
