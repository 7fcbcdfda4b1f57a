package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type StudentHandler struct {
	CreateUC *usecase.CreateStudentUseCase
	UpdateUC *usecase.UpdateStudentUseCase
	QueryUC  *usecase.StudentQueryUseCase
	Logger   *zap.Logger
}

func NewStudentHandler(
	create *usecase.CreateStudentUseCase,
	update *usecase.UpdateStudentUseCase,
	query *usecase.StudentQueryUseCase,
	logger *zap.Logger,
) *StudentHandler {
	return &StudentHandler{CreateUC: create, UpdateUC: update, QueryUC: query, Logger: loggerOrNop(logger)}
}

// Create (POST /students)
func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateStudentInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.ActorID = middleware.ActorID(r.Context())

	student, err := h.CreateUC.Execute(r.Context(), input)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, student)
}

// Get (GET /students/{id})
func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	student, err := h.QueryUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

// List (GET /students?stage=&source=&q=&limit=&offset=)
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	students, err := h.QueryUC.List(r.Context(), entity.StudentFilter{
		Stage:  entity.FunnelStage(q.Get("stage")),
		Source: q.Get("source"),
		Search: q.Get("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, students)
}

// Update (PATCH /students/{id}) é a edição inline.
func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateStudentInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.StudentID = chi.URLParam(r, "id")
	input.ActorID = middleware.ActorID(r.Context())

	out, err := h.UpdateUC.Execute(r.Context(), input)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
