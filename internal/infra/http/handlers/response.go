package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type ErrorResponse struct {
	Code    string                    `json:"code"`
	Message string                    `json:"message"`
	Verdict *usecase.DuplicateVerdict `json:"verdict,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Code: usecase.CodeValidation, Message: "JSON inválido: " + err.Error()})
		return false
	}
	return true
}

// writeError traduz o erro do caso de uso para status HTTP.
// Erro técnico não vaza detalhes para o cliente; vai inteiro para o log.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		writeJSON(w, domainStatus(de.Code), ErrorResponse{Code: de.Code, Message: de.Message, Verdict: de.Verdict})
		return
	}

	code := usecase.CodeDatabase
	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		code = te.Code
	}
	logger.Error("erro interno", zap.String("code", code), zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Code: code, Message: "erro interno, tente novamente"})
}

func domainStatus(code string) int {
	switch code {
	case usecase.CodeValidation:
		return http.StatusBadRequest
	case usecase.CodeStudentNotFound:
		return http.StatusNotFound
	case usecase.CodeDuplicateFound:
		return http.StatusConflict
	case usecase.CodeRestoreExpired:
		return http.StatusGone
	case usecase.CodeInvalidTransition, usecase.CodeNotInTrash:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
