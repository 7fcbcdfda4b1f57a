package usecase

import "errors"

const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeDuplicateFound    = "DUPLICATE_FOUND"
	CodeStudentNotFound   = "STUDENT_NOT_FOUND"
	CodeInvalidTransition = "INVALID_STAGE_TRANSITION"
	CodeRestoreExpired    = "RESTORE_WINDOW_EXPIRED"
	CodeNotInTrash        = "NOT_IN_TRASH"
	CodeDatabase          = "DATABASE_ERROR"
)

type DomainError struct {
	Code    string
	Message string
	// Verdict vem preenchido quando Code == DUPLICATE_FOUND.
	Verdict *DuplicateVerdict
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// DomainErrorCode devolve o código do DomainError embrulhado em err, ou "".
func DomainErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func databaseError(msg string, err error) *TechnicalError {
	return &TechnicalError{Code: CodeDatabase, Message: msg, Err: err}
}

func notFoundError(id string) *DomainError {
	return &DomainError{Code: CodeStudentNotFound, Message: "aluno não encontrado: " + id}
}
