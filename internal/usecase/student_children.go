package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type AddEnrollmentInput struct {
	StudentID  string `json:"-"`
	CourseName string `json:"course_name"`
	Status     string `json:"status"`
	Edition    string `json:"edition"`
	ActorID    string `json:"-"`
}

type EnrollmentUseCase struct {
	Repo        StudentRepositoryInterface
	Enrollments EnrollmentRepositoryInterface
	Activity    ActivityRepositoryInterface
	Logger      *zap.Logger
}

func NewEnrollmentUseCase(
	repo StudentRepositoryInterface,
	enrollments EnrollmentRepositoryInterface,
	activity ActivityRepositoryInterface,
	logger *zap.Logger,
) *EnrollmentUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentUseCase{Repo: repo, Enrollments: enrollments, Activity: activity, Logger: logger}
}

func (uc *EnrollmentUseCase) Add(ctx context.Context, input AddEnrollmentInput) (*entity.CourseEnrollment, error) {
	if _, err := loadActiveStudent(ctx, uc.Repo, input.StudentID); err != nil {
		return nil, err
	}

	enrollment, err := entity.NewCourseEnrollment(input.StudentID, input.CourseName, input.Status, input.Edition)
	if err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: err.Error()}
	}
	if err := uc.Enrollments.Create(ctx, enrollment); err != nil {
		return nil, databaseError("falha ao criar matrícula", err)
	}

	recordActivity(ctx, uc.Activity, uc.Logger, entity.NewActivityLog(
		input.StudentID,
		entity.ActionEnrollmentAdded,
		fmt.Sprintf("Matrícula adicionada: %s", enrollment.CourseName),
		input.ActorID,
		map[string]any{"enrollment_id": enrollment.ID, "course_name": enrollment.CourseName, "edition": enrollment.Edition},
	))
	return enrollment, nil
}

func (uc *EnrollmentUseCase) Remove(ctx context.Context, studentID, enrollmentID, actorID string) error {
	if _, err := loadActiveStudent(ctx, uc.Repo, studentID); err != nil {
		return err
	}
	if err := uc.Enrollments.Delete(ctx, studentID, enrollmentID); err != nil {
		return databaseError("falha ao remover matrícula", err)
	}

	recordActivity(ctx, uc.Activity, uc.Logger, entity.NewActivityLog(
		studentID,
		entity.ActionEnrollmentRemoved,
		"Matrícula removida",
		actorID,
		map[string]any{"enrollment_id": enrollmentID},
	))
	return nil
}

func (uc *EnrollmentUseCase) List(ctx context.Context, studentID string) ([]*entity.CourseEnrollment, error) {
	if _, err := loadActiveStudent(ctx, uc.Repo, studentID); err != nil {
		return nil, err
	}
	list, err := uc.Enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, databaseError("falha ao listar matrículas", err)
	}
	return list, nil
}

type AddNoteInput struct {
	StudentID  string             `json:"-"`
	AuthorID   string             `json:"-"`
	Content    string             `json:"content"`
	Attachment *entity.Attachment `json:"attachment,omitempty"`
}

type NoteUseCase struct {
	Repo     StudentRepositoryInterface
	Notes    NoteRepositoryInterface
	Activity ActivityRepositoryInterface
	Logger   *zap.Logger
}

func NewNoteUseCase(
	repo StudentRepositoryInterface,
	notes NoteRepositoryInterface,
	activity ActivityRepositoryInterface,
	logger *zap.Logger,
) *NoteUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteUseCase{Repo: repo, Notes: notes, Activity: activity, Logger: logger}
}

func (uc *NoteUseCase) Add(ctx context.Context, input AddNoteInput) (*entity.Note, error) {
	if _, err := loadActiveStudent(ctx, uc.Repo, input.StudentID); err != nil {
		return nil, err
	}

	note, err := entity.NewNote(input.StudentID, input.AuthorID, input.Content, input.Attachment)
	if err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: err.Error()}
	}
	if err := uc.Notes.Create(ctx, note); err != nil {
		return nil, databaseError("falha ao salvar nota", err)
	}

	details := map[string]any{"note_id": note.ID}
	if note.Attachment != nil {
		details["attachment"] = note.Attachment.Name
	}
	recordActivity(ctx, uc.Activity, uc.Logger, entity.NewActivityLog(
		input.StudentID, entity.ActionNoteAdded, "Nota adicionada", input.AuthorID, details,
	))
	return note, nil
}

func (uc *NoteUseCase) List(ctx context.Context, studentID string) ([]*entity.Note, error) {
	if _, err := loadActiveStudent(ctx, uc.Repo, studentID); err != nil {
		return nil, err
	}
	notes, err := uc.Notes.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, databaseError("falha ao listar notas", err)
	}
	return notes, nil
}
