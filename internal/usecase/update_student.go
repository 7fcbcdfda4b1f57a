package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
)

// UpdateStudentInput vem das edições inline. Diferente do merge, valor vazio limpa o campo.
type UpdateStudentInput struct {
	StudentID string            `json:"-"`
	Data      map[string]string `json:"data"`
	Tags      *[]entity.Tag     `json:"tags,omitempty"`
	IsClient  *bool             `json:"is_client,omitempty"`
	Force     bool              `json:"force"`
	ActorID   string            `json:"-"`
}

type UpdateStudentOutput struct {
	Student *entity.Student `json:"student"`
	Changes []FieldChange   `json:"changes"`
}

type UpdateStudentUseCase struct {
	Repo     StudentRepositoryInterface
	Activity ActivityRepositoryInterface
	Checker  DuplicateCheckerInterface
	Events   EventPublisher
	Logger   *zap.Logger
}

func NewUpdateStudentUseCase(
	repo StudentRepositoryInterface,
	activity ActivityRepositoryInterface,
	checker DuplicateCheckerInterface,
	events EventPublisher,
	logger *zap.Logger,
) *UpdateStudentUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UpdateStudentUseCase{Repo: repo, Activity: activity, Checker: checker, Events: events, Logger: logger}
}

func (uc *UpdateStudentUseCase) Execute(ctx context.Context, input UpdateStudentInput) (*UpdateStudentOutput, error) {
	var errs []ValidationError
	for name, v := range input.Data {
		if !IsStudentField(name) {
			errs = append(errs, ValidationError{name, "is not an editable field"})
			continue
		}
		if verr := validateFieldValue(name, v); verr != nil {
			errs = append(errs, *verr)
		}
	}
	if input.Tags != nil {
		errs = append(errs, validateTags(*input.Tags)...)
	}
	if len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	student, err := loadActiveStudent(ctx, uc.Repo, input.StudentID)
	if err != nil {
		return nil, err
	}

	changes := []FieldChange{}
	for _, name := range MergeableFields {
		raw, ok := input.Data[name]
		if !ok {
			continue
		}
		newVal := canonicalValue(name, raw)
		oldVal := studentFields[name].get(student)
		if !sameValue(name, oldVal, newVal) {
			changes = append(changes, FieldChange{Field: name, Old: strPtr(oldVal), New: strPtr(newVal)})
		}
	}

	if !input.Force && touchesIdentity(changes) {
		verdict := uc.Checker.Check(ctx, DuplicateCheckInput{
			Name:      pick(changes, "name", student.Name),
			Email:     pick(changes, "email", student.Email),
			Phone:     pick(changes, "phone", student.Phone),
			CPF:       pick(changes, "cpf", student.CPF),
			ExcludeID: student.ID,
		})
		if verdict.IsDuplicate {
			return nil, duplicateFound(verdict)
		}
	}

	ApplyChanges(student, changes)
	var extra []string
	if input.Tags != nil {
		extra = append(extra, fmt.Sprintf("tags: %d → %d", len(student.Tags), len(*input.Tags)))
		student.Tags = *input.Tags
	}
	if input.IsClient != nil && *input.IsClient != student.IsClient {
		extra = append(extra, fmt.Sprintf("is_client: %t → %t", student.IsClient, *input.IsClient))
		student.IsClient = *input.IsClient
	}
	if len(changes) == 0 && len(extra) == 0 {
		return &UpdateStudentOutput{Student: student, Changes: changes}, nil
	}

	student.UpdatedAt = time.Now()
	if err := uc.Repo.Update(ctx, student); err != nil {
		return nil, databaseError("falha ao atualizar aluno", err)
	}

	recordActivity(ctx, uc.Activity, uc.Logger, entity.NewActivityLog(
		student.ID,
		entity.ActionStudentUpdated,
		describeChanges("Cadastro atualizado", changes, extra...),
		input.ActorID,
		map[string]any{"changes": changes},
	))
	publishEvent(ctx, uc.Events, uc.Logger, newStudentEvent(queue.EventStudentUpdated, student, input.ActorID))

	return &UpdateStudentOutput{Student: student, Changes: changes}, nil
}

func touchesIdentity(changes []FieldChange) bool {
	for _, c := range changes {
		switch c.Field {
		case "name", "email", "phone", "cpf":
			return true
		}
	}
	return false
}

// pick devolve o valor novo do campo se ele mudou, senão o atual.
func pick(changes []FieldChange, field, current string) string {
	for _, c := range changes {
		if c.Field != field {
			continue
		}
		if c.New == nil {
			return ""
		}
		return *c.New
	}
	return current
}
