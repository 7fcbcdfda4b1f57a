package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
)

type FieldChange struct {
	Field string  `json:"field"`
	Old   *string `json:"old"`
	New   *string `json:"new"`
}

// DiffStudent compara o registro existente com os dados novos, na ordem de fields.
// Só entram campos cujo valor mudou; valor novo vazio ou ausente não apaga o antigo.
func DiffStudent(existing *entity.Student, incoming map[string]string, fields []string) []FieldChange {
	changes := []FieldChange{}
	for _, name := range fields {
		f, ok := studentFields[name]
		if !ok {
			continue
		}
		raw, present := incoming[name]
		newVal := canonicalValue(name, raw)
		if !present || newVal == "" {
			continue
		}
		oldVal := f.get(existing)
		if sameValue(name, oldVal, newVal) {
			continue
		}
		changes = append(changes, FieldChange{Field: name, Old: strPtr(oldVal), New: strPtr(newVal)})
	}
	return changes
}

// ApplyChanges grava os valores novos no aluno. ID, criação e lixeira não são tocados.
func ApplyChanges(s *entity.Student, changes []FieldChange) {
	for _, c := range changes {
		f, ok := studentFields[c.Field]
		if !ok {
			continue
		}
		v := ""
		if c.New != nil {
			v = *c.New
		}
		f.set(s, v)
	}
}

type MergeStudentInput struct {
	StudentID string            `json:"-"`
	Data      map[string]string `json:"data"`
	Fields    []string          `json:"fields"`
	ActorID   string            `json:"-"`
}

type MergeStudentOutput struct {
	Student *entity.Student `json:"student"`
	Changes []FieldChange   `json:"changes"`
}

type MergeStudentUseCase struct {
	Repo     StudentRepositoryInterface
	Activity ActivityRepositoryInterface
	Events   EventPublisher
	Logger   *zap.Logger
	Metrics  MetricsRecorder
}

func NewMergeStudentUseCase(
	repo StudentRepositoryInterface,
	activity ActivityRepositoryInterface,
	events EventPublisher,
	logger *zap.Logger,
	metrics MetricsRecorder,
) *MergeStudentUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MergeStudentUseCase{
		Repo:     repo,
		Activity: activity,
		Events:   events,
		Logger:   logger,
		Metrics:  metricsOrNop(metrics),
	}
}

// Preview devolve o diff para a tela de confirmação, sem gravar nada.
func (uc *MergeStudentUseCase) Preview(ctx context.Context, input MergeStudentInput) (*MergeStudentOutput, error) {
	existing, changes, err := uc.prepare(ctx, input)
	if err != nil {
		return nil, err
	}
	return &MergeStudentOutput{Student: existing, Changes: changes}, nil
}

func (uc *MergeStudentUseCase) Execute(ctx context.Context, input MergeStudentInput) (*MergeStudentOutput, error) {
	existing, changes, err := uc.prepare(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		uc.Metrics.Merge("noop")
		return &MergeStudentOutput{Student: existing, Changes: changes}, nil
	}

	ApplyChanges(existing, changes)
	existing.UpdatedAt = time.Now()

	if err := uc.Repo.Update(ctx, existing); err != nil {
		uc.Metrics.Merge("failed")
		return nil, databaseError("falha ao aplicar merge", err)
	}
	uc.Metrics.Merge("committed")

	// Daqui pra frente o merge está gravado; histórico e evento são best-effort.
	recordActivity(ctx, uc.Activity, uc.Logger, entity.NewActivityLog(
		existing.ID,
		entity.ActionStudentMerged,
		describeChanges("Cadastro mesclado", changes),
		input.ActorID,
		map[string]any{"changes": changes},
	))
	publishEvent(ctx, uc.Events, uc.Logger, newStudentEvent(queue.EventStudentMerged, existing, input.ActorID))

	return &MergeStudentOutput{Student: existing, Changes: changes}, nil
}

func (uc *MergeStudentUseCase) prepare(ctx context.Context, input MergeStudentInput) (*entity.Student, []FieldChange, error) {
	fields := input.Fields
	if len(fields) == 0 {
		fields = MergeableFields
	}

	var errs []ValidationError
	for _, name := range fields {
		if !IsStudentField(name) {
			errs = append(errs, ValidationError{name, "is not a mergeable field"})
		}
	}
	for name, v := range input.Data {
		if !IsStudentField(name) || strings.TrimSpace(v) == "" {
			continue
		}
		if verr := validateFieldValue(name, v); verr != nil {
			errs = append(errs, *verr)
		}
	}
	if len(errs) > 0 {
		return nil, nil, validationFailed(errs)
	}

	existing, err := loadActiveStudent(ctx, uc.Repo, input.StudentID)
	if err != nil {
		return nil, nil, err
	}
	return existing, DiffStudent(existing, input.Data, fields), nil
}

// loadActiveStudent busca o aluno e trata lixeira como inexistente.
func loadActiveStudent(ctx context.Context, repo StudentRepositoryInterface, id string) (*entity.Student, error) {
	s, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrStudentNotFound) {
			return nil, notFoundError(id)
		}
		return nil, databaseError("falha ao buscar aluno", err)
	}
	if s == nil || s.IsDeleted() {
		return nil, notFoundError(id)
	}
	return s, nil
}

// describeChanges monta a descrição do histórico; extra entra depois dos campos.
func describeChanges(prefix string, changes []FieldChange, extra ...string) string {
	parts := make([]string, 0, len(changes)+len(extra))
	for _, c := range changes {
		parts = append(parts, fmt.Sprintf("%s: %s → %s", c.Field, display(c.Old), display(c.New)))
	}
	parts = append(parts, extra...)
	if len(parts) == 0 {
		return prefix
	}
	return prefix + ": " + strings.Join(parts, "; ")
}

func display(v *string) string {
	if v == nil {
		return "(vazio)"
	}
	return *v
}
