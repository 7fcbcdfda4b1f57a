package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
)

type MoveStageInput struct {
	StudentID string             `json:"-"`
	To        entity.FunnelStage `json:"to"`
	Reason    string             `json:"reason,omitempty"` // motivo da perda
	ActorID   string             `json:"-"`
}

type MoveStageOutput struct {
	Student *entity.Student    `json:"student"`
	From    entity.FunnelStage `json:"from"`
	To      entity.FunnelStage `json:"to"`
	Changed bool               `json:"changed"`
}

// MoveStageUseCase é o drag/drop do kanban (e as ações do menu do card).
type MoveStageUseCase struct {
	Repo         StudentRepositoryInterface
	Activity     ActivityRepositoryInterface
	Events       EventPublisher
	EmailService EmailService
	Logger       *zap.Logger
	Metrics      MetricsRecorder
}

func NewMoveStageUseCase(
	repo StudentRepositoryInterface,
	activity ActivityRepositoryInterface,
	events EventPublisher,
	emailService EmailService,
	logger *zap.Logger,
	metrics MetricsRecorder,
) *MoveStageUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MoveStageUseCase{
		Repo:         repo,
		Activity:     activity,
		Events:       events,
		EmailService: emailService,
		Logger:       logger,
		Metrics:      metricsOrNop(metrics),
	}
}

func (uc *MoveStageUseCase) Execute(ctx context.Context, input MoveStageInput) (*MoveStageOutput, error) {
	if !input.To.Valid() {
		return nil, validationFailed([]ValidationError{{"to", "is not a funnel stage"}})
	}

	student, err := loadActiveStudent(ctx, uc.Repo, input.StudentID)
	if err != nil {
		return nil, err
	}

	from := student.FunnelStage
	if from == input.To {
		return &MoveStageOutput{Student: student, From: from, To: input.To}, nil
	}
	if !from.CanMoveTo(input.To) {
		return nil, &DomainError{
			Code:    CodeInvalidTransition,
			Message: fmt.Sprintf("não é possível mover de %s para %s", from, input.To),
		}
	}

	student.FunnelStage = input.To
	if input.To == entity.StageEnrolled {
		student.IsClient = true
	}
	student.UpdatedAt = time.Now()

	if err := uc.Repo.Update(ctx, student); err != nil {
		return nil, databaseError("falha ao mover etapa do funil", err)
	}
	uc.Metrics.FunnelTransition(string(from), string(input.To))

	details := map[string]any{"from": from, "to": input.To}
	description := fmt.Sprintf("Etapa alterada de %s para %s", from, input.To)
	if input.To == entity.StageLost && input.Reason != "" {
		details["reason"] = input.Reason
		description += " (motivo: " + input.Reason + ")"
	}
	recordActivity(ctx, uc.Activity, uc.Logger, entity.NewActivityLog(
		student.ID, entity.ActionStageChanged, description, input.ActorID, details,
	))

	event := newStudentEvent(queue.EventStageChanged, student, input.ActorID)
	event.PreviousStage = string(from)
	publishEvent(ctx, uc.Events, uc.Logger, event)

	if input.To == entity.StageEnrolled {
		sendWelcome(uc.EmailService, uc.Logger, student)
	}

	return &MoveStageOutput{Student: student, From: from, To: input.To, Changed: true}, nil
}
