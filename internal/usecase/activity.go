package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
)

// recordActivity grava o histórico sem nunca desfazer a operação principal.
func recordActivity(ctx context.Context, repo ActivityRepositoryInterface, logger *zap.Logger, log *entity.ActivityLog) {
	if repo == nil {
		return
	}
	if err := repo.Append(ctx, log); err != nil {
		logger.Warn("falha ao gravar histórico; operação principal mantida",
			zap.String("student_id", log.StudentID),
			zap.String("action", log.Action),
			zap.Error(err),
		)
	}
}

func publishEvent(ctx context.Context, pub EventPublisher, logger *zap.Logger, event queue.StudentEvent) {
	if pub == nil {
		return
	}
	if err := pub.PublishStudentEvent(ctx, event); err != nil {
		logger.Error("falha ao publicar evento na fila",
			zap.String("student_id", event.StudentID),
			zap.String("event", event.Type),
			zap.Error(err),
		)
	}
}

func newStudentEvent(eventType string, s *entity.Student, actorID string) queue.StudentEvent {
	return queue.StudentEvent{
		Type:       eventType,
		StudentID:  s.ID,
		Name:       s.Name,
		Email:      s.Email,
		Phone:      s.Phone,
		Course:     s.Course,
		Stage:      string(s.FunnelStage),
		DealValue:  s.DealValue,
		Currency:   s.Currency,
		ActorID:    actorID,
		OccurredAt: time.Now(),
	}
}

type ActivityQueryUseCase struct {
	Repo     StudentRepositoryInterface
	Activity ActivityRepositoryInterface
}

func NewActivityQueryUseCase(repo StudentRepositoryInterface, activity ActivityRepositoryInterface) *ActivityQueryUseCase {
	return &ActivityQueryUseCase{Repo: repo, Activity: activity}
}

// List devolve o histórico do aluno, mais recente primeiro.
func (uc *ActivityQueryUseCase) List(ctx context.Context, studentID string) ([]*entity.ActivityLog, error) {
	if _, err := loadActiveStudent(ctx, uc.Repo, studentID); err != nil {
		return nil, err
	}
	logs, err := uc.Activity.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, databaseError("falha ao buscar histórico", err)
	}
	return logs, nil
}
