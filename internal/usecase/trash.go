package usecase

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
)

type TrashItem struct {
	Student       *entity.Student `json:"student"`
	PurgeAt       time.Time       `json:"purge_at"`
	DaysRemaining int             `json:"days_remaining"`
}

// TrashUseCase cuida da lixeira: ativo → na lixeira (recuperável) → apagado de vez.
type TrashUseCase struct {
	Repo      StudentRepositoryInterface
	Activity  ActivityRepositoryInterface
	Events    EventPublisher
	Logger    *zap.Logger
	Metrics   MetricsRecorder
	Retention time.Duration
	Now       func() time.Time
}

func NewTrashUseCase(
	repo StudentRepositoryInterface,
	activity ActivityRepositoryInterface,
	events EventPublisher,
	logger *zap.Logger,
	metrics MetricsRecorder,
	retention time.Duration,
) *TrashUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retention <= 0 {
		retention = entity.TrashRetention
	}
	return &TrashUseCase{
		Repo:      repo,
		Activity:  activity,
		Events:    events,
		Logger:    logger,
		Metrics:   metricsOrNop(metrics),
		Retention: retention,
		Now:       time.Now,
	}
}

func (uc *TrashUseCase) MoveToTrash(ctx context.Context, id, actorID string) error {
	student, err := loadActiveStudent(ctx, uc.Repo, id)
	if err != nil {
		return err
	}

	now := uc.Now()
	if err := uc.Repo.SoftDelete(ctx, id, now); err != nil {
		return databaseError("falha ao mover para a lixeira", err)
	}
	student.DeletedAt = &now

	recordActivity(ctx, uc.Activity, uc.Logger, entity.NewActivityLog(
		id, entity.ActionStudentTrashed, "Cadastro movido para a lixeira", actorID, nil,
	))
	publishEvent(ctx, uc.Events, uc.Logger, newStudentEvent(queue.EventStudentTrashed, student, actorID))
	return nil
}

func (uc *TrashUseCase) Restore(ctx context.Context, id, actorID string) (*entity.Student, error) {
	student, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrStudentNotFound) {
			return nil, notFoundError(id)
		}
		return nil, databaseError("falha ao buscar aluno", err)
	}
	if student == nil {
		return nil, notFoundError(id)
	}
	if !student.IsDeleted() {
		return nil, &DomainError{Code: CodeNotInTrash, Message: "o cadastro não está na lixeira"}
	}
	if !student.CanRestore(uc.Now(), uc.Retention) {
		return nil, &DomainError{Code: CodeRestoreExpired, Message: "prazo de restauração expirado"}
	}

	if err := uc.Repo.Restore(ctx, id); err != nil {
		return nil, databaseError("falha ao restaurar aluno", err)
	}
	student.DeletedAt = nil

	recordActivity(ctx, uc.Activity, uc.Logger, entity.NewActivityLog(
		id, entity.ActionStudentRestored, "Cadastro restaurado da lixeira", actorID, nil,
	))
	publishEvent(ctx, uc.Events, uc.Logger, newStudentEvent(queue.EventStudentRestored, student, actorID))
	return student, nil
}

func (uc *TrashUseCase) ListTrash(ctx context.Context) ([]TrashItem, error) {
	students, err := uc.Repo.ListTrashed(ctx)
	if err != nil {
		return nil, databaseError("falha ao listar lixeira", err)
	}

	now := uc.Now()
	items := make([]TrashItem, 0, len(students))
	for _, s := range students {
		purgeAt := s.RestoreDeadline(uc.Retention)
		days := int(math.Ceil(purgeAt.Sub(now).Hours() / 24))
		if days < 0 {
			days = 0
		}
		items = append(items, TrashItem{Student: s, PurgeAt: purgeAt, DaysRemaining: days})
	}
	return items, nil
}

// PurgeExpired apaga de vez o que está na lixeira há mais tempo que a retenção.
func (uc *TrashUseCase) PurgeExpired(ctx context.Context) (int, error) {
	cutoff := uc.Now().Add(-uc.Retention)
	ids, err := uc.Repo.PurgeDeletedBefore(ctx, cutoff)
	if err != nil {
		return 0, databaseError("falha ao esvaziar lixeira", err)
	}

	if len(ids) > 0 {
		uc.Metrics.TrashPurged(len(ids))
		uc.Logger.Info("registros apagados definitivamente",
			zap.Int("count", len(ids)),
			zap.Time("cutoff", cutoff),
			zap.Strings("ids", ids),
		)
	}
	return len(ids), nil
}
