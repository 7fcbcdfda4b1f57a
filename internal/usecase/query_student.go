package usecase

import (
	"context"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type StudentQueryUseCase struct {
	Repo StudentRepositoryInterface
}

func NewStudentQueryUseCase(repo StudentRepositoryInterface) *StudentQueryUseCase {
	return &StudentQueryUseCase{Repo: repo}
}

func (uc *StudentQueryUseCase) Get(ctx context.Context, id string) (*entity.Student, error) {
	return loadActiveStudent(ctx, uc.Repo, id)
}

func (uc *StudentQueryUseCase) List(ctx context.Context, filter entity.StudentFilter) ([]*entity.Student, error) {
	if filter.Stage != "" && !filter.Stage.Valid() {
		return nil, validationFailed([]ValidationError{{"stage", "is not a funnel stage"}})
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	students, err := uc.Repo.List(ctx, filter)
	if err != nil {
		return nil, databaseError("falha ao listar alunos", err)
	}
	return students, nil
}
