package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
)

// StudentLookup são as consultas de duplicidade. Todas ignoram registros na
// lixeira e devolvem (nil, nil) quando não há candidato.
type StudentLookup interface {
	FindActiveByName(ctx context.Context, normalizedName, excludeID string) (*entity.Student, error)
	FindActiveByEmail(ctx context.Context, normalizedEmail, excludeID string) (*entity.Student, error)
	FindActiveByCPF(ctx context.Context, formatted, digits, excludeID string) (*entity.Student, error)
	ListActiveWithPhone(ctx context.Context, excludeID string) ([]*entity.Student, error)
}

type StudentRepositoryInterface interface {
	StudentLookup

	Create(ctx context.Context, s *entity.Student) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*entity.Student, error)
	Update(ctx context.Context, s *entity.Student) error
	List(ctx context.Context, filter entity.StudentFilter) ([]*entity.Student, error)

	SoftDelete(ctx context.Context, id string, at time.Time) error
	Restore(ctx context.Context, id string) error
	ListTrashed(ctx context.Context) ([]*entity.Student, error)
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) ([]string, error)
}

type ActivityRepositoryInterface interface {
	Append(ctx context.Context, log *entity.ActivityLog) error
	ListByStudent(ctx context.Context, studentID string) ([]*entity.ActivityLog, error)
}

type EnrollmentRepositoryInterface interface {
	Create(ctx context.Context, e *entity.CourseEnrollment) error
	Delete(ctx context.Context, studentID, id string) error
	ListByStudent(ctx context.Context, studentID string) ([]*entity.CourseEnrollment, error)
}

type NoteRepositoryInterface interface {
	Create(ctx context.Context, n *entity.Note) error
	ListByStudent(ctx context.Context, studentID string) ([]*entity.Note, error)
}

type EventPublisher interface {
	PublishStudentEvent(ctx context.Context, event queue.StudentEvent) error
}

type EmailService interface {
	SendEnrollmentWelcome(to, name, course string) error
}
