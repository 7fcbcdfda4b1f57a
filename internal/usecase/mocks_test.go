package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
)

// MockStudentRepository
type MockStudentRepository struct {
	mock.Mock
}

func studentOrNil(args mock.Arguments) *entity.Student {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*entity.Student)
}

func (m *MockStudentRepository) FindActiveByName(ctx context.Context, normalizedName, excludeID string) (*entity.Student, error) {
	args := m.Called(ctx, normalizedName, excludeID)
	return studentOrNil(args), args.Error(1)
}

func (m *MockStudentRepository) FindActiveByEmail(ctx context.Context, normalizedEmail, excludeID string) (*entity.Student, error) {
	args := m.Called(ctx, normalizedEmail, excludeID)
	return studentOrNil(args), args.Error(1)
}

func (m *MockStudentRepository) FindActiveByCPF(ctx context.Context, formatted, digits, excludeID string) (*entity.Student, error) {
	args := m.Called(ctx, formatted, digits, excludeID)
	return studentOrNil(args), args.Error(1)
}

func (m *MockStudentRepository) ListActiveWithPhone(ctx context.Context, excludeID string) ([]*entity.Student, error) {
	args := m.Called(ctx, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Student), args.Error(1)
}

func (m *MockStudentRepository) Create(ctx context.Context, s *entity.Student) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockStudentRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStudentRepository) FindByID(ctx context.Context, id string) (*entity.Student, error) {
	args := m.Called(ctx, id)
	return studentOrNil(args), args.Error(1)
}

func (m *MockStudentRepository) Update(ctx context.Context, s *entity.Student) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockStudentRepository) List(ctx context.Context, filter entity.StudentFilter) ([]*entity.Student, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Student), args.Error(1)
}

func (m *MockStudentRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockStudentRepository) Restore(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStudentRepository) ListTrashed(ctx context.Context) ([]*entity.Student, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Student), args.Error(1)
}

func (m *MockStudentRepository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockActivityRepository
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Append(ctx context.Context, log *entity.ActivityLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *MockActivityRepository) ListByStudent(ctx context.Context, studentID string) ([]*entity.ActivityLog, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.ActivityLog), args.Error(1)
}

// MockEnrollmentRepository
type MockEnrollmentRepository struct {
	mock.Mock
}

func (m *MockEnrollmentRepository) Create(ctx context.Context, e *entity.CourseEnrollment) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockEnrollmentRepository) Delete(ctx context.Context, studentID, id string) error {
	return m.Called(ctx, studentID, id).Error(0)
}

func (m *MockEnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]*entity.CourseEnrollment, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.CourseEnrollment), args.Error(1)
}

// MockNoteRepository
type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) Create(ctx context.Context, n *entity.Note) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNoteRepository) ListByStudent(ctx context.Context, studentID string) ([]*entity.Note, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Note), args.Error(1)
}

// MockEventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishStudentEvent(ctx context.Context, event queue.StudentEvent) error {
	return m.Called(ctx, event).Error(0)
}

// fakeEmailService avisa pelo canal, porque o envio roda em goroutine.
type fakeEmailService struct {
	sent chan string
	err  error
}

func newFakeEmailService() *fakeEmailService {
	return &fakeEmailService{sent: make(chan string, 4)}
}

func (f *fakeEmailService) SendEnrollmentWelcome(to, name, course string) error {
	f.sent <- to
	return f.err
}

// recordingMetrics guarda o que foi registrado.
type recordingMetrics struct {
	mu           sync.Mutex
	checks       []string
	lookupErrors []string
	merges       []string
	transitions  []string
	purged       int
}

func (r *recordingMetrics) DuplicateCheck(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks = append(r.checks, result)
}

func (r *recordingMetrics) DuplicateLookupError(field string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookupErrors = append(r.lookupErrors, field)
}

func (r *recordingMetrics) Merge(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.merges = append(r.merges, status)
}

func (r *recordingMetrics) FunnelTransition(from, to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, from+"->"+to)
}

func (r *recordingMetrics) TrashPurged(count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purged += count
}

func newTestStudent(id, name, email string) *entity.Student {
	now := time.Now()
	return &entity.Student{
		ID:          id,
		Name:        name,
		Email:       email,
		FunnelStage: entity.StageNew,
		Currency:    "BRL",
		Tags:        []entity.Tag{},
		CreatedAt:   now.Add(-time.Hour),
		UpdatedAt:   now.Add(-time.Hour),
	}
}
