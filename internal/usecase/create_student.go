package usecase

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
)

const (
	FlowLead       = "lead"
	FlowEnrollment = "enrollment"
)

type CreateStudentInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	CPF       string `json:"cpf"`
	BirthDate string `json:"birth_date"`

	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Address string `json:"address"`

	Course            string       `json:"course"`
	Source            string       `json:"source"`
	DealValue         float64      `json:"deal_value"`
	Currency          string       `json:"currency"`
	ExpectedCloseDate string       `json:"expected_close_date"`
	Tags              []entity.Tag `json:"tags"`
	IsClient          bool         `json:"is_client"`

	// Flow: "lead" (funil) ou "enrollment" (matrícula direta)
	Flow    string `json:"flow"`
	Edition string `json:"edition"`
	// Force é o "criar mesmo assim" depois do aviso de duplicidade.
	Force   bool   `json:"force"`
	ActorID string `json:"-"`
}

func (in CreateStudentInput) fieldValues() map[string]string {
	return map[string]string{
		"name":                in.Name,
		"email":               in.Email,
		"phone":               in.Phone,
		"cpf":                 in.CPF,
		"birth_date":          in.BirthDate,
		"city":                in.City,
		"state":               in.State,
		"zip_code":            in.ZipCode,
		"address":             in.Address,
		"course":              in.Course,
		"source":              in.Source,
		"currency":            in.Currency,
		"expected_close_date": in.ExpectedCloseDate,
	}
}

func ValidateCreateStudentInput(in CreateStudentInput) []ValidationError {
	var errs []ValidationError

	values := in.fieldValues()
	for _, field := range MergeableFields {
		v, ok := values[field]
		if !ok {
			continue
		}
		if verr := validateFieldValue(field, v); verr != nil {
			errs = append(errs, *verr)
		}
	}

	if in.DealValue < 0 {
		errs = append(errs, ValidationError{"deal_value", "must not be negative"})
	}

	switch in.Flow {
	case "", FlowLead:
	case FlowEnrollment:
		if strings.TrimSpace(in.Course) == "" {
			errs = append(errs, ValidationError{"course", "is required for enrollment"})
		}
	default:
		errs = append(errs, ValidationError{"flow", "must be lead or enrollment"})
	}

	errs = append(errs, validateTags(in.Tags)...)
	return errs
}

type CreateStudentUseCase struct {
	Repo         StudentRepositoryInterface
	Enrollments  EnrollmentRepositoryInterface
	Activity     ActivityRepositoryInterface
	Checker      DuplicateCheckerInterface
	Events       EventPublisher
	EmailService EmailService
	Logger       *zap.Logger
}

func NewCreateStudentUseCase(
	repo StudentRepositoryInterface,
	enrollments EnrollmentRepositoryInterface,
	activity ActivityRepositoryInterface,
	checker DuplicateCheckerInterface,
	events EventPublisher,
	emailService EmailService,
	logger *zap.Logger,
) *CreateStudentUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreateStudentUseCase{
		Repo:         repo,
		Enrollments:  enrollments,
		Activity:     activity,
		Checker:      checker,
		Events:       events,
		EmailService: emailService,
		Logger:       logger,
	}
}

func (uc *CreateStudentUseCase) Execute(ctx context.Context, input CreateStudentInput) (*entity.Student, error) {
	if errs := ValidateCreateStudentInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	if !input.Force {
		verdict := uc.Checker.Check(ctx, DuplicateCheckInput{
			Name:  input.Name,
			Email: input.Email,
			Phone: input.Phone,
			CPF:   input.CPF,
		})
		if verdict.IsDuplicate {
			return nil, duplicateFound(verdict)
		}
	}

	stage := entity.StageNew
	if input.Flow == FlowEnrollment {
		stage = entity.StageEnrolled
	}

	student, err := entity.NewStudent(strings.TrimSpace(input.Name), strings.TrimSpace(input.Email), stage)
	if err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: err.Error()}
	}
	values := input.fieldValues()
	for _, field := range MergeableFields {
		if v, ok := values[field]; ok {
			studentFields[field].set(student, canonicalValue(field, v))
		}
	}
	if student.Currency == "" {
		student.Currency = "BRL"
	}
	student.DealValue = input.DealValue
	if input.Tags != nil {
		student.Tags = input.Tags
	}
	student.IsClient = input.IsClient || stage == entity.StageEnrolled

	txn := NewTransaction(uc.Logger)
	txn.AddOperation("create_student", func(ctx context.Context) error {
		return uc.Repo.Create(ctx, student)
	})
	txn.AddCompensation("delete_student", func(ctx context.Context) error {
		return uc.Repo.Delete(ctx, student.ID)
	})

	if input.Flow == FlowEnrollment {
		enrollment, err := entity.NewCourseEnrollment(student.ID, student.Course, entity.EnrollmentActive, input.Edition)
		if err != nil {
			return nil, &DomainError{Code: CodeValidation, Message: err.Error()}
		}
		txn.AddOperation("create_enrollment", func(ctx context.Context) error {
			return uc.Enrollments.Create(ctx, enrollment)
		})
	}

	if err := txn.Execute(ctx); err != nil {
		return nil, databaseError("falha ao gravar aluno", err)
	}

	recordActivity(ctx, uc.Activity, uc.Logger, entity.NewActivityLog(
		student.ID,
		entity.ActionStudentCreated,
		"Cadastro criado via "+flowLabel(input.Flow),
		input.ActorID,
		map[string]any{"flow": flowLabel(input.Flow), "forced": input.Force},
	))
	publishEvent(ctx, uc.Events, uc.Logger, newStudentEvent(queue.EventStudentCreated, student, input.ActorID))

	if stage == entity.StageEnrolled {
		sendWelcome(uc.EmailService, uc.Logger, student)
	}

	return student, nil
}

func duplicateFound(verdict DuplicateVerdict) *DomainError {
	labels := make([]string, 0, len(verdict.MatchedFields))
	for _, f := range verdict.MatchedFields {
		labels = append(labels, string(f))
	}
	msg := "já existe um cadastro com o mesmo " + strings.Join(labels, ", ")
	if verdict.Match != nil {
		msg += ": " + verdict.Match.Name
	}
	return &DomainError{Code: CodeDuplicateFound, Message: msg, Verdict: &verdict}
}

func flowLabel(flow string) string {
	if flow == "" {
		return FlowLead
	}
	return flow
}

// sendWelcome dispara o email em background; falha só vai para o log.
func sendWelcome(svc EmailService, logger *zap.Logger, s *entity.Student) {
	if svc == nil {
		return
	}
	name, email, course := s.Name, s.Email, s.Course
	go func() {
		start := time.Now()
		if err := svc.SendEnrollmentWelcome(email, name, course); err != nil {
			logger.Warn("falha ao enviar email de boas-vindas", zap.String("email", email), zap.Error(err))
			return
		}
		logger.Info("email de boas-vindas enviado", zap.String("email", email), zap.Duration("took", time.Since(start)))
	}()
}
