package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

type CaptureLeadInput struct {
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Course string `json:"course,omitempty"`
	Source string `json:"source,omitempty"`
}

type CaptureLeadOutput struct {
	StudentID string `json:"student_id"`
	Created   bool   `json:"created"`
}

// CaptureLeadUseCase atende o formulário público da landing page.
// Email já cadastrado não gera lead novo: a captura é idempotente.
type CaptureLeadUseCase struct {
	Matcher *FieldMatcher
	Create  *CreateStudentUseCase
	Logger  *zap.Logger
}

func NewCaptureLeadUseCase(matcher *FieldMatcher, create *CreateStudentUseCase, logger *zap.Logger) *CaptureLeadUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaptureLeadUseCase{Matcher: matcher, Create: create, Logger: logger}
}

func (uc *CaptureLeadUseCase) Execute(ctx context.Context, input CaptureLeadInput) (*CaptureLeadOutput, error) {
	email := strings.TrimSpace(input.Email)
	if verr := validateFieldValue("email", email); verr != nil {
		return nil, validationFailed([]ValidationError{*verr})
	}

	existing, err := uc.Matcher.Match(ctx, FieldEmail, email, "")
	if err != nil {
		// a checagem é só consultiva; segue criando
		uc.Logger.Warn("falha ao checar email do lead", zap.Error(err))
	}
	if existing != nil {
		return &CaptureLeadOutput{StudentID: existing.ID, Created: false}, nil
	}

	name := strings.TrimSpace(input.Name)
	if len([]rune(name)) < 3 {
		name = email[:strings.Index(email, "@")]
		if len([]rune(name)) < 3 {
			name = email
		}
	}
	source := input.Source
	if source == "" {
		source = "website"
	}

	student, err := uc.Create.Execute(ctx, CreateStudentInput{
		Name:   name,
		Email:  email,
		Phone:  input.Phone,
		Course: input.Course,
		Source: source,
		Flow:   FlowLead,
		Force:  true,
	})
	if err != nil {
		return nil, err
	}
	return &CaptureLeadOutput{StudentID: student.ID, Created: true}, nil
}
