package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
	// IMPORTANTE: NÃO adicione imports de usecase ou infra aqui!
)

var (
	ErrStudentNotFound      = errors.New("aluno não encontrado")
	ErrStudentAlreadyExists = errors.New("aluno já cadastrado")
)

// TrashRetention é a janela em que um registro na lixeira ainda pode ser restaurado.
const TrashRetention = 30 * 24 * time.Hour

// Value Object: Tag
type Tag struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Entidade: Student (representa tanto leads quanto alunos matriculados)
type Student struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	CPF       string `json:"cpf,omitempty"`
	BirthDate string `json:"birth_date,omitempty"` // YYYY-MM-DD

	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
	Address string `json:"address,omitempty"`

	// Comercial
	Course            string      `json:"course,omitempty"`
	Source            string      `json:"source,omitempty"`
	FunnelStage       FunnelStage `json:"funnel_stage"`
	DealValue         float64     `json:"deal_value"`
	Currency          string      `json:"currency"`
	ExpectedCloseDate string      `json:"expected_close_date,omitempty"`
	Tags              []Tag       `json:"tags"`

	IsClient  bool       `json:"is_client"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Factory
func NewStudent(name, email string, stage FunnelStage) (*Student, error) {
	now := time.Now()
	s := &Student{
		ID:          uuid.New().String(),
		Name:        name,
		Email:       email,
		FunnelStage: stage,
		Currency:    "BRL",
		Tags:        []Tag{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Student) Validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.Email == "" {
		return errors.New("email is required")
	}
	if !s.FunnelStage.Valid() {
		return errors.New("funnel stage is invalid")
	}
	return nil
}

func (s *Student) IsDeleted() bool {
	return s.DeletedAt != nil
}

// RestoreDeadline devolve o instante a partir do qual o registro não pode mais ser restaurado.
func (s *Student) RestoreDeadline(retention time.Duration) time.Time {
	if s.DeletedAt == nil {
		return time.Time{}
	}
	return s.DeletedAt.Add(retention)
}

func (s *Student) CanRestore(now time.Time, retention time.Duration) bool {
	return s.IsDeleted() && now.Before(s.RestoreDeadline(retention))
}

// StudentFilter filtra a listagem padrão (sempre sem os registros na lixeira).
type StudentFilter struct {
	Stage  FunnelStage
	Source string
	Search string
	Limit  int
	Offset int
}
