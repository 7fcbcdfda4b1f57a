package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

func TestDuplicateCheckerNoGatedFieldSkipsStore(t *testing.T) {
	repo := new(MockStudentRepository)
	metrics := &recordingMetrics{}
	c := NewDuplicateChecker(NewFieldMatcher(repo), nil, metrics)

	v := c.Check(context.Background(), DuplicateCheckInput{Name: "Jo", Email: "j", Phone: "11", CPF: "123"})

	assert.False(t, v.IsDuplicate)
	assert.False(t, v.Checking)
	assert.Nil(t, v.Match)
	assert.Empty(t, v.MatchedFields)
	assert.Len(t, v.Fields, 4)
	assert.Equal(t, []string{"skipped"}, metrics.checks)
	assert.Empty(t, repo.Calls)
}

func TestDuplicateCheckerEmailMatch(t *testing.T) {
	repo := new(MockStudentRepository)
	existing := newTestStudent("s-1", "João Pereira", "joao@x.com")
	repo.On("FindActiveByEmail", mock.Anything, "joao@x.com", "").Return(existing, nil)

	c := NewDuplicateChecker(NewFieldMatcher(repo), nil, nil)
	v := c.Check(context.Background(), DuplicateCheckInput{Email: "joao@x.com"})

	require.True(t, v.IsDuplicate)
	assert.False(t, v.Checking)
	assert.Equal(t, "João Pereira", v.Match.Name)
	assert.Equal(t, []FieldKind{FieldEmail}, v.MatchedFields)
}

func TestDuplicateCheckerTrashedOnlyMatchIsNotDuplicate(t *testing.T) {
	// o repositório já filtra deleted_at; para o checker isso é "sem candidato"
	repo := new(MockStudentRepository)
	repo.On("FindActiveByEmail", mock.Anything, "joao@x.com", "").Return(nil, nil)

	c := NewDuplicateChecker(NewFieldMatcher(repo), nil, nil)
	v := c.Check(context.Background(), DuplicateCheckInput{Email: "joao@x.com"})

	assert.False(t, v.IsDuplicate)
	assert.Nil(t, v.Match)
	for _, f := range v.Fields {
		if f.Field == FieldEmail {
			assert.True(t, f.Checked)
		}
	}
}

func TestDuplicateCheckerPriorityOrder(t *testing.T) {
	repo := new(MockStudentRepository)
	byName := newTestStudent("s-name", "Maria Silva", "ms@x.com")
	byEmail := newTestStudent("s-email", "Outra Maria", "maria@x.com")
	byPhone := newTestStudent("s-phone", "Maria Telefone", "mt@x.com")
	byPhone.Phone = "(11) 91234-5678"
	byCPF := newTestStudent("s-cpf", "Maria CPF", "mc@x.com")

	repo.On("FindActiveByName", mock.Anything, "maria silva", "").Return(byName, nil)
	repo.On("FindActiveByEmail", mock.Anything, "maria@x.com", "").Return(byEmail, nil)
	repo.On("ListActiveWithPhone", mock.Anything, "").Return([]*entity.Student{byPhone}, nil)
	repo.On("FindActiveByCPF", mock.Anything, "123.456.789-09", "12345678909", "").Return(byCPF, nil)

	c := NewDuplicateChecker(NewFieldMatcher(repo), nil, nil)
	in := DuplicateCheckInput{Name: "Maria Silva", Email: "maria@x.com", Phone: "11912345678", CPF: "123.456.789-09"}

	v := c.Check(context.Background(), in)
	require.True(t, v.IsDuplicate)
	assert.Equal(t, "s-cpf", v.Match.ID)
	assert.Equal(t, []FieldKind{FieldCPF, FieldPhone, FieldEmail, FieldName}, v.MatchedFields)

	// sem CPF, o telefone vence o email
	in.CPF = ""
	v = c.Check(context.Background(), in)
	assert.Equal(t, "s-phone", v.Match.ID)
	assert.Equal(t, []FieldKind{FieldPhone, FieldEmail, FieldName}, v.MatchedFields)
}

func TestDuplicateCheckerLookupErrorDegradesToNoDuplicate(t *testing.T) {
	repo := new(MockStudentRepository)
	byName := newTestStudent("s-name", "Maria Silva", "ms@x.com")
	repo.On("FindActiveByEmail", mock.Anything, "maria@x.com", "").Return(nil, errors.New("timeout"))
	repo.On("FindActiveByName", mock.Anything, "maria silva", "").Return(byName, nil)
	metrics := &recordingMetrics{}

	c := NewDuplicateChecker(NewFieldMatcher(repo), nil, metrics)
	v := c.Check(context.Background(), DuplicateCheckInput{Name: "Maria Silva", Email: "maria@x.com"})

	assert.True(t, v.IsDuplicate)
	assert.Equal(t, "s-name", v.Match.ID)
	assert.Equal(t, []FieldKind{FieldName}, v.MatchedFields)
	for _, f := range v.Fields {
		if f.Field == FieldEmail {
			assert.False(t, f.Checked)
			assert.False(t, f.Checking)
			assert.False(t, f.IsDuplicate)
		}
	}
	assert.Equal(t, []string{"email"}, metrics.lookupErrors)
	assert.Equal(t, []string{"duplicate"}, metrics.checks)
}

func TestDuplicateCheckerExcludesOwnRecord(t *testing.T) {
	repo := new(MockStudentRepository)
	repo.On("FindActiveByEmail", mock.Anything, "joao@x.com", "s-1").Return(nil, nil)
	repo.On("FindActiveByName", mock.Anything, "joão pereira", "s-1").Return(nil, nil)

	c := NewDuplicateChecker(NewFieldMatcher(repo), nil, nil)
	v := c.Check(context.Background(), DuplicateCheckInput{Name: "João Pereira", Email: "joao@x.com", ExcludeID: "s-1"})

	assert.False(t, v.IsDuplicate)
	repo.AssertExpectations(t)
}

func TestCheckingVerdictMarksOnlyGatedFields(t *testing.T) {
	v := checkingVerdict(DuplicateCheckInput{Name: "Jo", Email: "joao@x.com"})
	assert.True(t, v.Checking)
	for _, f := range v.Fields {
		assert.Equal(t, f.Field == FieldEmail, f.Checking, f.Field)
	}

	v = checkingVerdict(DuplicateCheckInput{Name: "Jo"})
	assert.False(t, v.Checking)
}
