package usecase

import (
	"strconv"
	"strings"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// studentField liga o nome do campo (como chega do front) ao atributo do aluno.
type studentField struct {
	get func(s *entity.Student) string
	set func(s *entity.Student, v string)
	// canon deixa o valor na forma em que é gravado (ex: número com 2 casas).
	canon func(v string) string
	// key é a forma usada para comparar; dois valores com a mesma chave não geram mudança.
	key func(v string) string
}

var studentFields = map[string]studentField{
	"name":                {get: func(s *entity.Student) string { return s.Name }, set: func(s *entity.Student, v string) { s.Name = v }},
	"email":               {get: func(s *entity.Student) string { return s.Email }, set: func(s *entity.Student, v string) { s.Email = v }},
	"phone":               {get: func(s *entity.Student) string { return s.Phone }, set: func(s *entity.Student, v string) { s.Phone = v }, key: NormalizePhone},
	"cpf":                 {get: func(s *entity.Student) string { return s.CPF }, set: func(s *entity.Student, v string) { s.CPF = v }, canon: canonicalCPF, key: NormalizeCPF},
	"birth_date":          {get: func(s *entity.Student) string { return s.BirthDate }, set: func(s *entity.Student, v string) { s.BirthDate = v }},
	"city":                {get: func(s *entity.Student) string { return s.City }, set: func(s *entity.Student, v string) { s.City = v }},
	"state":               {get: func(s *entity.Student) string { return s.State }, set: func(s *entity.Student, v string) { s.State = v }, canon: strings.ToUpper},
	"zip_code":            {get: func(s *entity.Student) string { return s.ZipCode }, set: func(s *entity.Student, v string) { s.ZipCode = v }},
	"address":             {get: func(s *entity.Student) string { return s.Address }, set: func(s *entity.Student, v string) { s.Address = v }},
	"course":              {get: func(s *entity.Student) string { return s.Course }, set: func(s *entity.Student, v string) { s.Course = v }},
	"source":              {get: func(s *entity.Student) string { return s.Source }, set: func(s *entity.Student, v string) { s.Source = v }},
	"currency":            {get: func(s *entity.Student) string { return s.Currency }, set: func(s *entity.Student, v string) { s.Currency = v }, canon: strings.ToUpper},
	"expected_close_date": {get: func(s *entity.Student) string { return s.ExpectedCloseDate }, set: func(s *entity.Student, v string) { s.ExpectedCloseDate = v }},
	"deal_value": {
		get: func(s *entity.Student) string {
			if s.DealValue == 0 {
				return ""
			}
			return strconv.FormatFloat(s.DealValue, 'f', 2, 64)
		},
		set: func(s *entity.Student, v string) {
			f, _ := strconv.ParseFloat(v, 64)
			s.DealValue = f
		},
		canon: func(v string) string {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f == 0 {
				return v
			}
			return strconv.FormatFloat(f, 'f', 2, 64)
		},
	},
}

// MergeableFields é a lista padrão, na ordem em que aparece na tela de merge.
var MergeableFields = []string{
	"name", "email", "phone", "cpf", "birth_date",
	"city", "state", "zip_code", "address",
	"course", "source", "deal_value", "currency", "expected_close_date",
}

func IsStudentField(name string) bool {
	_, ok := studentFields[name]
	return ok
}

func canonicalValue(field, v string) string {
	v = strings.TrimSpace(v)
	if f, ok := studentFields[field]; ok && f.canon != nil && v != "" {
		return f.canon(v)
	}
	return v
}

// sameValue compara o valor gravado com o novo já canônico.
func sameValue(field, stored, incoming string) bool {
	if stored == incoming {
		return true
	}
	f, ok := studentFields[field]
	if !ok || f.key == nil || stored == "" || incoming == "" {
		return false
	}
	return f.key(stored) == f.key(incoming)
}

// canonicalCPF grava o CPF sempre como ###.###.###-##.
func canonicalCPF(v string) string {
	return FormatCPF(NormalizeCPF(v))
}

func strPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
