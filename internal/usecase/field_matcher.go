package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type FieldKind string

const (
	FieldName  FieldKind = "name"
	FieldEmail FieldKind = "email"
	FieldPhone FieldKind = "phone"
	FieldCPF   FieldKind = "cpf"
)

// Tamanhos mínimos (já normalizados) para disparar uma consulta.
const (
	minNameLength  = 5
	minEmailLength = 5
	minPhoneDigits = 10
	minCPFDigits   = 11
)

// MeetsMinimum diz se o valor tem tamanho suficiente para valer uma consulta.
func MeetsMinimum(kind FieldKind, raw string) bool {
	switch kind {
	case FieldName:
		return len([]rune(NormalizeName(raw))) >= minNameLength
	case FieldEmail:
		e := NormalizeEmail(raw)
		return len(e) >= minEmailLength && strings.Contains(e, "@")
	case FieldPhone:
		return len(NormalizePhone(raw)) >= minPhoneDigits
	case FieldCPF:
		return len(NormalizeCPF(raw)) >= minCPFDigits
	}
	return false
}

type FieldMatcher struct {
	Lookup StudentLookup
}

func NewFieldMatcher(lookup StudentLookup) *FieldMatcher {
	return &FieldMatcher{Lookup: lookup}
}

// Match procura um registro ativo cujo campo normalizado seja igual ao candidato.
// Devolve (nil, nil) se não houver match ou se o valor não passar do tamanho mínimo.
func (m *FieldMatcher) Match(ctx context.Context, kind FieldKind, raw, excludeID string) (*entity.Student, error) {
	if !MeetsMinimum(kind, raw) {
		return nil, nil
	}

	switch kind {
	case FieldName:
		return m.Lookup.FindActiveByName(ctx, NormalizeName(raw), excludeID)
	case FieldEmail:
		return m.Lookup.FindActiveByEmail(ctx, NormalizeEmail(raw), excludeID)
	case FieldCPF:
		digits := NormalizeCPF(raw)
		return m.Lookup.FindActiveByCPF(ctx, FormatCPF(digits), digits, excludeID)
	case FieldPhone:
		return m.matchPhone(ctx, NormalizePhone(raw), excludeID)
	}
	return nil, fmt.Errorf("campo desconhecido: %s", kind)
}

// O telefone é comparado em memória: os registros antigos não têm formato
// consistente no banco, então buscamos todos com telefone e comparamos dígitos.
func (m *FieldMatcher) matchPhone(ctx context.Context, digits, excludeID string) (*entity.Student, error) {
	candidates, err := m.Lookup.ListActiveWithPhone(ctx, excludeID)
	if err != nil {
		return nil, err
	}
	for _, c := range candidates {
		if c.ID == excludeID || c.IsDeleted() {
			continue
		}
		if NormalizePhone(c.Phone) == digits {
			return c, nil
		}
	}
	return nil, nil
}
