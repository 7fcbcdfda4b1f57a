package usecase

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// Ordem de prioridade do match exibido: CPF > telefone > email > nome.
var fieldPriority = []FieldKind{FieldCPF, FieldPhone, FieldEmail, FieldName}

type DuplicateCheckInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	CPF       string `json:"cpf"`
	ExcludeID string `json:"exclude_id,omitempty"`
}

func (in DuplicateCheckInput) value(kind FieldKind) string {
	switch kind {
	case FieldName:
		return in.Name
	case FieldEmail:
		return in.Email
	case FieldPhone:
		return in.Phone
	case FieldCPF:
		return in.CPF
	}
	return ""
}

type FieldCheck struct {
	Field       FieldKind       `json:"field"`
	Checked     bool            `json:"checked"`
	Checking    bool            `json:"checking"`
	IsDuplicate bool            `json:"is_duplicate"`
	Match       *entity.Student `json:"match,omitempty"`
}

type DuplicateVerdict struct {
	IsDuplicate   bool            `json:"is_duplicate"`
	Checking      bool            `json:"checking"`
	Match         *entity.Student `json:"match,omitempty"`
	MatchedFields []FieldKind     `json:"matched_fields"`
	Fields        []FieldCheck    `json:"fields"`
}

// emptyVerdict é o "sem duplicidade, nada sendo verificado".
func emptyVerdict() DuplicateVerdict {
	fields := make([]FieldCheck, len(fieldPriority))
	for i, k := range fieldPriority {
		fields[i] = FieldCheck{Field: k}
	}
	return DuplicateVerdict{MatchedFields: []FieldKind{}, Fields: fields}
}

// checkingVerdict marca como "verificando" os campos que vão gerar consulta.
func checkingVerdict(in DuplicateCheckInput) DuplicateVerdict {
	v := emptyVerdict()
	for i, k := range fieldPriority {
		if MeetsMinimum(k, in.value(k)) {
			v.Fields[i].Checking = true
			v.Checking = true
		}
	}
	return v
}

type DuplicateChecker struct {
	Matcher *FieldMatcher
	Logger  *zap.Logger
	Metrics MetricsRecorder
}

func NewDuplicateChecker(matcher *FieldMatcher, logger *zap.Logger, metrics MetricsRecorder) *DuplicateChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DuplicateChecker{Matcher: matcher, Logger: logger, Metrics: metricsOrNop(metrics)}
}

// Check roda o matcher de cada campo em paralelo e combina o resultado.
// Nunca devolve erro: falha de consulta vira "sem duplicidade" naquele campo.
func (c *DuplicateChecker) Check(ctx context.Context, in DuplicateCheckInput) DuplicateVerdict {
	verdict := emptyVerdict()

	gated := 0
	for _, kind := range fieldPriority {
		if MeetsMinimum(kind, in.value(kind)) {
			gated++
		}
	}
	if gated == 0 {
		c.Metrics.DuplicateCheck("skipped")
		return verdict
	}

	var wg sync.WaitGroup
	for i, kind := range fieldPriority {
		raw := in.value(kind)
		if !MeetsMinimum(kind, raw) {
			continue
		}

		wg.Add(1)
		go func(slot *FieldCheck, kind FieldKind, raw string) {
			defer wg.Done()

			match, err := c.Matcher.Match(ctx, kind, raw, in.ExcludeID)
			if err != nil {
				c.Logger.Warn("falha na verificação de duplicidade",
					zap.String("field", string(kind)),
					zap.String("exclude_id", in.ExcludeID),
					zap.Error(err),
				)
				c.Metrics.DuplicateLookupError(string(kind))
				return
			}

			slot.Checked = true
			if match != nil {
				slot.IsDuplicate = true
				slot.Match = match
			}
		}(&verdict.Fields[i], kind, raw)
	}
	wg.Wait()

	for _, f := range verdict.Fields {
		if !f.IsDuplicate {
			continue
		}
		if verdict.Match == nil {
			verdict.Match = f.Match
		}
		verdict.IsDuplicate = true
		verdict.MatchedFields = append(verdict.MatchedFields, f.Field)
	}

	if verdict.IsDuplicate {
		c.Metrics.DuplicateCheck("duplicate")
	} else {
		c.Metrics.DuplicateCheck("clean")
	}
	return verdict
}
