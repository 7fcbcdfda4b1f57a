package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Transaction executa operações em ordem e, se alguma falhar, roda as
// compensações das que já tinham dado certo (de trás pra frente).
type Transaction struct {
	operations    []Operation
	compensations []Compensation
	logger        *zap.Logger
}

type Operation struct {
	Name string
	Fn   func(context.Context) error
}

type Compensation struct {
	Name string
	Fn   func(context.Context) error
}

func NewTransaction(logger *zap.Logger) *Transaction {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transaction{logger: logger}
}

func (t *Transaction) AddOperation(name string, fn func(context.Context) error) {
	t.operations = append(t.operations, Operation{name, fn})
}

// AddCompensation registra o desfazer da operação de mesmo índice.
func (t *Transaction) AddCompensation(name string, fn func(context.Context) error) {
	t.compensations = append(t.compensations, Compensation{name, fn})
}

func (t *Transaction) Execute(ctx context.Context) error {
	for i, op := range t.operations {
		if err := op.Fn(ctx); err != nil {
			t.rollback(ctx, i)
			return fmt.Errorf("operation '%s' failed: %w (rolled back %d operations)", op.Name, err, i)
		}
	}
	return nil
}

func (t *Transaction) rollback(ctx context.Context, failedAtIndex int) {
	for i := failedAtIndex - 1; i >= 0; i-- {
		if i >= len(t.compensations) || t.compensations[i].Fn == nil {
			continue
		}
		comp := t.compensations[i]
		if err := comp.Fn(ctx); err != nil {
			t.logger.Error("compensação falhou (risco de inconsistência)",
				zap.String("compensation", comp.Name),
				zap.Error(err),
			)
		}
	}
}
