package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// CRMSyncClient define o contrato para o CRM externo (Kommo).
type CRMSyncClient interface {
	SyncEnrollment(ctx context.Context, event StudentEvent) error
}

type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel Consumer
	CRM     CRMSyncClient
	Logger  *zap.Logger
}

func NewWorker(ch Consumer, crm CRMSyncClient, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{Channel: ch, CRM: crm, Logger: logger}
}

// Start consome a fila até o contexto ser cancelado ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName, // fila
		"",        // consumer
		false,     // auto-ack (manual é mais seguro)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	w.Logger.Info("worker aguardando na fila", zap.String("queue", queueName))

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("worker encerrado")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("canal de consumo fechado")
			}
			w.handleDelivery(ctx, d)
		}
	}
}

func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var event StudentEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		w.Logger.Error("evento com JSON inválido", zap.Error(err))
		// Mensagem podre. Rejeita sem requeue para não travar a fila.
		d.Nack(false, false)
		return
	}

	if err := w.processMessage(ctx, event); err != nil {
		w.Logger.Error("erro ao processar evento",
			zap.String("event", event.Type),
			zap.String("student_id", event.StudentID),
			zap.Error(err),
		)
		// vai para a DLQ
		d.Nack(false, false)
		return
	}
	d.Ack(false)
}

func (w *Worker) processMessage(ctx context.Context, event StudentEvent) error {
	switch {
	case reachedEnrolled(event):
		if w.CRM == nil {
			return nil
		}
		w.Logger.Info("sincronizando matrícula com o CRM", zap.String("student_id", event.StudentID))
		return w.CRM.SyncEnrollment(ctx, event)
	default:
		w.Logger.Debug("evento sem ação no worker", zap.String("event", event.Type))
		return nil
	}
}

// reachedEnrolled cobre a mudança de etapa e o cadastro que já nasce matriculado.
func reachedEnrolled(event StudentEvent) bool {
	if event.Stage != "enrolled" {
		return false
	}
	return event.Type == EventStageChanged || event.Type == EventStudentCreated
}
