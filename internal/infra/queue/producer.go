package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventStudentCreated  = "student.created"
	EventStudentUpdated  = "student.updated"
	EventStudentMerged   = "student.merged"
	EventStageChanged    = "student.stage_changed"
	EventStudentTrashed  = "student.trashed"
	EventStudentRestored = "student.restored"
)

type StudentEvent struct {
	Type      string `json:"type"`
	StudentID string `json:"student_id"`

	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
	Course string `json:"course,omitempty"`

	Stage         string  `json:"stage"`
	PreviousStage string  `json:"previous_stage,omitempty"`
	DealValue     float64 `json:"deal_value"`
	Currency      string  `json:"currency"`

	ActorID    string    `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher é o pedaço do canal AMQP que o producer usa.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishStudentEvent(ctx context.Context, event StudentEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("erro ao converter evento: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName, // ex.crm
		RoutingKey,   // k.student
		false,        // Mandatory
		false,        // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         event.Type,
			Timestamp:    event.OccurredAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %w", err)
	}
	return nil
}
