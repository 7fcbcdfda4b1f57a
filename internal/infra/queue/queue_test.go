package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (f *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func TestPublishStudentEvent(t *testing.T) {
	pub := &fakePublisher{}
	at := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)

	err := NewProducer(pub).PublishStudentEvent(context.Background(), StudentEvent{
		Type: EventStudentMerged, StudentID: "s-1", Name: "Ana", OccurredAt: at,
	})

	require.NoError(t, err)
	assert.Equal(t, ExchangeName, pub.exchange)
	assert.Equal(t, RoutingKey, pub.key)
	assert.Equal(t, EventStudentMerged, pub.msg.Type)
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)

	var got StudentEvent
	require.NoError(t, json.Unmarshal(pub.msg.Body, &got))
	assert.Equal(t, "s-1", got.StudentID)
}

func TestPublishStudentEventWrapsError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("canal fechado")}

	err := NewProducer(pub).PublishStudentEvent(context.Background(), StudentEvent{Type: EventStudentCreated})

	assert.ErrorContains(t, err, "canal fechado")
}

type fakeAck struct {
	mu            sync.Mutex
	acked, nacked int
	lastRequeue   bool
}

func (f *fakeAck) Ack(uint64, bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked++
	return nil
}

func (f *fakeAck) Nack(_ uint64, _ bool, requeue bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nacked++
	f.lastRequeue = requeue
	return nil
}

func (f *fakeAck) Reject(uint64, bool) error { return nil }

type fakeCRM struct {
	mu     sync.Mutex
	events []StudentEvent
	err    error
}

func (f *fakeCRM) SyncEnrollment(_ context.Context, e StudentEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return f.err
}

func delivery(t *testing.T, ack amqp.Acknowledger, e StudentEvent) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(e)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, Body: body}
}

func TestHandleDeliverySyncsEnrollment(t *testing.T) {
	crm := &fakeCRM{}
	ack := &fakeAck{}
	w := NewWorker(nil, crm, nil)

	w.handleDelivery(context.Background(), delivery(t, ack, StudentEvent{Type: EventStageChanged, StudentID: "s-1", Stage: "enrolled"}))
	w.handleDelivery(context.Background(), delivery(t, ack, StudentEvent{Type: EventStageChanged, StudentID: "s-2", Stage: "proposal"}))
	w.handleDelivery(context.Background(), delivery(t, ack, StudentEvent{Type: EventStudentMerged, StudentID: "s-3"}))

	assert.Equal(t, 3, ack.acked)
	require.Len(t, crm.events, 1)
	assert.Equal(t, "s-1", crm.events[0].StudentID)
}

func TestHandleDeliverySyncsDirectEnrollment(t *testing.T) {
	crm := &fakeCRM{}
	ack := &fakeAck{}
	w := NewWorker(nil, crm, nil)

	w.handleDelivery(context.Background(), delivery(t, ack, StudentEvent{Type: EventStudentCreated, StudentID: "s-1", Stage: "enrolled"}))
	w.handleDelivery(context.Background(), delivery(t, ack, StudentEvent{Type: EventStudentCreated, StudentID: "s-2", Stage: "new"}))
	w.handleDelivery(context.Background(), delivery(t, ack, StudentEvent{Type: EventStudentUpdated, StudentID: "s-3", Stage: "enrolled"}))

	assert.Equal(t, 3, ack.acked)
	require.Len(t, crm.events, 1)
	assert.Equal(t, "s-1", crm.events[0].StudentID)
}

func TestHandleDeliveryDeadLetters(t *testing.T) {
	ack := &fakeAck{}
	w := NewWorker(nil, &fakeCRM{err: errors.New("kommo 500")}, nil)

	w.handleDelivery(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("{")})
	w.handleDelivery(context.Background(), delivery(t, ack, StudentEvent{Type: EventStageChanged, Stage: "enrolled"}))

	assert.Equal(t, 0, ack.acked)
	assert.Equal(t, 2, ack.nacked)
	assert.False(t, ack.lastRequeue)
}

func TestHandleDeliveryWithoutCRM(t *testing.T) {
	ack := &fakeAck{}
	w := NewWorker(nil, nil, nil)

	w.handleDelivery(context.Background(), delivery(t, ack, StudentEvent{Type: EventStageChanged, Stage: "enrolled"}))

	assert.Equal(t, 1, ack.acked)
}

type fakeConsumer struct {
	ch  chan amqp.Delivery
	err error
}

func (f *fakeConsumer) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return f.ch, f.err
}

func TestWorkerStartStopsOnContext(t *testing.T) {
	consumer := &fakeConsumer{ch: make(chan amqp.Delivery, 1)}
	crm := &fakeCRM{}
	ack := &fakeAck{}
	w := NewWorker(consumer, crm, nil)

	consumer.ch <- delivery(t, ack, StudentEvent{Type: EventStageChanged, StudentID: "s-1", Stage: "enrolled"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx, QueueName) }()

	assert.Eventually(t, func() bool {
		ack.mu.Lock()
		defer ack.mu.Unlock()
		return ack.acked == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker não encerrou")
	}
}

func TestWorkerStartClosedChannel(t *testing.T) {
	consumer := &fakeConsumer{ch: make(chan amqp.Delivery)}
	close(consumer.ch)

	err := NewWorker(consumer, nil, nil).Start(context.Background(), QueueName)

	assert.Error(t, err)
}

func TestWorkerStartConsumeError(t *testing.T) {
	err := NewWorker(&fakeConsumer{err: errors.New("sem canal")}, nil, nil).Start(context.Background(), QueueName)

	assert.ErrorContains(t, err, "sem canal")
}
