package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, msg)
	return args.Error(0)
}

type handlerMock struct {
	mock.Mock
}

func (m *handlerMock) Dispatch(ctx context.Context, ev LeadEvent) error {
	return m.Called(ev).Error(0)
}

type consumerStub struct {
	msgs chan amqp.Delivery
}

func (c *consumerStub) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return c.msgs, nil
}

func TestPublishLeadEventUsesTypeAsRoutingKey(t *testing.T) {
	pub := new(publisherMock)
	p := NewProducer(pub)

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ev := LeadEvent{Type: RoutingLeadCompleted, LeadID: "l1", Name: "Ana Silva", ProfileCategory: "Outros", OccurredAt: at}

	pub.On("PublishWithContext", ExchangeName, RoutingLeadCompleted, mock.MatchedBy(func(msg amqp.Publishing) bool {
		var got LeadEvent
		if err := json.Unmarshal(msg.Body, &got); err != nil {
			return false
		}
		return msg.DeliveryMode == amqp.Persistent && got.LeadID == "l1" && got.ProfileCategory == "Outros" && got.OccurredAt.Equal(at) &&
			msg.MessageId == "l1:lead.completed"
	})).Return(nil)

	require.NoError(t, p.PublishLeadEvent(context.Background(), ev))
	pub.AssertExpectations(t)
}

func TestPublishLeadEventRejectsUnknownType(t *testing.T) {
	p := NewProducer(new(publisherMock))
	err := p.PublishLeadEvent(context.Background(), LeadEvent{Type: "lead.deleted"})
	assert.ErrorContains(t, err, "desconhecido")
}

func TestWorkerHandle(t *testing.T) {
	h := new(handlerMock)
	w := NewWorker(nil, h)
	ctx := context.Background()

	ok := LeadEvent{Type: RoutingLeadCreated, LeadID: "l1"}
	bad := LeadEvent{Type: RoutingLeadCompleted, LeadID: "l2"}
	h.On("Dispatch", ok).Return(nil)
	h.On("Dispatch", bad).Return(errors.New("kommo fora do ar"))

	body := func(ev LeadEvent) []byte {
		raw, err := json.Marshal(ev)
		require.NoError(t, err)
		return raw
	}

	assert.True(t, w.handle(ctx, body(ok)))
	assert.False(t, w.handle(ctx, body(bad)))
	assert.False(t, w.handle(ctx, []byte("{quebrado")))
	assert.True(t, w.handle(ctx, []byte(`{"type":"lead.unknown"}`)))
	h.AssertNumberOfCalls(t, "Dispatch", 2)
}

func TestWorkerStartStopsWithContext(t *testing.T) {
	c := &consumerStub{msgs: make(chan amqp.Delivery)}
	w := NewWorker(c, new(handlerMock))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx, QueueName) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker não parou")
	}
}

func TestWorkerStartFailsWhenChannelCloses(t *testing.T) {
	c := &consumerStub{msgs: make(chan amqp.Delivery)}
	close(c.msgs)

	err := NewWorker(c, new(handlerMock)).Start(context.Background(), QueueName)
	assert.Error(t, err)
}
