package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// LeadEvent é publicado a cada escrita do funil. Type é também a routing key.
type LeadEvent struct {
	Type            string    `json:"type"`
	LeadID          string    `json:"lead_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	WhatsApp        string    `json:"whatsapp"`
	ProfileCategory string    `json:"profile_category,omitempty"`
	Company         string    `json:"company,omitempty"`
	RevenueBracket  string    `json:"revenue_bracket,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishLeadEvent(ctx context.Context, ev LeadEvent) error {
	if ev.Type != RoutingLeadCreated && ev.Type != RoutingLeadCompleted {
		return fmt.Errorf("tipo de evento desconhecido: %q", ev.Type)
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("erro ao converter payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		ev.Type,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.LeadID + ":" + ev.Type,
			Timestamp:    ev.OccurredAt,
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %w", err)
	}

	return nil
}
