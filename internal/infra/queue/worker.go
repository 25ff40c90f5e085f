package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// LeadEventHandler recebe os eventos consumidos. Um erro manda a mensagem pra DLQ.
type LeadEventHandler interface {
	Dispatch(ctx context.Context, ev LeadEvent) error
}

type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel Consumer
	Handler LeadEventHandler
}

func NewWorker(ch Consumer, handler LeadEventHandler) *Worker {
	return &Worker{
		Channel: ch,
		Handler: handler,
	}
}

// Start consome a fila até ctx terminar ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName, // fila
		"",        // consumer
		false,     // auto-ack
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	log.Printf(" [*] Worker rodando e aguardando na fila '%s'", queueName)

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("canal do RabbitMQ fechado")
			}
			if w.handle(ctx, d.Body) {
				_ = d.Ack(false)
			} else {
				_ = d.Nack(false, false)
			}
		}
	}
}

// handle devolve true quando a mensagem deve receber ACK.
func (w *Worker) handle(ctx context.Context, body []byte) bool {
	var ev LeadEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		log.Printf("❌ [WORKER] JSON Inválido: %s", err)
		return false
	}

	switch ev.Type {
	case RoutingLeadCreated, RoutingLeadCompleted:
	default:
		log.Printf("⚠️ [WORKER] Evento desconhecido: %q. Apenas logando.", ev.Type)
		return true
	}

	log.Printf("📥 [WORKER] %s para lead %s", ev.Type, ev.LeadID)

	if err := w.Handler.Dispatch(ctx, ev); err != nil {
		log.Printf("❌ [WORKER] Falha ao processar %s (lead %s): %s", ev.Type, ev.LeadID, err)
		return false
	}

	log.Printf("✅ [WORKER] %s processado para lead %s", ev.Type, ev.LeadID)
	return true
}
