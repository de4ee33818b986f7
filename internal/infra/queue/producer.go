package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RecoveryPayload: tarefa de recuperação de carrinho abandonado.
// MessageNumber é a PRÓXIMA mensagem a enviar (1..3).
type RecoveryPayload struct {
	CheckoutID    string  `json:"checkout_id"`
	Email         string  `json:"email"`
	Name          string  `json:"name"`
	CheckoutURL   string  `json:"checkout_url"`
	Total         float64 `json:"total"`
	MessageNumber int     `json:"message_number"`
}

// BoardReloadPayload avisa o front que o board está desatualizado.
// Reason: "order_sync" (sync criou/atualizou leads) ou "db_change"
// (NOTIFY do Postgres).
type BoardReloadPayload struct {
	Reason  string    `json:"reason"`
	Created int       `json:"created,omitempty"`
	Updated int       `json:"updated,omitempty"`
	At      time.Time `json:"at"`
}

type RecoveryProducerInterface interface {
	PublishRecovery(ctx context.Context, payload RecoveryPayload) error
}

type Producer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *Producer {
	return &Producer{Conn: conn, Ch: ch}
}

func (p *Producer) PublishRecovery(ctx context.Context, payload RecoveryPayload) error {
	return p.publish(ctx, RecoveryKey, payload)
}

func (p *Producer) PublishBoardReload(ctx context.Context, payload BoardReloadPayload) error {
	return p.publish(ctx, BoardKey, payload)
}

func (p *Producer) publish(ctx context.Context, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao converter payload: %v", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		key,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // Mensagem salva no disco
		},
	)

	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %v", err)
	}

	return nil
}
