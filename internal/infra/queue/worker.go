package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cacifebrand/cacife-dashboard/internal/infra/http/middleware"
)

// RecoverySenderInterface define o contrato do canal de envio
// (hoje email SMTP; WhatsApp entra aqui depois).
type RecoverySenderInterface interface {
	SendRecovery(to, name, checkoutURL string, messageNumber int) error
}

// RecoveryMarkerInterface avança o marcador stage_recuperacao
// depois que a mensagem foi de fato enviada.
type RecoveryMarkerInterface interface {
	MarkMessageSent(ctx context.Context, checkoutID string, messageNumber int) error
}

type Worker struct {
	Channel *amqp.Channel
	Sender  RecoverySenderInterface
	Marker  RecoveryMarkerInterface
}

func NewWorker(ch *amqp.Channel, sender RecoverySenderInterface, marker RecoveryMarkerInterface) *Worker {
	return &Worker{
		Channel: ch,
		Sender:  sender,
		Marker:  marker,
	}
}

func (w *Worker) Start(queueName string) {
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
		log.Fatalf("❌ Falha ao registrar consumidor RabbitMQ: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload RecoveryPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("❌ [WORKER] JSON inválido: %s", err)
				// Mensagem podre (malformada). Rejeita sem requeue para não travar a fila.
				d.Nack(false, false)
				continue
			}

			log.Printf("📥 [WORKER] Recuperação msg%d para %s", payload.MessageNumber, payload.Email)

			if err := w.processMessage(context.Background(), payload); err != nil {
				log.Printf("❌ [WORKER] Erro na recuperação: %s", err)
				d.Nack(false, false) // vai pra DLQ
			} else {
				log.Printf("✅ [WORKER] Mensagem %d enviada para %s", payload.MessageNumber, payload.Email)
				middleware.RecordRecoveryMessage(payload.MessageNumber)
				d.Ack(false)
			}
		}
	}()

	log.Printf(" [*] Worker de recuperação aguardando na fila '%s'", queueName)
	<-forever
}

func (w *Worker) processMessage(ctx context.Context, payload RecoveryPayload) error {
	if err := w.Sender.SendRecovery(payload.Email, payload.Name, payload.CheckoutURL, payload.MessageNumber); err != nil {
		return err
	}

	// Só marca depois do envio; se o UPDATE falhar a mensagem volta
	// pra DLQ e alguém olha — nunca avançamos o marcador sem enviar
	return w.Marker.MarkMessageSent(ctx, payload.CheckoutID, payload.MessageNumber)
}
