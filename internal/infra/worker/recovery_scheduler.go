package worker

import (
	"context"
	"log"
	"time"

	"github.com/cacifebrand/cacife-dashboard/internal/entity"
	"github.com/cacifebrand/cacife-dashboard/internal/infra/queue"
)

// RecoveryScheduler enfileira a próxima mensagem da régua para os
// carrinhos pendentes. O respiro entre mensagens evita metralhar o
// cliente: msg1 após 1h do abandono, msg2 após 24h, msg3 após 72h.
var recoveryDelays = map[int]time.Duration{
	1: 1 * time.Hour,
	2: 24 * time.Hour,
	3: 72 * time.Hour,
}

type RecoveryScheduler struct {
	abandoned    entity.AbandonedCheckoutRepositoryInterface
	producer     queue.RecoveryProducerInterface
	tickInterval time.Duration

	// Mensagens já enfileiradas que o worker ainda não marcou no banco
	// (checkoutID -> número da mensagem). Sem isso, fila atrasada além
	// de um tick viraria email duplicado. Só a goroutine do Start mexe.
	inFlight map[string]int
}

func NewRecoveryScheduler(abandoned entity.AbandonedCheckoutRepositoryInterface, producer queue.RecoveryProducerInterface) *RecoveryScheduler {
	return &RecoveryScheduler{
		abandoned:    abandoned,
		producer:     producer,
		tickInterval: 30 * time.Minute,
		inFlight:     map[string]int{},
	}
}

func (s *RecoveryScheduler) Start(ctx context.Context) {
	log.Printf("🕒 Recovery Scheduler iniciado (a cada %s)", s.tickInterval)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	s.enqueueDue(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Recovery Scheduler encerrado")
			return
		case <-ticker.C:
			s.enqueueDue(ctx)
		}
	}
}

func (s *RecoveryScheduler) enqueueDue(ctx context.Context) {
	pending, err := s.abandoned.FindPendingRecovery(ctx)
	if err != nil {
		log.Printf("❌ Scheduler: erro ao buscar carrinhos pendentes: %v", err)
		return
	}

	enqueued := 0
	stillInFlight := map[string]int{}
	for _, checkout := range pending {
		next := checkout.MessagesSent() + 1
		delay, ok := recoveryDelays[next]
		if !ok {
			continue
		}

		// Ainda não deu o tempo de respiro dessa mensagem
		if time.Since(checkout.CreatedAt) < delay {
			continue
		}

		// Já está na fila aguardando o worker enviar e marcar
		if s.inFlight[checkout.ID] >= next {
			stillInFlight[checkout.ID] = s.inFlight[checkout.ID]
			continue
		}

		payload := queue.RecoveryPayload{
			CheckoutID:    checkout.ID,
			Email:         checkout.ContactEmail,
			Name:          checkout.ContactName,
			CheckoutURL:   checkout.AbandonedCheckoutURL,
			Total:         checkout.Total,
			MessageNumber: next,
		}

		if err := s.producer.PublishRecovery(ctx, payload); err != nil {
			log.Printf("❌ Scheduler: falha ao enfileirar checkout %s: %v", checkout.ID, err)
			continue
		}
		stillInFlight[checkout.ID] = next
		enqueued++
	}
	// Checkouts que saíram de pending (marcador avançou, recuperado ou
	// régua esgotada) somem do guarda junto
	s.inFlight = stillInFlight

	if enqueued > 0 {
		log.Printf("📬 Scheduler: %d mensagens de recuperação enfileiradas", enqueued)
	}
}
