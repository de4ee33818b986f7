package worker

import (
	"context"
	"log"
	"time"

	"github.com/cacifebrand/cacife-dashboard/internal/infra/http/middleware"
	"github.com/cacifebrand/cacife-dashboard/internal/usecase"
)

// SyncWorker roda o sync de pedidos em intervalo fixo. O mesmo use
// case atende o POST /api/crm/sync manual.
type SyncWorker struct {
	uc           *usecase.SyncOrdersUseCase
	tickInterval time.Duration
}

func NewSyncWorker(uc *usecase.SyncOrdersUseCase, tickInterval time.Duration) *SyncWorker {
	if tickInterval <= 0 {
		tickInterval = 15 * time.Minute
	}
	return &SyncWorker{
		uc:           uc,
		tickInterval: tickInterval,
	}
}

func (w *SyncWorker) Start(ctx context.Context) {
	log.Printf("🕒 Sync Worker iniciado (a cada %s)", w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.run(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Sync Worker encerrado")
			return
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

func (w *SyncWorker) run(ctx context.Context) {
	out, err := w.uc.Execute(ctx)
	if err != nil {
		log.Printf("❌ Sync periódico falhou: %v", err)
		return
	}

	middleware.RecordSyncRun(out.Created, out.Updated)
}
