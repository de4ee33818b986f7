package handlers

import (
	"log"
	"net/http"

	"github.com/cacifebrand/cacife-dashboard/internal/infra/http/middleware"
	"github.com/cacifebrand/cacife-dashboard/internal/usecase"
)

type SyncHandler struct {
	SyncOrdersUC *usecase.SyncOrdersUseCase
}

func NewSyncHandler(uc *usecase.SyncOrdersUseCase) *SyncHandler {
	return &SyncHandler{SyncOrdersUC: uc}
}

type SyncResponse struct {
	Success bool `json:"success"`
	Created int  `json:"created"`
	Updated int  `json:"updated"`
}

// POST /api/crm/sync
// Dispara o sync manualmente (o worker periódico roda o mesmo use case).
func (h *SyncHandler) Handle(w http.ResponseWriter, r *http.Request) {
	out, err := h.SyncOrdersUC.Execute(r.Context())
	if err != nil {
		log.Printf("❌ Sync manual falhou: %v", err)
		writeJSON(w, http.StatusInternalServerError, ActionResponse{Success: false, Message: "Erro ao sincronizar pedidos"})
		return
	}

	middleware.RecordSyncRun(out.Created, out.Updated)

	writeJSON(w, http.StatusOK, SyncResponse{
		Success: true,
		Created: out.Created,
		Updated: out.Updated,
	})
}
