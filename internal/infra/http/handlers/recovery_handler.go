package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cacifebrand/cacife-dashboard/internal/entity"
	"github.com/cacifebrand/cacife-dashboard/internal/infra/queue"
)

// RecoveryHandler dispara manualmente a próxima mensagem da régua de
// recuperação para um carrinho específico. O envio em si é assíncrono:
// aqui só publicamos a tarefa na fila.
type RecoveryHandler struct {
	Abandoned entity.AbandonedCheckoutRepositoryInterface
	Producer  queue.RecoveryProducerInterface
}

func NewRecoveryHandler(abandoned entity.AbandonedCheckoutRepositoryInterface, producer queue.RecoveryProducerInterface) *RecoveryHandler {
	return &RecoveryHandler{Abandoned: abandoned, Producer: producer}
}

// POST /api/crm/recovery/{id}
func (h *RecoveryHandler) Handle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	checkout, err := h.Abandoned.FindByID(r.Context(), id)
	if err != nil {
		log.Printf("❌ Erro ao buscar checkout %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, ActionResponse{Success: false, Message: "Erro ao buscar carrinho"})
		return
	}
	if checkout == nil {
		writeJSON(w, http.StatusNotFound, ActionResponse{Success: false, Message: "Carrinho não encontrado"})
		return
	}

	if checkout.RecoveredAt != nil {
		writeJSON(w, http.StatusConflict, ActionResponse{Success: false, Message: "Carrinho já recuperado"})
		return
	}

	next := checkout.MessagesSent() + 1
	if next > entity.MaxRecoveryMessages {
		writeJSON(w, http.StatusConflict, ActionResponse{Success: false, Message: "Régua de recuperação esgotada"})
		return
	}

	if checkout.ContactEmail == "" {
		writeJSON(w, http.StatusConflict, ActionResponse{Success: false, Message: "Carrinho sem email de contato"})
		return
	}

	payload := queue.RecoveryPayload{
		CheckoutID:    checkout.ID,
		Email:         checkout.ContactEmail,
		Name:          checkout.ContactName,
		CheckoutURL:   checkout.AbandonedCheckoutURL,
		Total:         checkout.Total,
		MessageNumber: next,
	}

	if err := h.Producer.PublishRecovery(r.Context(), payload); err != nil {
		log.Printf("❌ Erro ao enfileirar recuperação do checkout %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, ActionResponse{Success: false, Message: "Erro ao enfileirar mensagem"})
		return
	}

	writeJSON(w, http.StatusAccepted, ActionResponse{Success: true, Message: "Mensagem de recuperação enfileirada"})
}
