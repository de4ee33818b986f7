package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cacifebrand/cacife-dashboard/internal/entity"
	"github.com/cacifebrand/cacife-dashboard/internal/infra/http/middleware"
)

const pipelineAbandoned = "abandoned"

// CRMHandler expõe as operações do board kanban. Erro de banco nunca
// vaza pro front como stack: vira lista vazia ou {success:false} com
// a mensagem que o toast exibe.
type CRMHandler struct {
	Opportunities entity.OpportunityRepositoryInterface
	Contacts      entity.ContactRepositoryInterface
	Abandoned     entity.AbandonedCheckoutRepositoryInterface
	LeadPosts     entity.LeadPostRepositoryInterface
}

func NewCRMHandler(
	opportunities entity.OpportunityRepositoryInterface,
	contacts entity.ContactRepositoryInterface,
	abandoned entity.AbandonedCheckoutRepositoryInterface,
	leadPosts entity.LeadPostRepositoryInterface,
) *CRMHandler {
	return &CRMHandler{
		Opportunities: opportunities,
		Contacts:      contacts,
		Abandoned:     abandoned,
		LeadPosts:     leadPosts,
	}
}

type ActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// GET /api/crm/pipeline/{name}
// O pipeline "abandoned" não existe em opportunities: vem da tabela
// abandoned_checkouts com a etapa sintética derivada.
func (h *CRMHandler) HandleFetchPipeline(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var (
		views []entity.LeadView
		err   error
	)

	if name == pipelineAbandoned {
		views, err = h.Abandoned.FetchAll(r.Context())
	} else {
		views, err = h.Opportunities.FetchPipeline(r.Context(), name)
	}

	if err != nil {
		log.Printf("❌ Erro ao buscar pipeline %s: %v", name, err)
		views = nil
	}

	if views == nil {
		views = []entity.LeadView{}
	}

	writeJSON(w, http.StatusOK, views)
}

type UpdateStageRequest struct {
	Stage       string `json:"stage"`
	IsAbandoned bool   `json:"isAbandoned"`
}

// PUT /api/crm/leads/{id}/stage
func (h *CRMHandler) HandleUpdateStage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Stage == "" {
		writeJSON(w, http.StatusBadRequest, ActionResponse{Success: false, Message: "JSON inválido"})
		return
	}

	var err error
	if req.IsAbandoned {
		err = h.Abandoned.UpdateStage(r.Context(), id, req.Stage)
	} else {
		err = h.Opportunities.UpdateStage(r.Context(), id, req.Stage)
	}

	if err != nil {
		log.Printf("❌ Erro ao atualizar etapa do lead %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, ActionResponse{Success: false, Message: "Erro ao atualizar etapa"})
		return
	}

	middleware.RecordStageUpdate(req.Stage)
	writeJSON(w, http.StatusOK, ActionResponse{Success: true, Message: "Etapa atualizada!"})
}

type BatchUpdateStageRequest struct {
	IDs         []string `json:"ids"`
	Stage       string   `json:"stage"`
	IsAbandoned bool     `json:"isAbandoned"`
}

// PUT /api/crm/leads/stage
// Uma chamada, um statement: ou todos os ids mudam ou nenhum muda.
func (h *CRMHandler) HandleBatchUpdateStage(w http.ResponseWriter, r *http.Request) {
	var req BatchUpdateStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Stage == "" || len(req.IDs) == 0 {
		writeJSON(w, http.StatusBadRequest, ActionResponse{Success: false, Message: "JSON inválido"})
		return
	}

	var err error
	if req.IsAbandoned {
		err = h.Abandoned.BatchUpdateStage(r.Context(), req.IDs, req.Stage)
	} else {
		err = h.Opportunities.BatchUpdateStage(r.Context(), req.IDs, req.Stage)
	}

	if err != nil {
		log.Printf("❌ Erro na atualização em massa: %v", err)
		writeJSON(w, http.StatusInternalServerError, ActionResponse{Success: false, Message: "Erro na atualização em massa"})
		return
	}

	middleware.RecordStageUpdate(req.Stage)
	writeJSON(w, http.StatusOK, ActionResponse{Success: true, Message: "Leads atualizados!"})
}

// DELETE /api/crm/opportunities/{id}
func (h *CRMHandler) HandleDeleteOpportunity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Opportunities.Delete(r.Context(), id); err != nil {
		log.Printf("❌ Erro ao excluir opportunity %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, ActionResponse{Success: false, Message: "Erro ao excluir oportunidade"})
		return
	}

	writeJSON(w, http.StatusOK, ActionResponse{Success: true, Message: "Oportunidade excluída"})
}

type UpdateDetailsRequest struct {
	ContactID   string         `json:"contactId"`
	OppData     map[string]any `json:"oppData,omitempty"`
	ContactData map[string]any `json:"contactData,omitempty"`
}

// PUT /api/crm/opportunities/{id}/details
// Dois patches independentes, fail-fast: se o da opportunity falhar,
// o do contato nem é tentado.
func (h *CRMHandler) HandleUpdateDetails(w http.ResponseWriter, r *http.Request) {
	oppID := chi.URLParam(r, "id")

	var req UpdateDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ActionResponse{Success: false, Message: "JSON inválido"})
		return
	}

	if len(req.OppData) > 0 {
		if err := h.Opportunities.Update(r.Context(), oppID, req.OppData); err != nil {
			log.Printf("❌ Erro ao atualizar opportunity %s: %v", oppID, err)
			writeJSON(w, http.StatusInternalServerError, ActionResponse{Success: false, Message: "Erro ao atualizar dados"})
			return
		}
	}

	if req.ContactID != "" && len(req.ContactData) > 0 {
		// O front manda o faturamento como o usuário digitou ("R$ 1.234,56");
		// no banco a coluna é numérica
		if raw, ok := req.ContactData["monthly_revenue"].(string); ok {
			req.ContactData["monthly_revenue"] = entity.NormalizeRevenue(raw)
		}

		if err := h.Contacts.Update(r.Context(), req.ContactID, req.ContactData); err != nil {
			log.Printf("❌ Erro ao atualizar contato %s: %v", req.ContactID, err)
			writeJSON(w, http.StatusInternalServerError, ActionResponse{Success: false, Message: "Erro ao atualizar dados"})
			return
		}
	}

	writeJSON(w, http.StatusOK, ActionResponse{Success: true, Message: "Dados atualizados!"})
}

// GET /api/crm/summary
func (h *CRMHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Opportunities.Summarize(r.Context())
	if err != nil {
		log.Printf("❌ Erro ao montar resumo do funil: %v", err)
		summary = &entity.PipelineSummary{
			Stages:             map[string]int{},
			Responsible:        map[string]int{},
			SalesByResponsible: map[string]int{},
			Channels:           map[string]int{},
		}
	}

	writeJSON(w, http.StatusOK, summary)
}

// GET /api/crm/lead-posts/{username}
func (h *CRMHandler) HandleLeadPost(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	post, err := h.LeadPosts.FindByUsername(r.Context(), username)
	if err != nil {
		// Info de IA é enfeite do card, não crítica
		log.Printf("⚠️ Erro ao buscar análise de @%s (não crítico): %v", username, err)
	}

	if post == nil {
		writeJSON(w, http.StatusNotFound, ActionResponse{Success: false, Message: "Post não encontrado"})
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
