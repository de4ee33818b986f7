package handlers

import (
	"log"
	"net/http"

	"github.com/cacifebrand/cacife-dashboard/internal/infra/http/middleware"
	"github.com/cacifebrand/cacife-dashboard/internal/infra/integration/chatwoot"
)

type SSOHandler struct {
	Chatwoot  *chatwoot.Client
	UserID    int
	AccountID int
}

func NewSSOHandler(client *chatwoot.Client, userID, accountID int) *SSOHandler {
	return &SSOHandler{
		Chatwoot:  client,
		UserID:    userID,
		AccountID: accountID,
	}
}

type SSOResponse struct {
	Success bool   `json:"success"`
	SSOURL  string `json:"ssoUrl,omitempty"`
	Error   string `json:"error,omitempty"`
}

// GET /api/chatwoot/sso
// O detalhe do erro upstream fica só no log; o front recebe sempre a
// mesma mensagem genérica.
func (h *SSOHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if !h.Chatwoot.Configured() {
		log.Println("❌ PLATFORM_TOKEN não configurado nas variáveis de ambiente")
		writeJSON(w, http.StatusInternalServerError, SSOResponse{
			Success: false,
			Error:   "Configuração do servidor incompleta",
		})
		return
	}

	log.Printf("🔗 Gerando link SSO para usuário %d (conta %d)", h.UserID, h.AccountID)

	ssoURL, err := h.Chatwoot.GenerateSSOURL(h.UserID, h.AccountID)
	if err != nil {
		log.Printf("❌ Erro ao gerar SSO do Chatwoot: %v", err)
		middleware.RecordIntegrationError("chatwoot")
		writeJSON(w, http.StatusInternalServerError, SSOResponse{
			Success: false,
			Error:   "Falha ao gerar link de acesso ao Chatwoot",
		})
		return
	}

	writeJSON(w, http.StatusOK, SSOResponse{
		Success: true,
		SSOURL:  ssoURL,
	})
}
