package entity

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Etapas sintéticas do pipeline "abandoned". Não existem no banco:
// são derivadas de stage_recuperacao + recovered_at.
const (
	StageCartAbandoned = "Carrinho Abandonado"
	StageCartRecovered = "Carrinho Recuperado"

	MaxRecoveryMessages = 3
)

// Entidade: AbandonedCheckout (tabela abandoned_checkouts)
// stage_recuperacao acumula os marcadores de mensagem enviada:
// "" -> "msg1" -> "msg1, msg2" -> "msg1, msg2, msg3".
type AbandonedCheckout struct {
	ID                   string     `json:"id"`
	ContactName          string     `json:"contact_name"`
	ContactPhone         string     `json:"contact_phone"`
	ContactEmail         string     `json:"contact_email"`
	Total                float64    `json:"total"`
	StageRecuperacao     string     `json:"stage_recuperacao"`
	RecoveredAt          *time.Time `json:"recovered_at,omitempty"`
	AbandonedCheckoutURL string     `json:"abandoned_checkout_url"`
	Note                 string     `json:"note"`
	CreatedAt            time.Time  `json:"created_at"`
}

// DeriveStage calcula a etapa exibida no board. Prioridade:
// recuperado > última mensagem enviada > abandonado.
func (a *AbandonedCheckout) DeriveStage() string {
	if a.RecoveredAt != nil {
		return StageCartRecovered
	}

	if n := a.MessagesSent(); n > 0 {
		return fmt.Sprintf("Mensagem %d", n)
	}

	return StageCartAbandoned
}

// MessagesSent retorna o maior marcador msgN presente em stage_recuperacao.
func (a *AbandonedCheckout) MessagesSent() int {
	highest := 0
	for _, part := range strings.Split(a.StageRecuperacao, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		var n int
		if _, err := fmt.Sscanf(part, "msg%d", &n); err == nil && n > highest {
			highest = n
		}
	}
	return highest
}

// RecoveryFromStage é o inverso de DeriveStage: traduz a etapa do board
// de volta para (stage_recuperacao, recovered). Etapas desconhecidas
// zeram os marcadores.
func RecoveryFromStage(stage string) (stageRecuperacao string, recovered bool) {
	if strings.EqualFold(strings.TrimSpace(stage), StageCartRecovered) {
		return "", true
	}

	var n int
	if _, err := fmt.Sscanf(strings.TrimSpace(stage), "Mensagem %d", &n); err == nil && n >= 1 {
		if n > MaxRecoveryMessages {
			n = MaxRecoveryMessages
		}
		markers := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			markers = append(markers, fmt.Sprintf("msg%d", i))
		}
		return strings.Join(markers, ", "), false
	}

	return "", false
}

// View projeta o checkout abandonado no mesmo formato LeadView do board.
func (a *AbandonedCheckout) View() LeadView {
	name := a.ContactName
	if name == "" {
		name = NoName
	}
	phone := a.ContactPhone
	if phone == "" {
		phone = NoValue
	}
	email := a.ContactEmail
	if email == "" {
		email = NoValue
	}

	return LeadView{
		ID:          a.ID,
		Name:        name,
		Company:     a.Note,
		Revenue:     fmt.Sprintf("%.2f", a.Total),
		Phone:       phone,
		Email:       email,
		Stage:       a.DeriveStage(),
		Business:    NoValue,
		Audience:    NoValue,
		Channels:    NoValue,
		Volume:      NoValue,
		Difficulty:  NoValue,
		Site:        a.AbandonedCheckoutURL,
		Responsible: NoResponsible,
		Tags:        []string{},
		LeadStatus:  LeadStatusCold,
	}
}

type AbandonedCheckoutRepositoryInterface interface {
	FetchAll(ctx context.Context) ([]LeadView, error)
	FindByID(ctx context.Context, id string) (*AbandonedCheckout, error)
	UpdateStage(ctx context.Context, id, stage string) error
	BatchUpdateStage(ctx context.Context, ids []string, stage string) error
	FindPendingRecovery(ctx context.Context) ([]AbandonedCheckout, error)
}
