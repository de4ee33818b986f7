package usecase

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/cacifebrand/cacife-dashboard/internal/entity"
	"github.com/cacifebrand/cacife-dashboard/internal/infra/queue"
)

// Fallbacks dos campos do pedido, iguais aos usados pelo importador antigo.
const (
	fallbackEmail   = "sem-email@exemplo.com"
	fallbackName    = "Cliente Sem Nome"
	fallbackPhone   = "---"
	fallbackProduct = "Produto Desconhecido"

	defaultSyncWindow = 60 * 24 * time.Hour
)

type SyncOrdersOutput struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

func NewSyncOrdersUseCase(
	orders OrderRepositoryInterface,
	contacts ContactRepositoryInterface,
	opportunities OpportunityRepositoryInterface,
	events EventPublisherInterface,
) *SyncOrdersUseCase {
	return &SyncOrdersUseCase{
		Orders:        orders,
		Contacts:      contacts,
		Opportunities: opportunities,
		Events:        events,
		Window:        defaultSyncWindow,
	}
}

// Execute sincroniza cacife_orders -> contacts/opportunities.
// Pedidos são processados um a um, em sequência; o erro de um pedido
// é logado e NÃO interrompe os demais. Só o fetch inicial é fatal.
func (uc *SyncOrdersUseCase) Execute(ctx context.Context) (*SyncOrdersOutput, error) {
	since := time.Now().Add(-uc.window())

	orders, err := uc.Orders.FetchSince(ctx, since)
	if err != nil {
		return nil, newTechnicalError("ORDER_FETCH_FAILED", err)
	}

	out := &SyncOrdersOutput{}
	if len(orders) == 0 {
		return out, nil
	}

	log.Printf("🔄 Sync: processando %d pedidos dos últimos %d dias", len(orders), int(uc.window().Hours()/24))

	for _, order := range orders {
		// Cancelamento é checado entre pedidos, nunca no meio de um
		if err := ctx.Err(); err != nil {
			return out, err
		}

		result, err := uc.syncOne(ctx, order)
		if err != nil {
			log.Printf("❌ Sync: pedido de %s falhou: %v", order.CustomerEmail, err)
			continue
		}

		switch result {
		case syncCreated:
			out.Created++
		case syncUpdated:
			out.Updated++
		}
	}

	log.Printf("✅ Sync completo. Novos: %d, Atualizados: %d", out.Created, out.Updated)

	if out.Created > 0 || out.Updated > 0 {
		uc.notifyCompleted(ctx, out)
	}

	return out, nil
}

type syncResult int

const (
	syncNone syncResult = iota
	syncCreated
	syncUpdated
)

func (uc *SyncOrdersUseCase) syncOne(ctx context.Context, order entity.Order) (result syncResult, err error) {
	defer func() {
		// Um pedido podre nunca pode derrubar o loop inteiro
		if r := recover(); r != nil {
			result = syncNone
			err = fmt.Errorf("panic ao processar pedido: %v", r)
		}
	}()

	stage := MapOrderToStage(order)

	email := order.CustomerEmail
	if email == "" {
		email = fallbackEmail
	}

	contact, err := uc.Contacts.FindByEmail(ctx, email)
	if err != nil {
		return syncNone, fmt.Errorf("busca de contato: %w", err)
	}

	if contact == nil {
		if err := uc.createFullLead(ctx, order, email, stage); err != nil {
			return syncNone, err
		}
		return syncCreated, nil
	}

	opps, err := uc.Opportunities.FindByContact(ctx, contact.ID, entity.PipelineCacife)
	if err != nil {
		return syncNone, fmt.Errorf("busca de opportunity: %w", err)
	}

	if len(opps) == 0 {
		opp, err := entity.NewOpportunity(contact.ID, entity.PipelineCacife, stage)
		if err != nil {
			return syncNone, err
		}
		if err := uc.Opportunities.Create(ctx, opp); err != nil {
			return syncNone, fmt.Errorf("criação de opportunity: %w", err)
		}
		return syncCreated, nil
	}

	// Invariante: deveria existir no máximo uma opportunity por
	// (contato, pipeline). Quando há mais, operamos na mais recente
	// e avisamos — nunca na primeira linha que o banco devolver.
	if len(opps) > 1 {
		log.Printf("⚠️ Sync: contato %s tem %d opportunities no pipeline %s, usando a mais recente",
			contact.ID, len(opps), entity.PipelineCacife)
	}
	current := mostRecent(opps)

	if current.Stage == stage {
		return syncNone, nil
	}

	if err := uc.Opportunities.UpdateStage(ctx, current.ID, stage); err != nil {
		return syncNone, fmt.Errorf("atualização de etapa: %w", err)
	}
	return syncUpdated, nil
}

// createFullLead cria contato + opportunity em dois passos sequenciais.
// O nome do produto vai no campo company_name, como contexto da compra.
func (uc *SyncOrdersUseCase) createFullLead(ctx context.Context, order entity.Order, email, stage string) error {
	name := order.CustomerName
	if name == "" {
		name = fallbackName
	}
	phone := order.CustomerPhone
	if phone == "" {
		phone = fallbackPhone
	}
	product := order.ProductName
	if product == "" {
		product = fallbackProduct
	}

	contact, err := entity.NewContact(name, email, phone, product, strconv.FormatFloat(order.Total, 'f', 2, 64))
	if err != nil {
		return err
	}
	if err := uc.Contacts.Create(ctx, contact); err != nil {
		return fmt.Errorf("criação de contato: %w", err)
	}

	opp, err := entity.NewOpportunity(contact.ID, entity.PipelineCacife, stage)
	if err != nil {
		return err
	}
	if err := uc.Opportunities.Create(ctx, opp); err != nil {
		return fmt.Errorf("criação de opportunity: %w", err)
	}
	return nil
}

func (uc *SyncOrdersUseCase) notifyCompleted(ctx context.Context, out *SyncOrdersOutput) {
	if uc.Events == nil {
		return
	}

	payload := queue.BoardReloadPayload{
		Reason:  "order_sync",
		Created: out.Created,
		Updated: out.Updated,
		At:      time.Now(),
	}

	// Best-effort: o board recarrega sozinho de tempos em tempos,
	// então perder o evento não corrompe nada
	if err := uc.Events.PublishBoardReload(ctx, payload); err != nil {
		log.Printf("⚠️ Sync: falha ao publicar evento de conclusão: %v", err)
	}
}

func (uc *SyncOrdersUseCase) window() time.Duration {
	if uc.Window <= 0 {
		return defaultSyncWindow
	}
	return uc.Window
}

func mostRecent(opps []entity.Opportunity) entity.Opportunity {
	best := opps[0]
	for _, o := range opps[1:] {
		if o.CreatedAt.After(best.CreatedAt) {
			best = o
		}
	}
	return best
}
