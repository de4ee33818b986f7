package usecase

import (
	"context"
	"time"

	"github.com/cacifebrand/cacife-dashboard/internal/entity"
	"github.com/cacifebrand/cacife-dashboard/internal/infra/queue"
)

type ContactRepositoryInterface interface {
	Create(ctx context.Context, c *entity.Contact) error
	FindByEmail(ctx context.Context, email string) (*entity.Contact, error)
}

type OpportunityRepositoryInterface interface {
	Create(ctx context.Context, o *entity.Opportunity) error
	FindByContact(ctx context.Context, contactID, pipeline string) ([]entity.Opportunity, error)
	UpdateStage(ctx context.Context, id, stage string) error
}

type OrderRepositoryInterface interface {
	FetchSince(ctx context.Context, since time.Time) ([]entity.Order, error)
}

type EventPublisherInterface interface {
	PublishBoardReload(ctx context.Context, payload queue.BoardReloadPayload) error
}

type SyncOrdersUseCase struct {
	Orders        OrderRepositoryInterface
	Contacts      ContactRepositoryInterface
	Opportunities OpportunityRepositoryInterface
	Events        EventPublisherInterface

	// Janela de pedidos considerados pelo sync (default 60 dias)
	Window time.Duration
}
