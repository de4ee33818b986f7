package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cacifebrand/cacife-dashboard/internal/entity"
	"github.com/cacifebrand/cacife-dashboard/internal/infra/queue"
)

// MockOrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FetchSince(ctx context.Context, since time.Time) ([]entity.Order, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Order), args.Error(1)
}

// MockContactRepository
type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) Create(ctx context.Context, c *entity.Contact) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContactRepository) FindByEmail(ctx context.Context, email string) (*entity.Contact, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Contact), args.Error(1)
}

// MockOpportunityRepository
type MockOpportunityRepository struct {
	mock.Mock
}

func (m *MockOpportunityRepository) Create(ctx context.Context, o *entity.Opportunity) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOpportunityRepository) FindByContact(ctx context.Context, contactID, pipeline string) ([]entity.Opportunity, error) {
	args := m.Called(ctx, contactID, pipeline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Opportunity), args.Error(1)
}

func (m *MockOpportunityRepository) UpdateStage(ctx context.Context, id, stage string) error {
	args := m.Called(ctx, id, stage)
	return args.Error(0)
}

// MockEventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishBoardReload(ctx context.Context, payload queue.BoardReloadPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func newSyncUC(orders *MockOrderRepository, contacts *MockContactRepository, opps *MockOpportunityRepository, events *MockEventPublisher) *SyncOrdersUseCase {
	return NewSyncOrdersUseCase(orders, contacts, opps, events)
}

// TestSyncCreatesContactAndOpportunity - pedido novo sem contato vira
// contato + opportunity no pipeline Cacife
func TestSyncCreatesContactAndOpportunity(t *testing.T) {
	ctx := context.Background()

	mockOrders := new(MockOrderRepository)
	mockContacts := new(MockContactRepository)
	mockOpps := new(MockOpportunityRepository)
	mockEvents := new(MockEventPublisher)

	order := entity.Order{
		CustomerEmail:  "a@b.com",
		CustomerName:   "A B",
		ShippingStatus: "enviado",
		PaymentStatus:  "paid",
		Total:          100,
	}

	mockOrders.On("FetchSince", ctx, mock.Anything).Return([]entity.Order{order}, nil)
	mockContacts.On("FindByEmail", ctx, "a@b.com").Return(nil, nil)

	var createdContact *entity.Contact
	mockContacts.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		createdContact = args.Get(1).(*entity.Contact)
	}).Return(nil)

	var createdOpp *entity.Opportunity
	mockOpps.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		createdOpp = args.Get(1).(*entity.Opportunity)
	}).Return(nil)

	mockEvents.On("PublishBoardReload", ctx, mock.Anything).Return(nil)

	out, err := newSyncUC(mockOrders, mockContacts, mockOpps, mockEvents).Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, out.Created)
	assert.Equal(t, 0, out.Updated)

	assert.NotNil(t, createdContact)
	assert.Equal(t, "a@b.com", createdContact.Email)
	assert.Equal(t, "A B", createdContact.FullName)

	assert.NotNil(t, createdOpp)
	assert.Equal(t, entity.PipelineCacife, createdOpp.Pipeline)
	assert.Equal(t, StageShipped, createdOpp.Stage)
	assert.Equal(t, createdContact.ID, createdOpp.ContactID)

	mockEvents.AssertCalled(t, "PublishBoardReload", ctx, mock.Anything)
}

// TestSyncSecondRunIsNoop - rodar de novo sobre o mesmo estado não
// cria nem atualiza nada (e não publica evento)
func TestSyncSecondRunIsNoop(t *testing.T) {
	ctx := context.Background()

	mockOrders := new(MockOrderRepository)
	mockContacts := new(MockContactRepository)
	mockOpps := new(MockOpportunityRepository)
	mockEvents := new(MockEventPublisher)

	order := entity.Order{
		CustomerEmail:  "a@b.com",
		CustomerName:   "A B",
		ShippingStatus: "enviado",
	}

	contact := &entity.Contact{ID: "contact-1", FullName: "A B", Email: "a@b.com"}
	opp := entity.Opportunity{ID: "opp-1", ContactID: "contact-1", Pipeline: entity.PipelineCacife, Stage: StageShipped}

	mockOrders.On("FetchSince", ctx, mock.Anything).Return([]entity.Order{order}, nil)
	mockContacts.On("FindByEmail", ctx, "a@b.com").Return(contact, nil)
	mockOpps.On("FindByContact", ctx, "contact-1", entity.PipelineCacife).Return([]entity.Opportunity{opp}, nil)

	out, err := newSyncUC(mockOrders, mockContacts, mockOpps, mockEvents).Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 0, out.Created)
	assert.Equal(t, 0, out.Updated)

	mockOpps.AssertNotCalled(t, "UpdateStage", mock.Anything, mock.Anything, mock.Anything)
	mockEvents.AssertNotCalled(t, "PublishBoardReload", mock.Anything, mock.Anything)
}

// TestSyncUpdatesStageWhenDifferent
func TestSyncUpdatesStageWhenDifferent(t *testing.T) {
	ctx := context.Background()

	mockOrders := new(MockOrderRepository)
	mockContacts := new(MockContactRepository)
	mockOpps := new(MockOpportunityRepository)
	mockEvents := new(MockEventPublisher)

	order := entity.Order{CustomerEmail: "a@b.com", ShippingStatus: "entregue"}
	contact := &entity.Contact{ID: "contact-1", FullName: "A B", Email: "a@b.com"}
	opp := entity.Opportunity{ID: "opp-1", ContactID: "contact-1", Pipeline: entity.PipelineCacife, Stage: StageShipped}

	mockOrders.On("FetchSince", ctx, mock.Anything).Return([]entity.Order{order}, nil)
	mockContacts.On("FindByEmail", ctx, "a@b.com").Return(contact, nil)
	mockOpps.On("FindByContact", ctx, "contact-1", entity.PipelineCacife).Return([]entity.Opportunity{opp}, nil)
	mockOpps.On("UpdateStage", ctx, "opp-1", StageDelivered).Return(nil)
	mockEvents.On("PublishBoardReload", ctx, mock.Anything).Return(nil)

	out, err := newSyncUC(mockOrders, mockContacts, mockOpps, mockEvents).Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 0, out.Created)
	assert.Equal(t, 1, out.Updated)
	mockOpps.AssertCalled(t, "UpdateStage", ctx, "opp-1", StageDelivered)
}

// TestSyncCreatesOpportunityForExistingContact - contato sem opp recebe uma nova
func TestSyncCreatesOpportunityForExistingContact(t *testing.T) {
	ctx := context.Background()

	mockOrders := new(MockOrderRepository)
	mockContacts := new(MockContactRepository)
	mockOpps := new(MockOpportunityRepository)
	mockEvents := new(MockEventPublisher)

	order := entity.Order{CustomerEmail: "a@b.com", PaymentStatus: "pago"}
	contact := &entity.Contact{ID: "contact-1", FullName: "A B", Email: "a@b.com"}

	mockOrders.On("FetchSince", ctx, mock.Anything).Return([]entity.Order{order}, nil)
	mockContacts.On("FindByEmail", ctx, "a@b.com").Return(contact, nil)
	mockOpps.On("FindByContact", ctx, "contact-1", entity.PipelineCacife).Return([]entity.Opportunity{}, nil)
	mockOpps.On("Create", ctx, mock.Anything).Return(nil)
	mockEvents.On("PublishBoardReload", ctx, mock.Anything).Return(nil)

	out, err := newSyncUC(mockOrders, mockContacts, mockOpps, mockEvents).Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, out.Created)
	assert.Equal(t, 0, out.Updated)
	mockContacts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// TestSyncOneOrderFailureDoesNotBlockOthers - um pedido com erro de
// banco é pulado, os demais seguem
func TestSyncOneOrderFailureDoesNotBlockOthers(t *testing.T) {
	ctx := context.Background()

	mockOrders := new(MockOrderRepository)
	mockContacts := new(MockContactRepository)
	mockOpps := new(MockOpportunityRepository)
	mockEvents := new(MockEventPublisher)

	orders := []entity.Order{
		{CustomerEmail: "fail@b.com", ShippingStatus: "enviado"},
		{CustomerEmail: "ok@b.com", CustomerName: "OK", ShippingStatus: "enviado"},
	}

	mockOrders.On("FetchSince", ctx, mock.Anything).Return(orders, nil)
	mockContacts.On("FindByEmail", ctx, "fail@b.com").Return(nil, errors.New("timeout"))
	mockContacts.On("FindByEmail", ctx, "ok@b.com").Return(nil, nil)
	mockContacts.On("Create", ctx, mock.Anything).Return(nil)
	mockOpps.On("Create", ctx, mock.Anything).Return(nil)
	mockEvents.On("PublishBoardReload", ctx, mock.Anything).Return(nil)

	out, err := newSyncUC(mockOrders, mockContacts, mockOpps, mockEvents).Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, out.Created)
	assert.Equal(t, 0, out.Updated)
}

// TestSyncPicksMostRecentWhenDuplicateOpps - com a invariante violada
// (duas opps no mesmo pipeline), atualizamos a mais recente
func TestSyncPicksMostRecentWhenDuplicateOpps(t *testing.T) {
	ctx := context.Background()

	mockOrders := new(MockOrderRepository)
	mockContacts := new(MockContactRepository)
	mockOpps := new(MockOpportunityRepository)
	mockEvents := new(MockEventPublisher)

	order := entity.Order{CustomerEmail: "a@b.com", ShippingStatus: "entregue"}
	contact := &entity.Contact{ID: "contact-1", FullName: "A B", Email: "a@b.com"}

	older := entity.Opportunity{ID: "opp-old", ContactID: "contact-1", Stage: StageShipped, CreatedAt: time.Now().Add(-48 * time.Hour)}
	newer := entity.Opportunity{ID: "opp-new", ContactID: "contact-1", Stage: StageShipped, CreatedAt: time.Now().Add(-1 * time.Hour)}

	mockOrders.On("FetchSince", ctx, mock.Anything).Return([]entity.Order{order}, nil)
	mockContacts.On("FindByEmail", ctx, "a@b.com").Return(contact, nil)
	mockOpps.On("FindByContact", ctx, "contact-1", entity.PipelineCacife).Return([]entity.Opportunity{older, newer}, nil)
	mockOpps.On("UpdateStage", ctx, "opp-new", StageDelivered).Return(nil)
	mockEvents.On("PublishBoardReload", ctx, mock.Anything).Return(nil)

	out, err := newSyncUC(mockOrders, mockContacts, mockOpps, mockEvents).Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, out.Updated)
	mockOpps.AssertCalled(t, "UpdateStage", ctx, "opp-new", StageDelivered)
	mockOpps.AssertNotCalled(t, "UpdateStage", ctx, "opp-old", mock.Anything)
}

// TestSyncOrderWithoutEmailUsesFallback
func TestSyncOrderWithoutEmailUsesFallback(t *testing.T) {
	ctx := context.Background()

	mockOrders := new(MockOrderRepository)
	mockContacts := new(MockContactRepository)
	mockOpps := new(MockOpportunityRepository)
	mockEvents := new(MockEventPublisher)

	order := entity.Order{ShippingStatus: "enviado"}

	mockOrders.On("FetchSince", ctx, mock.Anything).Return([]entity.Order{order}, nil)
	mockContacts.On("FindByEmail", ctx, "sem-email@exemplo.com").Return(nil, nil)
	mockContacts.On("Create", ctx, mock.Anything).Return(nil)
	mockOpps.On("Create", ctx, mock.Anything).Return(nil)
	mockEvents.On("PublishBoardReload", ctx, mock.Anything).Return(nil)

	out, err := newSyncUC(mockOrders, mockContacts, mockOpps, mockEvents).Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, out.Created)
	mockContacts.AssertCalled(t, "FindByEmail", ctx, "sem-email@exemplo.com")
}

// TestSyncFetchFailureIsFatal - só o fetch inicial derruba o sync
func TestSyncFetchFailureIsFatal(t *testing.T) {
	ctx := context.Background()

	mockOrders := new(MockOrderRepository)
	mockOrders.On("FetchSince", ctx, mock.Anything).Return(nil, errors.New("conexão recusada"))

	uc := newSyncUC(mockOrders, new(MockContactRepository), new(MockOpportunityRepository), new(MockEventPublisher))
	out, err := uc.Execute(ctx)

	assert.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, IsTechnicalError(err))
}
