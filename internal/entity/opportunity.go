package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	PipelineCacife = "Cacife"

	// Placeholders exibidos no board quando o contato relacionado
	// não tem o campo preenchido. Mesmos literais do front.
	NoName        = "Sem Nome"
	NoCompany     = "Sem Empresa"
	NoValue       = "---"
	NoResponsible = "Não atribuído"
	NoRevenue     = "R$ 0,00"

	LeadStatusCold = "frio"
)

// Entidade: Opportunity (tabela opportunities)
// Representa a posição de UM contato em UM pipeline de vendas.
// O sync assume no máximo uma opportunity por (contato, pipeline),
// mas o schema não impõe isso.
type Opportunity struct {
	ID              string    `json:"id"`
	ContactID       string    `json:"contact_id"`
	Pipeline        string    `json:"pipeline"`
	Stage           string    `json:"stage"`
	ResponsibleName string    `json:"responsible_name"`
	Tags            []string  `json:"tags"`
	LeadStatus      string    `json:"lead_status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Factory
func NewOpportunity(contactID, pipeline, stage string) (*Opportunity, error) {
	opp := &Opportunity{
		ID:              uuid.New().String(),
		ContactID:       contactID,
		Pipeline:        pipeline,
		Stage:           stage,
		ResponsibleName: NoResponsible,
		Tags:            []string{"Importado"},
		LeadStatus:      LeadStatusCold,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := opp.Validate(); err != nil {
		return nil, err
	}

	return opp, nil
}

func (o *Opportunity) Validate() error {
	if o.ContactID == "" {
		return errors.New("contact_id is required")
	}
	if o.Pipeline == "" {
		return errors.New("pipeline is required")
	}
	if o.Stage == "" {
		return errors.New("stage is required")
	}
	return nil
}

// NormalizePipeline mapeia o nome usado pelo front para o valor
// gravado no banco ("cacife" -> "Cacife").
func NormalizePipeline(name string) string {
	if name == "cacife" {
		return PipelineCacife
	}
	return name
}

// LeadView é a projeção achatada (opportunity + contato) que o board consome.
type LeadView struct {
	ID          string   `json:"id"`
	ContactID   string   `json:"contactId"`
	Name        string   `json:"name"`
	Company     string   `json:"company"`
	Revenue     string   `json:"revenue"`
	Phone       string   `json:"phone"`
	Email       string   `json:"email"`
	Stage       string   `json:"stage"`
	Business    string   `json:"business"`
	Audience    string   `json:"audience"`
	Channels    string   `json:"channels"`
	Volume      string   `json:"volume"`
	Difficulty  string   `json:"difficulty"`
	Site        string   `json:"site"`
	Responsible string   `json:"responsible"`
	Tags        []string `json:"tags"`
	LeadStatus  string   `json:"lead_status"`
}

// PipelineSummary agrega o funil inteiro para os cards do dashboard.
type PipelineSummary struct {
	Total              int            `json:"total"`
	Stages             map[string]int `json:"stages"`
	Responsible        map[string]int `json:"responsible"`
	SalesByResponsible map[string]int `json:"salesByResponsible"`
	Channels           map[string]int `json:"channels"`
}

type OpportunityPatch map[string]any

type OpportunityRepositoryInterface interface {
	Create(ctx context.Context, o *Opportunity) error
	FindByContact(ctx context.Context, contactID, pipeline string) ([]Opportunity, error)
	FetchPipeline(ctx context.Context, pipeline string) ([]LeadView, error)
	UpdateStage(ctx context.Context, id, stage string) error
	BatchUpdateStage(ctx context.Context, ids []string, stage string) error
	Delete(ctx context.Context, id string) error
	Update(ctx context.Context, id string, patch OpportunityPatch) error
	Summarize(ctx context.Context) (*PipelineSummary, error)
}
