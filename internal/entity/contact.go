package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrEmailAlreadyExists = errors.New("já existe um contato com esse email")

// Entidade: Contact (tabela contacts)
// O email é a chave de deduplicação do sync, mas o banco NÃO tem
// constraint unique — dados antigos podem ter duplicatas.
type Contact struct {
	ID                  string    `json:"id"`
	FullName            string    `json:"full_name"`
	CompanyName         string    `json:"company_name"`
	Phone               string    `json:"phone"`
	Email               string    `json:"email"`
	MonthlyRevenue      string    `json:"monthly_revenue"`
	BusinessType        string    `json:"business_type"`
	AudienceType        string    `json:"audience_type"`
	AcquisitionChannels string    `json:"acquisition_channels"`
	ClientVolume        string    `json:"client_volume"`
	BiggestDifficulty   string    `json:"biggest_difficulty"`
	Website             string    `json:"website"`
	CreatedAt           time.Time `json:"created_at"`
}

// Factory
func NewContact(fullName, email, phone, companyName, monthlyRevenue string) (*Contact, error) {
	contact := &Contact{
		ID:             uuid.New().String(),
		FullName:       fullName,
		Email:          email,
		Phone:          phone,
		CompanyName:    companyName,
		MonthlyRevenue: monthlyRevenue,
		CreatedAt:      time.Now(),
	}

	if err := contact.Validate(); err != nil {
		return nil, err
	}

	return contact, nil
}

func (c *Contact) Validate() error {
	if c.Email == "" {
		return errors.New("email is required")
	}
	if c.FullName == "" {
		return errors.New("full_name is required")
	}
	return nil
}

// NormalizeRevenue converte valores tipo "R$ 1.234,56" (legado do formulário)
// para o formato numérico "1234.56". Ponto é separador de milhar,
// vírgula é o decimal.
func NormalizeRevenue(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "0"
	}

	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	if s == "" {
		return "0"
	}
	return s
}

type ContactPatch map[string]any

type ContactRepositoryInterface interface {
	Create(ctx context.Context, c *Contact) error
	FindByEmail(ctx context.Context, email string) (*Contact, error)
	Update(ctx context.Context, id string, patch ContactPatch) error
}
