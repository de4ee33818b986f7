package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cacifebrand/cacife-dashboard/internal/entity"
)

type ContactRepository struct {
	DB *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{DB: db}
}

var contactColumns = map[string]bool{
	"full_name":            true,
	"company_name":         true,
	"phone":                true,
	"email":                true,
	"monthly_revenue":      true,
	"business_type":        true,
	"audience_type":        true,
	"acquisition_channels": true,
	"client_volume":        true,
	"biggest_difficulty":   true,
	"website":              true,
}

func (r *ContactRepository) Create(ctx context.Context, c *entity.Contact) error {
	query := `
		INSERT INTO contacts (id, full_name, company_name, phone, email, monthly_revenue, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.DB.ExecContext(ctx, query,
		c.ID,
		c.FullName,
		nullString(c.CompanyName),
		nullString(c.Phone),
		c.Email,
		nullString(c.MonthlyRevenue),
		c.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return entity.ErrEmailAlreadyExists
		}

		log.Printf("❌ Erro ao criar contato: %v", err)
		return err
	}

	return nil
}

// FindByEmail busca por email exato. Sem linha -> (nil, nil).
// O email não é unique no banco; se houver duplicata pegamos o
// contato mais antigo, que é o que acumulou histórico.
func (r *ContactRepository) FindByEmail(ctx context.Context, email string) (*entity.Contact, error) {
	query := `
		SELECT id, full_name,
		       COALESCE(company_name, ''), COALESCE(phone, ''),
		       email, COALESCE(monthly_revenue::text, ''),
		       COALESCE(business_type, ''), COALESCE(audience_type, ''),
		       COALESCE(acquisition_channels, ''), COALESCE(client_volume, ''),
		       COALESCE(biggest_difficulty, ''), COALESCE(website, ''),
		       created_at
		FROM contacts
		WHERE email = $1
		ORDER BY created_at
		LIMIT 1
	`

	c := &entity.Contact{}
	err := r.DB.QueryRowContext(ctx, query, email).Scan(
		&c.ID, &c.FullName,
		&c.CompanyName, &c.Phone,
		&c.Email, &c.MonthlyRevenue,
		&c.BusinessType, &c.AudienceType,
		&c.AcquisitionChannels, &c.ClientVolume,
		&c.BiggestDifficulty, &c.Website,
		&c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return c, nil
}

// Update aplica um patch parcial. Só colunas conhecidas passam;
// chave fora da whitelist derruba o patch inteiro.
func (r *ContactRepository) Update(ctx context.Context, id string, patch entity.ContactPatch) error {
	if len(patch) == 0 {
		return nil
	}

	sets, args, err := buildSetClause(patch, contactColumns)
	if err != nil {
		return err
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE contacts SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	_, err = r.DB.ExecContext(ctx, query, args...)
	return err
}

// buildSetClause monta "col = $n" em ordem estável (chaves ordenadas).
func buildSetClause(patch map[string]any, allowed map[string]bool) ([]string, []any, error) {
	keys := make([]string, 0, len(patch))
	for k := range patch {
		if !allowed[k] {
			return nil, nil, fmt.Errorf("coluna não permitida no patch: %s", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sets := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for i, k := range keys {
		sets = append(sets, fmt.Sprintf("%s = $%d", k, i+1))
		args = append(args, patch[k])
	}
	return sets, args, nil
}
