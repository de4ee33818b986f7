package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/cacifebrand/cacife-dashboard/internal/entity"
)

// LeadPostRepository consulta leads_capturados_posts, que guarda a
// análise de IA dos posts capturados. Somente leitura.
type LeadPostRepository struct {
	DB *sql.DB
}

func NewLeadPostRepository(db *sql.DB) *LeadPostRepository {
	return &LeadPostRepository{DB: db}
}

func (r *LeadPostRepository) FindByUsername(ctx context.Context, username string) (*entity.LeadPost, error) {
	// O front manda com ou sem @
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")

	query := `
		SELECT id, username, COALESCE(analysis, ''), created_at
		FROM leads_capturados_posts
		WHERE username = $1
		LIMIT 1
	`

	p := &entity.LeadPost{}
	err := r.DB.QueryRowContext(ctx, query, username).Scan(
		&p.ID, &p.Username, &p.Analysis, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return p, nil
}
