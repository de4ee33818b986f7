package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/cacifebrand/cacife-dashboard/internal/entity"
)

type AbandonedCheckoutRepository struct {
	DB *sql.DB
}

func NewAbandonedCheckoutRepository(db *sql.DB) *AbandonedCheckoutRepository {
	return &AbandonedCheckoutRepository{DB: db}
}

const abandonedSelect = `
	SELECT id, COALESCE(contact_name, ''), COALESCE(contact_phone, ''),
	       COALESCE(contact_email, ''), COALESCE(total, 0),
	       COALESCE(stage_recuperacao, ''), recovered_at,
	       COALESCE(abandoned_checkout_url, ''), COALESCE(note, ''), created_at
	FROM abandoned_checkouts
`

// FetchAll devolve os carrinhos abandonados como LeadView, com a etapa
// sintética derivada de stage_recuperacao/recovered_at. Mesma paginação
// em janelas dos outros fetches.
func (r *AbandonedCheckoutRepository) FetchAll(ctx context.Context) ([]entity.LeadView, error) {
	query := abandonedSelect + ` ORDER BY created_at LIMIT $1 OFFSET $2`

	return collectPages(pageSize, func(limit, offset int) ([]entity.LeadView, error) {
		rows, err := r.DB.QueryContext(ctx, query, limit, offset)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var views []entity.LeadView
		for rows.Next() {
			var a entity.AbandonedCheckout
			if err := scanAbandoned(rows, &a); err != nil {
				return nil, err
			}
			views = append(views, a.View())
		}
		return views, rows.Err()
	})
}

func (r *AbandonedCheckoutRepository) FindByID(ctx context.Context, id string) (*entity.AbandonedCheckout, error) {
	row := r.DB.QueryRowContext(ctx, abandonedSelect+` WHERE id = $1`, id)

	var a entity.AbandonedCheckout
	if err := scanAbandoned(row, &a); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAbandoned(row rowScanner, a *entity.AbandonedCheckout) error {
	return row.Scan(&a.ID, &a.ContactName, &a.ContactPhone,
		&a.ContactEmail, &a.Total,
		&a.StageRecuperacao, &a.RecoveredAt,
		&a.AbandonedCheckoutURL, &a.Note, &a.CreatedAt)
}

// UpdateStage traduz a etapa do board de volta para a representação
// do banco. recovered_at usa COALESCE para a operação ser idempotente:
// re-marcar como recuperado não mexe no timestamp original.
func (r *AbandonedCheckoutRepository) UpdateStage(ctx context.Context, id, stage string) error {
	stageRecuperacao, recovered := entity.RecoveryFromStage(stage)

	var query string
	if recovered {
		query = `UPDATE abandoned_checkouts SET recovered_at = COALESCE(recovered_at, NOW()) WHERE id = $1`
		_, err := r.DB.ExecContext(ctx, query, id)
		return err
	}

	query = `UPDATE abandoned_checkouts SET stage_recuperacao = $1, recovered_at = NULL WHERE id = $2`
	_, err := r.DB.ExecContext(ctx, query, stageRecuperacao, id)
	return err
}

func (r *AbandonedCheckoutRepository) BatchUpdateStage(ctx context.Context, ids []string, stage string) error {
	if len(ids) == 0 {
		return nil
	}

	stageRecuperacao, recovered := entity.RecoveryFromStage(stage)

	if recovered {
		query := `UPDATE abandoned_checkouts SET recovered_at = COALESCE(recovered_at, NOW()) WHERE id = ANY($1)`
		_, err := r.DB.ExecContext(ctx, query, pq.Array(ids))
		return err
	}

	query := `UPDATE abandoned_checkouts SET stage_recuperacao = $1, recovered_at = NULL WHERE id = ANY($2)`
	_, err := r.DB.ExecContext(ctx, query, stageRecuperacao, pq.Array(ids))
	return err
}

// FindPendingRecovery lista os carrinhos que ainda têm mensagem a
// receber: não recuperados e sem o marcador msg3.
func (r *AbandonedCheckoutRepository) FindPendingRecovery(ctx context.Context) ([]entity.AbandonedCheckout, error) {
	query := abandonedSelect + `
		WHERE recovered_at IS NULL
		  AND COALESCE(stage_recuperacao, '') NOT LIKE '%msg3%'
		  AND COALESCE(contact_email, '') <> ''
		ORDER BY created_at
		LIMIT $1 OFFSET $2
	`

	return collectPages(pageSize, func(limit, offset int) ([]entity.AbandonedCheckout, error) {
		rows, err := r.DB.QueryContext(ctx, query, limit, offset)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var page []entity.AbandonedCheckout
		for rows.Next() {
			var a entity.AbandonedCheckout
			if err := scanAbandoned(rows, &a); err != nil {
				return nil, err
			}
			page = append(page, a)
		}
		return page, rows.Err()
	})
}

// MarkMessageSent grava o marcador da mensagem n (acumulando os
// anteriores). Chamado pelo worker DEPOIS do envio.
func (r *AbandonedCheckoutRepository) MarkMessageSent(ctx context.Context, checkoutID string, messageNumber int) error {
	if messageNumber < 1 || messageNumber > entity.MaxRecoveryMessages {
		return fmt.Errorf("mensagem fora do intervalo: %d", messageNumber)
	}

	markers := make([]string, 0, messageNumber)
	for i := 1; i <= messageNumber; i++ {
		markers = append(markers, fmt.Sprintf("msg%d", i))
	}

	query := `UPDATE abandoned_checkouts SET stage_recuperacao = $1 WHERE id = $2 AND recovered_at IS NULL`

	_, err := r.DB.ExecContext(ctx, query, strings.Join(markers, ", "), checkoutID)
	return err
}
