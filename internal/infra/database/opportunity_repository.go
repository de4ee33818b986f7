package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/cacifebrand/cacife-dashboard/internal/entity"
)

type OpportunityRepository struct {
	DB *sql.DB
}

func NewOpportunityRepository(db *sql.DB) *OpportunityRepository {
	return &OpportunityRepository{DB: db}
}

var opportunityColumns = map[string]bool{
	"stage":            true,
	"pipeline":         true,
	"responsible_name": true,
	"tags":             true,
	"lead_status":      true,
}

func (r *OpportunityRepository) Create(ctx context.Context, o *entity.Opportunity) error {
	query := `
		INSERT INTO opportunities (id, contact_id, pipeline, stage, responsible_name, tags, lead_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.DB.ExecContext(ctx, query,
		o.ID,
		o.ContactID,
		o.Pipeline,
		o.Stage,
		o.ResponsibleName,
		pq.Array(o.Tags),
		o.LeadStatus,
		o.CreatedAt,
		o.UpdatedAt,
	)
	return err
}

func (r *OpportunityRepository) FindByContact(ctx context.Context, contactID, pipeline string) ([]entity.Opportunity, error) {
	query := `
		SELECT id, contact_id, pipeline, stage,
		       COALESCE(responsible_name, ''), COALESCE(tags, '{}'),
		       COALESCE(lead_status, ''), created_at, updated_at
		FROM opportunities
		WHERE contact_id = $1 AND pipeline = $2
		ORDER BY created_at
	`

	rows, err := r.DB.QueryContext(ctx, query, contactID, pipeline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opps []entity.Opportunity
	for rows.Next() {
		var o entity.Opportunity
		var tags pq.StringArray
		if err := rows.Scan(&o.ID, &o.ContactID, &o.Pipeline, &o.Stage,
			&o.ResponsibleName, &tags, &o.LeadStatus, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		o.Tags = tags
		opps = append(opps, o)
	}

	return opps, rows.Err()
}

// FetchPipeline devolve o board inteiro do pipeline, já com os campos
// do contato achatados. Pagina em janelas de 1000 (página curta = fim),
// seguindo a ordem de criação do banco.
func (r *OpportunityRepository) FetchPipeline(ctx context.Context, pipeline string) ([]entity.LeadView, error) {
	pipeline = entity.NormalizePipeline(pipeline)

	query := `
		SELECT o.id, COALESCE(o.stage, ''),
		       COALESCE(o.responsible_name, ''), COALESCE(o.tags, '{}'),
		       COALESCE(o.lead_status, ''),
		       c.id, c.full_name, c.company_name, c.phone, c.email,
		       c.monthly_revenue::text, c.business_type, c.audience_type,
		       c.acquisition_channels, c.client_volume, c.biggest_difficulty, c.website
		FROM opportunities o
		LEFT JOIN contacts c ON c.id = o.contact_id
		WHERE o.pipeline = $1
		ORDER BY o.created_at
		LIMIT $2 OFFSET $3
	`

	return collectPages(pageSize, func(limit, offset int) ([]entity.LeadView, error) {
		rows, err := r.DB.QueryContext(ctx, query, pipeline, limit, offset)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var views []entity.LeadView
		for rows.Next() {
			view, err := scanLeadView(rows)
			if err != nil {
				return nil, err
			}
			views = append(views, view)
		}
		return views, rows.Err()
	})
}

func scanLeadView(rows *sql.Rows) (entity.LeadView, error) {
	var v entity.LeadView
	var tags pq.StringArray
	var contactID, name, company, phone, email, revenue sql.NullString
	var business, audience, channels, volume, difficulty, site sql.NullString

	err := rows.Scan(&v.ID, &v.Stage,
		&v.Responsible, &tags, &v.LeadStatus,
		&contactID, &name, &company, &phone, &email,
		&revenue, &business, &audience,
		&channels, &volume, &difficulty, &site)
	if err != nil {
		return v, err
	}

	// Contato ausente ou campo vazio vira placeholder, igual ao board antigo
	v.ContactID = contactID.String
	v.Name = orPlaceholder(name, entity.NoName)
	v.Company = orPlaceholder(company, entity.NoCompany)
	v.Revenue = orPlaceholder(revenue, entity.NoRevenue)
	v.Phone = orPlaceholder(phone, entity.NoValue)
	v.Email = orPlaceholder(email, entity.NoValue)
	v.Business = orPlaceholder(business, entity.NoValue)
	v.Audience = orPlaceholder(audience, entity.NoValue)
	v.Channels = orPlaceholder(channels, entity.NoValue)
	v.Volume = orPlaceholder(volume, entity.NoValue)
	v.Difficulty = orPlaceholder(difficulty, entity.NoValue)
	v.Site = orPlaceholder(site, entity.NoValue)

	if v.Responsible == "" {
		v.Responsible = entity.NoResponsible
	}
	if v.LeadStatus == "" {
		v.LeadStatus = entity.LeadStatusCold
	}
	v.Tags = tags
	if v.Tags == nil {
		v.Tags = []string{}
	}

	return v, nil
}

func orPlaceholder(s sql.NullString, placeholder string) string {
	if !s.Valid || s.String == "" {
		return placeholder
	}
	return s.String
}

func (r *OpportunityRepository) UpdateStage(ctx context.Context, id, stage string) error {
	query := `UPDATE opportunities SET stage = $1, updated_at = NOW() WHERE id = $2`

	_, err := r.DB.ExecContext(ctx, query, stage, id)
	return err
}

// BatchUpdateStage: um único statement, tudo ou nada.
func (r *OpportunityRepository) BatchUpdateStage(ctx context.Context, ids []string, stage string) error {
	if len(ids) == 0 {
		return nil
	}

	query := `UPDATE opportunities SET stage = $1, updated_at = NOW() WHERE id = ANY($2)`

	_, err := r.DB.ExecContext(ctx, query, stage, pq.Array(ids))
	return err
}

func (r *OpportunityRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM opportunities WHERE id = $1`, id)
	return err
}

func (r *OpportunityRepository) Update(ctx context.Context, id string, patch entity.OpportunityPatch) error {
	if len(patch) == 0 {
		return nil
	}

	normalizeTagsPatch(patch)

	sets, args, err := buildSetClause(patch, opportunityColumns)
	if err != nil {
		return err
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE opportunities SET %s, updated_at = NOW() WHERE id = $%d",
		strings.Join(sets, ", "), len(args))

	_, err = r.DB.ExecContext(ctx, query, args...)
	return err
}

// normalizeTagsPatch embrulha o campo tags em pq.Array para a coluna
// text[]. Patch vindo de JSON chega como []any, nunca []string.
func normalizeTagsPatch(patch map[string]any) {
	switch tags := patch["tags"].(type) {
	case []string:
		patch["tags"] = pq.Array(tags)
	case []any:
		ss := make([]string, 0, len(tags))
		for _, t := range tags {
			if s, ok := t.(string); ok {
				ss = append(ss, s)
			}
		}
		patch["tags"] = pq.Array(ss)
	}
}

// Summarize agrega o funil inteiro para o dashboard. Usa a MESMA
// paginação em janelas do FetchPipeline — o fetch único do sistema
// antigo estourava quando o funil passava do limite do Supabase.
func (r *OpportunityRepository) Summarize(ctx context.Context) (*entity.PipelineSummary, error) {
	query := `
		SELECT COALESCE(o.stage, ''), COALESCE(o.responsible_name, ''),
		       COALESCE(c.acquisition_channels, '')
		FROM opportunities o
		LEFT JOIN contacts c ON c.id = o.contact_id
		ORDER BY o.created_at
		LIMIT $1 OFFSET $2
	`

	type summaryRow struct {
		stage, resp, channel string
	}

	all, err := collectPages(pageSize, func(limit, offset int) ([]summaryRow, error) {
		rows, err := r.DB.QueryContext(ctx, query, limit, offset)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var page []summaryRow
		for rows.Next() {
			var sr summaryRow
			if err := rows.Scan(&sr.stage, &sr.resp, &sr.channel); err != nil {
				return nil, err
			}
			page = append(page, sr)
		}
		return page, rows.Err()
	})
	if err != nil {
		return nil, err
	}

	summary := &entity.PipelineSummary{
		Stages:             map[string]int{},
		Responsible:        map[string]int{},
		SalesByResponsible: map[string]int{},
		Channels:           map[string]int{},
	}
	for _, sr := range all {
		accumulate(summary, sr.stage, sr.resp, sr.channel)
	}

	return summary, nil
}

func accumulate(summary *entity.PipelineSummary, stage, resp, channel string) {
	stage = strings.ToLower(stage)
	if resp == "" {
		resp = entity.NoResponsible
	}

	summary.Total++
	summary.Stages[stage]++
	summary.Responsible[resp]++

	if channel != "" {
		summary.Channels[channel]++
	}

	// "Venda" pro dashboard = fechou ou já entregou
	if stage == "venda realizada" || stage == "entregue" {
		summary.SalesByResponsible[resp]++
	}
}
