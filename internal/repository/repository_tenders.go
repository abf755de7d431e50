package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"licitia/internal/models"

	"github.com/google/uuid"
)

const tenderColumns = `
	id,
	external_id,
	source,
	entity_name,
	object_text,
	department,
	municipality,
	amount,
	publication_date,
	closing_date,
	state,
	process_url,
	contract_type,
	contract_modality,
	relevance_score,
	is_relevant_interventoria_vial,
	created_at,
	updated_at`

// prepTendersQuery builds the filtered select and count statements for a
// tender search. Both share the same condition set and parameters; limit
// and offset are appended to the select only when paginate is set.
func (repo *Repository) prepTendersQuery(f models.TenderFilter, paginate bool) (query, countQuery string, queryParams []interface{}) {
	conditions := make([]string, 0, 6)
	queryParams = make([]interface{}, 0, 8)

	if len(f.Department) > 0 {
		conditions = append(conditions, "department ILIKE $$")
		queryParams = append(queryParams, "%"+f.Department+"%")
	}
	if len(f.ContractType) > 0 {
		conditions = append(conditions, "contract_type ILIKE $$")
		queryParams = append(queryParams, "%"+f.ContractType+"%")
	}
	if len(f.ContractModality) > 0 {
		conditions = append(conditions, "contract_modality ILIKE $$")
		queryParams = append(queryParams, "%"+f.ContractModality+"%")
	}
	if f.DateFrom != nil {
		conditions = append(conditions, "publication_date >= $$")
		queryParams = append(queryParams, *f.DateFrom)
	}
	if f.DateTo != nil {
		conditions = append(conditions, "publication_date <= $$")
		queryParams = append(queryParams, *f.DateTo)
	}
	if f.OnlyRelevant {
		conditions = append(conditions, "is_relevant_interventoria_vial = TRUE")
	}

	condStr := ""
	if len(conditions) > 0 {
		n := 0
		for i := 0; i < len(conditions); i++ {
			if strings.Contains(conditions[i], "$$") {
				n++
				conditions[i] = strings.Replace(conditions[i], "$$", "$"+strconv.Itoa(n), 1)
			}
		}
		condStr = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery = "SELECT COUNT(*) FROM tenders " + condStr

	query = "SELECT " + tenderColumns + " FROM tenders " + condStr +
		" ORDER BY publication_date DESC NULLS LAST, id"

	if paginate {
		query += " LIMIT $" + strconv.Itoa(len(queryParams)+1) +
			" OFFSET $" + strconv.Itoa(len(queryParams)+2)
	}

	return query, countQuery, queryParams
}

// GetTenders returns the tenders selected by the non-match filters plus
// the total size of the filtered set before pagination. With paginate
// false, the full candidate set is returned for in-memory matching.
func (repo *Repository) GetTenders(ctx context.Context, f models.TenderFilter, paginate bool) ([]models.Tender, int, error) {
	query, countQuery, queryParams := repo.prepTendersQuery(f, paginate)

	var total int
	row := repo.db.QueryRowContext(ctx, countQuery, queryParams...)
	if err := row.Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.Repository.GetTenders: count failed: %w", err)
	}

	if paginate {
		queryParams = append(queryParams, f.Limit, f.Offset)
	}

	rows, err := repo.db.QueryContext(ctx, query, queryParams...)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.Repository.GetTenders: %w", err)
	}
	defer rows.Close()

	var result []models.Tender
	for rows.Next() {
		tender, err := scanTender(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.Repository.GetTenders: %w", err)
		}
		result = append(result, tender)
	}

	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("repository.Repository.GetTenders: %w", rows.Err())
	}

	return result, total, nil
}

func (repo *Repository) GetTenderByUUID(ctx context.Context, UUID string) (models.Tender, error) {
	query := "SELECT " + tenderColumns + " FROM tenders WHERE id = $1 LIMIT 1"

	rows, err := repo.db.QueryContext(ctx, query, UUID)
	if err != nil {
		return models.Tender{}, fmt.Errorf("repository.Repository.GetTenderByUUID: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if rows.Err() != nil {
			return models.Tender{}, fmt.Errorf("repository.Repository.GetTenderByUUID: %w", rows.Err())
		}
		return models.Tender{}, fmt.Errorf("repository.Repository.GetTenderByUUID: no tender found by UUID %s, %w", UUID, sql.ErrNoRows)
	}

	tender, err := scanTender(rows)
	if err != nil {
		return models.Tender{}, fmt.Errorf("repository.Repository.GetTenderByUUID: %w", err)
	}

	return tender, nil
}

// AddTender inserts a producer-supplied tender together with its derived
// relevance fields. Records are keyed by external id: a repeated handoff
// of the same process updates the stored record in place.
func (repo *Repository) AddTender(ctx context.Context, t models.Tender) (models.Tender, error) {
	result := t
	if result.Id == "" {
		result.Id = uuid.NewString()
	}

	query := `
	INSERT INTO tenders
		(id, external_id, source, entity_name, object_text, department, municipality, amount,
		publication_date, closing_date, state, process_url, contract_type, contract_modality,
		relevance_score, is_relevant_interventoria_vial)
	VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	ON CONFLICT (external_id) DO UPDATE SET
		(source, entity_name, object_text, department, municipality, amount,
		publication_date, closing_date, state, process_url, contract_type, contract_modality,
		relevance_score, is_relevant_interventoria_vial, updated_at) =
		(EXCLUDED.source, EXCLUDED.entity_name, EXCLUDED.object_text, EXCLUDED.department,
		EXCLUDED.municipality, EXCLUDED.amount, EXCLUDED.publication_date, EXCLUDED.closing_date,
		EXCLUDED.state, EXCLUDED.process_url, EXCLUDED.contract_type, EXCLUDED.contract_modality,
		EXCLUDED.relevance_score, EXCLUDED.is_relevant_interventoria_vial, CURRENT_TIMESTAMP)
	RETURNING
		id, created_at, updated_at
	`

	var relevance sql.NullFloat64
	if t.RelevanceScore != nil {
		relevance = sql.NullFloat64{Float64: *t.RelevanceScore, Valid: true}
	}

	row := repo.db.QueryRowContext(ctx, query,
		result.Id, t.ExternalId, t.Source, t.EntityName, t.ObjectText,
		nullStr(t.Department), nullStr(t.Municipality), nullFloat(t.Amount),
		nullTime(t.PublicationDate), nullTime(t.ClosingDate), t.State, t.ProcessURL,
		nullStr(t.ContractType), nullStr(t.ContractModality),
		relevance, t.IsRelevant)

	err := row.Scan(&result.Id, &result.CreatedAt, &result.UpdatedAt)
	if err != nil {
		return result, fmt.Errorf("repository.Repository.AddTender: %w", err)
	}

	return result, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTender(row rowScanner) (models.Tender, error) {
	var (
		tender          models.Tender
		department      sql.NullString
		municipality    sql.NullString
		amount          sql.NullFloat64
		publicationDate sql.NullTime
		closingDate     sql.NullTime
		contractType    sql.NullString
		modality        sql.NullString
		relevance       sql.NullFloat64
	)

	err := row.Scan(&tender.Id, &tender.ExternalId, &tender.Source, &tender.EntityName,
		&tender.ObjectText, &department, &municipality, &amount,
		&publicationDate, &closingDate, &tender.State, &tender.ProcessURL,
		&contractType, &modality, &relevance, &tender.IsRelevant,
		&tender.CreatedAt, &tender.UpdatedAt)
	if err != nil {
		return tender, fmt.Errorf("row scan failed: %w", err)
	}

	tender.Department = strPtr(department)
	tender.Municipality = strPtr(municipality)
	tender.Amount = floatPtr(amount)
	tender.PublicationDate = timePtr(publicationDate)
	tender.ClosingDate = timePtr(closingDate)
	tender.ContractType = strPtr(contractType)
	tender.ContractModality = strPtr(modality)
	tender.RelevanceScore = floatPtr(relevance)

	return tender, nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullTime(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *p, Valid: true}
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}
