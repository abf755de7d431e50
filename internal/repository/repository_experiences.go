package repository

import (
	"context"
	"database/sql"
	"fmt"

	"licitia/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const experienceColumns = `
	id,
	company_name,
	contract_number,
	project_description,
	contracting_entity,
	completion_date,
	amount,
	category,
	engineering_area,
	keywords,
	created_at,
	updated_at`

// GetExperiences returns every experience of a company, newest work first.
// An empty company matches the whole register.
func (repo *Repository) GetExperiences(ctx context.Context, companyName string) ([]models.Experience, error) {
	query := "SELECT " + experienceColumns + " FROM company_experiences"
	params := make([]interface{}, 0, 1)

	if len(companyName) > 0 {
		query += " WHERE company_name ILIKE $1"
		params = append(params, "%"+companyName+"%")
	}
	query += " ORDER BY completion_date DESC NULLS LAST, id"

	rows, err := repo.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetExperiences: %w", err)
	}
	defer rows.Close()

	var result []models.Experience
	for rows.Next() {
		exp, err := scanExperience(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.GetExperiences: %w", err)
		}
		result = append(result, exp)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.GetExperiences: %w", rows.Err())
	}

	return result, nil
}

func (repo *Repository) GetExperienceByUUID(ctx context.Context, UUID string) (models.Experience, error) {
	query := "SELECT " + experienceColumns + " FROM company_experiences WHERE id = $1 LIMIT 1"

	rows, err := repo.db.QueryContext(ctx, query, UUID)
	if err != nil {
		return models.Experience{}, fmt.Errorf("repository.Repository.GetExperienceByUUID: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if rows.Err() != nil {
			return models.Experience{}, fmt.Errorf("repository.Repository.GetExperienceByUUID: %w", rows.Err())
		}
		return models.Experience{}, fmt.Errorf("repository.Repository.GetExperienceByUUID: no experience found by UUID %s, %w", UUID, sql.ErrNoRows)
	}

	exp, err := scanExperience(rows)
	if err != nil {
		return models.Experience{}, fmt.Errorf("repository.Repository.GetExperienceByUUID: %w", err)
	}

	return exp, nil
}

// GetExperienceByContract looks up an experience by its natural key, the
// company plus contract number pair. Used to turn repeated imports of the
// same sheet into updates instead of duplicates.
func (repo *Repository) GetExperienceByContract(ctx context.Context, companyName, contractNumber string) (models.Experience, bool, error) {
	query := "SELECT " + experienceColumns + ` FROM company_experiences
	WHERE company_name = $1 AND contract_number = $2 LIMIT 1`

	rows, err := repo.db.QueryContext(ctx, query, companyName, contractNumber)
	if err != nil {
		return models.Experience{}, false, fmt.Errorf("repository.Repository.GetExperienceByContract: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if rows.Err() != nil {
			return models.Experience{}, false, fmt.Errorf("repository.Repository.GetExperienceByContract: %w", rows.Err())
		}
		return models.Experience{}, false, nil
	}

	exp, err := scanExperience(rows)
	if err != nil {
		return models.Experience{}, false, fmt.Errorf("repository.Repository.GetExperienceByContract: %w", err)
	}

	return exp, true, nil
}

func (repo *Repository) AddExperience(ctx context.Context, e models.Experience) (models.Experience, error) {
	result := e
	if result.Id == "" {
		result.Id = uuid.NewString()
	}

	query := `
	INSERT INTO company_experiences
		(id, company_name, contract_number, project_description, contracting_entity,
		completion_date, amount, category, engineering_area, keywords)
	VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING
		id, created_at, updated_at
	`

	row := repo.db.QueryRowContext(ctx, query,
		result.Id, e.CompanyName, nullStr(e.ContractNumber), e.ProjectDescription,
		nullStr(e.ContractingEntity), nullTime(e.CompletionDate), nullFloat(e.Amount),
		nullStr(e.Category), nullStr(e.EngineeringArea), pq.Array(e.Keywords))

	err := row.Scan(&result.Id, &result.CreatedAt, &result.UpdatedAt)
	if err != nil {
		return result, fmt.Errorf("repository.Repository.AddExperience: %w", err)
	}

	return result, nil
}

func (repo *Repository) UpdateExperience(ctx context.Context, e models.Experience) (models.Experience, error) {
	result := e

	query := `
	UPDATE company_experiences SET
		(company_name, contract_number, project_description, contracting_entity,
		completion_date, amount, category, engineering_area, keywords, updated_at) =
		($2, $3, $4, $5, $6, $7, $8, $9, $10, CURRENT_TIMESTAMP)
	WHERE id = $1
	RETURNING
		created_at, updated_at
	`

	row := repo.db.QueryRowContext(ctx, query,
		e.Id, e.CompanyName, nullStr(e.ContractNumber), e.ProjectDescription,
		nullStr(e.ContractingEntity), nullTime(e.CompletionDate), nullFloat(e.Amount),
		nullStr(e.Category), nullStr(e.EngineeringArea), pq.Array(e.Keywords))

	err := row.Scan(&result.CreatedAt, &result.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return result, fmt.Errorf("repository.Repository.UpdateExperience: no experience found by UUID %s, %w", e.Id, sql.ErrNoRows)
		}
		return result, fmt.Errorf("repository.Repository.UpdateExperience: %w", err)
	}

	return result, nil
}

// DeleteExperience removes an experience and reports how many rows went
// away, zero meaning the id was unknown.
func (repo *Repository) DeleteExperience(ctx context.Context, experienceId string) (int64, error) {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM company_experiences WHERE id = $1", experienceId)
	if err != nil {
		return 0, fmt.Errorf("repository.Repository.DeleteExperience: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("repository.Repository.DeleteExperience: %w", err)
	}

	return affected, nil
}

func scanExperience(row rowScanner) (models.Experience, error) {
	var (
		exp            models.Experience
		contractNumber sql.NullString
		entity         sql.NullString
		completionDate sql.NullTime
		amount         sql.NullFloat64
		category       sql.NullString
		area           sql.NullString
	)

	err := row.Scan(&exp.Id, &exp.CompanyName, &contractNumber, &exp.ProjectDescription,
		&entity, &completionDate, &amount, &category, &area,
		pq.Array(&exp.Keywords), &exp.CreatedAt, &exp.UpdatedAt)
	if err != nil {
		return exp, fmt.Errorf("row scan failed: %w", err)
	}

	exp.ContractNumber = strPtr(contractNumber)
	exp.ContractingEntity = strPtr(entity)
	exp.CompletionDate = timePtr(completionDate)
	exp.Amount = floatPtr(amount)
	exp.Category = strPtr(category)
	exp.EngineeringArea = strPtr(area)

	return exp, nil
}
