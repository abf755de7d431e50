package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/url"
	"runtime"
	"sort"
	"sync"

	"licitia/internal/config"
	"licitia/internal/engine"
	"licitia/internal/importer"
	"licitia/internal/models"

	"go.uber.org/zap"
)

// Repository is the persistence surface the service depends on.
type Repository interface {
	GetTenders(ctx context.Context, f models.TenderFilter, paginate bool) ([]models.Tender, int, error)
	GetTenderByUUID(ctx context.Context, UUID string) (models.Tender, error)
	AddTender(ctx context.Context, t models.Tender) (models.Tender, error)

	GetExperiences(ctx context.Context, companyName string) ([]models.Experience, error)
	GetExperienceByUUID(ctx context.Context, UUID string) (models.Experience, error)
	GetExperienceByContract(ctx context.Context, companyName, contractNumber string) (models.Experience, bool, error)
	AddExperience(ctx context.Context, e models.Experience) (models.Experience, error)
	UpdateExperience(ctx context.Context, e models.Experience) (models.Experience, error)
	DeleteExperience(ctx context.Context, experienceId string) (int64, error)
}

type Service struct {
	repo   Repository
	engine *engine.Engine
	cfg    config.EngineConfig
	log    *zap.Logger
}

func NewService(repo Repository, eng *engine.Engine, cfg config.EngineConfig, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, engine: eng, cfg: cfg, log: log}
}

//// Tenders

// SearchTenders runs the filter pipeline. Plain filters are pushed down
// to SQL with pagination; when experience matching is requested the full
// candidate set is scored in memory and paginated afterwards, so the
// reported total always counts the whole filtered set.
func (s *Service) SearchTenders(ctx context.Context, f models.TenderFilter) (models.TenderPage, error) {
	if err := s.normalizeFilter(&f); err != nil {
		return models.TenderPage{}, fmt.Errorf("service.Service.SearchTenders: %w", err)
	}

	if !f.MatchExperience {
		items, total, err := s.repo.GetTenders(ctx, f, true)
		if err != nil {
			return models.TenderPage{}, fmt.Errorf("service.Service.SearchTenders: %w", err)
		}
		if items == nil {
			items = []models.Tender{}
		}
		return models.TenderPage{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
	}

	candidates, _, err := s.repo.GetTenders(ctx, f, false)
	if err != nil {
		return models.TenderPage{}, fmt.Errorf("service.Service.SearchTenders: %w", err)
	}

	experiences, err := s.repo.GetExperiences(ctx, f.CompanyName)
	if err != nil {
		return models.TenderPage{}, fmt.Errorf("service.Service.SearchTenders: %w", err)
	}

	minScore := s.cfg.DefaultMinMatchScore
	if f.MinMatchScore != nil {
		minScore = *f.MinMatchScore
	}

	matched, err := s.scoreTenders(ctx, candidates, experiences)
	if err != nil {
		return models.TenderPage{}, fmt.Errorf("service.Service.SearchTenders: %w", err)
	}

	kept := matched[:0]
	for _, t := range matched {
		if t.MatchScore != nil && *t.MatchScore >= minScore {
			kept = append(kept, t)
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		if *kept[i].MatchScore != *kept[j].MatchScore {
			return *kept[i].MatchScore > *kept[j].MatchScore
		}
		return kept[i].Id < kept[j].Id
	})

	total := len(kept)
	page := models.TenderPage{Items: []models.Tender{}, Total: total, Limit: f.Limit, Offset: f.Offset}
	if f.Offset < total {
		end := f.Offset + f.Limit
		if end > total {
			end = total
		}
		page.Items = kept[f.Offset:end]
	}

	return page, nil
}

// GetTender returns one tender by id. When companyName is supplied the
// experience match breakdown is computed on the fly against that
// company's register.
func (s *Service) GetTender(ctx context.Context, tenderId, companyName string) (models.Tender, error) {
	tender, err := s.repo.GetTenderByUUID(ctx, tenderId)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Tender{}, fmt.Errorf("service.Service.GetTender: %w", models.ErrNoTender)
	} else if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.GetTender: %w", err)
	}

	if len(companyName) == 0 {
		return tender, nil
	}

	experiences, err := s.repo.GetExperiences(ctx, companyName)
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.GetTender: %w", err)
	}

	results := s.engine.MatchAll(tender, experiences)
	tender.MatchScore = engine.BestScore(results)
	tender.Matches = topMatches(results, s.cfg.MaxMatchesPerTender)

	return tender, nil
}

// AddTender validates a producer handoff, classifies it and stores it.
func (s *Service) AddTender(ctx context.Context, tender models.Tender) (models.Tender, error) {
	if err := validateTender(tender); err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.AddTender: %w", err)
	}

	score, relevant := s.engine.Classify(tender)
	tender.RelevanceScore = &score
	tender.IsRelevant = relevant

	tender, err := s.repo.AddTender(ctx, tender)
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.AddTender: %w", err)
	}

	s.log.Info("tender stored",
		zap.String("external_id", tender.ExternalId),
		zap.Float64("relevance_score", score),
		zap.Bool("relevant", relevant))

	return tender, nil
}

//// Experiences

func (s *Service) GetExperiences(ctx context.Context, companyName string) ([]models.Experience, error) {
	experiences, err := s.repo.GetExperiences(ctx, companyName)
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetExperiences: %w", err)
	}
	return experiences, nil
}

func (s *Service) GetExperience(ctx context.Context, experienceId string) (models.Experience, error) {
	exp, err := s.repo.GetExperienceByUUID(ctx, experienceId)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Experience{}, fmt.Errorf("service.Service.GetExperience: %w", models.ErrNoExperience)
	} else if err != nil {
		return models.Experience{}, fmt.Errorf("service.Service.GetExperience: %w", err)
	}
	return exp, nil
}

func (s *Service) AddExperience(ctx context.Context, exp models.Experience) (models.Experience, error) {
	if err := validateExperience(exp); err != nil {
		return models.Experience{}, fmt.Errorf("service.Service.AddExperience: %w", err)
	}

	exp.Keywords = s.engine.ExtractKeywords(exp.ProjectDescription, deref(exp.Category), deref(exp.EngineeringArea))

	exp, err := s.repo.AddExperience(ctx, exp)
	if err != nil {
		return models.Experience{}, fmt.Errorf("service.Service.AddExperience: %w", err)
	}
	return exp, nil
}

func (s *Service) DeleteExperience(ctx context.Context, experienceId string) error {
	affected, err := s.repo.DeleteExperience(ctx, experienceId)
	if err != nil {
		return fmt.Errorf("service.Service.DeleteExperience: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("service.Service.DeleteExperience: %w: %s", models.ErrNoExperience, experienceId)
	}
	return nil
}

// ImportExperiences decodes an xlsx workbook and stores its rows. A row
// whose company and contract number already exist updates the stored
// experience instead of duplicating it. Row failures do not abort the
// import.
func (s *Service) ImportExperiences(ctx context.Context, companyName string, r io.Reader) (models.ImportResult, error) {
	rows, err := importer.ReadXLSX(r)
	if err != nil {
		return models.ImportResult{}, fmt.Errorf("service.Service.ImportExperiences: %w: %v", models.ErrValidation, err)
	}

	result := models.ImportResult{}
	for _, row := range rows {
		if err := s.importRow(ctx, companyName, row); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", row.Number, err))
			continue
		}
		result.Imported++
	}

	s.log.Info("experience import finished",
		zap.Int("imported", result.Imported),
		zap.Int("rejected", len(result.Errors)))

	return result, nil
}

func (s *Service) importRow(ctx context.Context, companyName string, row importer.Row) error {
	company := row.CompanyName
	if len(company) == 0 {
		company = companyName
	}
	if len(company) == 0 {
		return fmt.Errorf("company name is missing")
	}
	if len(row.ProjectDescription) == 0 {
		return fmt.Errorf("project description is missing")
	}
	if row.Amount != nil && *row.Amount < 0 {
		return fmt.Errorf("amount is negative")
	}

	exp := models.Experience{
		CompanyName:        company,
		ContractNumber:     optional(row.ContractNumber),
		ProjectDescription: row.ProjectDescription,
		ContractingEntity:  optional(row.ContractingEntity),
		CompletionDate:     row.CompletionDate,
		Amount:             row.Amount,
		Category:           optional(row.Category),
		EngineeringArea:    optional(row.EngineeringArea),
	}
	exp.Keywords = s.engine.ExtractKeywords(exp.ProjectDescription, row.Category, row.EngineeringArea)

	if len(row.ContractNumber) > 0 {
		existing, found, err := s.repo.GetExperienceByContract(ctx, company, row.ContractNumber)
		if err != nil {
			return err
		}
		if found {
			exp.Id = existing.Id
			_, err = s.repo.UpdateExperience(ctx, exp)
			return err
		}
	}

	_, err := s.repo.AddExperience(ctx, exp)
	return err
}

//// Matching

// scoreTenders computes the best match score and breakdown for every
// candidate on a bounded worker pool. The whole batch shares one
// deadline; hitting it surfaces as ErrMatchTimeout.
func (s *Service) scoreTenders(ctx context.Context, tenders []models.Tender, experiences []models.Experience) ([]models.Tender, error) {
	if len(tenders) == 0 {
		return tenders, nil
	}

	workers := s.cfg.MatchWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.MatchDeadline)
	defer cancel()

	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, workers)
	)

	for i := range tenders {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return nil, fmt.Errorf("%w: scored %d of %d tenders", models.ErrMatchTimeout, i, len(tenders))
		}

		wg.Add(1)
		go func(t *models.Tender) {
			defer wg.Done()
			defer func() { <-sem }()

			results := s.engine.MatchAll(*t, experiences)
			t.MatchScore = engine.BestScore(results)
			t.Matches = topMatches(results, s.cfg.MaxMatchesPerTender)
		}(&tenders[i])
	}

	wg.Wait()

	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: deadline hit while draining", models.ErrMatchTimeout)
	}

	return tenders, nil
}

func topMatches(results []models.MatchResult, limit int) []models.MatchResult {
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

//// Validation

func (s *Service) normalizeFilter(f *models.TenderFilter) error {
	if f.Limit == 0 {
		f.Limit = s.cfg.DefaultPageLimit
	}
	if f.Limit < 0 || f.Limit > s.cfg.MaxPageLimit {
		return fmt.Errorf("%w: limit must lie in [1,%d]", models.ErrValidation, s.cfg.MaxPageLimit)
	}
	if f.Offset < 0 {
		return fmt.Errorf("%w: offset must not be negative", models.ErrValidation)
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateFrom.After(*f.DateTo) {
		return fmt.Errorf("%w: date_from is later than date_to", models.ErrValidation)
	}
	if f.MatchExperience && len(f.CompanyName) == 0 {
		return fmt.Errorf("%w: match_experience requires company_name", models.ErrValidation)
	}
	if f.MinMatchScore != nil {
		if !f.MatchExperience {
			return fmt.Errorf("%w: min_match_score requires match_experience", models.ErrValidation)
		}
		if *f.MinMatchScore < 0 || *f.MinMatchScore > 1 {
			return fmt.Errorf("%w: min_match_score must lie in [0,1]", models.ErrValidation)
		}
	}
	return nil
}

func validateTender(t models.Tender) error {
	if len(t.ExternalId) == 0 {
		return fmt.Errorf("%w: external_id is required", models.ErrValidation)
	}
	if !models.ValidTenderSource(t.Source) {
		return fmt.Errorf("%w: unknown source %q", models.ErrValidation, t.Source)
	}
	if len(t.EntityName) == 0 {
		return fmt.Errorf("%w: entity_name is required", models.ErrValidation)
	}
	if len(t.ObjectText) == 0 {
		return fmt.Errorf("%w: object_text is required", models.ErrValidation)
	}
	if len(t.ProcessURL) > 0 {
		u, err := url.Parse(t.ProcessURL)
		if err != nil || !u.IsAbs() {
			return fmt.Errorf("%w: process_url must be an absolute URL", models.ErrValidation)
		}
	}
	if t.Amount != nil && *t.Amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", models.ErrValidation)
	}
	if t.PublicationDate != nil && t.ClosingDate != nil && t.ClosingDate.Before(*t.PublicationDate) {
		return fmt.Errorf("%w: closing_date precedes publication_date", models.ErrValidation)
	}
	return nil
}

func validateExperience(e models.Experience) error {
	if len(e.CompanyName) == 0 {
		return fmt.Errorf("%w: company_name is required", models.ErrValidation)
	}
	if len(e.ProjectDescription) == 0 {
		return fmt.Errorf("%w: project_description is required", models.ErrValidation)
	}
	if e.Amount != nil && *e.Amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", models.ErrValidation)
	}
	return nil
}

func optional(s string) *string {
	if len(s) == 0 {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
