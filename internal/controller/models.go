package controller

import (
	"encoding/json"
	"fmt"
	"time"

	"licitia/internal/models"
)

// New tender request

type NewTenderReq struct {
	ExternalId       string   `json:"external_id"`
	Source           string   `json:"source"`
	EntityName       string   `json:"entity_name"`
	ObjectText       string   `json:"object_text"`
	Department       *string  `json:"department"`
	Municipality     *string  `json:"municipality"`
	Amount           *float64 `json:"amount"`
	PublicationDate  *string  `json:"publication_date"`
	ClosingDate      *string  `json:"closing_date"`
	State            string   `json:"state"`
	ProcessURL       string   `json:"process_url"`
	ContractType     *string  `json:"contract_type"`
	ContractModality *string  `json:"contract_modality"`
}

func ParseNewTenderReq(data []byte) (models.Tender, error) {
	req := NewTenderReq{}

	err := json.Unmarshal(data, &req)
	if err != nil {
		return models.Tender{}, err
	}

	if !models.ValidTenderSource(models.TenderSource(req.Source)) {
		return models.Tender{}, fmt.Errorf("invalid source supplied: %s, should be one of: %s, %s, %s",
			req.Source, models.SourceSecopI, models.SourceSecopII, models.SourceSecopIntegrado)
	}

	tender := models.Tender{
		ExternalId:       req.ExternalId,
		Source:           models.TenderSource(req.Source),
		EntityName:       req.EntityName,
		ObjectText:       req.ObjectText,
		Department:       req.Department,
		Municipality:     req.Municipality,
		Amount:           req.Amount,
		State:            req.State,
		ProcessURL:       req.ProcessURL,
		ContractType:     req.ContractType,
		ContractModality: req.ContractModality,
	}

	tender.PublicationDate, err = parseOptionalDate(req.PublicationDate, "publication_date")
	if err != nil {
		return models.Tender{}, err
	}
	tender.ClosingDate, err = parseOptionalDate(req.ClosingDate, "closing_date")
	if err != nil {
		return models.Tender{}, err
	}

	return tender, nil
}

// New experience request

type NewExperienceReq struct {
	CompanyName        string   `json:"company_name"`
	ContractNumber     *string  `json:"contract_number"`
	ProjectDescription string   `json:"project_description"`
	ContractingEntity  *string  `json:"contracting_entity"`
	CompletionDate     *string  `json:"completion_date"`
	Amount             *float64 `json:"amount"`
	Category           *string  `json:"category"`
	EngineeringArea    *string  `json:"engineering_area"`
}

func ParseNewExperienceReq(data []byte) (models.Experience, error) {
	req := NewExperienceReq{}

	err := json.Unmarshal(data, &req)
	if err != nil {
		return models.Experience{}, err
	}

	exp := models.Experience{
		CompanyName:        req.CompanyName,
		ContractNumber:     req.ContractNumber,
		ProjectDescription: req.ProjectDescription,
		ContractingEntity:  req.ContractingEntity,
		Amount:             req.Amount,
		Category:           req.Category,
		EngineeringArea:    req.EngineeringArea,
	}

	exp.CompletionDate, err = parseOptionalDate(req.CompletionDate, "completion_date")
	if err != nil {
		return models.Experience{}, err
	}

	return exp, nil
}

// Service

var queryDateFormats = []string{"2006-01-02", time.RFC3339}

func parseQueryDate(s string) (time.Time, error) {
	for _, format := range queryDateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("malformed date: %s", s)
}

func parseOptionalDate(s *string, fieldName string) (*time.Time, error) {
	if s == nil || len(*s) == 0 {
		return nil, nil
	}
	t, err := parseQueryDate(*s)
	if err != nil {
		return nil, fmt.Errorf("invalid value of '%s' field: %s", fieldName, *s)
	}
	return &t, nil
}
