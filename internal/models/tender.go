package models

import "time"

type TenderSource string

const (
	SourceSecopI         TenderSource = "SECOP_I"
	SourceSecopII        TenderSource = "SECOP_II"
	SourceSecopIntegrado TenderSource = "SECOP_INTEGRADO"
)

func ValidTenderSource(s TenderSource) bool {
	switch s {
	case SourceSecopI, SourceSecopII, SourceSecopIntegrado:
		return true
	default:
		return false
	}
}

// Tender is one announced procurement opportunity. Relevance and match
// fields are derived by the engine: a nil pointer means "not computed",
// which is distinct from a computed zero.
type Tender struct {
	Id               string        `json:"id"`
	ExternalId       string        `json:"external_id"`
	Source           TenderSource  `json:"source"`
	EntityName       string        `json:"entity_name"`
	ObjectText       string        `json:"object_text"`
	Department       *string       `json:"department"`
	Municipality     *string       `json:"municipality"`
	Amount           *float64      `json:"amount"`
	PublicationDate  *time.Time    `json:"publication_date"`
	ClosingDate      *time.Time    `json:"closing_date"`
	State            string        `json:"state"`
	ProcessURL       string        `json:"process_url"`
	ContractType     *string       `json:"contract_type"`
	ContractModality *string       `json:"contract_modality"`
	RelevanceScore   *float64      `json:"relevance_score"`
	IsRelevant       bool          `json:"is_relevant_interventoria_vial"`
	MatchScore       *float64      `json:"experience_match_score"`
	Matches          []MatchResult `json:"matching_experiences"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// TenderFilter carries the composable AND-filters of the search pipeline.
// Zero values mean "not supplied".
type TenderFilter struct {
	Department       string
	ContractType     string
	ContractModality string
	DateFrom         *time.Time
	DateTo           *time.Time
	OnlyRelevant     bool
	CompanyName      string
	MatchExperience  bool
	MinMatchScore    *float64
	Limit            int
	Offset           int
}

// TenderPage is one page of search results. Total counts the filtered set
// before pagination.
type TenderPage struct {
	Items  []Tender `json:"items"`
	Total  int      `json:"total"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
}
