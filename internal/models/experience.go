package models

import "time"

// Experience is one past project of a company, used as matching ground
// truth. Keywords are derived deterministically from the textual fields:
// re-deriving from identical inputs yields an identical, sorted set.
type Experience struct {
	Id                 string     `json:"id"`
	CompanyName        string     `json:"company_name"`
	ContractNumber     *string    `json:"contract_number"`
	ProjectDescription string     `json:"project_description"`
	ContractingEntity  *string    `json:"contracting_entity"`
	CompletionDate     *time.Time `json:"completion_date"`
	Amount             *float64   `json:"amount"`
	Category           *string    `json:"category"`
	EngineeringArea    *string    `json:"engineering_area"`
	Keywords           []string   `json:"keywords"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
